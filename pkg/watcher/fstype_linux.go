//go:build linux

package watcher

import "golang.org/x/sys/unix"

func detectFilesystemType(path string) FilesystemType {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSTypeUnknown
	}
	switch uint32(st.Type) {
	case unix.NFS_SUPER_MAGIC:
		return FSTypeNFS
	case unix.SMB_SUPER_MAGIC, unix.SMB2_SUPER_MAGIC, unix.CIFS_SUPER_MAGIC:
		return FSTypeSMB
	case unix.FUSE_SUPER_MAGIC:
		// sshfs is FUSE-backed and indistinguishable by magic alone.
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}
