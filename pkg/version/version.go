package version

// Version is the current buildline version. Override at build time with:
//
//	go build -ldflags "-X github.com/vanderheijden86/buildline/pkg/version.Version=v0.2.0"
var Version = "v0.1.0"
