// Package datasource discovers, validates and selects compilation timeline
// documents. A project can hold both the plain JSON export and the
// JavaScript-wrapped export used by the HTML viewer; the freshest valid one
// wins.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// SourceType identifies where a document was found.
type SourceType string

const (
	// SourceTypeExplicit is a path passed on the command line or in config.
	SourceTypeExplicit SourceType = "explicit"
	// SourceTypeEnv is the path named by BUILDLINE_INPUT.
	SourceTypeEnv SourceType = "env"
	// SourceTypeScript is the JavaScript-wrapped export (compilation_timeline.js).
	SourceTypeScript SourceType = "script"
	// SourceTypeJSON is the plain JSON export (compilation_timeline.json).
	SourceTypeJSON SourceType = "json"
)

// Priority values for source types (higher = more authoritative).
const (
	PriorityExplicit = 120
	PriorityEnv      = 100
	PriorityScript   = 80
	PriorityJSON     = 50
)

// EnvInput names a document to load ahead of discovery.
const EnvInput = "BUILDLINE_INPUT"

// Well-known document locations relative to a project directory.
var (
	JSONDocumentPath   = filepath.Join("Logs", "compilation_timeline.json")
	ScriptDocumentPath = filepath.Join("Logs", "Web", "compilation_timeline.js")
)

// DataSource is a candidate document.
type DataSource struct {
	Type     SourceType `json:"type"`
	Path     string     `json:"path"`
	Priority int        `json:"priority"`
	ModTime  time.Time  `json:"mod_time"`
	// Valid indicates whether the document parsed.
	Valid           bool   `json:"valid"`
	ValidationError string `json:"validation_error,omitempty"`
	// EntryCount is the number of entries (set during validation).
	EntryCount int   `json:"entry_count"`
	Size       int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, entries=%d, %s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339), s.EntryCount, status)
}

// DiscoveryOptions configures source discovery behavior
type DiscoveryOptions struct {
	// Path is an explicit document. When set, nothing else is discovered.
	Path string
	// ProjectDir is searched for the well-known locations (default: cwd).
	// Its parent is searched as well.
	ProjectDir string
	// ValidateAfterDiscovery parses each discovered source
	ValidateAfterDiscovery bool
	// IncludeInvalid keeps sources that failed validation in results
	IncludeInvalid bool
	// Verbose enables detailed logging during discovery
	Verbose bool
	// Logger receives log messages when Verbose is true
	Logger func(msg string)
}

// DiscoverSources finds all candidate documents, freshest first.
func DiscoverSources(opts DiscoveryOptions) ([]DataSource, error) {
	if opts.Logger == nil {
		opts.Logger = func(string) {}
	}
	logf := func(format string, args ...any) {
		if opts.Verbose {
			opts.Logger(fmt.Sprintf(format, args...))
		}
	}

	var sources []DataSource
	if opts.Path != "" {
		src, err := statSource(opts.Path, SourceTypeExplicit, PriorityExplicit)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	} else {
		if env := os.Getenv(EnvInput); env != "" {
			if src, err := statSource(env, SourceTypeEnv, PriorityEnv); err == nil {
				sources = append(sources, src)
				logf("Found %s document: %s", EnvInput, env)
			} else {
				logf("%s points at %s: %v", EnvInput, env, err)
			}
		}

		projectDir := opts.ProjectDir
		if projectDir == "" {
			var err error
			projectDir, err = os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
		}
		logf("Discovering sources in: %s", projectDir)
		sources = append(sources, discoverIn(projectDir, logf)...)
		if parent := filepath.Dir(projectDir); parent != projectDir {
			sources = append(sources, discoverIn(parent, logf)...)
		}
	}

	if opts.ValidateAfterDiscovery {
		for i := range sources {
			if err := ValidateSource(&sources[i]); err != nil {
				logf("Validation failed for %s: %v", sources[i].Path, err)
			}
		}
		if !opts.IncludeInvalid {
			valid := sources[:0]
			for _, s := range sources {
				if s.Valid {
					valid = append(valid, s)
				}
			}
			sources = valid
		}
	}

	sortSources(sources)
	logf("Discovered %d sources", len(sources))
	return sources, nil
}

func discoverIn(dir string, logf func(string, ...any)) []DataSource {
	var sources []DataSource
	candidates := []struct {
		rel      string
		typ      SourceType
		priority int
	}{
		{ScriptDocumentPath, SourceTypeScript, PriorityScript},
		{JSONDocumentPath, SourceTypeJSON, PriorityJSON},
	}
	for _, c := range candidates {
		path := filepath.Join(dir, c.rel)
		src, err := statSource(path, c.typ, c.priority)
		if err != nil {
			continue
		}
		sources = append(sources, src)
		logf("Found %s document: %s (mod=%s)", c.typ, path, src.ModTime.Format(time.RFC3339))
	}
	return sources
}

func statSource(path string, typ SourceType, priority int) (DataSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	info, err := os.Stat(abs)
	if err != nil {
		return DataSource{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return DataSource{}, fmt.Errorf("%s is a directory", path)
	}
	return DataSource{
		Type:     typ,
		Path:     abs,
		Priority: priority,
		ModTime:  info.ModTime(),
		Size:     info.Size(),
	}, nil
}

// sortSources orders by mod time, newest first; priority breaks ties.
func sortSources(sources []DataSource) {
	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})
}
