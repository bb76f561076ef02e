package datasource

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/buildline/pkg/loader"
	"github.com/vanderheijden86/buildline/pkg/model"
)

// ErrNoValidSource is returned when discovery finds nothing loadable.
var ErrNoValidSource = errors.New("no valid compilation timeline document found")

// ValidateSource parses the document and records the outcome on source.
func ValidateSource(source *DataSource) error {
	ds, err := loader.LoadWithOptions(source.Path, loader.ParseOptions{WarningHandler: func(string) {}})
	if err != nil {
		source.Valid = false
		source.ValidationError = err.Error()
		return err
	}
	source.Valid = true
	source.ValidationError = ""
	source.EntryCount = ds.Len()
	return nil
}

// SelectBestSource returns the first valid source. sources must already be
// ordered by DiscoverSources.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	for _, s := range sources {
		if s.Valid {
			return s, nil
		}
	}
	return DataSource{}, ErrNoValidSource
}

// Load discovers, validates, selects and loads the best document.
// A stdin path ("-") bypasses discovery. When the freshest document does not
// parse, Load reports its error rather than falling back to an older one.
func Load(opts DiscoveryOptions) (*model.Dataset, DataSource, error) {
	if opts.Path == loader.StdinPath {
		ds, err := loader.Load(loader.StdinPath)
		return ds, DataSource{Type: SourceTypeExplicit, Path: loader.StdinPath, Priority: PriorityExplicit, Valid: err == nil}, err
	}

	opts.ValidateAfterDiscovery = true
	opts.IncludeInvalid = true
	sources, err := DiscoverSources(opts)
	if err != nil {
		return nil, DataSource{}, err
	}

	if len(sources) > 0 && !sources[0].Valid {
		newest := sources[0]
		if _, err := loader.Load(newest.Path); err != nil {
			if opts.Path != "" {
				return nil, newest, err
			}
			return nil, newest, fmt.Errorf("newest %s document %s is invalid: %w", newest.Type, newest.Path, err)
		}
	}

	best, err := SelectBestSource(sources)
	if err != nil {
		return nil, DataSource{}, err
	}
	ds, err := LoadFromSource(best)
	if err != nil {
		return nil, best, err
	}
	return ds, best, nil
}

// LoadFromSource loads the dataset from one source.
func LoadFromSource(source DataSource) (*model.Dataset, error) {
	ds, err := loader.Load(source.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s source %s: %w", source.Type, source.Path, err)
	}
	return ds, nil
}
