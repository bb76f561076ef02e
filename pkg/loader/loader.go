// Package loader reads compilation timeline documents into a model.Dataset.
//
// Two producer variants are accepted: documents that carry a precomputed
// TotalDurationInSeconds and documents that only carry per-entry
// StartTimeInTicks, from which the total is derived. The document may also be
// wrapped in the JavaScript assignment written by the HTML exporter
// ("const compilationData = {...};").
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/buildline/pkg/analysis"
	"github.com/vanderheijden86/buildline/pkg/debug"
	"github.com/vanderheijden86/buildline/pkg/metrics"
	"github.com/vanderheijden86/buildline/pkg/model"
)

// StdinPath makes Load read the document from standard input.
const StdinPath = "-"

// DefaultMaxDocumentSize caps how much is read from one document (64MB).
const DefaultMaxDocumentSize = 64 << 20

// ErrNoDocument is returned when the input path does not exist.
var ErrNoDocument = errors.New("no compilation timeline document")

// ErrMalformedDocument wraps every structural problem found while decoding.
var ErrMalformedDocument = errors.New("malformed compilation timeline document")

// ParseOptions configures Parse.
type ParseOptions struct {
	// WarningHandler receives non-fatal problems (dropped empty reference
	// names, self references). Nil prints to stderr.
	WarningHandler func(string)

	// MaxSize limits the number of bytes read. 0 uses DefaultMaxDocumentSize.
	MaxSize int64
}

type rawEntry struct {
	Name              *string  `json:"Name"`
	DurationInSeconds *float64 `json:"DurationInSeconds"`
	// Duration is the field name used by the older JSON exporter.
	Duration         *float64 `json:"Duration"`
	StartTimeInTicks *int64   `json:"StartTimeInTicks"`
	References       []string `json:"References"`
	Dependants       []string `json:"Dependants"`
}

type rawDocument struct {
	Entries                *[]rawEntry `json:"Entries"`
	TotalDurationInSeconds *float64    `json:"TotalDurationInSeconds"`
}

// Load reads a document from path, or from stdin when path is "-".
func Load(path string) (*model.Dataset, error) {
	return LoadWithOptions(path, ParseOptions{})
}

// LoadWithOptions is Load with custom options.
func LoadWithOptions(path string, opts ParseOptions) (*model.Dataset, error) {
	if path == StdinPath {
		return ParseWithOptions(os.Stdin, opts)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w at %s", ErrNoDocument, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open timeline document: %w", err)
	}
	defer file.Close()

	ds, err := ParseWithOptions(file, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes a document from r.
func Parse(r io.Reader) (*model.Dataset, error) {
	return ParseWithOptions(r, ParseOptions{})
}

// ParseWithOptions decodes a document from r with custom options.
func ParseWithOptions(r io.Reader, opts ParseOptions) (*model.Dataset, error) {
	limit := opts.MaxSize
	if limit <= 0 {
		limit = DefaultMaxDocumentSize
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("error reading timeline document: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", ErrMalformedDocument, limit)
	}
	return ParseBytes(data, opts)
}

// ParseBytes decodes an in-memory document.
func ParseBytes(data []byte, opts ParseOptions) (*model.Dataset, error) {
	defer metrics.Timer(metrics.DocumentParse)()

	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
		}
	}

	payload := unwrapScript(stripBOM(data))
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrMalformedDocument)
	}

	var doc rawDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if doc.Entries == nil {
		return nil, fmt.Errorf("%w: missing Entries", ErrMalformedDocument)
	}

	entries := make([]model.CompilationEntry, 0, len(*doc.Entries))
	for i, raw := range *doc.Entries {
		entry, err := convertEntry(i, raw, warn)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	ds := &model.Dataset{Entries: entries}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	total, err := resolveTotal(doc.TotalDurationInSeconds, entries)
	if err != nil {
		return nil, err
	}
	ds.Total = total

	debug.Log("loader: parsed %d entries, total %.2fs (%s)", len(entries), ds.Total.Seconds, ds.Total.Kind)
	return ds, nil
}

func convertEntry(i int, raw rawEntry, warn func(string)) (model.CompilationEntry, error) {
	if raw.Name == nil {
		return model.CompilationEntry{}, fmt.Errorf("%w: entry %d: missing Name", ErrMalformedDocument, i)
	}
	duration := raw.DurationInSeconds
	if duration == nil {
		duration = raw.Duration
	}
	if duration == nil {
		return model.CompilationEntry{}, fmt.Errorf("%w: entry %d (%s): missing DurationInSeconds", ErrMalformedDocument, i, *raw.Name)
	}

	entry := model.CompilationEntry{
		Name:            *raw.Name,
		DurationSeconds: *duration,
		References:      cleanNames(*raw.Name, "References", raw.References, warn),
		Dependants:      cleanNames(*raw.Name, "Dependants", raw.Dependants, warn),
	}
	if raw.StartTimeInTicks != nil {
		entry.StartTimeTicks = *raw.StartTimeInTicks
		entry.HasStartTime = true
	}
	return entry, nil
}

// cleanNames drops empty and self-referencing names.
func cleanNames(owner, field string, names []string, warn func(string)) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		switch {
		case strings.TrimSpace(n) == "":
			warn(fmt.Sprintf("%s: dropping empty name in %s", owner, field))
		case n == owner:
			warn(fmt.Sprintf("%s: dropping self reference in %s", owner, field))
		default:
			out = append(out, n)
		}
	}
	return out
}

// resolveTotal picks the producer variant once at load time. Deriving a
// window needs a start time on every entry once any entry has one.
func resolveTotal(supplied *float64, entries []model.CompilationEntry) (model.TotalDuration, error) {
	if supplied != nil {
		return model.TotalDuration{Kind: model.TotalSupplied, Seconds: *supplied}, nil
	}
	kind := model.TotalDurationsOnly
	for _, e := range entries {
		if e.HasStartTime && e.StartTimeTicks != 0 {
			kind = model.TotalWindow
			break
		}
	}
	if kind == model.TotalWindow {
		for i, e := range entries {
			if !e.HasStartTime {
				return model.TotalDuration{}, fmt.Errorf("%w: entry %d (%s): missing StartTimeInTicks needed to derive the total duration",
					ErrMalformedDocument, i, e.Name)
			}
		}
	}
	return model.TotalDuration{Kind: kind, Seconds: analysis.TotalWindowSeconds(entries)}, nil
}

// stripBOM removes a leading UTF-8 byte order mark.
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}

// unwrapScript strips a "const compilationData = ...;" style assignment so the
// JSON object inside can be decoded. Plain JSON is returned unchanged.
func unwrapScript(b []byte) []byte {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed
	}
	eq := bytes.IndexByte(trimmed, '=')
	if eq < 0 {
		return trimmed
	}
	body := bytes.TrimSpace(trimmed[eq+1:])
	body = bytes.TrimSuffix(body, []byte(";"))
	return bytes.TrimSpace(body)
}
