package datasource_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/buildline/internal/datasource"
	"github.com/vanderheijden86/buildline/pkg/loader"
	"github.com/vanderheijden86/buildline/pkg/model"
	"github.com/vanderheijden86/buildline/pkg/testutil"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverSources_FreshestFirst(t *testing.T) {
	t.Setenv(datasource.EnvInput, "")
	dir := testutil.TempLogsDir(t)
	doc := testutil.ToDocument(testutil.ABC(), nil)

	jsonPath := testutil.WriteDocument(t, filepath.Join(dir, datasource.JSONDocumentPath), doc)
	jsPath := testutil.WriteDocument(t, filepath.Join(dir, datasource.ScriptDocumentPath), testutil.ToScript(doc))

	base := time.Now().Add(-time.Hour)
	touch(t, jsPath, base)
	touch(t, jsonPath, base.Add(time.Minute))

	sources, err := datasource.DiscoverSources(datasource.DiscoveryOptions{
		ProjectDir:             dir,
		ValidateAfterDiscovery: true,
	})
	if err != nil {
		t.Fatalf("DiscoverSources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("sources = %d, want 2: %v", len(sources), sources)
	}
	if sources[0].Type != datasource.SourceTypeJSON {
		t.Errorf("freshest source = %s, want json", sources[0].Type)
	}
	if sources[0].EntryCount != 3 {
		t.Errorf("entry count = %d, want 3", sources[0].EntryCount)
	}
}

func TestDiscoverSources_PriorityBreaksTies(t *testing.T) {
	t.Setenv(datasource.EnvInput, "")
	dir := testutil.TempLogsDir(t)
	doc := testutil.ToDocument(testutil.ABC(), nil)
	jsonPath := testutil.WriteDocument(t, filepath.Join(dir, datasource.JSONDocumentPath), doc)
	jsPath := testutil.WriteDocument(t, filepath.Join(dir, datasource.ScriptDocumentPath), testutil.ToScript(doc))

	same := time.Now().Add(-time.Hour).Truncate(time.Second)
	touch(t, jsonPath, same)
	touch(t, jsPath, same)

	sources, err := datasource.DiscoverSources(datasource.DiscoveryOptions{ProjectDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) < 2 || sources[0].Type != datasource.SourceTypeScript {
		t.Errorf("expected script export first on equal mod time, got %v", sources)
	}
}

func TestDiscoverSources_SkipsInvalid(t *testing.T) {
	t.Setenv(datasource.EnvInput, "")
	dir := testutil.TempLogsDir(t)
	testutil.WriteDocument(t, filepath.Join(dir, datasource.JSONDocumentPath), "{not json")

	sources, err := datasource.DiscoverSources(datasource.DiscoveryOptions{
		ProjectDir:             dir,
		ValidateAfterDiscovery: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 0 {
		t.Errorf("invalid source kept: %v", sources)
	}

	_, err = datasource.SelectBestSource(sources)
	if !errors.Is(err, datasource.ErrNoValidSource) {
		t.Errorf("expected ErrNoValidSource, got %v", err)
	}
}

func TestDiscoverSources_ParentLogs(t *testing.T) {
	t.Setenv(datasource.EnvInput, "")
	dir := testutil.TempLogsDir(t)
	testutil.WriteDocument(t, filepath.Join(dir, datasource.JSONDocumentPath), testutil.ToDocument(testutil.ABC(), nil))

	sub := filepath.Join(dir, "Assets")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	sources, err := datasource.DiscoverSources(datasource.DiscoveryOptions{ProjectDir: sub})
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 {
		t.Errorf("expected the parent's document, got %v", sources)
	}
}

func TestDiscoverSources_Env(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteEntries(t, filepath.Join(dir, "custom.json"), testutil.ABC(), 5)
	t.Setenv(datasource.EnvInput, path)

	sources, err := datasource.DiscoverSources(datasource.DiscoveryOptions{ProjectDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 || sources[0].Type != datasource.SourceTypeEnv {
		t.Errorf("expected env source, got %v", sources)
	}
}

func TestLoad_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteEntries(t, filepath.Join(dir, "timeline.json"), testutil.ABC(), 12)

	ds, src, err := datasource.Load(datasource.DiscoveryOptions{Path: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Len() != 3 || src.Type != datasource.SourceTypeExplicit {
		t.Errorf("unexpected result: %d entries from %v", ds.Len(), src)
	}
}

func TestLoad_ExplicitInvalidReportsParseError(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteDocument(t, filepath.Join(dir, "bad.json"), `{"Entries": [{"Name": "A"}]}`)

	_, _, err := datasource.Load(datasource.DiscoveryOptions{Path: path})
	if !errors.Is(err, loader.ErrMalformedDocument) {
		t.Errorf("expected malformed document error, got %v", err)
	}
}

func TestLoad_NewestInvalidIsNotReplacedByOlder(t *testing.T) {
	t.Setenv(datasource.EnvInput, "")
	dir := testutil.TempLogsDir(t)
	old := []model.CompilationEntry{{Name: "Old.dll", DurationSeconds: 1}}
	jsPath := testutil.WriteDocument(t, filepath.Join(dir, datasource.ScriptDocumentPath),
		testutil.ToScript(testutil.ToDocument(old, nil)))
	jsonPath := testutil.WriteDocument(t, filepath.Join(dir, datasource.JSONDocumentPath),
		`{"Entries": [{"Name": "New.dll", "DurationInSeconds": "oops"}]}`)

	base := time.Now().Add(-time.Hour)
	touch(t, jsPath, base)
	touch(t, jsonPath, base.Add(time.Hour))

	ds, src, err := datasource.Load(datasource.DiscoveryOptions{ProjectDir: dir})
	if !errors.Is(err, loader.ErrMalformedDocument) {
		t.Fatalf("expected malformed document error, got %v (loaded %v)", err, ds)
	}
	if !strings.Contains(err.Error(), jsonPath) {
		t.Errorf("error should name %s: %v", jsonPath, err)
	}
	if src.Path != jsonPath {
		t.Errorf("source = %s, want %s", src.Path, jsonPath)
	}
}

func TestLoad_OlderInvalidIsIgnored(t *testing.T) {
	t.Setenv(datasource.EnvInput, "")
	dir := testutil.TempLogsDir(t)
	jsPath := testutil.WriteDocument(t, filepath.Join(dir, datasource.ScriptDocumentPath), "not a document")
	jsonPath := testutil.WriteEntries(t, filepath.Join(dir, datasource.JSONDocumentPath), testutil.ABC(), 12)

	base := time.Now().Add(-time.Hour)
	touch(t, jsPath, base)
	touch(t, jsonPath, base.Add(time.Minute))

	ds, src, err := datasource.Load(datasource.DiscoveryOptions{ProjectDir: dir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Len() != 3 || src.Path != jsonPath {
		t.Errorf("loaded %d entries from %s", ds.Len(), src.Path)
	}
}

func TestLoad_ExplicitMissing(t *testing.T) {
	_, _, err := datasource.Load(datasource.DiscoveryOptions{Path: filepath.Join(t.TempDir(), "missing.json")})
	if err == nil {
		t.Error("expected error for missing explicit path")
	}
}

func TestDataSourceString(t *testing.T) {
	s := datasource.DataSource{Type: datasource.SourceTypeJSON, Path: "/x.json", Priority: 50, ValidationError: "boom"}
	if got := s.String(); got == "" || !strings.Contains(got, "invalid: boom") {
		t.Errorf("String() = %q", got)
	}
}
