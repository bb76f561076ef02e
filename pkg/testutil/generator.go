// Package testutil provides compilation timeline fixtures for tests.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/buildline/pkg/model"
)

// GraphFixture is an abstract dependency graph.
type GraphFixture struct {
	Description string
	Nodes       []string
	Edges       [][2]int // [from_idx, to_idx]: from references to
	Properties  Properties
}

// Properties holds metadata about the fixture.
type Properties struct {
	HasCycles     bool
	ExpectedDepth int
}

// GeneratorConfig controls entry generation.
type GeneratorConfig struct {
	Seed        int64   // Random seed; 0 falls back to 42
	Extension   string  // Appended to every unit name (default ".dll")
	MinDuration float64 // Seconds
	MaxDuration float64 // Seconds
	// StartTimes spaces units out with StartTimeInTicks. Without it the
	// generated entries carry no start times.
	StartTimes bool
	// ShortReferences lists references and dependants without the extension,
	// the way some producers do.
	ShortReferences bool
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:        42,
		Extension:   ".dll",
		MinDuration: 0.1,
		MaxDuration: 12,
		StartTimes:  true,
	}
}

// Generator creates fixtures with various topologies.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.MaxDuration <= cfg.MinDuration {
		cfg.MaxDuration = cfg.MinDuration + 1
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// ============================================================================
// Graph Topology Generators
// ============================================================================

// Chain creates n0 <- n1 <- ... <- n{size-1}: every unit references the
// previous one.
func (g *Generator) Chain(size int) GraphFixture {
	nodes := make([]string, size)
	edges := make([][2]int, 0, size)
	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("Unit%d", i)
		if i > 0 {
			edges = append(edges, [2]int{i, i - 1})
		}
	}
	return GraphFixture{
		Description: fmt.Sprintf("Linear chain of %d units", size),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{ExpectedDepth: max(size-1, 0)},
	}
}

// Star creates a Core unit referenced by every spoke.
func (g *Generator) Star(spokes int) GraphFixture {
	nodes := make([]string, spokes+1)
	edges := make([][2]int, spokes)
	nodes[0] = "Core"
	for i := 1; i <= spokes; i++ {
		nodes[i] = fmt.Sprintf("Feature%d", i)
		edges[i-1] = [2]int{i, 0}
	}
	return GraphFixture{
		Description: fmt.Sprintf("Core with %d dependants", spokes),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{ExpectedDepth: 1},
	}
}

// Diamond creates App -> Mid1..MidN -> Base.
func (g *Generator) Diamond(width int) GraphFixture {
	if width < 1 {
		width = 1
	}
	size := width + 2
	nodes := make([]string, size)
	edges := make([][2]int, 0, width*2)
	nodes[0] = "App"
	nodes[size-1] = "Base"
	for i := 1; i <= width; i++ {
		nodes[i] = fmt.Sprintf("Mid%d", i)
		edges = append(edges, [2]int{0, i}, [2]int{i, size - 1})
	}
	return GraphFixture{
		Description: fmt.Sprintf("Diamond with %d middle units", width),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{ExpectedDepth: 2},
	}
}

// Cycle creates n0 -> n1 -> ... -> n{size-1} -> n0.
func (g *Generator) Cycle(size int) GraphFixture {
	nodes := make([]string, size)
	edges := make([][2]int, size)
	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("Loop%d", i)
		edges[i] = [2]int{i, (i + 1) % size}
	}
	return GraphFixture{
		Description: fmt.Sprintf("Cycle of %d units", size),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{HasCycles: size > 1},
	}
}

// RandomDAG creates a random acyclic graph. density is the probability of
// each forward edge.
func (g *Generator) RandomDAG(size int, density float64) GraphFixture {
	density = min(max(density, 0), 1)
	nodes := make([]string, size)
	var edges [][2]int
	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("Rnd%d", i)
	}
	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			if g.rng.Float64() < density {
				edges = append(edges, [2]int{j, i})
			}
		}
	}
	return GraphFixture{
		Description: fmt.Sprintf("Random DAG with %d units, density=%.2f (%d edges)", size, density, len(edges)),
		Nodes:       nodes,
		Edges:       edges,
	}
}

// ============================================================================
// Entry Generators
// ============================================================================

// ToEntries converts a fixture to entries. Every edge appears on both sides:
// in the referencing unit's References and the referenced unit's Dependants.
func (g *Generator) ToEntries(gf GraphFixture) []model.CompilationEntry {
	entries := make([]model.CompilationEntry, len(gf.Nodes))
	var clock int64
	for i, node := range gf.Nodes {
		d := g.cfg.MinDuration + g.rng.Float64()*(g.cfg.MaxDuration-g.cfg.MinDuration)
		d = float64(int64(d*100)) / 100
		entries[i] = model.CompilationEntry{
			Name:            node + g.cfg.Extension,
			DurationSeconds: d,
		}
		if g.cfg.StartTimes {
			entries[i].StartTimeTicks = clock
			entries[i].HasStartTime = true
			clock += int64(g.rng.Intn(3_000)) * 10_000 // up to 0.3s apart
		}
	}

	ref := func(i int) string {
		if g.cfg.ShortReferences {
			return gf.Nodes[i]
		}
		return gf.Nodes[i] + g.cfg.Extension
	}
	for _, e := range gf.Edges {
		from, to := e[0], e[1]
		if from == to {
			continue
		}
		entries[from].References = append(entries[from].References, ref(to))
		entries[to].Dependants = append(entries[to].Dependants, ref(from))
	}
	return entries
}

// ToDataset wraps entries with a supplied total.
func ToDataset(entries []model.CompilationEntry, total float64) *model.Dataset {
	return &model.Dataset{
		Entries: entries,
		Total:   model.TotalDuration{Kind: model.TotalSupplied, Seconds: total},
	}
}

type documentEntry struct {
	Name              string   `json:"Name"`
	DurationInSeconds float64  `json:"DurationInSeconds"`
	StartTimeInTicks  *int64   `json:"StartTimeInTicks,omitempty"`
	References        []string `json:"References"`
	Dependants        []string `json:"Dependants"`
}

type document struct {
	TotalDurationInSeconds *float64        `json:"TotalDurationInSeconds,omitempty"`
	Entries                []documentEntry `json:"Entries"`
}

// ToDocument renders entries in the producer's JSON format. A nil total
// leaves TotalDurationInSeconds out.
func ToDocument(entries []model.CompilationEntry, total *float64) string {
	doc := document{TotalDurationInSeconds: total, Entries: make([]documentEntry, len(entries))}
	for i, e := range entries {
		de := documentEntry{
			Name:              e.Name,
			DurationInSeconds: e.DurationSeconds,
			References:        nonNil(e.References),
			Dependants:        nonNil(e.Dependants),
		}
		if e.HasStartTime {
			ticks := e.StartTimeTicks
			de.StartTimeInTicks = &ticks
		}
		doc.Entries[i] = de
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// ToScript wraps a document the way the HTML producer does.
func ToScript(doc string) string {
	var sb strings.Builder
	sb.WriteString("const compilationData = ")
	sb.WriteString(doc)
	sb.WriteString(";\n")
	return sb.String()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ============================================================================
// Quick helpers
// ============================================================================

// QuickChain returns a chain of entries with default config.
func QuickChain(size int) []model.CompilationEntry {
	g := NewDefault()
	return g.ToEntries(g.Chain(size))
}

// QuickStar returns a star of entries with default config.
func QuickStar(spokes int) []model.CompilationEntry {
	g := NewDefault()
	return g.ToEntries(g.Star(spokes))
}

// QuickDiamond returns a diamond of entries with default config.
func QuickDiamond(width int) []model.CompilationEntry {
	g := NewDefault()
	return g.ToEntries(g.Diamond(width))
}

// QuickCycle returns a cycle of entries with default config.
func QuickCycle(size int) []model.CompilationEntry {
	g := NewDefault()
	return g.ToEntries(g.Cycle(size))
}

// QuickRandom returns a random DAG of entries with default config.
func QuickRandom(size int, density float64) []model.CompilationEntry {
	g := NewDefault()
	return g.ToEntries(g.RandomDAG(size, density))
}

// ABC is the three-unit chain A <- B <- C with durations 1, 2 and 9.
func ABC() []model.CompilationEntry {
	return []model.CompilationEntry{
		{Name: "A", DurationSeconds: 1, Dependants: []string{"B"}},
		{Name: "B", DurationSeconds: 2, References: []string{"A"}, Dependants: []string{"C"}},
		{Name: "C", DurationSeconds: 9, References: []string{"B"}},
	}
}
