package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/vanderheijden86/buildline/pkg/debug"
	"github.com/vanderheijden86/buildline/pkg/metrics"
	"github.com/vanderheijden86/buildline/pkg/model"
)

// Coupling describes how tightly one unit is tied into the build graph.
type Coupling struct {
	Name                 string
	DirectReferences     int // units this unit depends on
	DirectDependants     int // units that depend on it directly
	TransitiveDependants int // every unit that waits on it, at any depth
}

// CouplingReport is the result of Analyze.
type CouplingReport struct {
	Units  []Coupling // in entry order
	Cycles [][]string // each sorted by name; nil when acyclic

	// SlowestChain is the duration-weighted longest path over references,
	// from the dependant down to its deepest dependency. Empty when the graph
	// has cycles.
	SlowestChain        []string
	SlowestChainSeconds float64
}

// Acyclic reports whether no dependency cycle was found.
func (r CouplingReport) Acyclic() bool {
	return len(r.Cycles) == 0
}

// Lookup returns the coupling for a raw unit name.
func (r CouplingReport) Lookup(name string) (Coupling, bool) {
	for _, c := range r.Units {
		if c.Name == name {
			return c, true
		}
	}
	return Coupling{}, false
}

// MostCoupled returns up to n units ordered by transitive dependants, then
// name. n <= 0 returns all of them.
func (r CouplingReport) MostCoupled(n int) []Coupling {
	out := make([]Coupling, len(r.Units))
	copy(out, r.Units)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TransitiveDependants != out[j].TransitiveDependants {
			return out[i].TransitiveDependants > out[j].TransitiveDependants
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Edge is one resolved dependency: From depends on To.
type Edge struct {
	From string
	To   string
}

// Analyzer holds the dependency graph of one dataset.
//
// Edge direction follows the references: A -> B means A depends on B, so
// g.To(B) are the units that depend on B. rev carries the same edges flipped
// for walking dependants.
type Analyzer struct {
	g        *simple.DirectedGraph
	rev      *simple.DirectedGraph
	idToNode map[string]int64
	nodeToID map[int64]string
	entries  []model.CompilationEntry
}

// NewAnalyzer builds the graph from References and Dependants. Both lists
// contribute edges; dangling names are skipped.
func NewAnalyzer(entries []model.CompilationEntry) *Analyzer {
	g := simple.NewDirectedGraph()
	rev := simple.NewDirectedGraph()
	idToNode := make(map[string]int64, len(entries))
	nodeToID := make(map[int64]string, len(entries))

	for _, e := range entries {
		n := g.NewNode()
		g.AddNode(n)
		rev.AddNode(simple.Node(n.ID()))
		idToNode[e.Name] = n.ID()
		nodeToID[n.ID()] = e.Name
	}

	resolver := model.NewResolver(entries)
	link := func(from, to int64) {
		if from == to {
			return
		}
		g.SetEdge(g.NewEdge(g.Node(from), g.Node(to)))
		rev.SetEdge(rev.NewEdge(rev.Node(to), rev.Node(from)))
	}

	for _, e := range entries {
		u := idToNode[e.Name]
		for _, ref := range e.References {
			if j, ok := resolver.Resolve(ref); ok {
				link(u, idToNode[entries[j].Name])
			}
		}
		for _, dep := range e.Dependants {
			if j, ok := resolver.Resolve(dep); ok {
				link(idToNode[entries[j].Name], u)
			}
		}
	}

	return &Analyzer{
		g:        g,
		rev:      rev,
		idToNode: idToNode,
		nodeToID: nodeToID,
		entries:  entries,
	}
}

// Edges lists every resolved dependency sorted by (From, To).
func (a *Analyzer) Edges() []Edge {
	var edges []Edge
	it := a.g.Edges()
	for it.Next() {
		e := it.Edge()
		edges = append(edges, Edge{
			From: a.nodeToID[e.From().ID()],
			To:   a.nodeToID[e.To().ID()],
		})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// TransitiveDependants returns every unit that depends on name at any depth,
// sorted. Unknown names return nil.
func (a *Analyzer) TransitiveDependants(name string) []string {
	id, ok := a.idToNode[name]
	if !ok {
		return nil
	}
	var out []string
	a.walkDependants(id, func(n graph.Node) {
		out = append(out, a.nodeToID[n.ID()])
	})
	sort.Strings(out)
	return out
}

func (a *Analyzer) walkDependants(id int64, visit func(graph.Node)) {
	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) {
			if n.ID() != id {
				visit(n)
			}
		},
	}
	bf.Walk(a.rev, a.rev.Node(id), nil)
}

// Analyze computes coupling counts, cycles and the slowest chain.
func (a *Analyzer) Analyze() CouplingReport {
	defer metrics.Timer(metrics.GraphAnalysis)()

	report := CouplingReport{Units: make([]Coupling, 0, len(a.entries))}
	for _, e := range a.entries {
		id := a.idToNode[e.Name]
		transitive := 0
		a.walkDependants(id, func(graph.Node) { transitive++ })
		report.Units = append(report.Units, Coupling{
			Name:                 e.Name,
			DirectReferences:     a.g.From(id).Len(),
			DirectDependants:     a.g.To(id).Len(),
			TransitiveDependants: transitive,
		})
	}

	report.Cycles = a.cycles()
	if len(report.Cycles) == 0 {
		report.SlowestChain, report.SlowestChainSeconds = a.slowestChain()
	}

	debug.Log("analysis: %d units, %d edges, %d cycles", len(a.entries), a.g.Edges().Len(), len(report.Cycles))
	return report
}

// cycles returns the strongly connected components with more than one node.
func (a *Analyzer) cycles() [][]string {
	var out [][]string
	for _, scc := range topo.TarjanSCC(a.g) {
		if len(scc) < 2 {
			continue
		}
		names := make([]string, len(scc))
		for i, n := range scc {
			names[i] = a.nodeToID[n.ID()]
		}
		sort.Strings(names)
		out = append(out, names)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// slowestChain finds the duration-weighted longest path. topo.Sort puts a
// dependant before its dependencies, so walking it backwards visits every
// dependency first.
func (a *Analyzer) slowestChain() ([]string, float64) {
	sorted, err := topo.Sort(a.g)
	if err != nil || len(sorted) == 0 {
		return nil, 0
	}

	duration := make(map[int64]float64, len(a.entries))
	for _, e := range a.entries {
		duration[a.idToNode[e.Name]] = e.DurationSeconds
	}

	best := make(map[int64]float64, len(sorted))
	next := make(map[int64]int64, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		u := sorted[i].ID()
		bestDep, bestCost := int64(-1), 0.0
		deps := a.g.From(u)
		for deps.Next() {
			v := deps.Node().ID()
			if bestDep < 0 || best[v] > bestCost ||
				(best[v] == bestCost && a.nodeToID[v] < a.nodeToID[bestDep]) {
				bestDep, bestCost = v, best[v]
			}
		}
		best[u] = duration[u] + bestCost
		if bestDep >= 0 {
			next[u] = bestDep
		}
	}

	start := int64(-1)
	for _, n := range sorted {
		id := n.ID()
		if start < 0 || best[id] > best[start] ||
			(best[id] == best[start] && a.nodeToID[id] < a.nodeToID[start]) {
			start = id
		}
	}

	chain := []string{a.nodeToID[start]}
	for cur := start; ; {
		v, ok := next[cur]
		if !ok {
			break
		}
		chain = append(chain, a.nodeToID[v])
		cur = v
	}
	return chain, best[start]
}
