package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
)

// LinkCycle is a set of tables that reach each other through record links.
//
// Cycles are informational, not errors: a user linking to its org and an
// org linking back to its owner is ordinary. They matter to FETCH, which
// only expands one level, and to generated code that embeds linked rows.
type LinkCycle struct {
	Path    []string `json:"path"`    // Cycle path: ["user", "org", "user"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "info"
}

// AnalyzeLinks finds record-link cycles between tables.
//
// The algorithm:
//  1. Build a table → linked tables graph from field kinds and relation
//     endpoints (an edge table links to its in and out tables)
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a cycle
//
// A schema without cycles returns an empty list.
func AnalyzeLinks(defs []ast.Definition) []LinkCycle {
	graph := buildLinkGraph(defs)
	if len(graph) == 0 {
		return []LinkCycle{}
	}

	cycles := []LinkCycle{}
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			cycles = append(cycles, sccToCycle(scc, graph))
		}
	}
	sort.Slice(cycles, func(i, j int) bool {
		return strings.Join(cycles[i].Path, ",") < strings.Join(cycles[j].Path, ",")
	})
	return cycles
}

// linkGraph maps table → tables it links to, sorted and deduplicated.
type linkGraph map[string][]string

func buildLinkGraph(defs []ast.Definition) linkGraph {
	edges := make(map[string]map[string]bool)
	link := func(from string, to ...string) {
		if edges[from] == nil {
			edges[from] = make(map[string]bool)
		}
		for _, t := range to {
			edges[from][t] = true
		}
	}

	for _, def := range defs {
		switch d := def.(type) {
		case *ast.DefineTable:
			link(d.Name)
			if d.Relation != nil {
				link(d.Name, d.Relation.In...)
				link(d.Name, d.Relation.Out...)
			}
		case *ast.DefineField:
			link(d.Table, linkedTables(d.Type)...)
		}
	}

	graph := make(linkGraph, len(edges))
	for from, tos := range edges {
		list := make([]string, 0, len(tos))
		for t := range tos {
			list = append(list, t)
		}
		sort.Strings(list)
		graph[from] = list
	}
	return graph
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph linkGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so the output is stable.
func tarjanSCC(graph linkGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// Root node: pop the stack into an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

func sccToCycle(scc []string, graph linkGraph) LinkCycle {
	if len(scc) == 1 {
		t := scc[0]
		return LinkCycle{
			Path:    []string{t, t},
			Message: fmt.Sprintf("table %s links to itself", t),
			Level:   "info",
		}
	}

	path := cyclePath(scc, graph)
	return LinkCycle{
		Path:    path,
		Message: fmt.Sprintf("record link cycle: %s", strings.Join(path, " -> ")),
		Level:   "info",
	}
}

// cyclePath walks from the first SCC member along edges inside the SCC
// until it returns to the start.
func cyclePath(scc []string, graph linkGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
