// Package reactordebug renders a reactor.Scope's live dependency graph as a
// horizontal tree for diagnostics, adapted from the teacher's
// extensions/graph_debug.go (which does the same for a DI executor graph
// using github.com/m1gwings/treedrawer) to reactor's node/observer graph.
package reactordebug

import (
	"fmt"
	"sort"
	"strings"

	"github.com/m1gwings/treedrawer/tree"

	"github.com/flowmesh/reactor"
)

// RenderGraph draws scope's live dependency graph as a horizontal tree
// rooted at whichever nodes have no upstream observers within the graph,
// marking failedID with a ❌ if it is present. Falls back to an empty
// string if the graph has no discoverable root (e.g. every node is part of
// a still-uncommitted cycle check).
func RenderGraph(scope *reactor.Scope, failedID reactor.ID) string {
	graph := scope.ExportDependencyGraph()
	if len(graph) == 0 {
		return "(empty - no reactive dependencies tracked)"
	}

	parents := make(map[reactor.ID][]reactor.ID)
	allNodes := make(map[reactor.ID]bool)
	for parent, children := range graph {
		allNodes[parent] = true
		for _, child := range children {
			allNodes[child] = true
			parents[child] = append(parents[child], parent)
		}
	}

	var roots []reactor.ID
	for n := range allNodes {
		if len(parents[n]) == 0 {
			roots = append(roots, n)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return scope.NodeName(roots[i]) < scope.NodeName(roots[j]) })

	if len(roots) == 0 {
		return ""
	}

	var root *tree.Tree
	if len(roots) == 1 {
		root = buildTree(scope, roots[0], graph, failedID, map[reactor.ID]bool{})
	} else {
		root = tree.NewTree(tree.NodeString("Dependencies"))
		for _, r := range roots {
			if child := buildTree(scope, r, graph, failedID, map[reactor.ID]bool{}); child != nil {
				addTreeAsChild(root, child)
			}
		}
	}
	if root == nil {
		return ""
	}
	return root.String()
}

func buildTree(scope *reactor.Scope, id reactor.ID, graph map[reactor.ID][]reactor.ID, failedID reactor.ID, visited map[reactor.ID]bool) *tree.Tree {
	if visited[id] {
		return nil
	}
	visited[id] = true

	label := scope.NodeName(id)
	if id == failedID {
		label += " ❌"
	}

	node := tree.NewTree(tree.NodeString(label))

	children := append([]reactor.ID(nil), graph[id]...)
	sort.Slice(children, func(i, j int) bool { return scope.NodeName(children[i]) < scope.NodeName(children[j]) })
	for _, c := range children {
		if childTree := buildTree(scope, c, graph, failedID, visited); childTree != nil {
			addTreeAsChild(node, childTree)
		}
	}
	return node
}

func addTreeAsChild(parent, child *tree.Tree) {
	newChild := parent.AddChild(child.Val())
	for _, grandchild := range child.Children() {
		addTreeAsChild(newChild, grandchild)
	}
}

// FormatDetail renders a detailed, sorted textual listing of scope's
// dependency graph alongside the failing node and its error, for inclusion
// in a diagnostic log line next to RenderGraph's tree.
func FormatDetail(scope *reactor.Scope, failedID reactor.ID, failedErr error) string {
	var sb strings.Builder
	graph := scope.ExportDependencyGraph()

	type entry struct {
		id       reactor.ID
		name     string
		children []reactor.ID
	}
	entries := make([]entry, 0, len(graph))
	for id, children := range graph {
		entries = append(entries, entry{id: id, name: scope.NodeName(id), children: children})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	for _, e := range entries {
		if len(e.children) == 0 {
			fmt.Fprintf(&sb, "  %s (no dependents)\n", e.name)
			continue
		}
		fmt.Fprintf(&sb, "  %s\n", e.name)
		children := append([]reactor.ID(nil), e.children...)
		sort.Slice(children, func(i, j int) bool { return scope.NodeName(children[i]) < scope.NodeName(children[j]) })
		for i, c := range children {
			mark := scope.NodeName(c)
			if c == failedID {
				mark += " ❌ FAILED"
			}
			branch := "├─>"
			if i == len(children)-1 {
				branch = "└─>"
			}
			fmt.Fprintf(&sb, "    %s %s\n", branch, mark)
		}
	}

	if failedErr != nil {
		fmt.Fprintf(&sb, "\nError Details:\n  Node: %s\n  Error: %v\n", scope.NodeName(failedID), failedErr)
	}
	return sb.String()
}
