package toposort

import "sort"

// tarjanState carries the working state of a single Tarjan run across
// recursive strongconnect calls.
type tarjanState struct {
	graph   *Graph
	index   int
	indices []int
	lowlink []int
	onStack []bool
	stack   []int
	sccs    [][]int
}

// StronglyConnectedComponents returns the graph's strongly connected
// components via Tarjan's algorithm, each as a slice of node names.
// Every SCC is returned, including single-node components whether or
// not the node has a self-edge. Neighbor exploration order is sorted by resolved name so
// that two equal graphs always yield components in the same order.
func (graph *Graph) StronglyConnectedComponents() [][]string {
	nodeCount := len(graph.intGraph.nodes)

	st := &tarjanState{
		graph:   graph,
		indices: make([]int, nodeCount),
		lowlink: make([]int, nodeCount),
		onStack: make([]bool, nodeCount),
	}

	for i := range st.indices {
		st.indices[i] = -1
	}

	// Visit in name order so the resulting component list is
	// deterministic regardless of internal id assignment order.
	order := make([]int, 0, nodeCount)

	for id := range nodeCount {
		if graph.symbols.Resolve(id) != "" {
			order = append(order, id)
		}
	}

	sort.Slice(order, func(i, j int) bool {
		return graph.symbols.Resolve(order[i]) < graph.symbols.Resolve(order[j])
	})

	for _, id := range order {
		if st.indices[id] == -1 {
			st.strongconnect(id)
		}
	}

	result := make([][]string, 0, len(st.sccs))

	for _, scc := range st.sccs {
		names := make([]string, len(scc))
		for i, id := range scc {
			names[i] = graph.symbols.Resolve(id)
		}

		result = append(result, names)
	}

	return result
}

func (st *tarjanState) strongconnect(v int) {
	st.indices[v] = st.index
	st.lowlink[v] = st.index
	st.index++

	st.stack = append(st.stack, v)
	st.onStack[v] = true

	neighbors := make([]int, len(st.graph.intGraph.nodes[v]))
	copy(neighbors, st.graph.intGraph.nodes[v])
	sort.Slice(neighbors, func(i, j int) bool {
		return st.graph.symbols.Resolve(neighbors[i]) < st.graph.symbols.Resolve(neighbors[j])
	})

	for _, w := range neighbors {
		switch {
		case st.indices[w] == -1:
			st.strongconnect(w)
			st.lowlink[v] = min(st.lowlink[v], st.lowlink[w])
		case st.onStack[w]:
			st.lowlink[v] = min(st.lowlink[v], st.indices[w])
		}
	}

	if st.lowlink[v] != st.indices[v] {
		return
	}

	var scc []int

	for {
		n := len(st.stack) - 1
		w := st.stack[n]
		st.stack = st.stack[:n]
		st.onStack[w] = false
		scc = append(scc, w)

		if w == v {
			break
		}
	}

	st.sccs = append(st.sccs, scc)
}
