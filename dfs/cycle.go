// Package dfs implements cycle enumeration for directed graphs.
// DetectCycles enumerates simple cycles using depth-first search with three-color
// marking and back-edge detection, handles self-loops, and produces canonical
// minimal rotations of each cycle via Booth's algorithm in O(L) time.
// The final cycle list is sorted for deterministic output.
//
// Complexity:
//
//   - Time:   O(V + E + C·L)   (V=#vertices, E=#edges, C=#cycles, L=avg cycle length)
//   - Memory: O(V + L_max)     (recursion stack + state map + cycle storage)
package dfs

import (
	"sort"

	"github.com/pkg/errors"
)

// DetectCycles inspects g for cycles reachable through back edges.
// Returns (true, cycles, nil) if any cycles are found;
// if no cycles, returns (false, nil, nil).
// If a successor-fetch error occurs, returns (false, nil, error).
func DetectCycles(g Digraph) (bool, [][]string, error) {
	// 1) Nil graph is treated as cycle-free
	if g == nil {
		return false, nil, nil
	}
	// 2) Prepare visitation state
	verts := g.Vertices()
	state := make(map[string]int, len(verts))     // tracks visitation state per vertex
	path := make([]string, 0, len(verts))         // current DFS path (stack) for cycle reconstruction
	seen := make(map[string]struct{}, len(verts)) // deduplication set for cycle signatures
	var cycles [][]string

	// 3) Launch DFS from each unvisited vertex
	for _, v := range verts {
		if state[v] == White {
			if err := cycleVisit(g, v, state, &path, seen, &cycles); err != nil {
				return false, nil, errors.Wrap(err, "dfs: DetectCycles")
			}
		}
	}
	// 4) Deterministic order by signature
	sort.Slice(cycles, func(i, j int) bool {
		return JoinSig(cycles[i]) < JoinSig(cycles[j])
	})
	if len(cycles) == 0 {
		return false, nil, nil
	}

	return true, cycles, nil
}

// cycleVisit performs recursive DFS from id and records every Gray→Gray back edge
// as a closed cycle.
func cycleVisit(
	g Digraph,
	id string,
	state map[string]int,
	path *[]string,
	seen map[string]struct{},
	cycles *[][]string,
) error {
	state[id] = Gray
	*path = append(*path, id)

	succ, err := g.Successors(id)
	if err != nil {
		return errors.Wrapf(ErrNeighborFetch, "%q: %v", id, err)
	}
	for _, nb := range succ {
		switch state[nb] {
		case White:
			if err = cycleVisit(g, nb, state, path, seen, cycles); err != nil {
				return err
			}
		case Gray:
			recordCycle(nb, *path, seen, cycles)
		}
	}

	*path = (*path)[:len(*path)-1]
	state[id] = Black

	return nil
}

// recordCycle extracts and deduplicates the cycle that ends at start.
// path is the current DFS path stack, containing [ ... start ... current ].
func recordCycle(
	start string,
	path []string,
	seen map[string]struct{},
	cycles *[][]string,
) {
	idx := IndexOf(path, start)
	seq := append([]string(nil), path[idx:]...)
	seq = append(seq, start) // close cycle

	sig, canon := canonical(seq)
	if _, exists := seen[sig]; !exists {
		seen[sig] = struct{}{}
		*cycles = append(*cycles, canon)
	}
}

// canonical computes the lexicographically minimal rotation of a closed cycle.
// Direction is preserved: in a directed graph the reversed walk is a different cycle.
func canonical(cycle []string) (string, []string) {
	n := len(cycle) - 1
	rot := MinimalRotation(cycle[:n])
	closed := append(append([]string(nil), rot...), rot[0])

	return JoinSig(closed), closed
}
