package design

import "math"

// endpointKey is an endpoint rounded to one decimal place, so endpoints
// within roughly 0.1 document units of each other coincide.
type endpointKey struct {
	x, y int64
}

func keyOf(p Point) endpointKey {
	return endpointKey{x: int64(math.Round(p.X * 10)), y: int64(math.Round(p.Y * 10))}
}

// disjointSet is a union-find over dense indices with path compression and
// union by size.
type disjointSet struct {
	parent []int
	size   []int
	sets   int
}

func newDisjointSet(n int) *disjointSet {
	ds := &disjointSet{parent: make([]int, n), size: make([]int, n), sets: n}
	for i := range ds.parent {
		ds.parent[i] = i
		ds.size[i] = 1
	}
	return ds
}

func (ds *disjointSet) find(i int) int {
	root := i
	for ds.parent[root] != root {
		root = ds.parent[root]
	}
	for ds.parent[i] != root {
		next := ds.parent[i]
		ds.parent[i] = root
		i = next
	}
	return root
}

func (ds *disjointSet) union(a, b int) {
	ra, rb := ds.find(a), ds.find(b)
	if ra == rb {
		return
	}
	if ds.size[ra] < ds.size[rb] {
		ra, rb = rb, ra
	}
	ds.parent[rb] = ra
	ds.size[ra] += ds.size[rb]
	ds.sets--
}

// CountConnectedGroups returns how many shapes a set of line segments forms,
// where lines sharing an endpoint belong to the same shape.
func CountConnectedGroups(lines []Line) int {
	if len(lines) == 0 {
		return 0
	}
	ds := newDisjointSet(len(lines))
	firstAt := make(map[endpointKey]int, len(lines)*2)
	for i, l := range lines {
		for _, p := range [2]Point{l.Start, l.End} {
			k := keyOf(p)
			if j, ok := firstAt[k]; ok {
				ds.union(i, j)
				continue
			}
			firstAt[k] = i
		}
	}
	return ds.sets
}
