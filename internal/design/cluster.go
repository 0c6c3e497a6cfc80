package design

import "math"

const (
	// DefaultClusterThreshold is the center distance in mm under which two
	// entities are assumed to belong to the same job.
	DefaultClusterThreshold = 50.0

	// mergeFactor scales the threshold for the cluster merge phase.
	mergeFactor = 1.5
)

// Cluster is a non-empty group of entities treated as one physical job.
type Cluster struct {
	Members []EntityBox
}

// Bounds is the union of all member boxes.
func (c Cluster) Bounds() BoundingBox {
	b, _ := combinedBounds(c.Members)
	return b
}

// ClusterEntities groups boxes into jobs. A greedy pass places each box in
// the first cluster holding a member whose center lies closer than
// threshold; clusters whose combined boxes are then within
// threshold*1.5 of each other are merged until none are.
func ClusterEntities(boxes []EntityBox, threshold float64) []Cluster {
	if len(boxes) == 0 {
		return nil
	}
	return mergeClusters(greedyClusters(boxes, threshold), threshold*mergeFactor)
}

func greedyClusters(boxes []EntityBox, threshold float64) [][]EntityBox {
	var clusters [][]EntityBox
	for _, eb := range boxes {
		joined := false
		for ci, members := range clusters {
			for _, m := range members {
				if distance(eb.Center, m.Center) < threshold {
					clusters[ci] = append(clusters[ci], eb)
					joined = true
					break
				}
			}
			if joined {
				break
			}
		}
		if !joined {
			clusters = append(clusters, []EntityBox{eb})
		}
	}
	return clusters
}

type clusterSlot struct {
	members []EntityBox
	box     BoundingBox
	alive   bool
}

// mergeClusters runs a work-list over an arena of clusters. When two
// clusters merge the higher index is tombstoned into the lower one, which is
// queued again so it is compared against everything with its new extent.
// Survivors keep their discovery order.
func mergeClusters(groups [][]EntityBox, threshold float64) []Cluster {
	arena := make([]clusterSlot, len(groups))
	queue := make([]int, 0, len(groups))
	for i, members := range groups {
		box, _ := combinedBounds(members)
		arena[i] = clusterSlot{members: members, box: box, alive: true}
		queue = append(queue, i)
	}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if !arena[i].alive {
			continue
		}
		for j := range arena {
			if j == i || !arena[j].alive {
				continue
			}
			if arena[i].box.Gap(arena[j].box) >= threshold {
				continue
			}
			lo, hi := i, j
			if hi < lo {
				lo, hi = hi, lo
			}
			arena[lo].members = append(arena[lo].members, arena[hi].members...)
			arena[lo].box = arena[lo].box.Union(arena[hi].box)
			arena[hi].alive = false
			arena[hi].members = nil
			queue = append(queue, lo)
			if lo != i {
				break
			}
		}
	}

	out := make([]Cluster, 0, len(arena))
	for _, s := range arena {
		if s.alive {
			out = append(out, Cluster{Members: s.members})
		}
	}
	return out
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
