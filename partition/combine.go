// SPDX-License-Identifier: MIT

package partition

import (
	"github.com/katalvlaran/fxgraph/dfs"
)

// combineSmallPartitions repeatedly merges a parent with one of its children
// while the merged partition fits the largest device and the whole set stays
// placeable, so combining never turns a feasible run into ErrCapacity. Embedding partitions are
// never merged. A merge that would close a cycle in the partition DAG is
// rejected and the next pair is tried.
func (pr *partitioner) combineSmallPartitions() error {
	for {
		if err := LinkPartitions(pr.partitions); err != nil {
			return err
		}
		merged := false
	scan:
		for _, p := range pr.partitions {
			if p.embedding {
				continue
			}
			for _, c := range p.Children() {
				if c.embedding {
					continue
				}
				ok, err := pr.tryMerge(p, c)
				if err != nil {
					return err
				}
				if ok {
					merged = true
					break scan
				}
			}
		}
		if !merged {
			return nil
		}
	}
}

// tryMerge folds child c into parent p if the result keeps the partition graph
// acyclic and the merged set can still be placed on the devices. Links must be
// current.
func (pr *partitioner) tryMerge(p, c *Partition) (bool, error) {
	// 1. Capacity of the largest device
	trial := newPartition(-1)
	trial.members = append(append(trial.members, p.members...), c.members...)
	trial.recalc()
	if trial.used > pr.maxCap {
		return false, nil
	}
	// 2. Another path p → … → c would become a cycle through the merged node
	pk, ck := key(p), key(c)
	via, err := dfs.Reachable(newPartitionGraph(pr.partitions), pk, ck, func(from, to string) bool {
		return from != pk || to != ck
	})
	if err != nil {
		return false, err
	}
	if via {
		pr.log.Debug("merge rejected", "parent", p.id, "child", c.id, "reason", ErrPartitionCycle)
		return false, nil
	}
	// 3. Placement; keep a claimed device if the merged partition still fits it
	for _, d := range []int{p.preferred, c.preferred} {
		if d >= 0 && trial.used <= pr.cfg.Devices[d].AvailableMemBytes {
			trial.preferred = d
			break
		}
	}
	after := make([]*Partition, 0, len(pr.partitions)-1)
	for _, q := range pr.partitions {
		switch q {
		case c:
		case p:
			after = append(after, trial)
		default:
			after = append(after, q)
		}
	}
	if _, err = pr.planPlacement(byFirstMember(after)); err != nil {
		pr.log.Debug("merge rejected", "parent", p.id, "child", c.id, "reason", err)
		return false, nil
	}
	// 4. Apply
	p.members = trial.members
	p.recalc()
	p.preferred = trial.preferred
	pr.remove(c)
	pr.log.Debug("partitions merged", "parent", p.id, "child", c.id, "bytes", p.used)

	return true, nil
}

func (pr *partitioner) remove(c *Partition) {
	out := pr.partitions[:0]
	for _, q := range pr.partitions {
		if q != c {
			out = append(out, q)
		}
	}
	pr.partitions = out
}
