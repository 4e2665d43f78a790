// SPDX-License-Identifier: MIT

package partition

import (
	"github.com/pkg/errors"

	"github.com/katalvlaran/fxgraph/fx"
)

// sparseNN gives every embedding lookup a partition of its own and packs the dense
// nodes between them by size against the largest device. Crossing an embedding
// node always closes the current dense partition, so dense partitions are
// contiguous runs in program order.
func (pr *partitioner) sparseNN(nodes []*fx.Node) error {
	var (
		cur        *Partition
		embeddings int
	)
	for _, n := range nodes {
		if pr.cfg.IsEmbedding(n, pr.root) {
			alone := standaloneSize(n)
			if alone > pr.maxCap {
				return pr.capacityError(n, alone)
			}
			p := pr.newPartition()
			p.embedding = true
			p.add(n)
			embeddings++
			cur = nil
			pr.log.Debug("embedding partition", "partition", p.id, "node", n.Name(), "bytes", p.used)
			continue
		}
		if cur != nil && cur.used+cur.extraSize(n) <= pr.maxCap {
			cur.add(n)
			continue
		}
		alone := standaloneSize(n)
		if alone > pr.maxCap {
			return pr.capacityError(n, alone)
		}
		cur = pr.newPartition()
		cur.add(n)
		pr.log.Debug("dense partition", "partition", cur.id, "node", n.Name())
	}
	if embeddings > len(pr.cfg.Devices) {
		return errors.Wrapf(ErrCapacity, "%d embedding partitions need a device each, %d devices available",
			embeddings, len(pr.cfg.Devices))
	}

	return nil
}
