// SPDX-License-Identifier: MIT

package partition

import "github.com/katalvlaran/fxgraph/fx"

// sizeBased packs nodes (program order) into partitions.
//
// The current partition grows while its device can absorb the next node's extra
// size. Otherwise a new partition claims the first unoccupied device able to hold
// the node alone. Once no unoccupied device fits, every remaining node becomes a
// single-node partition, left for combining and best-fit placement.
func (pr *partitioner) sizeBased(nodes []*fx.Node) error {
	devices := pr.cfg.Devices
	occupied := make([]bool, len(devices))
	exhausted := false
	var cur *Partition

	for _, n := range nodes {
		// 1. Grow the current partition if its device still has room
		if cur != nil && cur.used+cur.extraSize(n) <= devices[cur.preferred].AvailableMemBytes {
			cur.add(n)
			continue
		}
		cur = nil
		alone := standaloneSize(n)
		if alone > pr.maxCap {
			return pr.capacityError(n, alone)
		}
		// 2. Claim a fresh device
		if !exhausted {
			if d := firstFit(devices, occupied, alone); d >= 0 {
				occupied[d] = true
				cur = pr.newPartition()
				cur.preferred = d
				cur.add(n)
				pr.log.Debug("partition opened", "partition", cur.id, "device", devices[d].Name, "node", n.Name())
				continue
			}
			exhausted = true
			pr.log.Debug("devices exhausted, falling back to single-node partitions", "node", n.Name())
		}
		// 3. Single-node fallback
		p := pr.newPartition()
		p.add(n)
	}

	return nil
}

// firstFit returns the first unoccupied device with capacity >= size, or -1.
func firstFit(devices []Device, occupied []bool, size int64) int {
	for i, d := range devices {
		if !occupied[i] && d.AvailableMemBytes >= size {
			return i
		}
	}

	return -1
}
