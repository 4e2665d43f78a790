// SPDX-License-Identifier: MIT

package partition

import (
	"sort"

	"github.com/pkg/errors"
)

// placePartitions assigns every partition one device, charging its used memory
// against the device's remaining capacity.
func (pr *partitioner) placePartitions() error {
	assign, err := pr.planPlacement(pr.partitions)
	if err != nil {
		return err
	}
	for i, p := range pr.partitions {
		d := pr.cfg.Devices[assign[i]]
		p.devices = []int{d.LogicalID}
		pr.log.Debug("partition placed", "partition", p.id, "device", d.Name, "bytes", p.used)
	}

	return nil
}

// planPlacement returns a device index for each of ps without touching them.
//
// Order:
//  1. Sparse mode: embedding partitions, largest first, each on a distinct device.
//  2. Partitions keep the device claimed during the walk when it still has room.
//  3. The rest, largest first, go best-fit: the device with the smallest remaining
//     capacity that fits, ties broken by device order.
func (pr *partitioner) planPlacement(ps []*Partition) ([]int, error) {
	devices := pr.cfg.Devices
	remaining := make([]int64, len(devices))
	for i, d := range devices {
		remaining[i] = d.AvailableMemBytes
	}
	index := make(map[*Partition]int, len(ps))
	assign := make([]int, len(ps))
	place := func(p *Partition, d int) {
		remaining[d] -= p.used
		assign[index[p]] = d
	}

	var embeddings, pending []*Partition
	for i, p := range ps {
		index[p] = i
		switch {
		case p.embedding:
			embeddings = append(embeddings, p)
		case p.preferred >= 0 && remaining[p.preferred] >= p.used:
			place(p, p.preferred)
		default:
			pending = append(pending, p)
		}
	}
	// 1. One embedding partition per device
	hosting := make([]bool, len(devices))
	for _, p := range largestFirst(embeddings) {
		d := bestFit(remaining, p.used, hosting)
		if d < 0 {
			return nil, placementError(p, remaining)
		}
		hosting[d] = true
		place(p, d)
	}
	// 2. Best fit for everything else
	for _, p := range largestFirst(pending) {
		d := bestFit(remaining, p.used, nil)
		if d < 0 {
			return nil, placementError(p, remaining)
		}
		place(p, d)
	}

	return assign, nil
}

func largestFirst(ps []*Partition) []*Partition {
	out := append([]*Partition(nil), ps...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].used > out[j].used })

	return out
}

// bestFit returns the device with the least remaining capacity >= size,
// skipping excluded devices, or -1.
func bestFit(remaining []int64, size int64, excluded []bool) int {
	best := -1
	for i, r := range remaining {
		if excluded != nil && excluded[i] {
			continue
		}
		if r >= size && (best < 0 || r < remaining[best]) {
			best = i
		}
	}

	return best
}

func placementError(p *Partition, remaining []int64) error {
	return errors.Wrapf(ErrCapacity, "%v needs %d bytes, remaining device capacities %v", p, p.used, remaining)
}
