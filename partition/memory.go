// SPDX-License-Identifier: MIT

package partition

import (
	"sort"

	"github.com/katalvlaran/fxgraph/fx"
)

// sizeOf returns the size annotation of n, zero if absent.
func sizeOf(n *fx.Node) fx.SizeBytes {
	if s := n.SizeBytes(); s != nil {
		return *s
	}

	return fx.SizeBytes{}
}

// isResident reports whether n is copied into every partition that reads it.
func isResident(n *fx.Node) bool {
	return n.Op() == fx.OpPlaceholder || n.Op() == fx.OpGetAttr
}

// holds reports whether p already accounts for n.
func (p *Partition) holds(n *fx.Node) bool {
	if _, ok := p.set[n]; ok {
		return true
	}
	_, ok := p.ext[n]

	return ok
}

// extraSize is the memory adding n to p would cost: its own total size plus
// every input p does not account for yet.
func (p *Partition) extraSize(n *fx.Node) int64 {
	extra := sizeOf(n).TotalSize
	for _, in := range fx.InputNodes(n) {
		if p.holds(in) {
			continue
		}
		if isResident(in) {
			extra += sizeOf(in).TotalSize
		} else {
			extra += sizeOf(in).OutputSize
		}
	}

	return extra
}

// add appends n, which must follow every current member in program order.
func (p *Partition) add(n *fx.Node) {
	p.used += p.extraSize(n)
	p.members = append(p.members, n)
	p.set[n] = struct{}{}
	for _, in := range fx.InputNodes(n) {
		if p.holds(in) {
			continue
		}
		if isResident(in) {
			p.set[in] = struct{}{}
		} else {
			p.ext[in] = struct{}{}
		}
	}
}

// recalc rebuilds order, resident/external sets and used memory from members.
func (p *Partition) recalc() {
	sort.SliceStable(p.members, func(i, j int) bool { return p.members[i].Index() < p.members[j].Index() })
	p.set = make(map[*fx.Node]struct{}, len(p.members))
	p.ext = make(map[*fx.Node]struct{})
	p.used = 0
	for _, m := range p.members {
		p.set[m] = struct{}{}
		p.used += sizeOf(m).TotalSize
	}
	for _, m := range p.members {
		for _, in := range fx.InputNodes(m) {
			if p.holds(in) {
				continue
			}
			if isResident(in) {
				p.set[in] = struct{}{}
				p.used += sizeOf(in).TotalSize
			} else {
				p.ext[in] = struct{}{}
				p.used += sizeOf(in).OutputSize
			}
		}
	}
}

// standaloneSize is the memory n needs in a partition of its own.
func standaloneSize(n *fx.Node) int64 {
	return newPartition(-1).extraSize(n)
}
