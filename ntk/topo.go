// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ntk

// TopoOrder returns the live internal nodes in dependency order: every
// node appears after all of its internal fanins.  The walk starts from
// the primary output drivers, so nodes unreachable from any output are
// not listed.  The network must be acyclic.
func (n *Ntk) TopoOrder() []int {
	order := make([]int, 0, len(n.objs))
	seen := make([]bool, len(n.objs))
	var walk func(id int)
	walk = func(id int) {
		if seen[id] || !n.IsNode(id) {
			seen[id] = true
			return
		}
		seen[id] = true
		for _, in := range n.objs[id].ins {
			if !seen[in] {
				walk(in)
			}
		}
		order = append(order, id)
	}
	for _, po := range n.pos {
		walk(n.objs[po].ins[0])
	}
	return order
}

// IsAcyclic reports whether the live part of the network is free of
// combinational cycles.
func (n *Ntk) IsAcyclic() bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]byte, len(n.objs))
	var walk func(id int) bool
	walk = func(id int) bool {
		color[id] = gray
		for _, in := range n.objs[id].ins {
			if !n.IsNode(in) {
				continue
			}
			switch color[in] {
			case gray:
				return false
			case white:
				if !walk(in) {
					return false
				}
			}
		}
		color[id] = black
		return true
	}
	for i := range n.objs {
		if n.objs[i].kind == KindNode && color[i] == white {
			if !walk(i) {
				return false
			}
		}
	}
	return true
}

// Levels returns the logic level of every live object, indexed by id.
// Primary inputs and constants are at level 0, an internal node is one
// above its highest fanin, and a primary output sits at its driver's
// level.
func (n *Ntk) Levels() []int {
	lev := make([]int, len(n.objs))
	for _, id := range n.TopoOrder() {
		l := 0
		for _, in := range n.objs[id].ins {
			if lev[in]+1 > l {
				l = lev[in] + 1
			}
		}
		lev[id] = l
	}
	for _, po := range n.pos {
		lev[po] = lev[n.objs[po].ins[0]]
	}
	return lev
}

// Depth returns the maximum primary output level.
func (n *Ntk) Depth() int {
	lev := n.Levels()
	d := 0
	for _, po := range n.pos {
		if lev[po] > d {
			d = lev[po]
		}
	}
	return d
}
