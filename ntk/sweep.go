// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ntk

import (
	"fmt"
	"strings"
)

// PropConst propagates constant nodes through their fanouts until a
// fixed point: every internal fanout of a constant has the constant
// column folded out of its function, and fanouts that collapse to
// constants are propagated in turn.  Primary outputs keep their
// drivers, constant or not.
func (n *Ntk) PropConst() {
	var work []int
	for i := range n.objs {
		if n.IsConst(i) {
			work = append(work, i)
		}
	}
	inWork := make(map[int]bool, len(work))
	for _, id := range work {
		inWork[id] = true
	}
	for len(work) > 0 {
		c := work[0]
		work = work[1:]
		delete(inWork, c)
		if !n.IsConst(c) {
			continue
		}
		outs := append([]int(nil), n.objs[c].outs...)
		for _, f := range outs {
			if !n.IsNode(f) {
				continue
			}
			n.foldConsts(f)
			if n.IsConst(f) && !inWork[f] {
				work = append(work, f)
				inWork[f] = true
			}
		}
	}
}

// foldConsts removes every constant fanin column from id's function,
// reducing id to a constant when the cover degenerates.
func (n *Ntk) foldConsts(id int) {
	for {
		o := &n.objs[id]
		k := -1
		var v byte
		for i, in := range o.ins {
			if n.IsConst(in) {
				k = i
				if n.IsConst1(in) {
					v = '1'
				} else {
					v = '0'
				}
				break
			}
		}
		if k < 0 {
			break
		}
		cubes, phase := SopCubes(o.sop)
		var kept []string
		for _, cube := range cubes {
			if cube[k] != '-' && cube[k] != v {
				continue
			}
			kept = append(kept, cube[:k]+cube[k+1:])
		}
		n.removeOut(o.ins[k], id)
		o.ins = append(o.ins[:k], o.ins[k+1:]...)
		if len(kept) == 0 {
			n.makeConst(id, phase == '0')
			return
		}
		var b strings.Builder
		for _, cube := range kept {
			b.WriteString(cube)
			b.WriteByte(' ')
			b.WriteByte(phase)
			b.WriteByte('\n')
		}
		o.sop = b.String()
		// a full don't-care cube makes the cover a tautology
		for _, cube := range kept {
			if strings.Trim(cube, "-") == "" {
				n.detachIns(id)
				n.makeConst(id, phase == '1')
				return
			}
		}
	}
}

// makeConst rewrites id in place as a constant node, keeping its
// fanouts.
func (n *Ntk) makeConst(id int, v bool) {
	o := &n.objs[id]
	o.ins = nil
	if v {
		o.sop = SopConst1
	} else {
		o.sop = SopConst0
	}
}

// detachIns disconnects id from all of its fanins.
func (n *Ntk) detachIns(id int) {
	for _, in := range n.objs[id].ins {
		n.removeOut(in, id)
	}
	n.objs[id].ins = nil
}

// CleanUp deletes every internal node unreachable from the primary
// outputs and returns the number of deleted nodes.
func (n *Ntk) CleanUp() int {
	mark := make([]bool, len(n.objs))
	var walk func(id int)
	walk = func(id int) {
		if mark[id] {
			return
		}
		mark[id] = true
		for _, in := range n.objs[id].ins {
			walk(in)
		}
	}
	for _, po := range n.pos {
		walk(po)
	}
	deleted := 0
	for i := range n.objs {
		if n.objs[i].kind != KindNode || mark[i] {
			continue
		}
		// dead nodes only feed dead nodes; detach from any live fanin
		for _, in := range n.objs[i].ins {
			if n.objs[in].kind != KindNone && mark[in] {
				n.removeOut(in, i)
			}
		}
		n.objs[i] = obj{}
		deleted++
	}
	// purge dangling fanout entries among mutually dead nodes
	for i := range n.objs {
		if n.objs[i].kind == KindNone {
			continue
		}
		outs := n.objs[i].outs[:0]
		for _, f := range n.objs[i].outs {
			if n.objs[f].kind != KindNone {
				outs = append(outs, f)
			}
		}
		n.objs[i].outs = outs
	}
	return deleted
}

// Sweep propagates constants and removes unreachable nodes.
func (n *Ntk) Sweep() {
	n.PropConst()
	n.CleanUp()
}

// Check verifies structural consistency: live fanin references,
// symmetric fanin/fanout bookkeeping, function widths matching fanin
// counts, single-driver outputs and acyclicity.
func (n *Ntk) Check() error {
	for id := range n.objs {
		o := &n.objs[id]
		switch o.kind {
		case KindNone:
			continue
		case KindPi:
			if len(o.ins) != 0 {
				return fmt.Errorf("pi %d has fanins", id)
			}
		case KindPo:
			if len(o.ins) != 1 {
				return fmt.Errorf("po %d has %d fanins", id, len(o.ins))
			}
		case KindNode:
			if err := CheckSop(o.sop, len(o.ins)); err != nil {
				return fmt.Errorf("node %d: %w", id, err)
			}
		}
		for _, in := range o.ins {
			if !n.Valid(in) {
				return fmt.Errorf("obj %d reads dead obj %d", id, in)
			}
			if n.IsPo(in) {
				return fmt.Errorf("obj %d reads po %d", id, in)
			}
			if n.countOut(in, id) != n.countIn(id, in) {
				return fmt.Errorf("asymmetric edge %d -> %d", in, id)
			}
		}
		for _, f := range o.outs {
			if !n.Valid(f) {
				return fmt.Errorf("obj %d feeds dead obj %d", id, f)
			}
		}
	}
	if !n.IsAcyclic() {
		return fmt.Errorf("network is cyclic")
	}
	return nil
}

func (n *Ntk) countOut(id, fanout int) int {
	c := 0
	for _, f := range n.objs[id].outs {
		if f == fanout {
			c++
		}
	}
	return c
}

func (n *Ntk) countIn(id, fanin int) int {
	c := 0
	for _, in := range n.objs[id].ins {
		if in == fanin {
			c++
		}
	}
	return c
}
