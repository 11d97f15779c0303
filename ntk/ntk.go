// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package ntk provides a mutable Boolean network of sum-of-products
// nodes.
//
// A network is a DAG of objects identified by stable integer ids.
// Objects are primary inputs, primary outputs, or internal nodes
// carrying a sum-of-products function over an ordered fanin list.
// Ids are indices into an internal arena and survive deletion of
// other objects; deleted slots are never reused.
package ntk

import (
	"fmt"
)

// Kind tells what an object id refers to.
type Kind uint8

const (
	KindNone Kind = iota // dead or never-allocated slot
	KindPi
	KindPo
	KindNode
)

type obj struct {
	kind Kind
	name string
	sop  string
	ins  []int
	// outs holds one entry per fanin slot referencing this object, so
	// an object appears twice if a fanout reads it on two slots.
	outs []int
}

// Ntk is a mutable sum-of-products network.
type Ntk struct {
	name string
	objs []obj
	pis  []int
	pos  []int
}

// New creates an empty network.
func New(name string) *Ntk {
	return &Ntk{name: name, objs: make([]obj, 0, 1024)}
}

// Name returns the network name.
func (n *Ntk) Name() string { return n.name }

// SetName sets the network name.
func (n *Ntk) SetName(s string) { n.name = s }

// NumObjs returns the size of the id space.  Valid ids are in
// [0, NumObjs()); not every id in that range is live.
func (n *Ntk) NumObjs() int { return len(n.objs) }

// Valid tells whether id refers to a live object.
func (n *Ntk) Valid(id int) bool {
	return id >= 0 && id < len(n.objs) && n.objs[id].kind != KindNone
}

func (n *Ntk) IsPi(id int) bool   { return n.Valid(id) && n.objs[id].kind == KindPi }
func (n *Ntk) IsPo(id int) bool   { return n.Valid(id) && n.objs[id].kind == KindPo }
func (n *Ntk) IsNode(id int) bool { return n.Valid(id) && n.objs[id].kind == KindNode }

// IsConst tells whether id is an internal node computing a constant.
func (n *Ntk) IsConst(id int) bool {
	return n.IsNode(id) && len(n.objs[id].ins) == 0
}

func (n *Ntk) IsConst0(id int) bool { return n.IsConst(id) && n.objs[id].sop == SopConst0 }
func (n *Ntk) IsConst1(id int) bool { return n.IsConst(id) && n.objs[id].sop == SopConst1 }

// NumPi returns the number of primary inputs.
func (n *Ntk) NumPi() int { return len(n.pis) }

// NumPo returns the number of primary outputs.
func (n *Ntk) NumPo() int { return len(n.pos) }

// PiID returns the id of the i'th primary input.
func (n *Ntk) PiID(i int) int { return n.pis[i] }

// PoID returns the id of the i'th primary output.
func (n *Ntk) PoID(i int) int { return n.pos[i] }

// PoDriver returns the id of the object driving the i'th primary
// output.
func (n *Ntk) PoDriver(i int) int { return n.objs[n.pos[i]].ins[0] }

// Pis returns the primary input ids in creation order.  The caller
// must not modify the result.
func (n *Ntk) Pis() []int { return n.pis }

// Pos returns the primary output ids in creation order.  The caller
// must not modify the result.
func (n *Ntk) Pos() []int { return n.pos }

// FaninIDs returns id's fanin list.  The caller must not modify the
// result.
func (n *Ntk) FaninIDs(id int) []int { return n.objs[id].ins }

// FanoutIDs returns id's fanout list, one entry per referencing fanin
// slot.  The caller must not modify the result.
func (n *Ntk) FanoutIDs(id int) []int { return n.objs[id].outs }

// NumFanins returns the number of fanins of id.
func (n *Ntk) NumFanins(id int) int { return len(n.objs[id].ins) }

// NumFanouts returns the number of fanin slots reading id.
func (n *Ntk) NumFanouts(id int) int { return len(n.objs[id].outs) }

// Fanin returns the i'th fanin of id.
func (n *Ntk) Fanin(id, i int) int { return n.objs[id].ins[i] }

// SopOf returns the sum-of-products function of an internal node.
func (n *Ntk) SopOf(id int) string { return n.objs[id].sop }

// NameOf returns the object's name, or a synthesized one when the
// object was created anonymously.
func (n *Ntk) NameOf(id int) string {
	if n.objs[id].name != "" {
		return n.objs[id].name
	}
	return fmt.Sprintf("n%d", id)
}

// SetNameOf names an object.
func (n *Ntk) SetNameOf(id int, s string) { n.objs[id].name = s }

// Size returns the number of live internal nodes.
func (n *Ntk) Size() int {
	c := 0
	for i := range n.objs {
		if n.objs[i].kind == KindNode {
			c++
		}
	}
	return c
}

func (n *Ntk) alloc(o obj) int {
	n.objs = append(n.objs, o)
	return len(n.objs) - 1
}

// CreatePi adds a primary input.
func (n *Ntk) CreatePi(name string) int {
	id := n.alloc(obj{kind: KindPi, name: name})
	n.pis = append(n.pis, id)
	return id
}

// CreatePo adds a primary output driven by driver.
func (n *Ntk) CreatePo(driver int, name string) int {
	if !n.Valid(driver) {
		panic(fmt.Sprintf("ntk: po driver %d not live", driver))
	}
	id := n.alloc(obj{kind: KindPo, name: name, ins: []int{driver}})
	n.objs[driver].outs = append(n.objs[driver].outs, id)
	n.pos = append(n.pos, id)
	return id
}

// CreateNode adds an internal node computing sop over ins.  The sop
// must be well formed with cube width len(ins); a malformed sop is a
// programming error and panics.
func (n *Ntk) CreateNode(ins []int, sop string) int {
	if err := CheckSop(sop, len(ins)); err != nil {
		panic(fmt.Sprintf("ntk: %s", err))
	}
	for _, in := range ins {
		if !n.Valid(in) {
			panic(fmt.Sprintf("ntk: fanin %d not live", in))
		}
	}
	fanins := make([]int, len(ins))
	copy(fanins, ins)
	id := n.alloc(obj{kind: KindNode, sop: sop, ins: fanins})
	for _, in := range fanins {
		n.objs[in].outs = append(n.objs[in].outs, id)
	}
	return id
}

// ConstNode returns a live constant node of the given value, creating
// one if the network has none.
func (n *Ntk) ConstNode(v bool) int {
	sop := SopConst0
	if v {
		sop = SopConst1
	}
	for i := range n.objs {
		if n.objs[i].kind == KindNode && len(n.objs[i].ins) == 0 && n.objs[i].sop == sop {
			return i
		}
	}
	return n.CreateNode(nil, sop)
}

// DeleteNode removes a fanout-free internal node, detaching it from
// its fanins.  Deleting an object that still has fanouts is a
// programming error.
func (n *Ntk) DeleteNode(id int) {
	if !n.IsNode(id) {
		panic(fmt.Sprintf("ntk: delete of non-node %d", id))
	}
	if len(n.objs[id].outs) != 0 {
		panic(fmt.Sprintf("ntk: delete of node %d with %d fanouts", id, len(n.objs[id].outs)))
	}
	for _, in := range n.objs[id].ins {
		n.removeOut(in, id)
	}
	n.objs[id] = obj{}
}

// removeOut removes one occurrence of fanout from id's fanout list.
func (n *Ntk) removeOut(id, fanout int) {
	outs := n.objs[id].outs
	for i, f := range outs {
		if f == fanout {
			outs[i] = outs[len(outs)-1]
			n.objs[id].outs = outs[:len(outs)-1]
			return
		}
	}
	panic(fmt.Sprintf("ntk: %d not a fanout of %d", fanout, id))
}

// Copy returns a deep copy sharing no state with n.  Ids are
// preserved.
func (n *Ntk) Copy() *Ntk {
	m := &Ntk{name: n.name}
	m.objs = make([]obj, len(n.objs))
	for i := range n.objs {
		o := n.objs[i]
		o.ins = append([]int(nil), o.ins...)
		o.outs = append([]int(nil), o.outs...)
		m.objs[i] = o
	}
	m.pis = append([]int(nil), n.pis...)
	m.pos = append([]int(nil), n.pos...)
	return m
}

// Eval evaluates the network on a single input pattern, given per
// primary input in creation order, and returns the primary output
// values in creation order.
func (n *Ntk) Eval(pattern []bool) []bool {
	if len(pattern) != len(n.pis) {
		panic(fmt.Sprintf("ntk: eval pattern width %d, have %d inputs", len(pattern), len(n.pis)))
	}
	vals := make([]bool, len(n.objs))
	for i, pi := range n.pis {
		vals[pi] = pattern[i]
	}
	ins := make([]bool, 0, 8)
	for _, id := range n.TopoOrder() {
		ins = ins[:0]
		for _, in := range n.objs[id].ins {
			ins = append(ins, vals[in])
		}
		vals[id] = EvalSop(n.objs[id].sop, ins)
	}
	res := make([]bool, len(n.pos))
	for i, po := range n.pos {
		res[i] = vals[n.objs[po].ins[0]]
	}
	return res
}
