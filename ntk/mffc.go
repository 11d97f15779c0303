// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ntk

// SizeGain returns the number of internal nodes freed by deleting
// target's cone: target itself plus every fanin whose reference count
// drops to zero transitively.  The count works on a scratch copy of
// the fanout counts, so the network is not touched.  Primary inputs,
// nodes in the divisor set and nodes still driving a primary output
// are never counted.
func (n *Ntk) SizeGain(target int, divisors []int) int {
	refs := make([]int, len(n.objs))
	for i := range n.objs {
		refs[i] = len(n.objs[i].outs)
	}
	prot := make(map[int]bool, len(divisors))
	for _, d := range divisors {
		prot[d] = true
	}
	var deref func(id int) int
	deref = func(id int) int {
		cnt := 1
		for _, in := range n.objs[id].ins {
			if !n.IsNode(in) || prot[in] || n.drivesPo(in) {
				continue
			}
			refs[in]--
			if refs[in] == 0 {
				cnt += deref(in)
			}
		}
		return cnt
	}
	return deref(target)
}

// drivesPo tells whether any fanout of id is a primary output.
func (n *Ntk) drivesPo(id int) bool {
	for _, f := range n.objs[id].outs {
		if n.objs[f].kind == KindPo {
			return true
		}
	}
	return false
}
