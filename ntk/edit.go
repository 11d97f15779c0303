// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ntk

// Trial edits are recorded as undo logs of tagged operations.  Undoing
// a trace replays the operations in reverse, restoring the network to
// a state structurally identical to the one before the edit: same ids,
// same fanin lists in the same order, same functions.  Traces nest;
// nested traces must be undone in reverse application order.

type editOp interface {
	undo(n *Ntk)
}

// reconnect records that fanout's fanin slot was redirected away from
// old.
type reconnect struct {
	fanout, slot, old int
}

func (op reconnect) undo(n *Ntk) { n.patchFanin(op.fanout, op.slot, op.old) }

// dropNode records a helper node created for the trial, to delete on
// rollback.
type dropNode struct {
	id int
}

func (op dropNode) undo(n *Ntk) { n.DeleteNode(op.id) }

// Trace is the undo log of one trial replacement.
type Trace struct {
	Target, Sub int
	ops         []editOp
}

// patchFanin redirects fanout's fanin slot to newIn, keeping fanout
// bookkeeping consistent.
func (n *Ntk) patchFanin(fanout, slot, newIn int) {
	old := n.objs[fanout].ins[slot]
	n.removeOut(old, fanout)
	n.objs[fanout].ins[slot] = newIn
	n.objs[newIn].outs = append(n.objs[newIn].outs, fanout)
}

// TempReplace redirects every fanout edge of target to sub, recording
// a trace that Undo reverses exactly.  Fanout slots on sub itself are
// left alone so the edit cannot introduce a trivial self-loop; any
// other cycle the edit creates must be caught by the caller via
// IsAcyclic before committing.  created lists helper nodes built for
// this trial; rollback deletes them after the edges are restored.
func (n *Ntk) TempReplace(target, sub int, created []int) *Trace {
	tr := &Trace{Target: target, Sub: sub}
	for _, id := range created {
		tr.ops = append(tr.ops, dropNode{id: id})
	}
	outs := append([]int(nil), n.objs[target].outs...)
	done := make(map[int]bool, len(outs))
	for _, f := range outs {
		if f == sub || done[f] {
			continue
		}
		done[f] = true
		for slot, in := range n.objs[f].ins {
			if in == target {
				n.patchFanin(f, slot, sub)
				tr.ops = append(tr.ops, reconnect{fanout: f, slot: slot, old: target})
			}
		}
	}
	return tr
}

// Undo rolls the trace back.
func (tr *Trace) Undo(n *Ntk) {
	for i := len(tr.ops) - 1; i >= 0; i-- {
		tr.ops[i].undo(n)
	}
}
