// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package als

import (
	"math/big"

	"github.com/chislab/als/lac"
	"github.com/chislab/als/verify"
)

// applyMany walks the sorted candidate list and commits every
// candidate it can prove safe, freezing each committed target for the
// rest of the round: the survivors were estimated independently, so
// two changes to the same node do not compose and the second must
// wait for a future round.
//
// A candidate whose trial edit closes a cycle is rolled back and
// skipped without blacklisting, since cyclicity depends on the edit
// context, not the candidate.  A candidate refuted by an
// already-recorded counterexample of this round is rolled back
// without a solver call.  A proof attempt that exhausts its budget
// blacklists the candidate for the rest of the run.
func (mg *Manager) applyMany(cat *lac.Catalog) (committed, cexAdded int, err error) {
	frozen := make(map[int]bool)
	var roundCex [][]bool
	for _, l := range cat.Lacs() {
		if frozen[l.Target] {
			continue
		}
		tr, aerr := lac.Apply(mg.app, l)
		if aerr != nil {
			// dangling or raced away; never fatal here
			continue
		}
		if !mg.app.IsAcyclic() {
			tr.Undo(mg.app)
			continue
		}
		if mg.refutedByCex(roundCex) {
			tr.Undo(mg.app)
			continue
		}
		res, cex, verr := mg.ck.CheckBound(mg.acc, mg.app, mg.opts.Bound)
		if verr != nil {
			tr.Undo(mg.app)
			return committed, cexAdded, verr
		}
		switch res {
		case verify.Safe:
			frozen[l.Target] = true
			committed++
		case verify.Violated:
			mg.recordCex(cex)
			roundCex = append(roundCex, cex)
			cexAdded++
			tr.Undo(mg.app)
		case verify.Indet:
			mg.log.Debug().Str("lac", l.Key()).Msg("solver indeterminate, blacklisting")
			mg.blacklist[l.Key()] = true
			tr.Undo(mg.app)
		}
	}
	return committed, cexAdded, nil
}

// refutedByCex evaluates the current trial network against the
// round's recorded counterexamples; any pattern already driving the
// error past the bound refutes the candidate without a proof.
func (mg *Manager) refutedByCex(cexes [][]bool) bool {
	if len(cexes) == 0 {
		return false
	}
	bound := new(big.Int).SetUint64(mg.opts.Bound)
	errVal := new(big.Int)
	for _, p := range cexes {
		accW := wordOf(mg.acc.Eval(p))
		appW := wordOf(mg.app.Eval(p))
		mg.m.FrameError(errVal, accW, appW)
		if errVal.Cmp(bound) > 0 {
			return true
		}
	}
	return false
}

// recordCex injects a counterexample into the accurate simulator's
// pattern pool, overwriting the oldest frame.  The caller re-runs
// Propagate once the round ends.
func (mg *Manager) recordCex(p []bool) {
	mg.accSim.ReplaceInput(mg.cexCursor, p)
	mg.cexCursor = (mg.cexCursor + 1) % mg.opts.NFrame
	mg.cexCount++
}
