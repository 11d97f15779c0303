// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package est scores candidate rewrites by simulation before the
// expensive exact verification: per candidate it computes a lower
// bound on the worst-case error after applying the change, without
// mutating the network, and drops candidates whose bound already
// exceeds the error budget.
//
// The trick is the Boolean difference: for a target node, one
// flip-and-repropagate pass yields, per output and frame, whether a
// change of the node's value reaches that output.  A candidate's
// would-be output is then the current output XORed with the AND of
// its value-change mask and that sensitivity, so scoring a candidate
// costs bit-vector work only.
package est

import (
	"fmt"
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"

	"github.com/chislab/als/lac"
	"github.com/chislab/als/metric"
	"github.com/chislab/als/ntk"
	"github.com/chislab/als/sim"
)

// RoughFrames is the pattern count of the cheap first pruning pass.
const RoughFrames = 1024

// Estimator prunes candidate catalogs under one metric and bound.
type Estimator struct {
	m       metric.Metric
	bound   *big.Int
	nFrame  int
	seed    uint64
	workers int
}

// New creates an estimator.  workers <= 1 scores serially.
func New(m metric.Metric, bound uint64, nFrame int, seed uint64, workers int) *Estimator {
	if workers < 1 {
		workers = 1
	}
	return &Estimator{
		m:       m,
		bound:   new(big.Int).SetUint64(bound),
		nFrame:  nFrame,
		seed:    seed,
		workers: workers,
	}
}

// Prune scores every candidate in cat against the accurate network's
// simulator and removes those whose estimated error exceeds the
// bound.  A rough fixed-size pass runs first when the configured
// frame count is larger; the fine pass reuses the accurate
// simulator's patterns — and with them any accumulated
// counterexamples — when the frame counts match.
func (e *Estimator) Prune(accSim *sim.S, app *ntk.Ntk, cat *lac.Catalog) error {
	if cat.Len() == 0 {
		return nil
	}
	if e.nFrame > RoughFrames {
		if err := e.pass(accSim, app, cat, RoughFrames); err != nil {
			return err
		}
		cat.RemoveAboveBound(e.bound)
		if cat.Len() == 0 {
			return nil
		}
	}
	if err := e.pass(accSim, app, cat, e.nFrame); err != nil {
		return err
	}
	cat.RemoveAboveBound(e.bound)
	return nil
}

func (e *Estimator) pass(accSim *sim.S, app *ntk.Ntk, cat *lac.Catalog, frames int) error {
	var as, ps *sim.S
	var err error
	if frames == accSim.NFrame() {
		// keep the comparison paired on the accurate side's patterns,
		// counterexamples included
		as = accSim
		ps, err = sim.New(app, e.seed, frames, sim.Input)
		if err != nil {
			return err
		}
		if err = ps.CopyPatternsFrom(accSim); err != nil {
			return err
		}
	} else {
		as, err = sim.New(accSim.Net(), e.seed, frames, sim.Unif)
		if err != nil {
			return err
		}
		if err = as.Simulate(); err != nil {
			return err
		}
		ps, err = sim.New(app, e.seed, frames, sim.Input)
		if err != nil {
			return err
		}
		if err = ps.CopyPatternsFrom(as); err != nil {
			return err
		}
	}
	if err = ps.Simulate(); err != nil {
		return err
	}
	return e.score(as, ps, cat, e.bound)
}

// score fills every candidate's Err field with the maximum per-frame
// metric value over the pass's patterns, early-exiting a candidate's
// frame loop once it exceeds stop (candidates past stop are dead
// anyway).  Node groups are scored in parallel; candidates are
// disjoint objects so the workers never write the same field.
func (e *Estimator) score(as, ps *sim.S, cat *lac.Catalog, stop *big.Int) error {
	app := ps.Net()
	frames := ps.NFrame()
	topo := app.TopoOrder()
	groups := cat.ByTarget(true)

	accWords := make([]*big.Int, frames)
	for f := 0; f < frames; f++ {
		accWords[f] = as.OutputWord(f)
	}

	order := make([]int, 0, len(groups))
	for _, id := range topo {
		if len(groups[id]) > 0 {
			order = append(order, id)
		}
	}

	jobs := make(chan int)
	var g errgroup.Group
	for w := 0; w < e.workers; w++ {
		g.Go(func() error {
			sc := ps.NewScratch()
			change := bitset.New(uint(frames))
			appVal := new(big.Int)
			errVal := new(big.Int)
			for id := range jobs {
				e.scoreNode(as, ps, topo, id, groups[id], sc, change, accWords, appVal, errVal, stop)
			}
			return nil
		})
	}
	for _, id := range order {
		jobs <- id
	}
	close(jobs)
	return g.Wait()
}

func (e *Estimator) scoreNode(as, ps *sim.S, topo []int, id int, ls []*lac.LAC,
	sc *sim.Scratch, change *bitset.BitSet, accWords []*big.Int, appVal, errVal, stop *big.Int) {

	app := ps.Net()
	frames := ps.NFrame()
	ps.BoolDiff(topo, id, sc)
	bd := sc.Outs()
	pos := app.Pos()

	for _, l := range ls {
		ps.SimSopScratch(sc, l.Divs, l.Sop, change)
		change.InPlaceSymmetricDifference(ps.Vec(id))
		maxe := new(big.Int)
		for f := 0; f < frames; f++ {
			appVal.SetUint64(0)
			ch := change.Test(uint(f))
			for j, po := range pos {
				bit := ps.Vec(po).Test(uint(f))
				if ch && bd[j].Test(uint(f)) {
					bit = !bit
				}
				if bit {
					appVal.SetBit(appVal, j, 1)
				}
			}
			e.m.FrameError(errVal, accWords[f], appVal)
			if errVal.Cmp(maxe) > 0 {
				maxe.Set(errVal)
				if stop != nil && maxe.Cmp(stop) > 0 {
					break
				}
			}
		}
		l.Err = maxe
	}
}

// Best scores cat by exhaustive enumeration over the accurate
// network's full input space and returns the candidate with the
// smallest true error, ties broken by the catalog order.  Only valid
// for networks small enough to enumerate.
func (e *Estimator) Best(acc, app *ntk.Ntk, cat *lac.Catalog) (*lac.LAC, error) {
	if cat.Len() == 0 {
		return nil, fmt.Errorf("est: empty catalog")
	}
	as, err := sim.New(acc, e.seed, 0, sim.Enum)
	if err != nil {
		return nil, err
	}
	if err = as.Simulate(); err != nil {
		return nil, err
	}
	ps, err := sim.New(app, e.seed, as.NFrame(), sim.Input)
	if err != nil {
		return nil, err
	}
	if err = ps.CopyPatternsFrom(as); err != nil {
		return nil, err
	}
	if err = ps.Simulate(); err != nil {
		return nil, err
	}
	if err = e.score(as, ps, cat, nil); err != nil {
		return nil, err
	}
	var best *lac.LAC
	for _, l := range cat.Lacs() {
		if best == nil || l.Err.Cmp(best.Err) < 0 {
			best = l
		}
	}
	return best, nil
}

// UpperBound fills every candidate's Err2 field with a loose
// topological upper bound: each output contributes its metric weight,
// and a node's weight is the sum over its fanouts, so Err2 bounds the
// damage of a node whose value flips on every input.
func (e *Estimator) UpperBound(app *ntk.Ntk, cat *lac.Catalog) {
	w := make([]*big.Int, app.NumObjs())
	for i := range w {
		w[i] = new(big.Int)
	}
	for i, po := range app.Pos() {
		w[po].Set(e.m.OutWeight(i))
	}
	topo := app.TopoOrder()
	for i := len(topo) - 1; i >= 0; i-- {
		id := topo[i]
		for _, f := range app.FanoutIDs(id) {
			w[id].Add(w[id], w[f])
		}
	}
	for _, l := range cat.Lacs() {
		l.Err2 = new(big.Int).Set(w[l.Target])
	}
}
