// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package verify decides, by SAT, whether an approximate network's
// deviation from its exact reference stays within a bound.
//
// Both networks are copied into one logic.C circuit with primary
// inputs unified by name, a metric-specific deviation word is built
// over the paired outputs, and a single "deviation > reference"
// output is asserted.  UNSAT proves the bound for all inputs; SAT
// yields a violating input assignment; a solve that exhausts its
// resource budget is reported as indeterminate and the caller
// blacklists the candidate.
package verify

import (
	"fmt"
	"math/big"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/chislab/als/metric"
	"github.com/chislab/als/ntk"
)

// Result is the outcome of a bound check.
type Result int

const (
	// Safe: UNSAT, the bound holds for every input.
	Safe Result = iota
	// Violated: SAT, a counterexample input was extracted.
	Violated
	// Indet: the solver ran out of budget; neither proven nor refuted.
	Indet
)

func (r Result) String() string {
	switch r {
	case Safe:
		return "safe"
	case Violated:
		return "violated"
	case Indet:
		return "indet"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// DefaultBudget bounds a single CheckBound solve.
const DefaultBudget = 10 * time.Second

// Checker verifies approximate networks under one metric.
type Checker struct {
	m      metric.Metric
	budget time.Duration
}

// NewChecker creates a checker.  budget <= 0 selects DefaultBudget.
func NewChecker(m metric.Metric, budget time.Duration) *Checker {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Checker{m: m, budget: budget}
}

type miter struct {
	c   *logic.C
	pis []z.Lit // accurate-side primary inputs, in input order
	ref []z.Lit // reference-error inputs, little-endian
	out z.Lit   // deviation > reference
}

// build constructs the miter for an accurate/approximate pair.  The
// networks must agree on primary output names and counts; the
// approximate side may have extra primary inputs, which become free
// miter inputs of their own.
func (ck *Checker) build(acc, app *ntk.Ntk) (*miter, error) {
	if acc.NumPo() != app.NumPo() {
		return nil, fmt.Errorf("verify: %d vs %d outputs", acc.NumPo(), app.NumPo())
	}
	for i := 0; i < acc.NumPo(); i++ {
		an, bn := acc.NameOf(acc.PoID(i)), app.NameOf(app.PoID(i))
		if an != bn {
			return nil, fmt.Errorf("verify: output %d named %s vs %s", i, an, bn)
		}
	}
	appNames := make(map[string]bool, app.NumPi())
	for _, pi := range app.Pis() {
		appNames[app.NameOf(pi)] = true
	}
	for _, pi := range acc.Pis() {
		if !appNames[acc.NameOf(pi)] {
			return nil, fmt.Errorf("verify: approximate side lost input %s", acc.NameOf(pi))
		}
	}

	c := logic.NewC()
	mit := &miter{c: c}
	piLits := make(map[string]z.Lit, acc.NumPi())
	for _, pi := range acc.Pis() {
		m := c.Lit()
		piLits[acc.NameOf(pi)] = m
		mit.pis = append(mit.pis, m)
	}
	accPos := copyIn(c, acc, piLits)
	appPos := copyIn(c, app, piLits)

	dev := ck.m.Deviation(c, accPos, appPos)
	w := ck.m.RefWidth(acc.NumPo())
	mit.ref = make([]z.Lit, w)
	for i := range mit.ref {
		mit.ref[i] = c.Lit()
	}
	mit.out = metric.Greater(c, dev, mit.ref)
	return mit, nil
}

// copyIn copies a network into c, unifying primary inputs by name and
// creating fresh inputs for names not seen before.  Returns the
// primary output literals in output order.
func copyIn(c *logic.C, n *ntk.Ntk, piLits map[string]z.Lit) []z.Lit {
	lits := make([]z.Lit, n.NumObjs())
	for _, pi := range n.Pis() {
		m, have := piLits[n.NameOf(pi)]
		if !have {
			m = c.Lit()
			piLits[n.NameOf(pi)] = m
		}
		lits[pi] = m
	}
	var cubeLits []z.Lit
	for _, id := range n.TopoOrder() {
		cubes, phase := ntk.SopCubes(n.SopOf(id))
		ins := n.FaninIDs(id)
		terms := make([]z.Lit, 0, len(cubes))
		for _, cube := range cubes {
			cubeLits = cubeLits[:0]
			for i := 0; i < len(cube); i++ {
				switch cube[i] {
				case '1':
					cubeLits = append(cubeLits, lits[ins[i]])
				case '0':
					cubeLits = append(cubeLits, lits[ins[i]].Not())
				}
			}
			terms = append(terms, c.Ands(cubeLits...))
		}
		m := c.Ors(terms...)
		if phase == '0' {
			m = m.Not()
		}
		lits[id] = m
	}
	pos := make([]z.Lit, n.NumPo())
	for i := range pos {
		pos[i] = lits[n.PoDriver(i)]
	}
	return pos
}

// assumeRef returns the assumption literals fixing the reference word
// to v.
func (mit *miter) assumeRef(v *big.Int) []z.Lit {
	ms := make([]z.Lit, 0, len(mit.ref)+1)
	ms = append(ms, mit.out)
	for i, r := range mit.ref {
		if v.Bit(i) == 1 {
			ms = append(ms, r)
		} else {
			ms = append(ms, r.Not())
		}
	}
	return ms
}

// CheckBound decides whether the approximate network's worst-case
// error exceeds bound.  On Violated the returned slice holds the
// counterexample input assignment, per accurate-side primary input in
// input order.
func (ck *Checker) CheckBound(acc, app *ntk.Ntk, bound uint64) (Result, []bool, error) {
	mit, err := ck.build(acc, app)
	if err != nil {
		return Indet, nil, err
	}
	b := new(big.Int).SetUint64(bound)
	// the deviation word is len(ref) bits wide, so a bound that does
	// not fit the reference word can never be exceeded; assuming only
	// its low bits would check a different, smaller bound
	if b.BitLen() > len(mit.ref) {
		return Safe, nil, nil
	}
	g := gini.New()
	mit.c.ToCnfFrom(g, mit.out)
	g.Assume(mit.assumeRef(b)...)
	switch g.GoSolve().Try(ck.budget) {
	case -1:
		return Safe, nil, nil
	case 1:
		cex := make([]bool, len(mit.pis))
		for i, m := range mit.pis {
			cex[i] = g.Value(m)
		}
		return Violated, cex, nil
	}
	return Indet, nil, nil
}

// MaxErr computes the exact maximum error of the pair by binary
// search over the reference word: the miter is built and translated
// once, and every step is one solve under different reference-bit
// assumptions.  An indeterminate step is a hard error.
func (ck *Checker) MaxErr(acc, app *ntk.Ntk) (*big.Int, error) {
	mit, err := ck.build(acc, app)
	if err != nil {
		return nil, err
	}
	g := gini.New()
	mit.c.ToCnfFrom(g, mit.out)

	lo := new(big.Int)
	hi := new(big.Int).Lsh(big.NewInt(1), uint(len(mit.ref)))
	hi.Sub(hi, big.NewInt(1))
	mid := new(big.Int)
	for lo.Cmp(hi) < 0 {
		mid.Add(lo, hi)
		mid.Rsh(mid, 1)
		g.Assume(mit.assumeRef(mid)...)
		switch g.Solve() {
		case 1:
			lo.Add(mid, big.NewInt(1))
		case -1:
			hi.Set(mid)
		default:
			return nil, fmt.Errorf("verify: solver indeterminate during max-error search")
		}
	}
	return lo, nil
}
