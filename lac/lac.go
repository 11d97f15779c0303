// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package lac generates and manages local approximate changes:
// candidate rewrites replacing one node's function by a cheaper one
// over zero, one or two existing divisor signals.
package lac

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// LAC is one candidate rewrite.  Err and Err2 start nil and are
// filled in by the estimator: Err is a simulation lower bound on the
// worst-case error after applying the change, Err2 a topological
// upper bound kept for diagnostics.
type LAC struct {
	Target   int
	Divs     []int
	Sop      string
	SizeGain int
	Err      *big.Int
	Err2     *big.Int
}

// Key is the canonical short signature used for blacklisting.
func (l *LAC) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "n%d", l.Target)
	for _, d := range l.Divs {
		fmt.Fprintf(&b, "d%d", d)
	}
	b.WriteByte('f')
	b.WriteString(l.Sop)
	return b.String()
}

// Less orders candidates for pruning and greedy application: smaller
// estimated error first, larger size gain second.  Unestimated
// candidates sort first.
func Less(a, b *LAC) bool {
	switch {
	case a.Err == nil && b.Err != nil:
		return true
	case a.Err != nil && b.Err == nil:
		return false
	case a.Err != nil:
		if c := a.Err.Cmp(b.Err); c != 0 {
			return c < 0
		}
	}
	return a.SizeGain > b.SizeGain
}

// Catalog holds one round's candidates.
type Catalog struct {
	lacs     []*LAC
	byTarget map[int][]*LAC
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog { return &Catalog{} }

// Add appends a candidate.
func (t *Catalog) Add(l *LAC) {
	t.lacs = append(t.lacs, l)
	t.byTarget = nil
}

// Len returns the number of candidates.
func (t *Catalog) Len() int { return len(t.lacs) }

// Lacs returns the candidates in their current order.  The caller
// must not mutate the slice.
func (t *Catalog) Lacs() []*LAC { return t.lacs }

// ByTarget groups the candidates by target node, computing the
// grouping once and reusing it until the catalog changes, unless
// force is set.
func (t *Catalog) ByTarget(force bool) map[int][]*LAC {
	if t.byTarget != nil && !force {
		return t.byTarget
	}
	t.byTarget = make(map[int][]*LAC)
	for _, l := range t.lacs {
		t.byTarget[l.Target] = append(t.byTarget[l.Target], l)
	}
	return t.byTarget
}

// RemoveBlacklisted drops candidates whose Key is blacklisted.
func (t *Catalog) RemoveBlacklisted(bl map[string]bool) {
	if len(bl) == 0 {
		return
	}
	kept := t.lacs[:0]
	for _, l := range t.lacs {
		if !bl[l.Key()] {
			kept = append(kept, l)
		}
	}
	t.lacs = kept
	t.byTarget = nil
}

// RemoveAboveBound drops every estimated candidate whose Err exceeds
// bound.
func (t *Catalog) RemoveAboveBound(bound *big.Int) {
	kept := t.lacs[:0]
	for _, l := range t.lacs {
		if l.Err != nil && l.Err.Cmp(bound) > 0 {
			continue
		}
		kept = append(kept, l)
	}
	t.lacs = kept
	t.byTarget = nil
}

// SortAndKeepTop stably sorts by Less and truncates to the k best.
// Applying it twice is idempotent.
func (t *Catalog) SortAndKeepTop(k int) {
	sort.SliceStable(t.lacs, func(i, j int) bool { return Less(t.lacs[i], t.lacs[j]) })
	if k >= 0 && len(t.lacs) > k {
		t.lacs = t.lacs[:k]
	}
	t.byTarget = nil
}
