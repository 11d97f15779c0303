// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package metric

import (
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// word arithmetic over little-endian literal slices; missing high bits
// read as false

func bitAt(c *logic.C, w []z.Lit, i int) z.Lit {
	if i < len(w) {
		return w[i]
	}
	return c.F
}

// subtract builds a - b with a ripple borrow, returning the difference
// bits and the final borrow (set iff a < b).
func subtract(c *logic.C, a, b []z.Lit) ([]z.Lit, z.Lit) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	d := make([]z.Lit, n)
	borrow := c.F
	for i := 0; i < n; i++ {
		ai, bi := bitAt(c, a, i), bitAt(c, b, i)
		axb := c.Xor(ai, bi)
		d[i] = c.Xor(axb, borrow)
		borrow = c.Or(c.And(ai.Not(), bi), c.And(borrow, axb.Not()))
	}
	return d, borrow
}

// addWords builds a + b with a ripple carry.
func addWords(c *logic.C, a, b []z.Lit) []z.Lit {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	s := make([]z.Lit, n+1)
	carry := c.F
	for i := 0; i < n; i++ {
		ai, bi := bitAt(c, a, i), bitAt(c, b, i)
		axb := c.Xor(ai, bi)
		s[i] = c.Xor(axb, carry)
		carry = c.Or(c.And(ai, bi), c.And(carry, axb))
	}
	s[n] = carry
	return s
}

// popCount builds the population count of xs as a binary word.
func popCount(c *logic.C, xs []z.Lit) []z.Lit {
	if len(xs) == 0 {
		return []z.Lit{c.F}
	}
	if len(xs) == 1 {
		return []z.Lit{xs[0]}
	}
	h := len(xs) / 2
	return addWords(c, popCount(c, xs[:h]), popCount(c, xs[h:]))
}

// Greater builds the unsigned comparison a > b.
func Greater(c *logic.C, a, b []z.Lit) z.Lit {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	gt, eq := c.F, c.T
	for i := n - 1; i >= 0; i-- {
		ai, bi := bitAt(c, a, i), bitAt(c, b, i)
		gt = c.Or(gt, c.Ands(eq, ai, bi.Not()))
		eq = c.And(eq, c.Xor(ai, bi).Not())
	}
	return gt
}
