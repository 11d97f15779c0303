// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package gen generates arithmetic benchmark networks.  They serve as
// test and demo circuits whose exact behavior is cheap to predict.
package gen

import (
	"fmt"

	"github.com/chislab/als/ntk"
)

const (
	and2 = "11 1\n"
	or2  = "00 0\n"
	xor2 = "01 1\n10 1\n"
	// majority of three, the carry of a full adder
	maj3 = "11- 1\n1-1 1\n-11 1\n"
	// borrow of a full subtractor over (a, b, bin)
	bor3 = "01- 1\n0-1 1\n-11 1\n"
	// if s then t else e, over (s, t, e)
	mux3 = "11- 1\n0-1 1\n"
)

// operands adds two bits-wide input words named a<i> and b<i>.
func operands(n *ntk.Ntk, bits int) (a, b []int) {
	a = make([]int, bits)
	b = make([]int, bits)
	for i := 0; i < bits; i++ {
		a[i] = n.CreatePi(fmt.Sprintf("a%d", i))
	}
	for i := 0; i < bits; i++ {
		b[i] = n.CreatePi(fmt.Sprintf("b%d", i))
	}
	return a, b
}

func xor3(n *ntk.Ntk, a, b, c int) int {
	t := n.CreateNode([]int{a, b}, xor2)
	return n.CreateNode([]int{t, c}, xor2)
}

// rippleAdd sums two equal-width words, returning the sum bits and the
// carry out.
func rippleAdd(n *ntk.Ntk, a, b []int) (sum []int, carry int) {
	sum = make([]int, len(a))
	sum[0] = n.CreateNode([]int{a[0], b[0]}, xor2)
	carry = n.CreateNode([]int{a[0], b[0]}, and2)
	for i := 1; i < len(a); i++ {
		sum[i] = xor3(n, a[i], b[i], carry)
		carry = n.CreateNode([]int{a[i], b[i], carry}, maj3)
	}
	return sum, carry
}

// rippleSub computes a-b, returning the difference bits and the borrow
// out (set iff a < b).
func rippleSub(n *ntk.Ntk, a, b []int) (diff []int, borrow int) {
	diff = make([]int, len(a))
	diff[0] = n.CreateNode([]int{a[0], b[0]}, xor2)
	borrow = n.CreateNode([]int{a[0], b[0]}, "01 1\n")
	for i := 1; i < len(a); i++ {
		diff[i] = xor3(n, a[i], b[i], borrow)
		borrow = n.CreateNode([]int{a[i], b[i], borrow}, bor3)
	}
	return diff, borrow
}

// Adder builds a bits x bits unsigned adder with a carry output, sum
// bit i named s<i>.
func Adder(bits int) *ntk.Ntk {
	n := ntk.New(fmt.Sprintf("add%d", bits))
	a, b := operands(n, bits)
	sum, carry := rippleAdd(n, a, b)
	for i, s := range sum {
		n.CreatePo(s, fmt.Sprintf("s%d", i))
	}
	n.CreatePo(carry, fmt.Sprintf("s%d", bits))
	return n
}

// Multiplier builds a bits x bits unsigned array multiplier with a
// 2*bits product, product bit i named p<i>.
func Multiplier(bits int) *ntk.Ntk {
	n := ntk.New(fmt.Sprintf("mul%d", bits))
	a, b := operands(n, bits)

	// row i holds the partial product a*b[i], aligned at bit i and
	// padded to the full product width
	width := 2 * bits
	zero := n.ConstNode(false)
	row := func(i int) []int {
		r := make([]int, width)
		for j := range r {
			r[j] = zero
		}
		for j := 0; j < bits; j++ {
			r[i+j] = n.CreateNode([]int{a[j], b[i]}, and2)
		}
		return r
	}
	acc := row(0)
	for i := 1; i < bits; i++ {
		acc, _ = rippleAdd(n, acc, row(i))
	}
	for i, p := range acc {
		n.CreatePo(p, fmt.Sprintf("p%d", i))
	}
	return n
}

// AbsDiff builds a bits-wide absolute difference |a-b|, output bit i
// named d<i>.
func AbsDiff(bits int) *ntk.Ntk {
	n := ntk.New(fmt.Sprintf("absdiff%d", bits))
	a, b := operands(n, bits)
	ab, neg := rippleSub(n, a, b)
	ba, _ := rippleSub(n, b, a)
	for i := 0; i < bits; i++ {
		d := n.CreateNode([]int{neg, ba[i], ab[i]}, mux3)
		n.CreatePo(d, fmt.Sprintf("d%d", i))
	}
	return n
}
