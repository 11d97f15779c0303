// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package lac

import (
	"errors"
	"fmt"

	"github.com/chislab/als/ntk"
)

// ErrDangling reports a candidate whose target lost all fanouts
// between generation and application.
var ErrDangling = errors.New("lac: target is dangling")

// Apply performs the candidate as a trial edit on n: it materializes
// the substitute signal (an existing divisor for a buffer, a constant
// node, or one new node computing the candidate function) and
// redirects the target's fanouts to it.  The returned trace undoes
// the edit exactly.  The caller decides whether to commit (drop the
// trace) or roll back (tr.Undo), and must check acyclicity before
// committing.
func Apply(n *ntk.Ntk, l *LAC) (*ntk.Trace, error) {
	if !n.IsNode(l.Target) {
		return nil, fmt.Errorf("lac: target %d is not a live node", l.Target)
	}
	if n.NumFanouts(l.Target) == 0 {
		return nil, ErrDangling
	}
	for _, d := range l.Divs {
		if !n.Valid(d) {
			return nil, fmt.Errorf("lac: divisor %d is dead", d)
		}
		if d == l.Target {
			return nil, fmt.Errorf("lac: divisor %d is the target", d)
		}
	}

	var sub int
	var created []int
	switch {
	case len(l.Divs) == 0:
		before := n.NumObjs()
		sub = n.ConstNode(l.Sop == ntk.SopConst1)
		if sub >= before {
			created = []int{sub}
		}
	case l.Sop == ntk.SopBuf:
		sub = l.Divs[0]
	default:
		sub = n.CreateNode(l.Divs, l.Sop)
		created = []int{sub}
	}
	return n.TempReplace(l.Target, sub, created), nil
}
