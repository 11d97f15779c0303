// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ntk

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	ggen "github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

// fullAdder builds a 1-bit full adder: sum and carry over a, b, cin.
func fullAdder() *Ntk {
	n := New("fa")
	a := n.CreatePi("a")
	b := n.CreatePi("b")
	cin := n.CreatePi("cin")
	axb := n.CreateNode([]int{a, b}, "01 1\n10 1\n")
	sum := n.CreateNode([]int{axb, cin}, "01 1\n10 1\n")
	carry := n.CreateNode([]int{a, b, cin}, "11- 1\n1-1 1\n-11 1\n")
	n.CreatePo(sum, "sum")
	n.CreatePo(carry, "cout")
	return n
}

func TestEvalFullAdder(t *testing.T) {
	n := fullAdder()
	require.NoError(t, n.Check())
	for x := 0; x < 8; x++ {
		p := []bool{x&1 != 0, x&2 != 0, x&4 != 0}
		got := n.Eval(p)
		ones := 0
		for _, v := range p {
			if v {
				ones++
			}
		}
		require.Equal(t, ones&1 != 0, got[0], "sum of %v", p)
		require.Equal(t, ones >= 2, got[1], "carry of %v", p)
	}
}

func TestCreateDelete(t *testing.T) {
	n := New("t")
	a := n.CreatePi("a")
	b := n.CreatePi("b")
	g := n.CreateNode([]int{a, b}, "11 1\n")
	require.True(t, n.IsNode(g))
	require.Equal(t, 1, n.Size())
	require.Equal(t, []int{g}, n.FanoutIDs(a))

	require.Panics(t, func() { n.CreateNode([]int{a, b}, "1 1\n") })

	h := n.CreateNode([]int{g, g}, "11 1\n")
	require.Equal(t, 2, n.NumFanouts(g))
	require.Panics(t, func() { n.DeleteNode(g) })
	n.DeleteNode(h)
	require.False(t, n.Valid(h))
	require.Equal(t, 0, n.NumFanouts(g))
	n.DeleteNode(g)
	require.Equal(t, 0, n.NumFanouts(a))
	require.Equal(t, 0, n.Size())
}

func TestConstNode(t *testing.T) {
	n := New("t")
	c0 := n.ConstNode(false)
	require.True(t, n.IsConst0(c0))
	require.Equal(t, c0, n.ConstNode(false))
	c1 := n.ConstNode(true)
	require.True(t, n.IsConst1(c1))
	require.NotEqual(t, c0, c1)
}

func TestTopoLevelsDepth(t *testing.T) {
	n := fullAdder()
	topo := n.TopoOrder()
	require.Len(t, topo, 3)
	pos := make(map[int]int, len(topo))
	for i, id := range topo {
		pos[id] = i
	}
	for _, id := range topo {
		for _, in := range n.FaninIDs(id) {
			if !n.IsNode(in) {
				continue
			}
			require.Less(t, pos[in], pos[id], "fanin %d after node %d", in, id)
		}
	}
	lev := n.Levels()
	for _, pi := range n.Pis() {
		require.Equal(t, 0, lev[pi])
	}
	require.Equal(t, 2, n.Depth())
	require.True(t, n.IsAcyclic())
}

func TestCycleDetected(t *testing.T) {
	n := New("t")
	a := n.CreatePi("a")
	g := n.CreateNode([]int{a, a}, "11 1\n")
	h := n.CreateNode([]int{g, a}, "11 1\n")
	n.CreatePo(h, "o")
	require.True(t, n.IsAcyclic())
	// close g <- h by hand
	n.patchFanin(g, 0, h)
	require.False(t, n.IsAcyclic())
}

// equalNtk requires b to be structurally identical to a: same ids,
// kinds, names, functions and fanin order.  Fanout lists are compared
// as multisets since rollback may permute them, and b may carry extra
// dead arena slots where rolled-back helper nodes lived.
func equalNtk(t *testing.T, a, b *Ntk) {
	t.Helper()
	require.GreaterOrEqual(t, len(b.objs), len(a.objs))
	for id := len(a.objs); id < len(b.objs); id++ {
		require.Equal(t, KindNone, b.objs[id].kind, "extra slot %d is live", id)
	}
	for id := range a.objs {
		ao, bo := &a.objs[id], &b.objs[id]
		require.Equal(t, ao.kind, bo.kind, "kind of %d", id)
		require.Equal(t, ao.name, bo.name, "name of %d", id)
		require.Equal(t, ao.sop, bo.sop, "sop of %d", id)
		require.Equal(t, ao.ins, bo.ins, "fanins of %d", id)
		ax := append([]int(nil), ao.outs...)
		bx := append([]int(nil), bo.outs...)
		sort.Ints(ax)
		sort.Ints(bx)
		require.Equal(t, ax, bx, "fanouts of %d", id)
	}
	require.Equal(t, a.pis, b.pis)
	require.Equal(t, a.pos, b.pos)
}

func TestTempReplaceUndo(t *testing.T) {
	n := fullAdder()
	snap := n.Copy()

	target := n.TopoOrder()[0]
	a, b := n.PiID(0), n.PiID(1)
	sub := n.CreateNode([]int{a, b}, "00 0\n")
	tr := n.TempReplace(target, sub, []int{sub})
	require.Equal(t, 0, n.NumFanouts(target))
	require.NoError(t, n.Check())

	tr.Undo(n)
	equalNtk(t, snap, n)
	require.NoError(t, n.Check())
}

func TestTempReplaceNested(t *testing.T) {
	n := fullAdder()
	snap := n.Copy()
	topo := n.TopoOrder()

	s1 := n.ConstNode(false)
	tr1 := n.TempReplace(topo[0], s1, []int{s1})
	s2 := n.ConstNode(true)
	tr2 := n.TempReplace(topo[2], s2, []int{s2})

	tr2.Undo(n)
	tr1.Undo(n)
	equalNtk(t, snap, n)
}

// buildRandom derives a random but well-formed network from a seed.
func buildRandom(seed int64) *Ntk {
	rnd := rand.New(rand.NewSource(seed))
	n := New("rnd")
	var pool []int
	for i := 0; i < 3+rnd.Intn(4); i++ {
		pool = append(pool, n.CreatePi(""))
	}
	sops := []string{"11 1\n", "01 1\n10 1\n", "00 0\n", "10 1\n"}
	for i := 0; i < 4+rnd.Intn(12); i++ {
		a := pool[rnd.Intn(len(pool))]
		b := pool[rnd.Intn(len(pool))]
		if a == b {
			continue
		}
		pool = append(pool, n.CreateNode([]int{a, b}, sops[rnd.Intn(len(sops))]))
	}
	for i := 0; i < 2; i++ {
		n.CreatePo(pool[len(pool)-1-i], "")
	}
	return n
}

func TestReplaceUndoProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	properties.Property("undo(replace(n)) == n", prop.ForAll(
		func(seed int64) bool {
			n := buildRandom(seed)
			rnd := rand.New(rand.NewSource(seed ^ 0x5851f42d))
			var targets []int
			for id := 0; id < n.NumObjs(); id++ {
				if n.IsNode(id) && n.NumFanouts(id) > 0 {
					targets = append(targets, id)
				}
			}
			if len(targets) == 0 {
				return true
			}
			target := targets[rnd.Intn(len(targets))]
			snap := n.Copy()

			var divs []int
			for id := 0; id < n.NumObjs() && len(divs) < 2; id++ {
				if id != target && (n.IsPi(id) || n.IsNode(id)) {
					divs = append(divs, id)
				}
			}
			var sub int
			var created []int
			if len(divs) == 2 && rnd.Intn(2) == 0 {
				sub = n.CreateNode(divs, "10 1\n")
				created = []int{sub}
			} else {
				sub = n.ConstNode(rnd.Intn(2) == 0)
				if sub == n.NumObjs()-1 {
					created = []int{sub}
				}
			}
			tr := n.TempReplace(target, sub, created)
			tr.Undo(n)

			if err := n.Check(); err != nil {
				return false
			}
			if len(n.objs) < len(snap.objs) {
				return false
			}
			for id := len(snap.objs); id < len(n.objs); id++ {
				if n.objs[id].kind != KindNone {
					return false
				}
			}
			for id := range snap.objs {
				ao, bo := &snap.objs[id], &n.objs[id]
				if ao.kind != bo.kind || ao.sop != bo.sop {
					return false
				}
				if len(ao.ins) != len(bo.ins) {
					return false
				}
				for i := range ao.ins {
					if ao.ins[i] != bo.ins[i] {
						return false
					}
				}
			}
			return true
		},
		ggen.Int64(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestPropConst(t *testing.T) {
	n := New("t")
	a := n.CreatePi("a")
	c1 := n.ConstNode(true)
	g := n.CreateNode([]int{a, c1}, "11 1\n") // a AND 1 == a
	h := n.CreateNode([]int{g, c1}, "01 1\n10 1\n")
	n.CreatePo(h, "o")

	n.PropConst()
	require.NoError(t, n.Check())
	// g reduced to a buffer of a, h to an inverter of g
	require.Equal(t, []int{a}, n.FaninIDs(g))
	require.Equal(t, SopBuf, n.SopOf(g))
	require.Equal(t, []int{g}, n.FaninIDs(h))
	require.Equal(t, SopInv, n.SopOf(h))

	for x := 0; x < 2; x++ {
		got := n.Eval([]bool{x == 1})
		require.Equal(t, x == 0, got[0])
	}
}

func TestPropConstCollapse(t *testing.T) {
	n := New("t")
	a := n.CreatePi("a")
	c0 := n.ConstNode(false)
	g := n.CreateNode([]int{a, c0}, "11 1\n") // a AND 0 == 0
	h := n.CreateNode([]int{g, a}, "11 1\n")  // 0 AND a == 0
	n.CreatePo(h, "o")

	n.PropConst()
	require.True(t, n.IsConst0(g))
	require.True(t, n.IsConst0(h))
	require.NoError(t, n.Check())
}

func TestPropConstTautology(t *testing.T) {
	n := New("t")
	a := n.CreatePi("a")
	c1 := n.ConstNode(true)
	// a OR 1: folding the constant column leaves a full don't-care
	// cube, a tautology
	h := n.CreateNode([]int{a, c1}, "-1 1\n1- 1\n")
	n.CreatePo(h, "o")

	n.PropConst()
	require.True(t, n.IsConst1(h))
	require.Equal(t, 0, n.NumFanouts(a))
	require.NoError(t, n.Check())
}

func TestSweepRemovesDeadCone(t *testing.T) {
	n := fullAdder()
	topo := n.TopoOrder()
	// kill the sum output's cone: replace its driver with constant 0
	sumDrv := n.PoDriver(0)
	c0 := n.ConstNode(false)
	n.TempReplace(sumDrv, c0, []int{c0})

	n.Sweep()
	require.NoError(t, n.Check())
	require.False(t, n.Valid(sumDrv))
	// the carry node survives, the shared xor died with the sum
	require.True(t, n.Valid(topo[len(topo)-1]))
	require.Equal(t, 2, n.Size()) // carry node + the constant
	got := n.Eval([]bool{true, false, true})
	require.False(t, got[0])
	require.True(t, got[1])
}

func TestSizeGain(t *testing.T) {
	// chain: g = a&b, h = g&c, k = h&d, po(k)
	n := New("t")
	a, b, c, d := n.CreatePi("a"), n.CreatePi("b"), n.CreatePi("c"), n.CreatePi("d")
	g := n.CreateNode([]int{a, b}, "11 1\n")
	h := n.CreateNode([]int{g, c}, "11 1\n")
	k := n.CreateNode([]int{h, d}, "11 1\n")
	n.CreatePo(k, "o")

	require.Equal(t, 3, n.SizeGain(k, nil))
	require.Equal(t, 2, n.SizeGain(h, nil))
	require.Equal(t, 1, n.SizeGain(g, nil))
	// protecting h keeps g alive through it
	require.Equal(t, 1, n.SizeGain(k, []int{h}))

	// shared fanin: g feeds a second output cone, so h's cone stops at g
	m := n.CreateNode([]int{g, d}, "11 1\n")
	n.CreatePo(m, "o2")
	require.Equal(t, 1, n.SizeGain(h, nil))
}

func TestCopyIsDeep(t *testing.T) {
	n := fullAdder()
	m := n.Copy()
	g := n.TopoOrder()[0]
	c0 := n.ConstNode(false)
	n.TempReplace(g, c0, []int{c0})
	require.NoError(t, m.Check())
	require.Equal(t, 3, m.Size())
	require.True(t, m.NumFanouts(g) > 0)
}

func TestCheckCatchesAsymmetry(t *testing.T) {
	n := New("t")
	a := n.CreatePi("a")
	g := n.CreateNode([]int{a, a}, "11 1\n")
	n.CreatePo(g, "o")
	require.NoError(t, n.Check())
	// corrupt one fanout entry
	n.objs[a].outs = n.objs[a].outs[:1]
	require.Error(t, n.Check())
}

func TestCheckSop(t *testing.T) {
	require.NoError(t, CheckSop("11 1\n", 2))
	require.NoError(t, CheckSop(SopConst0, 0))
	require.Error(t, CheckSop("", 2))
	require.Error(t, CheckSop("11 1", 2))
	require.Error(t, CheckSop("1 1\n", 2))
	require.Error(t, CheckSop("1x 1\n", 2))
	require.Error(t, CheckSop("11 2\n", 2))
	require.Error(t, CheckSop("11 1\n00 0\n", 2))
}

func TestEvalSop(t *testing.T) {
	// xor
	require.False(t, EvalSop("01 1\n10 1\n", []bool{false, false}))
	require.True(t, EvalSop("01 1\n10 1\n", []bool{false, true}))
	// or via phase 0
	require.True(t, EvalSop("00 0\n", []bool{true, false}))
	require.False(t, EvalSop("00 0\n", []bool{false, false}))
	// constants
	require.False(t, EvalSop(SopConst0, nil))
	require.True(t, EvalSop(SopConst1, nil))
}
