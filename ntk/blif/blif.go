// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package blif reads and writes combinational networks in the
// Berkeley Logic Interchange Format.  Only the structural subset is
// supported: .model, .inputs, .outputs, .names and .end; sequential
// elements are rejected.
package blif

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chislab/als/ntk"
)

type names struct {
	ins   []string
	out   string
	cubes []string
	phase byte
}

// Read parses a BLIF model from r.
func Read(r io.Reader) (*ntk.Ntk, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<16), 1<<24)

	var model string
	var inputs, outputs []string
	var tables []*names
	var cur *names
	lineNo := 0

	for sc.Scan() {
		line := sc.Text()
		lineNo++
		// backslash continuation
		for strings.HasSuffix(line, "\\") && sc.Scan() {
			lineNo++
			line = strings.TrimSuffix(line, "\\") + " " + sc.Text()
		}
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if !strings.HasPrefix(fields[0], ".") {
			if cur == nil {
				return nil, fmt.Errorf("blif: line %d: cube outside .names", lineNo)
			}
			if err := cur.addCube(fields); err != nil {
				return nil, fmt.Errorf("blif: line %d: %w", lineNo, err)
			}
			continue
		}
		cur = nil
		switch fields[0] {
		case ".model":
			if len(fields) > 1 {
				model = fields[1]
			}
		case ".inputs":
			inputs = append(inputs, fields[1:]...)
		case ".outputs":
			outputs = append(outputs, fields[1:]...)
		case ".names":
			if len(fields) < 2 {
				return nil, fmt.Errorf("blif: line %d: .names without output", lineNo)
			}
			cur = &names{ins: fields[1 : len(fields)-1], out: fields[len(fields)-1]}
			tables = append(tables, cur)
		case ".end":
			return build(model, inputs, outputs, tables)
		case ".latch":
			return nil, fmt.Errorf("blif: line %d: sequential networks not supported", lineNo)
		default:
			return nil, fmt.Errorf("blif: line %d: unsupported construct %s", lineNo, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return build(model, inputs, outputs, tables)
}

func (t *names) addCube(fields []string) error {
	var bits, out string
	switch len(fields) {
	case 1:
		bits, out = "", fields[0]
	case 2:
		bits, out = fields[0], fields[1]
	default:
		return fmt.Errorf("bad cube %v", fields)
	}
	if len(bits) != len(t.ins) {
		return fmt.Errorf("cube width %d, .names has %d inputs", len(bits), len(t.ins))
	}
	if out != "0" && out != "1" {
		return fmt.Errorf("bad cube value %q", out)
	}
	if t.phase == 0 {
		t.phase = out[0]
	} else if t.phase != out[0] {
		return fmt.Errorf("mixed cube values for %s", t.out)
	}
	t.cubes = append(t.cubes, bits)
	return nil
}

func (t *names) sop() string {
	if len(t.cubes) == 0 {
		return ntk.SopConst0
	}
	var b strings.Builder
	for _, cube := range t.cubes {
		b.WriteString(cube)
		b.WriteByte(' ')
		b.WriteByte(t.phase)
		b.WriteByte('\n')
	}
	return b.String()
}

func build(model string, inputs, outputs []string, tables []*names) (*ntk.Ntk, error) {
	n := ntk.New(model)
	ids := make(map[string]int, len(inputs)+len(tables))
	for _, name := range inputs {
		if _, dup := ids[name]; dup {
			return nil, fmt.Errorf("blif: duplicate input %s", name)
		}
		ids[name] = n.CreatePi(name)
	}
	for _, t := range tables {
		if _, dup := ids[t.out]; dup {
			return nil, fmt.Errorf("blif: signal %s defined twice", t.out)
		}
	}
	// tables may reference signals defined further down; create nodes
	// once all their fanins resolve
	pending := append([]*names(nil), tables...)
	for len(pending) > 0 {
		made := 0
		rest := pending[:0]
		for _, t := range pending {
			ins := make([]int, 0, len(t.ins))
			ok := true
			for _, name := range t.ins {
				id, have := ids[name]
				if !have {
					ok = false
					break
				}
				ins = append(ins, id)
			}
			if !ok {
				rest = append(rest, t)
				continue
			}
			id := n.CreateNode(ins, t.sop())
			n.SetNameOf(id, t.out)
			ids[t.out] = id
			made++
		}
		if made == 0 {
			return nil, fmt.Errorf("blif: undefined or cyclic signal %s", pending[0].out)
		}
		pending = rest
	}
	for _, name := range outputs {
		id, have := ids[name]
		if !have {
			return nil, fmt.Errorf("blif: undefined output %s", name)
		}
		n.CreatePo(id, name)
	}
	if err := n.Check(); err != nil {
		return nil, fmt.Errorf("blif: %w", err)
	}
	return n, nil
}

// Write emits n as a BLIF model.  Anonymous nodes get synthesized
// names, uniquified against the network's explicit ones.
func Write(w io.Writer, n *ntk.Ntk) error {
	used := make(map[string]bool, n.NumObjs())
	explicit := make(map[int]string, n.NumObjs())
	for id := 0; id < n.NumObjs(); id++ {
		if n.Valid(id) && n.NameOf(id) != fmt.Sprintf("n%d", id) {
			explicit[id] = n.NameOf(id)
			used[n.NameOf(id)] = true
		}
	}
	fixed := make(map[int]string, n.NumObjs())
	nameOf := func(id int) string {
		if s, have := explicit[id]; have {
			return s
		}
		if s, have := fixed[id]; have {
			return s
		}
		// synthesized names may collide with explicit ones
		s := fmt.Sprintf("n%d", id)
		for used[s] {
			s += "x"
		}
		used[s] = true
		fixed[id] = s
		return s
	}

	bw := bufio.NewWriter(w)
	name := n.Name()
	if name == "" {
		name = "top"
	}
	fmt.Fprintf(bw, ".model %s\n", name)
	bw.WriteString(".inputs")
	for _, pi := range n.Pis() {
		fmt.Fprintf(bw, " %s", nameOf(pi))
	}
	bw.WriteString("\n.outputs")
	for _, po := range n.Pos() {
		fmt.Fprintf(bw, " %s", nameOf(po))
	}
	bw.WriteByte('\n')
	for _, id := range n.TopoOrder() {
		bw.WriteString(".names")
		for _, in := range n.FaninIDs(id) {
			fmt.Fprintf(bw, " %s", nameOf(in))
		}
		fmt.Fprintf(bw, " %s\n", nameOf(id))
		if n.IsConst(id) {
			if n.IsConst1(id) {
				bw.WriteString("1\n")
			}
			continue
		}
		bw.WriteString(n.SopOf(id))
	}
	// a primary output named differently from its driver needs a
	// forwarding buffer
	for i, po := range n.Pos() {
		drv := n.PoDriver(i)
		if nameOf(po) != nameOf(drv) {
			fmt.Fprintf(bw, ".names %s %s\n1 1\n", nameOf(drv), nameOf(po))
		}
	}
	bw.WriteString(".end\n")
	return bw.Flush()
}
