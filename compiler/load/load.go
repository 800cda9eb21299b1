package load

import (
	"bytes"
	"context"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nanu-c/mesa/compiler/ir"
)

type (
	File struct {
		Name     string  `yaml:"name"`
		MaxNodes int     `yaml:"max_nodes"`
		MaxRegs  int     `yaml:"max_regs"`
		Regs     []int   `yaml:"regs"` // component counts
		Blocks   []Block `yaml:"blocks"`
	}

	Block struct {
		Stop  bool   `yaml:"stop"`
		Nodes []Node `yaml:"nodes"`
	}

	Node struct {
		ID     string    `yaml:"id"`
		Op     string    `yaml:"op"`
		Dest   *Dest     `yaml:"dest"`
		Src    []string  `yaml:"src"`
		Value  []float32 `yaml:"value"`
		Deps   []string  `yaml:"deps"`
		Cond   []string  `yaml:"cond"`
		Target *int      `yaml:"target"`

		Sampler    int `yaml:"sampler"`
		SamplerDim int `yaml:"sampler_dim"`
		Index      int `yaml:"index"`
	}

	Dest struct {
		Comps    int    `yaml:"comps"`
		Mask     string `yaml:"mask"`
		Reg      *int   `yaml:"reg"`
		Pipeline string `yaml:"pipeline"`
		Mod      string `yaml:"mod"`
	}

	loader struct {
		p     *ir.Prog
		names map[string]ir.NodeID
	}
)

func ParseFile(ctx context.Context, name string) (*ir.Prog, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Parse(ctx, name, text)
}

// Parse builds a program from its yaml description.
// Dependencies follow ssa sources, register sources (on every earlier
// writer of the register in the block) and explicit deps.
func Parse(ctx context.Context, name string, text []byte) (p *ir.Prog, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "load: parse", "name", name)
	defer tr.Finish("err", &err)

	var f File

	d := yaml.NewDecoder(bytes.NewReader(text))
	d.KnownFields(true)

	err = d.Decode(&f)
	if err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}

	if f.Name == "" {
		f.Name = name
	}

	return Build(&f)
}

// Build turns a decoded description into a program.
func Build(f *File) (_ *ir.Prog, err error) {
	l := &loader{
		p:     ir.New(f.Name),
		names: map[string]ir.NodeID{},
	}

	l.p.MaxNodes = f.MaxNodes
	l.p.MaxRegs = f.MaxRegs

	for _, comps := range f.Regs {
		_, err = l.p.NewReg(comps)
		if err != nil {
			return nil, errors.Wrap(err, "reg")
		}
	}

	for bi, fb := range f.Blocks {
		b := l.p.NewBlock()
		b.Stop = fb.Stop

		for ni, fn := range fb.Nodes {
			err = l.node(b, &fn)
			if err != nil {
				return nil, errors.Wrap(err, "block %d: node %d", bi, ni)
			}
		}
	}

	for bi, fb := range f.Blocks {
		b := l.p.Block(ir.BlockID(bi))

		for ni, fn := range fb.Nodes {
			err = l.link(b, l.p.Node(b.Code[ni]), &fn)
			if err != nil {
				return nil, errors.Wrap(err, "block %d: node %d (%v)", bi, ni, fn.Op)
			}
		}
	}

	return l.p, nil
}

func (l *loader) node(b *ir.Block, fn *Node) error {
	op, ok := ir.OpByName(fn.Op)
	if !ok {
		return errors.New("unknown op: %q", fn.Op)
	}

	n, err := l.p.NewNode(b, op)
	if err != nil {
		return err
	}

	l.p.Append(b, n)

	if fn.ID != "" {
		if _, ok := l.names[fn.ID]; ok {
			return errors.New("id redefined: %v", fn.ID)
		}

		l.names[fn.ID] = n.ID
	}

	n.Const = fn.Value
	n.Sampler = fn.Sampler
	n.SamplerDim = fn.SamplerDim
	n.Index = fn.Index

	if fn.Target != nil {
		n.Target = ir.BlockID(*fn.Target)
	}

	for _, c := range fn.Cond {
		switch c {
		case "gt":
			n.CondGT = true
		case "eq":
			n.CondEQ = true
		case "lt":
			n.CondLT = true
		default:
			return errors.New("unknown branch condition: %q", c)
		}
	}

	if !n.HasDest {
		if fn.Dest != nil {
			return errors.New("%v has no dest", op)
		}

		return nil
	}

	fd := fn.Dest
	if fd == nil {
		fd = &Dest{}
	}

	return l.dest(n, fd)
}

func (l *loader) dest(n *ir.Node, fd *Dest) (err error) {
	d := &n.Dest

	d.Mask, err = ParseMask(fd.Mask)
	if err != nil {
		return errors.Wrap(err, "dest mask")
	}

	comps := fd.Comps

	switch {
	case comps != 0:
	case len(n.Const) != 0:
		comps = len(n.Const)
	case d.Mask != 0:
		c := d.Mask.Components()
		comps = c[len(c)-1] + 1
	default:
		comps = 1
	}

	if d.Mask == 0 {
		d.Mask = ir.Consecutive(comps)
	}

	d.Mod, err = parseMod(fd.Mod)
	if err != nil {
		return err
	}

	switch {
	case fd.Reg != nil:
		if *fd.Reg < 0 || *fd.Reg >= len(l.p.Regs) {
			return errors.New("unknown reg: %d", *fd.Reg)
		}

		d.Type = ir.TargetRegister
		d.Reg = ir.RegID(*fd.Reg)
	case fd.Pipeline != "":
		d.Type = ir.TargetPipeline

		d.Pipeline, err = parsePipeline(fd.Pipeline)
		if err != nil {
			return err
		}
	default:
		d.Type = ir.TargetSSA
		d.SSA = ir.NewSSA(comps)
	}

	return nil
}

func (l *loader) link(b *ir.Block, n *ir.Node, fn *Node) error {
	for i, s := range fn.Src {
		src, err := l.src(s)
		if err != nil {
			return errors.Wrap(err, "src %d", i)
		}

		n.Src = append(n.Src, src)

		switch src.Type {
		case ir.TargetSSA:
			x := l.p.Node(src.Node)

			switch {
			case x.ID == n.ID:
				return errors.New("src %d: self reference", i)
			case x.Block != n.Block:
				return errors.New("src %d: reads ssa of block %d", i, x.Block)
			}

			l.p.AddDep(n, x)
		default:
			for _, id := range b.Code[:b.Index(n.ID)] {
				w := l.p.Node(id)

				if src.Reads(w) {
					l.p.AddDep(n, w)
				}
			}
		}
	}

	for _, name := range fn.Deps {
		id, ok := l.names[name]
		if !ok {
			return errors.New("dep: undefined id: %v", name)
		}

		if id == n.ID {
			return errors.New("dep: self reference")
		}

		l.p.AddDep(n, l.p.Node(id))
	}

	return nil
}

// src parses an operand: [-][|]ref[|][.swizzle]
// where ref is a node id, $reg or ^pipeline.
func (l *loader) src(s string) (src ir.Src, err error) {
	src.Node = ir.NoNode
	src.Swizzle = ir.Identity

	if rest, ok := strings.CutPrefix(s, "-"); ok {
		src.Neg = true
		s = rest
	}

	ref, sw, _ := strings.Cut(s, ".")

	if rest, ok := strings.CutPrefix(ref, "|"); ok {
		ref, ok = strings.CutSuffix(rest, "|")
		if !ok {
			return src, errors.New("unbalanced abs: %q", s)
		}

		src.Abs = true
	}

	if sw != "" {
		src.Swizzle, err = ParseSwizzle(sw)
		if err != nil {
			return src, err
		}
	}

	switch {
	case strings.HasPrefix(ref, "$"):
		r, err := strconv.Atoi(ref[1:])
		if err != nil || r < 0 || r >= len(l.p.Regs) {
			return src, errors.New("bad reg: %q", ref)
		}

		src.Type = ir.TargetRegister
		src.Reg = ir.RegID(r)
	case strings.HasPrefix(ref, "^"):
		src.Type = ir.TargetPipeline

		src.Pipeline, err = parsePipeline(ref[1:])
		if err != nil {
			return src, err
		}
	default:
		id, ok := l.names[ref]
		if !ok {
			return src, errors.New("undefined id: %q", ref)
		}

		x := l.p.Node(id)
		if !x.HasDest {
			return src, errors.New("%v has no value", ref)
		}

		src.Retarget(x)
	}

	return src, nil
}

func ParseMask(s string) (m ir.Mask, err error) {
	for _, c := range s {
		i := strings.IndexRune("xyzw", c)
		if i < 0 {
			return 0, errors.New("bad mask: %q", s)
		}

		m |= 1 << i
	}

	return m, nil
}

// ParseSwizzle parses up to 4 lanes, the last lane is repeated.
func ParseSwizzle(s string) (sw ir.Swizzle, err error) {
	if s == "" || len(s) > 4 {
		return sw, errors.New("bad swizzle: %q", s)
	}

	for i := 0; i < 4; i++ {
		c := s[min(i, len(s)-1)]

		j := strings.IndexByte("xyzw", c)
		if j < 0 {
			return sw, errors.New("bad swizzle: %q", s)
		}

		sw[i] = uint8(j)
	}

	return sw, nil
}

func parseMod(s string) (ir.OutMod, error) {
	for m := ir.OutModNone; m <= ir.OutModRound; m++ {
		if m.String() == s {
			return m, nil
		}
	}

	return 0, errors.New("unknown output modifier: %q", s)
}

func parsePipeline(s string) (ir.Pipeline, error) {
	for p := ir.PipelineDiscard; p <= ir.PipelineFAdd; p++ {
		if p.String() == s {
			return p, nil
		}
	}

	return 0, errors.New("unknown pipeline reg: %q", s)
}
