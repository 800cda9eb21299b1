package format

import (
	"strconv"

	"github.com/nikandfor/hacked/hfmt"

	"github.com/nanu-c/mesa/compiler/ir"
)

type (
	Flags int
)

const (
	// Deps appends predecessor and successor lists to every node.
	Deps Flags = 1 << iota
	// From appends the location the node was created at.
	From
	// Regs lists registers before blocks.
	Regs
)

// Prog appends a textual dump of p to b.
// The format is for people, not for tools.
func Prog(b []byte, p *ir.Prog, ff Flags) []byte {
	b = app(b, 0, "prog %s\n", p.Name)

	if ff&Regs != 0 {
		for _, r := range p.Regs {
			b = app(b, 1, "reg $%d comps %d\n", r.ID, r.NumComponents)
		}
	}

	for _, blk := range p.Blocks {
		b = app(b, 0, "block %d:", blk.ID)

		if blk.Stop {
			b = append(b, " stop"...)
		}

		b = append(b, '\n')

		for _, id := range blk.Code {
			b = Node(b, 1, p.Node(id), ff)
		}
	}

	return b
}

func Node(b []byte, d int, n *ir.Node, ff Flags) []byte {
	b = app(b, d, "%4d: ", n.ID)

	if n.HasDest {
		b = dest(b, n)
		b = append(b, " = "...)
	}

	b = append(b, n.Op.String()...)

	if n.HasDest && n.Dest.Mod != ir.OutModNone {
		b = append(b, '.')
		b = append(b, n.Dest.Mod.String()...)
	}

	switch n.Kind {
	case ir.KindBranch:
		b = cond(b, n)
	case ir.KindLoadTexture:
		b = hfmt.Appendf(b, " sampler %d dim %d", n.Sampler, n.SamplerDim)
	case ir.KindLoad, ir.KindStore:
		if n.Index != 0 {
			b = hfmt.Appendf(b, " [%d]", n.Index)
		}
	}

	for i, v := range n.Const {
		if i != 0 {
			b = append(b, ',')
		}

		b = append(b, ' ')
		b = strconv.AppendFloat(b, float64(v), 'g', -1, 32)
	}

	for i, s := range n.Src {
		if i != 0 {
			b = append(b, ',')
		}

		b = append(b, ' ')
		b = append(b, s.String()...)
	}

	if n.Kind == ir.KindBranch && n.Target != ir.NoBlock {
		b = hfmt.Appendf(b, " -> block %d", n.Target)
	}

	if ff&Deps != 0 && (len(n.Preds) != 0 || len(n.Succs) != 0) {
		b = hfmt.Appendf(b, "\t// preds %v succs %v", n.Preds, n.Succs)
	}

	if ff&From != 0 && n.From != 0 {
		b = hfmt.Appendf(b, "\t// from %v", n.From)
	}

	b = append(b, '\n')

	return b
}

func dest(b []byte, n *ir.Node) []byte {
	switch n.Dest.Type {
	case ir.TargetSSA:
		b = hfmt.Appendf(b, "%%%d", n.ID)
	case ir.TargetRegister:
		b = hfmt.Appendf(b, "$%d", n.Dest.Reg)
	case ir.TargetPipeline:
		return hfmt.Appendf(b, "^%v", n.Dest.Pipeline)
	}

	b = append(b, '.')
	b = append(b, n.Dest.Mask.String()...)

	return b
}

func cond(b []byte, n *ir.Node) []byte {
	for _, c := range []struct {
		set  bool
		name string
	}{
		{n.CondGT, "gt"},
		{n.CondEQ, "eq"},
		{n.CondLT, "lt"},
	} {
		if c.set {
			b = append(b, '.')
			b = append(b, c.name...)
		}
	}

	return b
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t"
	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
