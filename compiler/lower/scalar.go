package lower

import (
	"math"
	"slices"

	"github.com/nanu-c/mesa/compiler/ir"
)

// CoarseFanOut gives every split node every edge of the original node.
// Dependencies are not tracked per component, so a successor reading
// one component still waits for all of them.
// Split nodes take the original's place in successor pred lists.
func CoarseFanOut(p *ir.Prog, orig *ir.Node, split []*ir.Node) {
	for _, id := range slices.Clone(orig.Succs) {
		succ := p.Node(id)

		p.ReplacePred(succ, orig, split[0])

		for i, s := range split[1:] {
			p.InsertDep(succ, s, split[i])
		}
	}

	for _, s := range split {
		for _, id := range orig.Preds {
			p.AddDep(s, p.Node(id))
		}
	}
}

// lowerVecToScalar splits a vector node of a scalar only op
// into one node per written component sharing an output register.
func lowerVecToScalar(l *lowerer, b *ir.Block, n *ir.Node) (err error) {
	comps := n.Dest.Mask.Components()
	if len(comps) <= 1 {
		return nil
	}

	var r *ir.Reg

	switch n.Dest.Type {
	case ir.TargetRegister:
		r = l.Reg(n.Dest.Reg)
	case ir.TargetSSA, ir.TargetPipeline:
		r, err = l.NewReg(max(n.Dest.SSA.NumComponents, comps[len(comps)-1]+1))
		if err != nil {
			return err
		}

		for _, id := range n.Succs {
			succ := l.Node(id)

			for i := range succ.Src {
				if succ.Src[i].Reads(n) {
					succ.Src[i].RetargetReg(r)
				}
			}
		}
	default:
		panic(n.Dest.Type)
	}

	split := make([]*ir.Node, 0, len(comps))

	for _, c := range comps {
		s, err := l.NewNode(b, n.Op)
		if err != nil {
			return err
		}

		s.Dest = ir.Dest{
			Type: ir.TargetRegister,
			Reg:  r.ID,
			Mask: 1 << c,
			Mod:  n.Dest.Mod,
		}

		s.Src = slices.Clone(n.Src)
		s.Lowered = n.Lowered

		split = append(split, s)
	}

	l.tr.V("lower").Printw("split vector node", "id", n.ID, "op", n.Op, "mask", n.Dest.Mask, "reg", r.ID, "into", len(split))

	l.InsertBefore(n, split...)
	l.fanOut(l.Prog, n, split)
	l.DeleteNode(n)

	return nil
}

// lowerSinCos scales the argument by 1/(2*pi), which the hardware expects,
// and then splits the node into scalars.
func lowerSinCos(l *lowerer, b *ir.Block, n *ir.Node) error {
	inv, err := l.NewNode(b, ir.OpConst)
	if err != nil {
		return err
	}

	inv.Const = []float32{float32(1 / (2 * math.Pi))}
	inv.Dest = ir.Dest{
		Type: ir.TargetSSA,
		SSA:  ir.NewSSA(1),
		Mask: 0b0001,
	}

	mul, err := l.NewNode(b, ir.OpMul)
	if err != nil {
		return err
	}

	comps := l.Components(n.Src[0])

	mul.Src = []ir.Src{
		n.Src[0],
		{Type: ir.TargetSSA, Node: inv.ID},
	}
	mul.Dest = ir.Dest{
		Type: ir.TargetSSA,
		SSA:  ir.NewSSA(comps),
		Mask: ir.Consecutive(comps),
	}

	l.InsertBefore(n, inv, mul)

	// modifiers are applied by the mul now
	n.Src[0] = ir.SrcFor(mul)

	for _, id := range slices.Clone(n.Preds) {
		pred := l.Node(id)

		l.RemoveDep(n, pred)
		l.AddDep(mul, pred)
	}

	l.AddDep(n, mul)
	l.AddDep(mul, inv)

	l.tr.V("lower").Printw("prescale trig node", "id", n.ID, "op", n.Op, "mul", mul.ID, "const", inv.ID)

	n.Lowered = true

	return lowerVecToScalar(l, b, n)
}
