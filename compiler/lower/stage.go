package lower

import (
	"fmt"
	"slices"

	"github.com/nanu-c/mesa/compiler/ir"
)

// lowerTexture hoists coordinate loading into its own node
// right before the sample.
func lowerTexture(l *lowerer, b *ir.Block, n *ir.Node) error {
	if len(n.Src) == 0 {
		panic(fmt.Sprintf("texture node %d has no coords", n.ID))
	}

	ld, err := l.NewNode(b, ir.OpLoadCoords)
	if err != nil {
		return err
	}

	ld.Src = []ir.Src{n.Src[0]}
	ld.Dest = ir.Dest{
		Type:     ir.TargetPipeline,
		Pipeline: ir.PipelineDiscard,
		Mask:     ir.Consecutive(min(l.Components(n.Src[0]), 4)),
	}

	l.InsertBefore(n, ld)

	for _, id := range slices.Clone(n.Preds) {
		pred := l.Node(id)

		l.RemoveDep(n, pred)
		l.AddDep(ld, pred)
	}

	l.AddDep(n, ld)

	l.tr.V("lower").Printw("create load_coords", "id", ld.ID, "for", n.ID)

	n.Lowered = true

	return nil
}

// lowerSelect puts the condition into a mov so it can take
// the float mul slot of the select instruction.
func lowerSelect(l *lowerer, b *ir.Block, n *ir.Node) error {
	cond := n.Src[0]

	mv, err := l.NewNode(b, ir.OpMov)
	if err != nil {
		return err
	}

	mv.Src = []ir.Src{{
		Type:     cond.Type,
		Node:     cond.Node,
		Reg:      cond.Reg,
		Pipeline: cond.Pipeline,
		Swizzle:  ir.Swizzle{cond.Swizzle[0]},
	}}
	mv.Dest = ir.Dest{
		Type: ir.TargetSSA,
		SSA:  ir.NewSSA(1),
		Mask: 0b0001,
	}

	l.InsertBefore(n, mv)

	for _, id := range slices.Clone(n.Preds) {
		pred := l.Node(id)

		if !cond.Reads(pred) {
			continue
		}

		l.ReplacePred(n, pred, mv)
		l.AddDep(mv, pred)
	}

	// the mov must be the first pred, so the float mul slot
	// is free when the select is put into an instruction
	if first := l.FirstPred(n); first != mv {
		panic(fmt.Sprintf("select %d: first pred is not condition mov %d: %v", n.ID, mv.ID, n.Preds))
	}

	n.Src[0].Retarget(mv)
	n.Src[0].Swizzle[0] = 0

	l.tr.V("lower").Printw("create select condition mov", "id", mv.ID, "for", n.ID)

	n.Lowered = true

	return nil
}

// lowerBranch compares the branch condition with an explicit zero.
// Every branch is turned into a "not equal to zero" test.
func lowerBranch(l *lowerer, b *ir.Block, n *ir.Node) error {
	zero, err := l.NewNode(b, ir.OpConst)
	if err != nil {
		return err
	}

	zero.Const = []float32{0}
	zero.Dest = ir.Dest{
		Type: ir.TargetSSA,
		SSA:  ir.NewSSA(1),
		Mask: 0b0001,
	}
	zero.Lowered = true

	l.InsertBefore(n, zero)

	z := ir.Src{Type: ir.TargetSSA, Node: zero.ID}

	for len(n.Src) < 2 {
		n.Src = append(n.Src, z)
	}

	n.Src[1] = z

	n.CondGT = true
	n.CondLT = true

	l.AddDep(n, zero)

	n.Lowered = true

	return nil
}
