package lower

import (
	"fmt"

	"github.com/nanu-c/mesa/compiler/ir"
)

// Check reports every node the target can't execute as is.
// A program returned by Lower passes it.
func Check(p *ir.Prog) error {
	var errs []string

	add := func(n *ir.Node, format string, args ...any) {
		errs = append(errs, fmt.Sprintf("node %d (%v): ", n.ID, n.Op)+fmt.Sprintf(format, args...))
	}

	p.Walk(func(b *ir.Block, n *ir.Node) bool {
		switch n.Op {
		case ir.OpAbs, ir.OpNeg, ir.OpSat, ir.OpTrunc, ir.OpLt, ir.OpLe:
			add(n, "not a target op")
		case ir.OpSin, ir.OpCos, ir.OpLoadTexture, ir.OpSelect, ir.OpBranch:
			if !n.Lowered {
				add(n, "not lowered")
			}
		case ir.OpConst:
			if n.IsRoot() {
				add(n, "unused const")
			}
		}

		if n.Op.Scalar() && n.Dest.Mask.Count() != 1 {
			add(n, "scalar op writes %v", n.Dest.Mask)
		}

		if n.Op == ir.OpBranch && (len(n.Src) < 2 || n.Src[1].Type != ir.TargetSSA || n.Src[1].Node == ir.NoNode) {
			add(n, "no explicit comparison operand")
		}

		if n.Op == ir.OpSelect && n.Lowered {
			if first := p.FirstPred(n); first == nil || first.Op != ir.OpMov || !n.Src[0].Reads(first) {
				add(n, "condition is not staged in the first pred")
			}
		}

		if n.Kind == ir.KindALU {
			return true
		}

		for i, s := range n.Src {
			if s.Type != ir.TargetSSA || s.Node == ir.NoNode {
				continue
			}

			if n.Kind == ir.KindBranch && i == 1 {
				continue
			}

			if p.Node(s.Node).Kind == ir.KindConst {
				add(n, "src %d reads const node %d", i, s.Node)
			}
		}

		return true
	})

	if len(errs) != 0 {
		return &ir.VerifyError{Prog: p.Name, Errs: errs}
	}

	return nil
}
