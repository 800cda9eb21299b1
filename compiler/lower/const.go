package lower

import (
	"slices"

	"github.com/nanu-c/mesa/compiler/ir"
)

// lowerConst deletes unused constants. Constants can only feed alu nodes,
// all other consumers read them through a single mov.
func lowerConst(l *lowerer, b *ir.Block, n *ir.Node) (err error) {
	if n.IsRoot() {
		l.tr.V("lower").Printw("delete unused const", "id", n.ID)

		l.DeleteNode(n)

		return nil
	}

	var mv *ir.Node

	for _, id := range slices.Clone(n.Succs) {
		succ := l.Node(id)

		if succ.Kind == ir.KindALU {
			continue
		}

		if mv == nil {
			mv, err = l.NewNode(b, ir.OpMov)
			if err != nil {
				return err
			}

			mv.Dest = n.Dest
			mv.Src = []ir.Src{ir.SrcFor(n)}

			l.tr.V("lower").Printw("create const mov", "id", mv.ID, "for", n.ID)
		}

		l.ReplacePred(succ, n, mv)
		l.ReplaceChild(succ, n, mv)
	}

	if mv != nil {
		l.AddDep(mv, n)
		l.InsertAfter(n, mv)
	}

	return nil
}
