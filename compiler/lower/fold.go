package lower

import (
	"fmt"

	"github.com/nanu-c/mesa/compiler/ir"
)

// reversed maps a comparison the hardware lacks to the one
// computing the same result with swapped operands.
var reversed = map[ir.Op]ir.Op{
	ir.OpLt: ir.OpGt,
	ir.OpLe: ir.OpGe,
}

func lowerSwapArgs(l *lowerer, b *ir.Block, n *ir.Node) error {
	op, ok := reversed[n.Op]
	if !ok {
		panic(n.Op)
	}

	if n.Kind != ir.KindALU || len(n.Src) != 2 {
		panic(fmt.Sprintf("node %d: %v with %d srcs", n.ID, n.Op, len(n.Src)))
	}

	n.Op = op
	n.Src[0], n.Src[1] = n.Src[1], n.Src[0]

	return nil
}

// lowerTrunc turns trunc into mov with the round to integer output modifier.
func lowerTrunc(l *lowerer, b *ir.Block, n *ir.Node) error {
	n.Dest.Mod = ir.OutModRound
	n.Op = ir.OpMov

	return nil
}

func lowerAbs(l *lowerer, b *ir.Block, n *ir.Node) error {
	src := single(n)

	src.Abs = true
	src.Neg = false
	n.Op = ir.OpMov

	return nil
}

func lowerNeg(l *lowerer, b *ir.Block, n *ir.Node) error {
	src := single(n)

	src.Neg = !src.Neg
	n.Op = ir.OpMov

	return nil
}

// lowerSat turns sat into mov with the clamp to [0, 1] output modifier.
func lowerSat(l *lowerer, b *ir.Block, n *ir.Node) error {
	single(n)

	n.Dest.Mod = ir.OutModClampFraction
	n.Op = ir.OpMov

	return nil
}

func single(n *ir.Node) *ir.Src {
	if len(n.Src) != 1 {
		panic(fmt.Sprintf("node %d: %v with %d srcs", n.ID, n.Op, len(n.Src)))
	}

	return &n.Src[0]
}
