package lower

import (
	"context"
	"slices"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nanu-c/mesa/compiler/ir"
	"github.com/nanu-c/mesa/compiler/set"
)

type (
	// Hook is called once the whole program is lowered.
	// It is diagnostic only and can't fail the pass.
	Hook func(ctx context.Context, p *ir.Prog)

	// FanOut connects nodes a vector node was split into
	// to the original node's predecessors and successors.
	FanOut func(p *ir.Prog, orig *ir.Node, split []*ir.Node)

	Option func(l *lowerer)

	lowerer struct {
		*ir.Prog

		tr tlog.Span

		hook   Hook
		fanOut FanOut
	}

	rule func(l *lowerer, b *ir.Block, n *ir.Node) error
)

var rules = [ir.NumOps]rule{
	ir.OpAbs:         lowerAbs,
	ir.OpNeg:         lowerNeg,
	ir.OpConst:       lowerConst,
	ir.OpRcp:         lowerVecToScalar,
	ir.OpRsqrt:       lowerVecToScalar,
	ir.OpLog2:        lowerVecToScalar,
	ir.OpExp2:        lowerVecToScalar,
	ir.OpSqrt:        lowerVecToScalar,
	ir.OpSin:         lowerSinCos,
	ir.OpCos:         lowerSinCos,
	ir.OpLt:          lowerSwapArgs,
	ir.OpLe:          lowerSwapArgs,
	ir.OpLoadTexture: lowerTexture,
	ir.OpSelect:      lowerSelect,
	ir.OpTrunc:       lowerTrunc,
	ir.OpSat:         lowerSat,
	ir.OpBranch:      lowerBranch,
}

func WithHook(h Hook) Option {
	return func(l *lowerer) { l.hook = h }
}

func WithFanOut(f FanOut) Option {
	return func(l *lowerer) { l.fanOut = f }
}

// Lower rewrites every node of p the target can't execute directly.
// The only error is ir.ErrAlloc; p is left partially rewritten then
// and must be discarded.
func Lower(ctx context.Context, p *ir.Prog, opts ...Option) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "lower: prog", "name", p.Name, "blocks", len(p.Blocks), "nodes", len(p.Nodes))
	defer tr.Finish("err", &err)

	l := &lowerer{
		Prog:   p,
		tr:     tr,
		hook:   LogHook,
		fanOut: CoarseFanOut,
	}

	for _, o := range opts {
		o(l)
	}

	for _, b := range p.Blocks {
		code := slices.Clone(b.Code)

		for _, id := range code {
			n := p.Node(id)
			if n.Deleted || n.Lowered {
				continue
			}

			f := rules[n.Op]
			if f == nil {
				continue
			}

			err = f(l, b, n)
			if err != nil {
				return errors.Wrap(err, "block %d: lower %v node %d", b.ID, n.Op, n.ID)
			}
		}
	}

	tr.Printw("lowered", "nodes", len(p.Nodes), "regs", len(p.Regs))

	if l.hook != nil {
		l.hook(ctx, p)
	}

	return nil
}

// LogHook dumps the program to the dump_prog topic and logs verification errors.
func LogHook(ctx context.Context, p *ir.Prog) {
	tr := tlog.SpanFromContext(ctx)

	if tr.If("dump_prog") {
		var dead set.Bitmap

		for _, n := range p.Nodes {
			if n.Deleted {
				dead.Set(int(n.ID))
			}
		}

		tr.Printw("deleted nodes", "n", dead.Size(), "ids", dead)

		p.Walk(func(b *ir.Block, n *ir.Node) bool {
			args := []any{"block", b.ID, "id", n.ID, "op", n.Op, "src", n.Src, "preds", n.Preds, "succs", n.Succs}
			if n.HasDest {
				args = append(args, "dest", n.Dest.Type, "mask", n.Dest.Mask)
			}

			tr.Printw("node", args...)

			return true
		})
	}

	if err := ir.Verify(p); err != nil {
		tr.Printw("verify lowered prog", "err", err)
	}
}
