package compiler

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nanu-c/mesa/compiler/format"
	"github.com/nanu-c/mesa/compiler/ir"
	"github.com/nanu-c/mesa/compiler/load"
	"github.com/nanu-c/mesa/compiler/lower"
)

type (
	Config struct {
		// Allocation limits, override the ones from the file if set.
		MaxNodes int
		MaxRegs  int

		// Skip the lowering pass, only load and verify.
		NoLower bool

		Format format.Flags

		Lower []lower.Option
	}
)

func LowerFile(ctx context.Context, name string, cfg Config) (obj []byte, err error) {
	p, err := load.ParseFile(ctx, name)
	if err != nil {
		return nil, errors.Wrap(err, "load")
	}

	err = Lower(ctx, p, cfg)
	if err != nil {
		return nil, err
	}

	return format.Prog(nil, p, cfg.Format), nil
}

// Lower verifies p, runs the lowering pass and checks the result
// is legal for the target.
func Lower(ctx context.Context, p *ir.Prog, cfg Config) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compiler: lower", "name", p.Name)
	defer tr.Finish("err", &err)

	if cfg.MaxNodes != 0 {
		p.MaxNodes = cfg.MaxNodes
	}

	if cfg.MaxRegs != 0 {
		p.MaxRegs = cfg.MaxRegs
	}

	err = ir.Verify(p)
	if err != nil {
		return errors.Wrap(err, "verify input")
	}

	if cfg.NoLower {
		return nil
	}

	err = lower.Lower(ctx, p, cfg.Lower...)
	if err != nil {
		return errors.Wrap(err, "lower")
	}

	err = ir.Verify(p)
	if err != nil {
		return errors.Wrap(err, "verify lowered")
	}

	err = lower.Check(p)
	if err != nil {
		return errors.Wrap(err, "check lowered")
	}

	return nil
}
