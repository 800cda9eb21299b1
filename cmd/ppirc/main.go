package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nanu-c/mesa/compiler"
	"github.com/nanu-c/mesa/compiler/format"
	"github.com/nanu-c/mesa/compiler/load"
)

func main() {
	flags := func() []*cli.Flag {
		return []*cli.Flag{
			cli.NewFlag("verbosity,v", "", "tlog verbosity topics (lower, dump_prog, ...)"),
			cli.NewFlag("max-nodes", 0, "node allocation limit, 0 is unlimited"),
			cli.NewFlag("max-regs", 0, "register allocation limit, 0 is unlimited"),
			cli.NewFlag("deps", false, "print node dependencies"),
			cli.NewFlag("from", false, "print node creation location"),
		}
	}

	lowerCmd := &cli.Command{
		Name:        "lower",
		Description: "lower programs and print the result",
		Action:      lowerAct,
		Args:        cli.Args{},
		Flags:       flags(),
	}

	checkCmd := &cli.Command{
		Name:        "check",
		Description: "lower programs and check the result is legal",
		Action:      checkAct,
		Args:        cli.Args{},
		Flags:       flags(),
	}

	dumpCmd := &cli.Command{
		Name:        "dump",
		Description: "print programs as loaded",
		Action:      dumpAct,
		Args:        cli.Args{},
		Flags:       flags(),
	}

	app := &cli.Command{
		Name:        "ppirc",
		Description: "ppirc lowers lima pp dependency graphs to the target instruction set",
		Commands: []*cli.Command{
			lowerCmd,
			checkCmd,
			dumpCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func setup(c *cli.Command) (context.Context, compiler.Config) {
	tlog.SetVerbosity(c.String("verbosity"))

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	cfg := compiler.Config{
		MaxNodes: c.Int("max-nodes"),
		MaxRegs:  c.Int("max-regs"),
		Format:   format.Regs,
	}

	if c.Bool("deps") {
		cfg.Format |= format.Deps
	}

	if c.Bool("from") {
		cfg.Format |= format.From
	}

	return ctx, cfg
}

func lowerAct(c *cli.Command) (err error) {
	ctx, cfg := setup(c)

	for _, a := range c.Args {
		obj, err := compiler.LowerFile(ctx, a, cfg)
		if err != nil {
			return errors.Wrap(err, "lower %v", a)
		}

		fmt.Printf("%s", obj)
	}

	return nil
}

func checkAct(c *cli.Command) (err error) {
	ctx, cfg := setup(c)

	failed := 0

	for _, a := range c.Args {
		_, err := compiler.LowerFile(ctx, a, cfg)
		if err != nil {
			fmt.Printf("%v: %v\n", a, err)
			failed++

			continue
		}

		fmt.Printf("%v: ok\n", a)
	}

	if failed != 0 {
		return errors.New("%d of %d programs failed", failed, len(c.Args))
	}

	return nil
}

func dumpAct(c *cli.Command) (err error) {
	ctx, cfg := setup(c)

	for _, a := range c.Args {
		p, err := load.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "load %v", a)
		}

		cfg.NoLower = true

		err = compiler.Lower(ctx, p, cfg)
		if err != nil {
			return errors.Wrap(err, "%v", a)
		}

		fmt.Printf("%s", format.Prog(nil, p, cfg.Format))
	}

	return nil
}
