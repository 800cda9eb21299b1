package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanu-c/mesa/compiler/ir"
	"github.com/nanu-c/mesa/compiler/load"
	"github.com/nanu-c/mesa/compiler/lower"
)

const prog = `
name: tex
blocks:
  - nodes:
      - {id: uv, op: ld_var, dest: {comps: 2}}
      - {id: t, op: ld_tex, src: [uv.xy], dest: {comps: 4}}
      - {id: r, op: rcp, src: [t], dest: {mask: xy}}
      - {op: st_col, src: [r]}
`

func TestLowerFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "tex.yaml")

	err := os.WriteFile(name, []byte(prog), 0o644)
	require.NoError(t, err)

	obj, err := LowerFile(context.Background(), name, Config{
		Lower: []lower.Option{lower.WithHook(nil)},
	})
	require.NoError(t, err)

	assert.Equal(t, `prog tex
block 0:
	   0: %0.xy = ld_var
	   4: ^discard = ld_coords %0.xyyy
	   1: %1.xyzw = ld_tex sampler 0 dim 0 %0.xyyy
	   5: $0.x = rcp %1.xyzw
	   6: $0.y = rcp %1.xyzw
	   3: st_col $0.xyzw
`, string(obj))
}

func TestLowerFileMissing(t *testing.T) {
	_, err := LowerFile(context.Background(), filepath.Join(t.TempDir(), "none.yaml"), Config{})
	assert.ErrorContains(t, err, "load")
}

func TestLowerNoLower(t *testing.T) {
	p, err := load.Parse(context.Background(), "tex", []byte(prog))
	require.NoError(t, err)

	err = Lower(context.Background(), p, Config{NoLower: true})
	require.NoError(t, err)

	assert.Len(t, p.Nodes, 4)
	assert.False(t, p.Node(1).Lowered)
}

func TestLowerLimits(t *testing.T) {
	p, err := load.Parse(context.Background(), "tex", []byte(prog))
	require.NoError(t, err)

	err = Lower(context.Background(), p, Config{MaxNodes: 5})
	assert.ErrorIs(t, err, ir.ErrAlloc)
	assert.Equal(t, 5, p.MaxNodes)
}

func TestLowerBadInput(t *testing.T) {
	p, err := load.Parse(context.Background(), "tex", []byte(prog))
	require.NoError(t, err)

	b := p.Block(0)
	b.Code[0], b.Code[1] = b.Code[1], b.Code[0]

	err = Lower(context.Background(), p, Config{})
	assert.ErrorContains(t, err, "verify input")

	var verr *ir.VerifyError
	assert.ErrorAs(t, err, &verr)
}
