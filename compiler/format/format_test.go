package format

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanu-c/mesa/compiler/ir"
	"github.com/nanu-c/mesa/compiler/load"
)

func TestProg(t *testing.T) {
	p, err := load.Parse(context.Background(), "fmt", []byte(`
blocks:
  - nodes:
      - {id: a, op: ld_var, dest: {comps: 4}, index: 2}
      - {id: c, op: const, value: [0.5, 2]}
      - {id: m, op: mul, src: ["-a.xy", "|c|.xyxy"], dest: {comps: 2, mod: sat}}
      - {op: st_col, src: [m]}
      - {op: branch, src: [a.x], cond: [gt, lt], target: 1}
  - stop: true
`))
	require.NoError(t, err)

	lines := strings.Split(string(Prog(nil, p, 0)), "\n")

	assert.Equal(t, []string{
		"prog fmt",
		"block 0:",
		"\t   0: %0.xyzw = ld_var [2]",
		"\t   1: %1.xy = const 0.5, 2",
		"\t   2: %2.xy = mul.sat -%0.xyyy, |%1|.xyxy",
		"\t   3: st_col %2.xyzw",
		"\t   4: branch.gt.lt %0.xxxx -> block 1",
		"block 1: stop",
		"",
	}, lines)
}

func TestNodeFlags(t *testing.T) {
	p := ir.New("flags")
	b := p.NewBlock()

	r, err := p.NewReg(4)
	require.NoError(t, err)

	ld, err := p.NewNode(b, ir.OpLoadCoords)
	require.NoError(t, err)

	ld.Dest = ir.Dest{Type: ir.TargetPipeline, Pipeline: ir.PipelineDiscard, Mask: 0b0011}

	rcp, err := p.NewNode(b, ir.OpRcp)
	require.NoError(t, err)

	rcp.Dest = ir.Dest{Type: ir.TargetRegister, Reg: r.ID, Mask: 0b0100}
	rcp.Src = []ir.Src{{Type: ir.TargetPipeline, Pipeline: ir.PipelineDiscard, Swizzle: ir.Identity}}

	p.Append(b, ld, rcp)
	p.AddDep(rcp, ld)

	assert.Equal(t, "   0: ^discard = ld_coords\n", string(Node(nil, 0, ld, 0)))
	assert.Equal(t, "   1: $0.z = rcp ^discard.xyzw\n", string(Node(nil, 0, rcp, 0)))
	assert.Equal(t, "   1: $0.z = rcp ^discard.xyzw\t// preds [0] succs []\n", string(Node(nil, 0, rcp, Deps)))

	assert.Contains(t, string(Node(nil, 0, rcp, From)), "\t// from ")

	all := string(Prog(nil, p, Regs))
	assert.True(t, strings.HasPrefix(all, "prog flags\n\treg $0 comps 4\nblock 0:\n"), "%s", all)
}
