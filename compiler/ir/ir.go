package ir

import (
	"math"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
)

type (
	NodeID  int
	RegID   int
	BlockID int

	Kind       uint8
	TargetType uint8
	Pipeline   uint8
	OutMod     uint8

	// Mask is a 4 bit component write mask, bit i selects component i.
	Mask uint8

	Swizzle [4]uint8

	Prog struct {
		Name string

		Blocks []*Block

		Nodes []*Node `tlog:"-"`
		Regs  []*Reg  `tlog:"-"`

		// Allocation limits, 0 means unlimited.
		MaxNodes int
		MaxRegs  int
	}

	Block struct {
		ID   BlockID
		Code []NodeID

		Stop bool
	}

	Node struct {
		ID    NodeID
		Op    Op
		Kind  Kind
		Block BlockID

		Dest    Dest
		HasDest bool

		Src []Src

		Const []float32 // const

		Sampler    int // load_texture
		SamplerDim int

		Index int // load, store

		CondGT, CondEQ, CondLT bool // branch
		Target                 BlockID

		Preds []NodeID
		Succs []NodeID

		Lowered bool
		Deleted bool

		From loc.PC
	}

	// SSA is a single producer value. Its identity is the producing node.
	SSA struct {
		NumComponents int
		LiveIn        int
		LiveOut       int
	}

	Reg struct {
		ID            RegID
		NumComponents int
		LiveIn        int
		LiveOut       int
		IsHead        bool
	}

	Dest struct {
		Type     TargetType
		SSA      SSA
		Reg      RegID
		Pipeline Pipeline

		Mask Mask
		Mod  OutMod
	}

	Src struct {
		Type     TargetType
		Node     NodeID
		Reg      RegID
		Pipeline Pipeline

		Swizzle Swizzle
		Abs     bool
		Neg     bool
	}
)

const (
	KindALU Kind = iota
	KindConst
	KindLoad
	KindLoadTexture
	KindStore
	KindDiscard
	KindBranch
)

const (
	TargetSSA TargetType = iota
	TargetRegister
	TargetPipeline
)

const (
	PipelineDiscard Pipeline = iota
	PipelineConst
	PipelineUniform
	PipelineSampler
	PipelineFMul
	PipelineFAdd
)

const (
	OutModNone OutMod = iota
	OutModClampFraction
	OutModClampPositive
	OutModRound
)

const (
	NoNode  NodeID  = -1
	NoBlock BlockID = -1
)

var ErrAlloc = errors.New("allocation failed")

// Identity swizzle: lane i reads component i.
var Identity = Swizzle{0, 1, 2, 3}

// NewSSA returns an ssa value with liveness not observed yet.
func NewSSA(n int) SSA {
	return SSA{
		NumComponents: n,
		LiveIn:        math.MaxInt,
		LiveOut:       0,
	}
}

// Consecutive returns mask with n low bits set.
func Consecutive(n int) Mask {
	return Mask(1<<n - 1)
}

func (m Mask) Components() (c []int) {
	for i := 0; i < 4; i++ {
		if m&(1<<i) != 0 {
			c = append(c, i)
		}
	}

	return c
}

func (m Mask) Count() (n int) {
	for i := 0; i < 4; i++ {
		if m&(1<<i) != 0 {
			n++
		}
	}

	return n
}

func (m Mask) String() string {
	if m == 0 {
		return "_"
	}

	b := make([]byte, 0, 4)

	for _, c := range m.Components() {
		b = append(b, "xyzw"[c])
	}

	return string(b)
}

func (s Swizzle) String() string {
	b := make([]byte, 4)

	for i, c := range s {
		b[i] = "xyzw"[c&3]
	}

	return string(b)
}

func (k Kind) String() string {
	switch k {
	case KindALU:
		return "alu"
	case KindConst:
		return "const"
	case KindLoad:
		return "load"
	case KindLoadTexture:
		return "load_texture"
	case KindStore:
		return "store"
	case KindDiscard:
		return "discard"
	case KindBranch:
		return "branch"
	default:
		return "kind?"
	}
}

func (p Pipeline) String() string {
	switch p {
	case PipelineDiscard:
		return "discard"
	case PipelineConst:
		return "const"
	case PipelineUniform:
		return "uniform"
	case PipelineSampler:
		return "sampler"
	case PipelineFMul:
		return "fmul"
	case PipelineFAdd:
		return "fadd"
	default:
		return "pipeline?"
	}
}

func (m OutMod) String() string {
	switch m {
	case OutModNone:
		return ""
	case OutModClampFraction:
		return "sat"
	case OutModClampPositive:
		return "pos"
	case OutModRound:
		return "int"
	default:
		return "mod?"
	}
}

// SrcFor makes a source reading everything n's destination writes.
func SrcFor(n *Node) Src {
	s := Src{
		Type:    n.Dest.Type,
		Node:    NoNode,
		Reg:     n.Dest.Reg,
		Swizzle: Identity,
	}

	switch n.Dest.Type {
	case TargetSSA:
		s.Node = n.ID
	case TargetPipeline:
		s.Pipeline = n.Dest.Pipeline
	}

	return s
}

// Reads reports whether s reads the value n's destination writes.
func (s Src) Reads(n *Node) bool {
	if !n.HasDest || s.Type != n.Dest.Type {
		return false
	}

	switch s.Type {
	case TargetSSA:
		return s.Node == n.ID
	case TargetRegister:
		return s.Reg == n.Dest.Reg
	case TargetPipeline:
		return s.Pipeline == n.Dest.Pipeline
	}

	return false
}

// Retarget makes s read the value n writes, keeping swizzle and modifiers.
func (s *Src) Retarget(n *Node) {
	s.Type = n.Dest.Type
	s.Node = NoNode
	s.Reg = 0
	s.Pipeline = 0

	switch n.Dest.Type {
	case TargetSSA:
		s.Node = n.ID
	case TargetRegister:
		s.Reg = n.Dest.Reg
	case TargetPipeline:
		s.Pipeline = n.Dest.Pipeline
	}
}

func (s *Src) RetargetReg(r *Reg) {
	s.Type = TargetRegister
	s.Node = NoNode
	s.Reg = r.ID
	s.Pipeline = 0
}
