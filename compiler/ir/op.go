package ir

type (
	Op int

	opInfo struct {
		name   string
		kind   Kind
		scalar bool
	}
)

const (
	OpMov Op = iota
	OpAbs
	OpNeg
	OpSat
	OpAdd
	OpSum3
	OpSum4
	OpDdx
	OpDdy
	OpMul
	OpRcp
	OpSinLUT
	OpCosLUT
	OpMax
	OpMin
	OpFloor
	OpCeil
	OpFract
	OpDot2
	OpDot3
	OpDot4
	OpAnd
	OpOr
	OpXor
	OpNot
	OpLt
	OpGt
	OpLe
	OpGe
	OpEq
	OpNe
	OpSelect
	OpRsqrt
	OpLog2
	OpExp2
	OpSqrt
	OpSin
	OpCos
	OpTrunc

	OpConst

	OpLoadUniform
	OpLoadVarying
	OpLoadCoords
	OpLoadFragCoord
	OpLoadPointCoord
	OpLoadFrontFace
	OpLoadTemp

	OpLoadTexture

	OpStoreTemp
	OpStoreColor

	OpDiscard
	OpBranch

	OpUndef
	OpDummy

	NumOps
)

var ops = [NumOps]opInfo{
	OpMov:    {name: "mov"},
	OpAbs:    {name: "abs"},
	OpNeg:    {name: "neg"},
	OpSat:    {name: "sat"},
	OpAdd:    {name: "add"},
	OpSum3:   {name: "sum3"},
	OpSum4:   {name: "sum4"},
	OpDdx:    {name: "ddx"},
	OpDdy:    {name: "ddy"},
	OpMul:    {name: "mul"},
	OpRcp:    {name: "rcp", scalar: true},
	OpSinLUT: {name: "sin_lut", scalar: true},
	OpCosLUT: {name: "cos_lut", scalar: true},
	OpMax:    {name: "max"},
	OpMin:    {name: "min"},
	OpFloor:  {name: "floor"},
	OpCeil:   {name: "ceil"},
	OpFract:  {name: "fract"},
	OpDot2:   {name: "dot2"},
	OpDot3:   {name: "dot3"},
	OpDot4:   {name: "dot4"},
	OpAnd:    {name: "and"},
	OpOr:     {name: "or"},
	OpXor:    {name: "xor"},
	OpNot:    {name: "not"},
	OpLt:     {name: "lt"},
	OpGt:     {name: "gt"},
	OpLe:     {name: "le"},
	OpGe:     {name: "ge"},
	OpEq:     {name: "eq"},
	OpNe:     {name: "ne"},
	OpSelect: {name: "select"},
	OpRsqrt:  {name: "rsqrt", scalar: true},
	OpLog2:   {name: "log2", scalar: true},
	OpExp2:   {name: "exp2", scalar: true},
	OpSqrt:   {name: "sqrt", scalar: true},
	OpSin:    {name: "sin", scalar: true},
	OpCos:    {name: "cos", scalar: true},
	OpTrunc:  {name: "trunc"},

	OpConst: {name: "const", kind: KindConst},

	OpLoadUniform:    {name: "ld_uni", kind: KindLoad},
	OpLoadVarying:    {name: "ld_var", kind: KindLoad},
	OpLoadCoords:     {name: "ld_coords", kind: KindLoad},
	OpLoadFragCoord:  {name: "ld_fragcoord", kind: KindLoad},
	OpLoadPointCoord: {name: "ld_pointcoord", kind: KindLoad},
	OpLoadFrontFace:  {name: "ld_frontface", kind: KindLoad},
	OpLoadTemp:       {name: "ld_temp", kind: KindLoad},

	OpLoadTexture: {name: "ld_tex", kind: KindLoadTexture},

	OpStoreTemp:  {name: "st_temp", kind: KindStore},
	OpStoreColor: {name: "st_col", kind: KindStore},

	OpDiscard: {name: "discard", kind: KindDiscard},
	OpBranch:  {name: "branch", kind: KindBranch},

	OpUndef: {name: "undef"},
	OpDummy: {name: "dummy"},
}

func (op Op) String() string {
	if op < 0 || op >= NumOps {
		return "op?"
	}

	return ops[op].name
}

func (op Op) Kind() Kind {
	return ops[op].kind
}

// Scalar reports whether the hardware form of op writes a single component.
func (op Op) Scalar() bool {
	return ops[op].scalar
}

func (op Op) Valid() bool {
	return op >= 0 && op < NumOps
}

func OpByName(name string) (Op, bool) {
	for op := Op(0); op < NumOps; op++ {
		if ops[op].name == name {
			return op, true
		}
	}

	return 0, false
}

// HasDest reports whether nodes with op produce a value.
func (op Op) HasDest() bool {
	switch op.Kind() {
	case KindStore, KindDiscard, KindBranch:
		return false
	}

	return true
}
