package ir

import (
	"strconv"

	"tlog.app/go/tlog/tlwire"
)

func (m Mask) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, m.String())
}

func (s Swizzle) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, s.String())
}

func (op Op) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, op.String())
}

func (s Src) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, s.String())
}

func (s Src) String() string {
	var b []byte

	if s.Neg {
		b = append(b, '-')
	}

	if s.Abs {
		b = append(b, '|')
	}

	switch s.Type {
	case TargetSSA:
		b = append(b, '%')
		b = strconv.AppendInt(b, int64(s.Node), 10)
	case TargetRegister:
		b = append(b, '$')
		b = strconv.AppendInt(b, int64(s.Reg), 10)
	case TargetPipeline:
		b = append(b, '^')
		b = append(b, s.Pipeline.String()...)
	}

	if s.Abs {
		b = append(b, '|')
	}

	b = append(b, '.')
	b = append(b, s.Swizzle.String()...)

	return string(b)
}
