package ir

import (
	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/fourval"
)

// ConstEnv maps interned parameter/genvar names to their folded constant
// value. Used both by consteval while folding expressions and by the
// elaborator while propagating per-instance parameter overrides.
type ConstEnv = map[common.Ident]ConstValue

// ConstKind distinguishes the shapes a compile-time constant can take.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstReal
	ConstBool
	ConstLogic
	ConstString
)

// ConstValue is a compile-time constant produced by const-expression
// folding during elaboration: a parameter value, a genvar value, or a
// literal. Only the field matching Kind is populated.
type ConstValue struct {
	Kind ConstKind
	Int  int64
	Real float64
	Bool bool
	Vec  fourval.Vec
	Str  string
}

// Int64 returns a ConstValue wrapping an integer.
func Int64(n int64) ConstValue { return ConstValue{Kind: ConstInt, Int: n} }

// RealValue returns a ConstValue wrapping a real.
func RealValue(f float64) ConstValue { return ConstValue{Kind: ConstReal, Real: f} }

// BoolValue returns a ConstValue wrapping a bool.
func BoolValue(b bool) ConstValue { return ConstValue{Kind: ConstBool, Bool: b} }

// LogicValue returns a ConstValue wrapping a four-valued vector.
func LogicValue(v fourval.Vec) ConstValue { return ConstValue{Kind: ConstLogic, Vec: v} }

// StringValue returns a ConstValue wrapping a string.
func StringValue(s string) ConstValue { return ConstValue{Kind: ConstString, Str: s} }

// ToInt64 coerces v to an int64: Int passes through, Real truncates
// toward zero, Bool maps to 1/0, and Logic/String have no natural integer
// mapping and report ok=false.
func (v ConstValue) ToInt64() (n int64, ok bool) {
	switch v.Kind {
	case ConstInt:
		return v.Int, true
	case ConstReal:
		return int64(v.Real), true
	case ConstBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
