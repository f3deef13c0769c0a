// Package consteval evaluates compile-time constant expressions — the
// parameter and generic defaults, overrides, and genvar-indexed
// expressions that elaboration needs folded down to a concrete value
// before it can decide a module's signal widths or generate-loop bounds.
//
// Evaluation never panics: an expression that cannot be folded (an
// unresolved identifier, division by zero, an unsupported construct)
// emits a diagnostic through the supplied Sink and returns ok=false, so
// elaboration can substitute a poison value and keep processing the rest
// of the design.
package consteval

import (
	"strconv"
	"strings"

	"github.com/sarchlab/aionhdl/ast"
	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/diagnostics"
	"github.com/sarchlab/aionhdl/ir"
)

// Env maps interned parameter/generic names to their folded constant
// value, tracking the current elaboration scope's bindings.
type Env map[common.Ident]ir.ConstValue

// Eval folds expr down to a ConstValue under env, dispatching on the
// expression's source dialect for the handful of constructs (scoped
// names, VHDL integer literals) that differ between front ends.
func Eval(expr *ast.Expr, dialect ast.Dialect, interner *common.Interner, env Env, sink *diagnostics.Sink) (ir.ConstValue, bool) {
	if expr == nil {
		return ir.ConstValue{}, false
	}

	switch expr.Kind {
	case ast.ExprLiteral:
		return evalLiteral(expr, dialect, sink)

	case ast.ExprIdent:
		if val, ok := env[expr.Name]; ok {
			return val, true
		}
		sink.Error("E209", "unknown identifier `"+interner.Resolve(expr.Name)+"`", expr.Span)
		return ir.ConstValue{}, false

	case ast.ExprScopedIdent:
		if val, ok := env[expr.Name]; ok {
			return val, true
		}
		sink.Error("E209", "unknown scoped identifier `"+interner.Resolve(expr.Name)+"`", expr.Span)
		return ir.ConstValue{}, false

	case ast.ExprBinary:
		lhs, ok := Eval(expr.Lhs, dialect, interner, env, sink)
		if !ok {
			return ir.ConstValue{}, false
		}
		rhs, ok := Eval(expr.Rhs, dialect, interner, env, sink)
		if !ok {
			return ir.ConstValue{}, false
		}
		l, ok := lhs.ToInt64()
		if !ok {
			sink.Error("E209", "operand has no integer representation", expr.Span)
			return ir.ConstValue{}, false
		}
		r, ok := rhs.ToInt64()
		if !ok {
			sink.Error("E209", "operand has no integer representation", expr.Span)
			return ir.ConstValue{}, false
		}
		result, ok := applyBinop(expr.BinOp, l, r)
		if !ok {
			sink.Error("E209", "arithmetic overflow or unsupported operator", expr.Span)
			return ir.ConstValue{}, false
		}
		return ir.Int64(result), true

	case ast.ExprUnary:
		if expr.UnaryOp != ast.UnaryMinus {
			sink.Error("E209", "non-constant unary operator", expr.Span)
			return ir.ConstValue{}, false
		}
		val, ok := Eval(expr.Operand, dialect, interner, env, sink)
		if !ok {
			return ir.ConstValue{}, false
		}
		n, ok := val.ToInt64()
		if !ok {
			sink.Error("E209", "operand has no integer representation", expr.Span)
			return ir.ConstValue{}, false
		}
		return ir.Int64(-n), true

	case ast.ExprSystemCall:
		name := interner.Resolve(expr.CallName)
		if name != "$clog2" {
			sink.Error("E209", "unsupported system function `"+name+"`", expr.Span)
			return ir.ConstValue{}, false
		}
		if len(expr.Args) != 1 {
			sink.Error("E209", "$clog2 requires exactly one argument", expr.Span)
			return ir.ConstValue{}, false
		}
		arg, ok := Eval(expr.Args[0], dialect, interner, env, sink)
		if !ok {
			return ir.ConstValue{}, false
		}
		n, ok := arg.ToInt64()
		if !ok {
			sink.Error("E209", "operand has no integer representation", expr.Span)
			return ir.ConstValue{}, false
		}
		return ir.Int64(Clog2(n)), true

	case ast.ExprParen:
		return Eval(expr.Inner, dialect, interner, env, sink)

	default:
		sink.Error("E209", "non-constant expression", expr.Span)
		return ir.ConstValue{}, false
	}
}

// Clog2 computes the ceiling of log2(n), matching $clog2 semantics:
// clog2(0) = clog2(1) = 0, clog2(2) = 1, clog2(3) = clog2(4) = 2, and so
// on, by repeatedly right-shifting n-1 until it reaches zero.
func Clog2(n int64) int64 {
	if n <= 1 {
		return 0
	}
	var result int64
	val := n - 1
	for val > 0 {
		result++
		val >>= 1
	}
	return result
}

// applyBinop folds integer arithmetic: wrapping add/sub/mul,
// division/modulo-by-zero report ok=false, and ** with a negative
// exponent yields 0 rather than failing.
func applyBinop(op ast.BinaryOp, lhs, rhs int64) (int64, bool) {
	switch op {
	case ast.BinAdd:
		return lhs + rhs, true
	case ast.BinSub:
		return lhs - rhs, true
	case ast.BinMul:
		return lhs * rhs, true
	case ast.BinDiv:
		if rhs == 0 {
			return 0, false
		}
		return lhs / rhs, true
	case ast.BinMod:
		if rhs == 0 {
			return 0, false
		}
		return lhs % rhs, true
	case ast.BinPow:
		if rhs < 0 {
			return 0, true
		}
		return wrappingPow(lhs, rhs), true
	default:
		return 0, false
	}
}

func wrappingPow(base, exp int64) int64 {
	var result int64 = 1
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return result
}

// evalLiteral parses a literal's raw source text per dialect: Verilog and
// SystemVerilog share the sized-literal grammar (`<width>'<base><digits>`,
// unsized decimal, unsized based `'hFF`); VHDL integer literals are plain
// decimal with optional underscores.
func evalLiteral(expr *ast.Expr, dialect ast.Dialect, sink *diagnostics.Sink) (ir.ConstValue, bool) {
	if dialect == ast.DialectVHDL {
		text := strings.ReplaceAll(expr.LiteralText, "_", "")
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			sink.Error("E209", "malformed integer literal `"+expr.LiteralText+"`", expr.Span)
			return ir.ConstValue{}, false
		}
		return ir.Int64(n), true
	}

	n, ok := ParseVerilogLiteral(expr.LiteralText)
	if !ok {
		sink.Error("E209", "malformed literal `"+expr.LiteralText+"`", expr.Span)
		return ir.ConstValue{}, false
	}
	return ir.Int64(n), true
}

// ParseVerilogLiteral parses a Verilog/SystemVerilog numeric literal:
// plain decimal ("42"), sized based literals ("4'b1010", "8'hFF",
// "8'o17", "32'd100"), unsized based literals ("'b1", "'hFF"), an
// optional 's'/'S' sign marker right after the tick, and underscore
// separators anywhere. x/z/? digits fold to 0: four-valued literals with
// unknown bits have no single constant value, so the folder approximates
// them as zero rather than failing the whole expression.
func ParseVerilogLiteral(text string) (int64, bool) {
	text = strings.ReplaceAll(text, "_", "")

	tickPos := strings.IndexByte(text, '\'')
	if tickPos < 0 {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	afterTick := text[tickPos+1:]
	if afterTick == "" {
		return 0, false
	}

	afterSign := afterTick
	if afterSign[0] == 's' || afterSign[0] == 'S' {
		afterSign = afterSign[1:]
	}
	if afterSign == "" {
		return 0, false
	}

	baseChar := afterSign[0]
	digits := afterSign[1:]

	var radix int
	switch baseChar {
	case 'b', 'B':
		radix = 2
	case 'o', 'O':
		radix = 8
	case 'd', 'D':
		radix = 10
	case 'h', 'H':
		radix = 16
	default:
		return 0, false
	}

	var clean strings.Builder
	for _, c := range digits {
		switch c {
		case 'x', 'X', 'z', 'Z', '?':
			clean.WriteByte('0')
		default:
			clean.WriteRune(c)
		}
	}

	n, err := strconv.ParseInt(clean.String(), radix, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
