package consteval_test

import (
	"testing"

	"github.com/sarchlab/aionhdl/ast"
	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/consteval"
	"github.com/sarchlab/aionhdl/diagnostics"
	"github.com/sarchlab/aionhdl/ir"
)

func TestParseVerilogLiteralSized(t *testing.T) {
	cases := []struct {
		text string
		want int64
	}{
		{"4'b1010", 10},
		{"8'hFF", 255},
		{"8'o17", 15},
		{"32'd100", 100},
		{"42", 42},
		{"1_000", 1000},
		{"'hFF", 255},
		{"8'sd5", 5},
	}
	for _, c := range cases {
		got, ok := consteval.ParseVerilogLiteral(c.text)
		if !ok || got != c.want {
			t.Errorf("ParseVerilogLiteral(%q) = (%d, %v), want (%d, true)", c.text, got, ok, c.want)
		}
	}
}

func TestParseVerilogLiteralUnknownBitsFoldToZero(t *testing.T) {
	got, ok := consteval.ParseVerilogLiteral("4'bxx01")
	if !ok || got != 1 {
		t.Fatalf("got (%d, %v), want (1, true)", got, ok)
	}
}

func TestParseVerilogLiteralMalformed(t *testing.T) {
	if _, ok := consteval.ParseVerilogLiteral("'"); ok {
		t.Fatal("expected failure for bare tick")
	}
	if _, ok := consteval.ParseVerilogLiteral("4'q10"); ok {
		t.Fatal("expected failure for unknown base character")
	}
}

func TestClog2(t *testing.T) {
	cases := map[int64]int64{0: 0, 1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 9: 4}
	for n, want := range cases {
		if got := consteval.Clog2(n); got != want {
			t.Errorf("Clog2(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestEvalBinaryArithmetic(t *testing.T) {
	interner := common.NewInterner()
	sink := diagnostics.NewSink()
	env := consteval.Env{}

	expr := &ast.Expr{
		Kind:  ast.ExprBinary,
		BinOp: ast.BinAdd,
		Lhs:   &ast.Expr{Kind: ast.ExprLiteral, LiteralText: "3"},
		Rhs:   &ast.Expr{Kind: ast.ExprLiteral, LiteralText: "4"},
	}
	val, ok := consteval.Eval(expr, ast.DialectVerilog, interner, env, sink)
	if !ok {
		t.Fatal("expected successful evaluation")
	}
	n, _ := val.ToInt64()
	if n != 7 {
		t.Fatalf("3+4 = %d, want 7", n)
	}
	if sink.HasErrors() {
		t.Fatal("expected no diagnostics")
	}
}

func TestEvalDivisionByZeroEmitsDiagnosticAndFails(t *testing.T) {
	interner := common.NewInterner()
	sink := diagnostics.NewSink()
	env := consteval.Env{}

	expr := &ast.Expr{
		Kind:  ast.ExprBinary,
		BinOp: ast.BinDiv,
		Lhs:   &ast.Expr{Kind: ast.ExprLiteral, LiteralText: "1"},
		Rhs:   &ast.Expr{Kind: ast.ExprLiteral, LiteralText: "0"},
	}
	_, ok := consteval.Eval(expr, ast.DialectVerilog, interner, env, sink)
	if ok {
		t.Fatal("expected division by zero to fail evaluation")
	}
	if !sink.HasErrors() {
		t.Fatal("expected a diagnostic to be emitted")
	}
}

func TestEvalPowNegativeExponentYieldsZero(t *testing.T) {
	interner := common.NewInterner()
	sink := diagnostics.NewSink()
	env := consteval.Env{}

	expr := &ast.Expr{
		Kind:  ast.ExprBinary,
		BinOp: ast.BinPow,
		Lhs:   &ast.Expr{Kind: ast.ExprLiteral, LiteralText: "2"},
		Rhs:   &ast.Expr{Kind: ast.ExprLiteral, LiteralText: "-1"},
	}
	val, ok := consteval.Eval(expr, ast.DialectVerilog, interner, env, sink)
	if !ok {
		t.Fatal("expected negative exponent to still yield a value")
	}
	n, _ := val.ToInt64()
	if n != 0 {
		t.Fatalf("2**-1 = %d, want 0", n)
	}
}

func TestEvalUnknownIdentifierEmitsE209(t *testing.T) {
	interner := common.NewInterner()
	sink := diagnostics.NewSink()
	env := consteval.Env{}

	name := interner.GetOrIntern("WIDTH")
	expr := &ast.Expr{Kind: ast.ExprIdent, Name: name}
	_, ok := consteval.Eval(expr, ast.DialectVerilog, interner, env, sink)
	if ok {
		t.Fatal("expected failure for unbound identifier")
	}
	all := sink.TakeAll()
	if len(all) != 1 || all[0].Code != "E209" {
		t.Fatalf("expected a single E209 diagnostic, got %+v", all)
	}
}

func TestEvalClog2SystemCall(t *testing.T) {
	interner := common.NewInterner()
	sink := diagnostics.NewSink()
	env := consteval.Env{}

	callName := interner.GetOrIntern("$clog2")
	expr := &ast.Expr{
		Kind:     ast.ExprSystemCall,
		CallName: callName,
		Args:     []*ast.Expr{{Kind: ast.ExprLiteral, LiteralText: "9"}},
	}
	val, ok := consteval.Eval(expr, ast.DialectVerilog, interner, env, sink)
	if !ok {
		t.Fatal("expected $clog2 to succeed")
	}
	n, _ := val.ToInt64()
	if n != 4 {
		t.Fatalf("$clog2(9) = %d, want 4", n)
	}
}

func TestEvalVHDLIntegerLiteral(t *testing.T) {
	interner := common.NewInterner()
	sink := diagnostics.NewSink()
	env := consteval.Env{}

	expr := &ast.Expr{Kind: ast.ExprLiteral, LiteralText: "1_000"}
	val, ok := consteval.Eval(expr, ast.DialectVHDL, interner, env, sink)
	if !ok {
		t.Fatal("expected VHDL literal to parse")
	}
	n, _ := val.ToInt64()
	if n != 1000 {
		t.Fatalf("got %d, want 1000", n)
	}
}

func TestEvalIdentFromEnv(t *testing.T) {
	interner := common.NewInterner()
	sink := diagnostics.NewSink()
	name := interner.GetOrIntern("WIDTH")
	env := consteval.Env{name: ir.Int64(8)}

	expr := &ast.Expr{Kind: ast.ExprIdent, Name: name}
	val, ok := consteval.Eval(expr, ast.DialectVerilog, interner, env, sink)
	if !ok {
		t.Fatal("expected bound identifier to resolve")
	}
	n, _ := val.ToInt64()
	if n != 8 {
		t.Fatalf("got %d, want 8", n)
	}
}
