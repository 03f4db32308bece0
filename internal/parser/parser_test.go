package parser

import (
	"testing"

	"github.com/b-macker/naab/internal/ast"
	"github.com/b-macker/naab/internal/lexer"
	"github.com/b-macker/naab/internal/types"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	l := lexer.New(src)
	p := New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, p.Errors())
	}
	return prog
}

func TestParseFunctionDecl(t *testing.T) {
	prog := parse(t, `fn add(a: int, b: int) -> int { return a + b }`)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	fn, ok := prog.Statements[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl, got %T", prog.Statements[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Errorf("got %+v", fn)
	}
	if fn.ReturnType == nil || fn.ReturnType.String() != "int" {
		t.Errorf("expected int return type, got %v", fn.ReturnType)
	}
}

func TestMainBlockRejectsParens(t *testing.T) {
	l := lexer.New(`main() { }`)
	p := New(l)
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatalf("expected an error rejecting 'main()'")
	}
}

func TestDictVsStructLiteral(t *testing.T) {
	prog := parse(t, `main { let a = {1: 2}; let b = new Point{x: 1, y: 2} }`)
	m := prog.Statements[0].(*ast.MainBlock)
	decl1 := m.Body.Statements[0].(*ast.VarDecl)
	if _, ok := decl1.Init.(*ast.DictLit); !ok {
		t.Errorf("expected DictLit, got %T", decl1.Init)
	}
	decl2 := m.Body.Statements[1].(*ast.VarDecl)
	if _, ok := decl2.Init.(*ast.StructLiteral); !ok {
		t.Errorf("expected StructLiteral, got %T", decl2.Init)
	}
}

func TestPipelineAssociativity(t *testing.T) {
	prog := parse(t, `main { let x = 1 |> inc |> double }`)
	m := prog.Statements[0].(*ast.MainBlock)
	decl := m.Body.Statements[0].(*ast.VarDecl)
	bin, ok := decl.Init.(*ast.Binary)
	if !ok || bin.Op != ast.OpPipeline {
		t.Fatalf("expected top-level pipeline binary, got %T", decl.Init)
	}
	// left-associative: (1 |> inc) |> double
	if _, ok := bin.Left.(*ast.Binary); !ok {
		t.Errorf("expected pipeline to be left-associative, got %T as left", bin.Left)
	}
}

func TestRangeExpression(t *testing.T) {
	prog := parse(t, `main { for i in 0..10 { } }`)
	m := prog.Statements[0].(*ast.MainBlock)
	f := m.Body.Statements[0].(*ast.ForStmt)
	rng, ok := f.Iter.(*ast.Range)
	if !ok {
		t.Fatalf("expected Range, got %T", f.Iter)
	}
	if rng.Inclusive {
		t.Errorf("0..10 should be a half-open range")
	}
}

func TestIndexAndMember(t *testing.T) {
	prog := parse(t, `main { let a = list[0].name }`)
	m := prog.Statements[0].(*ast.MainBlock)
	decl := m.Body.Statements[0].(*ast.VarDecl)
	mem, ok := decl.Init.(*ast.Member)
	if !ok {
		t.Fatalf("expected outer Member, got %T", decl.Init)
	}
	if _, ok := mem.Object.(*ast.Index); !ok {
		t.Errorf("expected Index as member receiver, got %T", mem.Object)
	}
}

func TestInlineCodeExpression(t *testing.T) {
	prog := parse(t, "main { let y = <<python[a]\n  a + 1\n>> }")
	m := prog.Statements[0].(*ast.MainBlock)
	decl := m.Body.Statements[0].(*ast.VarDecl)
	ic, ok := decl.Init.(*ast.InlineCode)
	if !ok {
		t.Fatalf("expected InlineCode, got %T", decl.Init)
	}
	if ic.Language != "python" {
		t.Errorf("got language %q", ic.Language)
	}
}

func TestTryCatchFinally(t *testing.T) {
	prog := parse(t, `main { try { throw 1 } catch (e) { } finally { } }`)
	m := prog.Statements[0].(*ast.MainBlock)
	try := m.Body.Statements[0].(*ast.TryStmt)
	if try.Catch == nil || try.Finally == nil {
		t.Fatalf("expected both catch and finally, got %+v", try)
	}
}

func TestStructDeclWithMethod(t *testing.T) {
	prog := parse(t, `struct Box<T> { value: T fn get() -> T { return value } }`)
	decl := prog.Statements[0].(*ast.StructDecl)
	if len(decl.TypeParams) != 1 || decl.TypeParams[0] != "T" {
		t.Fatalf("got type params %v", decl.TypeParams)
	}
	if len(decl.Fields) != 1 || len(decl.Methods) != 1 {
		t.Fatalf("got %d fields, %d methods", len(decl.Fields), len(decl.Methods))
	}
}

func TestDeepNestingGuard(t *testing.T) {
	src := "main { let x = "
	for i := 0; i < 1100; i++ {
		src += "("
	}
	src += "1"
	for i := 0; i < 1100; i++ {
		src += ")"
	}
	src += " }"
	l := lexer.New(src)
	p := New(l)
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatalf("expected the nesting guard to report an error")
	}
}

func TestParamDefaults(t *testing.T) {
	prog := parse(t, `fn greet(name: string, greeting: string = "Hello") { return }`)
	fn := prog.Statements[0].(*ast.FunctionDecl)
	if fn.Params[0].Default != nil {
		t.Errorf("first param should have no default")
	}
	if fn.Params[1].Default == nil {
		t.Fatalf("second param should carry a default expression")
	}
}

func TestDottedUseBecomesModuleUse(t *testing.T) {
	prog := parse(t, `use path.to.module as m`)
	mu, ok := prog.Statements[0].(*ast.ModuleUseStmt)
	if !ok {
		t.Fatalf("expected ModuleUseStmt, got %T", prog.Statements[0])
	}
	if mu.Path != "path/to/module" || mu.Alias != "m" {
		t.Errorf("got path %q alias %q", mu.Path, mu.Alias)
	}
}

func TestBareUseStaysBlockUse(t *testing.T) {
	prog := parse(t, `use io`)
	if _, ok := prog.Statements[0].(*ast.UseStmt); !ok {
		t.Fatalf("expected UseStmt, got %T", prog.Statements[0])
	}
}

func TestUnionTypeAnnotation(t *testing.T) {
	prog := parse(t, `fn f(x: int | string) { return }`)
	fn := prog.Statements[0].(*ast.FunctionDecl)
	ty := fn.Params[0].Type
	if ty.Kind != types.KUnion || len(ty.Alternatives) != 2 {
		t.Fatalf("expected a 2-way union, got %v", ty)
	}
}

func TestNullableUnionAndGenericTypes(t *testing.T) {
	prog := parse(t, `fn f(a: int?, b: Box<int>, c: [string]) { return }`)
	fn := prog.Statements[0].(*ast.FunctionDecl)
	if !fn.Params[0].Type.IsNullable {
		t.Errorf("a should be nullable")
	}
	if fn.Params[1].Type.Kind != types.KStruct || fn.Params[1].Type.StructName != "Box" {
		t.Errorf("b should be Box<int>, got %v", fn.Params[1].Type)
	}
	if fn.Params[2].Type.Kind != types.KList {
		t.Errorf("c should be a list type, got %v", fn.Params[2].Type)
	}
}

func TestExportLet(t *testing.T) {
	prog := parse(t, `export let version = 1`)
	ex, ok := prog.Statements[0].(*ast.ExportStmt)
	if !ok {
		t.Fatalf("expected ExportStmt, got %T", prog.Statements[0])
	}
	if _, ok := ex.Decl.(*ast.VarDecl); !ok {
		t.Fatalf("expected exported VarDecl, got %T", ex.Decl)
	}
}
