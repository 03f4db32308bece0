package evaluator

import (
	"strconv"
	"strings"

	"github.com/b-macker/naab/internal/ast"
	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/lexer"
	"github.com/b-macker/naab/internal/runtime"
)

// evalExpr evaluates one expression in env.
func (i *Interp) evalExpr(env *runtime.Environment, expr ast.Expression) (*runtime.Value, error) {
	i.currentEnv = env
	switch e := expr.(type) {
	case *ast.Literal:
		return i.evalLiteral(e)
	case *ast.Identifier:
		return i.evalIdentifier(env, e)
	case *ast.Binary:
		return i.evalBinary(env, e)
	case *ast.Unary:
		return i.evalUnary(env, e)
	case *ast.Assign:
		return i.evalAssign(env, e)
	case *ast.ListLit:
		return i.evalListLit(env, e)
	case *ast.DictLit:
		return i.evalDictLit(env, e)
	case *ast.Range:
		return i.evalRange(env, e)
	case *ast.Index:
		return i.evalIndex(env, e)
	case *ast.Member:
		return i.evalMember(env, e)
	case *ast.Call:
		return i.evalCall(env, e)
	case *ast.StructLiteral:
		return i.evalStructLiteral(env, e)
	case *ast.InlineCode:
		return i.evalInlineCode(env, e)
	default:
		return nil, i.fail(diag.RuntimeError, expr.Pos(), "unsupported expression %T", expr)
	}
}

func (i *Interp) evalLiteral(e *ast.Literal) (*runtime.Value, error) {
	switch e.Kind {
	case ast.LitInt:
		n, err := strconv.ParseInt(e.Text, 10, 64)
		if err != nil {
			return nil, i.fail(diag.SyntaxError, e.Pos(), "invalid integer literal %q", e.Text)
		}
		return runtime.Int(n), nil
	case ast.LitFloat:
		f, err := strconv.ParseFloat(e.Text, 64)
		if err != nil {
			return nil, i.fail(diag.SyntaxError, e.Pos(), "invalid float literal %q", e.Text)
		}
		return runtime.Float(f), nil
	case ast.LitString:
		return runtime.String(e.Text), nil
	case ast.LitBool:
		return runtime.Bool(e.Text == "true"), nil
	default:
		return runtime.Null(), nil
	}
}

func (i *Interp) evalIdentifier(env *runtime.Environment, e *ast.Identifier) (*runtime.Value, error) {
	if v, ok := env.Get(e.Name); ok {
		return v, nil
	}
	return nil, i.undefined(env, e.Pos(), e.Name)
}

// undefined renders the "Undefined variable" diagnostic with a "did you
// mean" suggestion drawn from every name in scope.
func (i *Interp) undefined(env *runtime.Environment, pos lexer.Position, name string) error {
	if hint := diag.Suggest(name, env.AllNames()); hint != "" {
		return i.fail(diag.ReferenceError, pos, "Undefined variable %q; did you mean %q?", name, hint)
	}
	return i.fail(diag.ReferenceError, pos, "Undefined variable %q", name)
}

func (i *Interp) evalUnary(env *runtime.Environment, e *ast.Unary) (*runtime.Value, error) {
	v, err := i.evalExpr(env, e.Operand)
	if err != nil {
		return nil, err
	}
	i.gc.NotifyAlloc()
	switch e.Op {
	case ast.OpNeg:
		switch v.Kind {
		case runtime.KInt:
			return runtime.Int(-v.I), nil
		case runtime.KFloat:
			return runtime.Float(-v.F), nil
		default:
			return nil, i.fail(diag.TypeError, e.Pos(), "cannot negate %s", describeValue(v))
		}
	case ast.OpNot:
		return runtime.Bool(!v.ToBool()), nil
	default:
		return nil, i.fail(diag.RuntimeError, e.Pos(), "unknown unary operator")
	}
}

func (i *Interp) evalBinary(env *runtime.Environment, e *ast.Binary) (*runtime.Value, error) {
	if e.Op == ast.OpPipeline {
		return i.evalPipeline(env, e)
	}
	left, err := i.evalExpr(env, e.Left)
	if err != nil {
		return nil, err
	}

	// && and || short-circuit before the right side is touched.
	switch e.Op {
	case ast.OpAnd:
		if !left.ToBool() {
			return runtime.Bool(false), nil
		}
		right, err := i.evalExpr(env, e.Right)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(right.ToBool()), nil
	case ast.OpOr:
		if left.ToBool() {
			return runtime.Bool(true), nil
		}
		right, err := i.evalExpr(env, e.Right)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(right.ToBool()), nil
	}

	right, err := i.evalExpr(env, e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.OpEq:
		// Equality is string-form equality after ToString on both sides.
		// This equates e.g. 1 and "1" — documented behavior, kept by
		// explicit direction rather than silently corrected.
		return runtime.Bool(left.ToString() == right.ToString()), nil
	case ast.OpNeq:
		return runtime.Bool(left.ToString() != right.ToString()), nil
	case ast.OpAdd:
		return i.evalAdd(e, left, right)
	case ast.OpSub, ast.OpMul, ast.OpMod:
		return i.evalArith(e, left, right)
	case ast.OpDiv:
		// Div is always float division.
		lf, lok := left.ToFloat()
		rf, rok := right.ToFloat()
		if !lok || !rok {
			return nil, i.fail(diag.TypeError, e.Pos(), "cannot divide %s by %s", describeValue(left), describeValue(right))
		}
		if rf == 0 {
			return nil, i.fail(diag.RuntimeError, e.Pos(), "division by zero")
		}
		i.gc.NotifyAlloc()
		return runtime.Float(lf / rf), nil
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return i.evalCompare(e, left, right)
	default:
		return nil, i.fail(diag.RuntimeError, e.Pos(), "unknown binary operator %s", e.Op)
	}
}

func (i *Interp) evalAdd(e *ast.Binary, left, right *runtime.Value) (*runtime.Value, error) {
	// String concatenation wins when either operand is a string.
	if left.Kind == runtime.KString || right.Kind == runtime.KString {
		i.gc.NotifyAlloc()
		return runtime.String(left.ToString() + right.ToString()), nil
	}
	// List + List produces a fresh list that aliases neither operand.
	if left.Kind == runtime.KList && right.Kind == runtime.KList {
		out := make([]*runtime.Value, 0, len(left.List)+len(right.List))
		out = append(out, left.List...)
		out = append(out, right.List...)
		return i.alloc(runtime.List(out)), nil
	}
	return i.evalArith(e, left, right)
}

func (i *Interp) evalArith(e *ast.Binary, left, right *runtime.Value) (*runtime.Value, error) {
	lf, lok := left.ToFloat()
	rf, rok := right.ToFloat()
	if !lok || !rok {
		return nil, i.fail(diag.TypeError, e.Pos(), "cannot apply %s to %s and %s",
			e.Op, describeValue(left), describeValue(right))
	}
	isFloat := left.Kind == runtime.KFloat || right.Kind == runtime.KFloat
	i.gc.NotifyAlloc()
	if isFloat {
		switch e.Op {
		case ast.OpAdd:
			return runtime.Float(lf + rf), nil
		case ast.OpSub:
			return runtime.Float(lf - rf), nil
		case ast.OpMul:
			return runtime.Float(lf * rf), nil
		case ast.OpMod:
			return nil, i.fail(diag.TypeError, e.Pos(), "modulo requires integer operands")
		}
	}
	li, _ := left.ToInt()
	ri, _ := right.ToInt()
	switch e.Op {
	case ast.OpAdd:
		return runtime.Int(li + ri), nil
	case ast.OpSub:
		return runtime.Int(li - ri), nil
	case ast.OpMul:
		return runtime.Int(li * ri), nil
	case ast.OpMod:
		if ri == 0 {
			return nil, i.fail(diag.RuntimeError, e.Pos(), "modulo by zero")
		}
		return runtime.Int(li % ri), nil
	}
	return nil, i.fail(diag.RuntimeError, e.Pos(), "unknown arithmetic operator %s", e.Op)
}

func (i *Interp) evalCompare(e *ast.Binary, left, right *runtime.Value) (*runtime.Value, error) {
	if left.Kind == runtime.KString && right.Kind == runtime.KString {
		switch e.Op {
		case ast.OpLt:
			return runtime.Bool(left.Str < right.Str), nil
		case ast.OpLe:
			return runtime.Bool(left.Str <= right.Str), nil
		case ast.OpGt:
			return runtime.Bool(left.Str > right.Str), nil
		default:
			return runtime.Bool(left.Str >= right.Str), nil
		}
	}
	lf, lok := left.ToFloat()
	rf, rok := right.ToFloat()
	if !lok || !rok {
		return nil, i.fail(diag.TypeError, e.Pos(), "cannot compare %s with %s",
			describeValue(left), describeValue(right))
	}
	switch e.Op {
	case ast.OpLt:
		return runtime.Bool(lf < rf), nil
	case ast.OpLe:
		return runtime.Bool(lf <= rf), nil
	case ast.OpGt:
		return runtime.Bool(lf > rf), nil
	default:
		return runtime.Bool(lf >= rf), nil
	}
}

// evalPipeline threads the left value into the right side as its first
// argument: `x |> f` is `f(x)`, `x |> f(a)` is `f(x, a)`.
func (i *Interp) evalPipeline(env *runtime.Environment, e *ast.Binary) (*runtime.Value, error) {
	left, err := i.evalExpr(env, e.Left)
	if err != nil {
		return nil, err
	}
	if call, ok := e.Right.(*ast.Call); ok {
		callee, err := i.evalExpr(env, call.Callee)
		if err != nil {
			return nil, err
		}
		args := []*runtime.Value{left}
		for _, a := range call.Args {
			v, err := i.evalExpr(env, a)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return i.invoke(env, callee, args, call.TypeArgs, call.Pos())
	}
	callee, err := i.evalExpr(env, e.Right)
	if err != nil {
		return nil, err
	}
	return i.invoke(env, callee, []*runtime.Value{left}, nil, e.Pos())
}

func (i *Interp) evalAssign(env *runtime.Environment, e *ast.Assign) (*runtime.Value, error) {
	v, err := i.evalExpr(env, e.Value)
	if err != nil {
		return nil, err
	}
	switch target := e.Target.(type) {
	case *ast.Identifier:
		return v, i.assignIdentifier(env, target, v)
	case *ast.Index:
		return v, i.assignIndex(env, target, v)
	case *ast.Member:
		return v, i.assignMember(env, target, v)
	default:
		return nil, i.fail(diag.RuntimeError, e.Pos(), "invalid assignment target")
	}
}

func (i *Interp) assignIdentifier(env *runtime.Environment, target *ast.Identifier, v *runtime.Value) error {
	// A reference parameter's cell is mutated in place so the caller
	// observes the write.
	if len(i.refStack) > 0 {
		if cell, ok := i.refStack[len(i.refStack)-1][target.Name]; ok {
			*cell = *v
			return nil
		}
	}
	if !env.Set(target.Name, bindCell(v)) {
		return i.undefined(env, target.Pos(), target.Name)
	}
	return nil
}

func (i *Interp) assignIndex(env *runtime.Environment, target *ast.Index, v *runtime.Value) error {
	obj, err := i.evalExpr(env, target.Object)
	if err != nil {
		return err
	}
	key, err := i.evalExpr(env, target.Key)
	if err != nil {
		return err
	}
	switch obj.Kind {
	case runtime.KList:
		idx, ok := key.ToInt()
		if !ok {
			return i.fail(diag.TypeError, target.Pos(), "list index must be an integer, got %s", describeValue(key))
		}
		if idx < 0 || idx >= int64(len(obj.List)) {
			return i.fail(diag.RuntimeError, target.Pos(), "list index %d out of bounds (length %d)", idx, len(obj.List))
		}
		obj.List[idx] = v
		return nil
	case runtime.KDict:
		obj.Dict.Set(key.ToString(), v)
		return nil
	default:
		return i.fail(diag.TypeError, target.Pos(), "cannot index-assign into %s", describeValue(obj))
	}
}

func (i *Interp) assignMember(env *runtime.Environment, target *ast.Member, v *runtime.Value) error {
	obj, err := i.evalExpr(env, target.Object)
	if err != nil {
		return err
	}
	switch obj.Kind {
	case runtime.KStruct:
		if _, ok := obj.Struct.Fields.Get(target.Name); !ok {
			return i.unknownField(target.Pos(), obj.Struct.TypeName, target.Name, obj.Struct.Fields.Keys())
		}
		// Struct field assignment is type-checked against the declared
		// field type.
		if def, ok := i.structs.Get(obj.Struct.TypeName); ok {
			if ft := def.FieldType(target.Name); ft != nil && !i.matches(ft, v) {
				return i.fail(diag.TypeError, target.Pos(), "field %s.%s expects %s, got %s",
					obj.Struct.TypeName, target.Name, ft, describeValue(v))
			}
		}
		obj.Struct.Fields.Set(target.Name, v)
		return nil
	case runtime.KDict:
		obj.Dict.Set(target.Name, v)
		return nil
	default:
		return i.fail(diag.TypeError, target.Pos(), "cannot assign to member %q of %s", target.Name, describeValue(obj))
	}
}

func (i *Interp) evalListLit(env *runtime.Environment, e *ast.ListLit) (*runtime.Value, error) {
	items := make([]*runtime.Value, len(e.Elements))
	for idx, el := range e.Elements {
		v, err := i.evalExpr(env, el)
		if err != nil {
			return nil, err
		}
		items[idx] = v
	}
	return i.alloc(runtime.List(items)), nil
}

func (i *Interp) evalDictLit(env *runtime.Environment, e *ast.DictLit) (*runtime.Value, error) {
	d := runtime.NewOrderedDict()
	for _, entry := range e.Entries {
		// The parser rejects bareword keys; any other key expression is
		// evaluated here and coerced to its string form.
		key, err := i.evalExpr(env, entry.Key)
		if err != nil {
			return nil, err
		}
		val, err := i.evalExpr(env, entry.Value)
		if err != nil {
			return nil, err
		}
		d.Set(key.ToString(), val)
	}
	return i.alloc(runtime.Dict(d)), nil
}

func (i *Interp) evalRange(env *runtime.Environment, e *ast.Range) (*runtime.Value, error) {
	start, err := i.evalExpr(env, e.Start)
	if err != nil {
		return nil, err
	}
	end, err := i.evalExpr(env, e.End)
	if err != nil {
		return nil, err
	}
	s, sok := start.ToInt()
	en, eok := end.ToInt()
	if !sok || !eok {
		return nil, i.fail(diag.TypeError, e.Pos(), "range bounds must be integers, got %s and %s",
			describeValue(start), describeValue(end))
	}
	i.gc.NotifyAlloc()
	return runtime.Range(s, en, e.Inclusive), nil
}

func (i *Interp) evalIndex(env *runtime.Environment, e *ast.Index) (*runtime.Value, error) {
	obj, err := i.evalExpr(env, e.Object)
	if err != nil {
		return nil, err
	}
	key, err := i.evalExpr(env, e.Key)
	if err != nil {
		return nil, err
	}
	switch obj.Kind {
	case runtime.KList:
		idx, ok := key.ToInt()
		if !ok {
			return nil, i.fail(diag.TypeError, e.Pos(), "list index must be an integer, got %s", describeValue(key))
		}
		if idx < 0 || idx >= int64(len(obj.List)) {
			return nil, i.fail(diag.RuntimeError, e.Pos(), "list index %d out of bounds (length %d)", idx, len(obj.List))
		}
		return obj.List[idx], nil
	case runtime.KDict:
		k := key.ToString()
		v, ok := obj.Dict.Get(k)
		if !ok {
			return nil, i.fail(diag.RuntimeError, e.Pos(), "dict has no key %q", k)
		}
		return v, nil
	case runtime.KString:
		idx, ok := key.ToInt()
		runes := []rune(obj.Str)
		if !ok || idx < 0 || idx >= int64(len(runes)) {
			return nil, i.fail(diag.RuntimeError, e.Pos(), "string index %s out of bounds (length %d)", key.ToString(), len(runes))
		}
		return runtime.String(string(runes[idx])), nil
	default:
		return nil, i.fail(diag.TypeError, e.Pos(), "cannot subscript %s", describeValue(obj))
	}
}

func (i *Interp) evalInlineCode(env *runtime.Environment, e *ast.InlineCode) (*runtime.Value, error) {
	lookup := func(name string) (*runtime.Value, bool) { return env.Get(name) }
	v, err := i.dispatcher.ExecuteInline(e.Language, e.Code, e.BoundVars, lookup)
	if err != nil {
		// Executor failures surface as BlockErrors with the foreign
		// message embedded.
		return nil, i.fail(diag.BlockError, e.Pos(), "%s block failed: %v", e.Language, err)
	}
	if v == nil {
		v = runtime.Null()
	}
	i.gc.NotifyAlloc()
	return v, nil
}

func (i *Interp) unknownField(pos lexer.Position, typeName, field string, known []string) error {
	if hint := diag.Suggest(field, known); hint != "" {
		return i.fail(diag.TypeError, pos, "struct %s has no field %q; did you mean %q?", typeName, field, hint)
	}
	return i.fail(diag.TypeError, pos, "struct %s has no field %q (fields: %s)",
		typeName, field, strings.Join(known, ", "))
}
