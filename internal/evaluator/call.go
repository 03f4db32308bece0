package evaluator

import (
	"strings"

	"github.com/b-macker/naab/internal/ast"
	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/lexer"
	"github.com/b-macker/naab/internal/runtime"
	"github.com/b-macker/naab/internal/structs"
	"github.com/b-macker/naab/internal/types"
)

// evalCall evaluates arguments left-to-right and dispatches by callee
// kind: user function, block value or block member, stdlib-call marker,
// or a built-in name.
func (i *Interp) evalCall(env *runtime.Environment, e *ast.Call) (*runtime.Value, error) {
	// Builtins and unknown names are decided before argument evaluation
	// only for the error path; arguments always evaluate first for a
	// resolvable callee.
	if id, ok := e.Callee.(*ast.Identifier); ok {
		if _, bound := env.Get(id.Name); !bound {
			if isBuiltin(id.Name) {
				args, err := i.evalArgs(env, e.Args)
				if err != nil {
					return nil, err
				}
				return i.callBuiltin(env, id.Name, args, e.Pos())
			}
			return nil, i.undefined(env, e.Pos(), id.Name)
		}
	}

	callee, err := i.evalExpr(env, e.Callee)
	if err != nil {
		return nil, err
	}

	// Reference parameters need the caller's cells, so argument cells are
	// collected alongside the values when the callee is a user function.
	if callee.Kind == runtime.KFunction {
		return i.callUserFunction(env, callee.Fn, e, e.TypeArgs)
	}

	args, err := i.evalArgs(env, e.Args)
	if err != nil {
		return nil, err
	}
	return i.invoke(env, callee, args, e.TypeArgs, e.Pos())
}

func (i *Interp) evalArgs(env *runtime.Environment, exprs []ast.Expression) ([]*runtime.Value, error) {
	args := make([]*runtime.Value, len(exprs))
	for idx, a := range exprs {
		v, err := i.evalExpr(env, a)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}
	return args, nil
}

// invoke dispatches an already-evaluated callee with already-evaluated
// arguments; used by pipelines, stdlib callbacks, and block calls.
func (i *Interp) invoke(env *runtime.Environment, callee *runtime.Value, args []*runtime.Value, typeArgs []*types.Type, pos lexer.Position) (*runtime.Value, error) {
	switch callee.Kind {
	case runtime.KFunction:
		return i.callFunctionValue(callee, args, typeArgs, pos)
	case runtime.KBlock:
		return i.callBlock(env, callee.Block, args, pos)
	case runtime.KString:
		if payload, ok := markerPayload(callee.Str, stdlibCallMarker); ok {
			return i.callStdlib(payload, args, pos)
		}
	}
	return nil, i.fail(diag.TypeError, pos, "%s is not callable", describeValue(callee))
}

// callBlock routes a block value or block member accessor through the
// polyglot dispatcher.
func (i *Interp) callBlock(env *runtime.Environment, bv *runtime.BlockValue, args []*runtime.Value, pos lexer.Position) (*runtime.Value, error) {
	if len(bv.MemberPath) > 0 {
		v, err := i.dispatcher.CallMember(bv.Language, strings.Join(bv.MemberPath, "."), args)
		if err != nil {
			return nil, i.fail(diag.BlockError, pos, "%s.%s failed: %v", bv.Language, strings.Join(bv.MemberPath, "."), err)
		}
		return v, nil
	}
	lookup := func(name string) (*runtime.Value, bool) { return env.Get(name) }
	v, err := i.dispatcher.ExecuteInline(bv.Language, bv.Code, nil, lookup)
	if err != nil {
		return nil, i.fail(diag.BlockError, pos, "%s block failed: %v", bv.Language, err)
	}
	return v, nil
}

func (i *Interp) callStdlib(payload string, args []*runtime.Value, pos lexer.Position) (*runtime.Value, error) {
	dot := strings.IndexByte(payload, '.')
	if dot < 0 {
		return nil, i.fail(diag.RuntimeError, pos, "malformed stdlib call %q", payload)
	}
	v, err := i.host.Call(payload[:dot], payload[dot+1:], args)
	if err != nil {
		if d, ok := err.(*diag.Diagnostic); ok {
			return nil, d.WithStack(i.stack.Snapshot())
		}
		return nil, err
	}
	if v == nil {
		v = runtime.Null()
	}
	return v, nil
}

// callUserFunction evaluates a Call node against a user function,
// capturing caller cells for reference parameters.
func (i *Interp) callUserFunction(env *runtime.Environment, fv *runtime.FunctionValue, e *ast.Call, typeArgs []*types.Type) (*runtime.Value, error) {
	decl := fv.Decl
	args := make([]*runtime.Value, len(e.Args))
	cells := make([]*runtime.Value, len(e.Args))
	for idx, a := range e.Args {
		v, err := i.evalExpr(env, a)
		if err != nil {
			return nil, err
		}
		args[idx] = v
		if idx < len(decl.Params) && decl.Params[idx].Type != nil && decl.Params[idx].Type.IsReference {
			if _, isIdent := a.(*ast.Identifier); !isIdent {
				return nil, i.fail(diag.RuntimeError, a.Pos(),
					"cannot bind reference parameter %q to a non-addressable expression", decl.Params[idx].Name)
			}
			cells[idx] = v
		}
	}
	return i.call(fv, args, cells, typeArgs, e.Pos())
}

// callFunctionValue invokes fn with plain values (no reference cells);
// the entry point for pipelines and stdlib higher-order callbacks.
func (i *Interp) callFunctionValue(fn *runtime.Value, args []*runtime.Value, typeArgs []*types.Type, pos lexer.Position) (*runtime.Value, error) {
	if fn == nil || fn.Kind != runtime.KFunction {
		return nil, i.fail(diag.TypeError, pos, "value is not a function")
	}
	return i.call(fn.Fn, args, make([]*runtime.Value, len(args)), typeArgs, pos)
}

// call is the single user-function invocation path: fresh
// environment descending from the closure, reference/value parameter
// binding, defaults evaluated in the callee environment, argument and
// return type checks, stack-frame push/pop, and control-flag restoration.
func (i *Interp) call(fv *runtime.FunctionValue, args []*runtime.Value, cells []*runtime.Value, typeArgs []*types.Type, pos lexer.Position) (*runtime.Value, error) {
	decl := fv.Decl
	if i.stack.Depth() >= i.maxCallDepth {
		return nil, i.fail(diag.RuntimeError, pos, "call stack exceeds %d frames (possible infinite recursion)", i.maxCallDepth)
	}
	if len(args) > len(decl.Params) {
		return nil, i.fail(diag.TypeError, pos, "%s expects %d argument(s), got %d", decl.Name, len(decl.Params), len(args))
	}

	// Generic calls bind a substitution map for the duration of the call.
	subst, err := i.bindTypeParams(decl, args, typeArgs, pos)
	if err != nil {
		return nil, err
	}

	callEnv := runtime.NewEnclosed(fv.Env)
	refs := make(map[string]*runtime.Value)

	for idx, param := range decl.Params {
		var v *runtime.Value
		switch {
		case idx < len(args):
			v = args[idx]
		case param.Default != nil:
			// Defaults are evaluated in the callee environment after the
			// positional arguments are bound.
			dv, derr := i.evalExpr(callEnv, param.Default)
			if derr != nil {
				return nil, derr
			}
			v = dv
		default:
			return nil, i.fail(diag.TypeError, pos, "%s: missing argument for parameter %q", decl.Name, param.Name)
		}

		if param.Type != nil && !i.matchesWith(param.Type, v, subst) {
			return nil, i.fail(diag.TypeError, pos, "%s: parameter %q expects %s, got %s",
				decl.Name, param.Name, i.substitute(param.Type, subst), describeValue(v))
		}

		if param.Type != nil && param.Type.IsReference {
			cell := v
			if idx < len(cells) && cells[idx] != nil {
				cell = cells[idx]
			}
			callEnv.Define(param.Name, cell)
			refs[param.Name] = cell
		} else {
			callEnv.Define(param.Name, bindCell(v.DeepCopy()))
		}
	}

	i.stack.Push(diag.Frame{Function: decl.Name, File: i.file, Line: pos.Line, Column: pos.Column})
	if subst != nil {
		i.substStack = append(i.substStack, subst)
	}
	i.refStack = append(i.refStack, refs)

	// The caller's control state is saved so the callee cannot leak a
	// pending break/continue outward.
	savedReturning, savedBreaking, savedContinuing := i.returning, i.breaking, i.continuing
	savedReturn := i.returnValue
	i.returning, i.breaking, i.continuing = false, false, false
	i.returnValue = nil

	bodyErr := i.execCompound(callEnv, decl.Body)

	result := i.returnValue
	if result == nil {
		result = runtime.Null()
	}

	i.returning, i.breaking, i.continuing = savedReturning, savedBreaking, savedContinuing
	i.returnValue = savedReturn
	i.refStack = i.refStack[:len(i.refStack)-1]
	if subst != nil {
		i.substStack = i.substStack[:len(i.substStack)-1]
	}
	i.stack.Pop()

	if bodyErr != nil {
		return nil, bodyErr
	}

	retType := decl.ReturnType
	if retType == nil {
		retType = i.inferReturnType(fv)
	}
	if retType != nil && retType.Kind != types.KVoid && result.Kind != runtime.KNull {
		if !i.matchesWith(retType, result, subst) {
			return nil, i.fail(diag.TypeError, pos, "%s: return value expects %s, got %s",
				decl.Name, i.substitute(retType, subst), describeValue(result))
		}
	}
	if retType != nil && retType.Kind != types.KVoid && result.Kind == runtime.KNull && !retType.IsNullable && retType.Kind != types.KAny {
		if i.hasExplicitReturn(decl.Body) {
			return nil, i.fail(diag.TypeError, pos, "%s: return value expects %s, got null", decl.Name, i.substitute(retType, subst))
		}
	}
	return result, nil
}

// evalStructLiteral constructs a struct value, monomorphizing generic
// definitions at the construction site.
func (i *Interp) evalStructLiteral(env *runtime.Environment, e *ast.StructLiteral) (*runtime.Value, error) {
	def, ok := i.structs.Get(e.Name)
	if !ok {
		return nil, i.fail(diag.TypeError, e.Pos(), "unknown struct %q", e.Name)
	}

	// Evaluate field initializers in declaration order of the literal.
	inits := make(map[string]*runtime.Value, len(e.Fields))
	for _, f := range e.Fields {
		if def.FieldType(f.Name) == nil && !def.IsGeneric() {
			return nil, i.unknownField(e.Pos(), e.Name, f.Name, fieldNames(def))
		}
		v, err := i.evalExpr(env, f.Value)
		if err != nil {
			return nil, err
		}
		inits[f.Name] = v
	}

	target := def
	if def.IsGeneric() {
		spec, err := i.specialize(def, e, inits)
		if err != nil {
			return nil, err
		}
		target = spec
	}

	fields := runtime.NewOrderedDict()
	for _, fd := range target.Fields {
		v, supplied := inits[fd.Name]
		if !supplied {
			if fd.Type != nil && fd.Type.IsNullable {
				v = runtime.Null()
			} else {
				return nil, i.fail(diag.TypeError, e.Pos(), "struct %s: missing initializer for field %q", target.Name, fd.Name)
			}
		}
		if fd.Type != nil && !i.matches(fd.Type, v) {
			return nil, i.fail(diag.TypeError, e.Pos(), "field %s.%s expects %s, got %s",
				target.Name, fd.Name, fd.Type, describeValue(v))
		}
		fields.Set(fd.Name, v)
	}
	for name := range inits {
		if target.FieldType(name) == nil {
			return nil, i.unknownField(e.Pos(), target.Name, name, fieldNames(target))
		}
	}

	// The specialization's mangled name is the value's whole type
	// identity; type arguments stay on the registered Def.
	sv := &runtime.StructValue{TypeName: target.Name, Fields: fields}
	return i.alloc(runtime.Struct(sv)), nil
}

// specialize resolves a generic struct's type arguments (explicit, or
// inferred from the supplied initializers), applies the substitution to
// every field type, and registers the specialization if new.
func (i *Interp) specialize(def *structs.Def, e *ast.StructLiteral, inits map[string]*runtime.Value) (*structs.Def, error) {
	subst := make(map[string]*types.Type, len(def.TypeParameters))
	if len(e.TypeArgs) > 0 {
		if len(e.TypeArgs) != len(def.TypeParameters) {
			return nil, i.fail(diag.TypeError, e.Pos(), "struct %s expects %d type argument(s), got %d",
				def.Name, len(def.TypeParameters), len(e.TypeArgs))
		}
		for idx, name := range def.TypeParameters {
			subst[name] = e.TypeArgs[idx]
		}
	} else {
		for _, fd := range def.Fields {
			if v, ok := inits[fd.Name]; ok {
				unify(fd.Type, v.TypeOf(), subst)
			}
		}
	}

	typeArgs := make([]*types.Type, len(def.TypeParameters))
	for idx, name := range def.TypeParameters {
		t, ok := subst[name]
		if !ok {
			i.warnf("struct %s: type parameter %s could not be inferred; defaulting to any", def.Name, name)
			t = types.Any()
			subst[name] = t
		}
		typeArgs[idx] = t
	}

	fields := make([]structs.FieldDef, len(def.Fields))
	for idx, fd := range def.Fields {
		fields[idx] = structs.FieldDef{Name: fd.Name, Type: i.substitute(fd.Type, subst)}
	}

	spec, _, err := i.structs.Specialize(def, typeArgs, fields)
	if err != nil {
		return nil, i.fail(diag.TypeError, e.Pos(), "%v", err)
	}
	return spec, nil
}

func fieldNames(def *structs.Def) []string {
	names := make([]string, len(def.Fields))
	for idx, f := range def.Fields {
		names[idx] = f.Name
	}
	return names
}
