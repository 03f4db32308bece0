package evaluator

import (
	"github.com/b-macker/naab/internal/ast"
	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/modules"
	"github.com/b-macker/naab/internal/runtime"
	"github.com/b-macker/naab/internal/structs"
)

// execStmt executes one statement in env. Control-flow exits are
// communicated through the returning/breaking/continuing flags; thrown
// errors propagate as *diag.Diagnostic values.
func (i *Interp) execStmt(env *runtime.Environment, stmt ast.Statement) error {
	i.currentEnv = env
	switch s := stmt.(type) {
	case *ast.Compound:
		return i.execCompound(runtime.NewEnclosed(env), s)
	case *ast.ExprStmt:
		_, err := i.evalExpr(env, s.X)
		return err
	case *ast.VarDecl:
		return i.execVarDecl(env, s)
	case *ast.IfStmt:
		return i.execIf(env, s)
	case *ast.WhileStmt:
		return i.execWhile(env, s)
	case *ast.ForStmt:
		return i.execFor(env, s)
	case *ast.BreakStmt:
		i.breaking = true
		return nil
	case *ast.ContinueStmt:
		i.continuing = true
		return nil
	case *ast.ReturnStmt:
		if s.Value != nil {
			v, err := i.evalExpr(env, s.Value)
			if err != nil {
				return err
			}
			i.returnValue = v
		} else {
			i.returnValue = runtime.Null()
		}
		i.returning = true
		return nil
	case *ast.ThrowStmt:
		return i.execThrow(env, s)
	case *ast.TryStmt:
		return i.execTry(env, s)
	case *ast.FunctionDecl:
		return i.execFunctionDecl(env, s, false)
	case *ast.StructDecl:
		return i.execStructDecl(env, s, false)
	case *ast.EnumDecl:
		return i.execEnumDecl(env, s, false)
	case *ast.UseStmt:
		return i.execUse(env, s)
	case *ast.ModuleUseStmt:
		return i.execModuleUse(env, s)
	case *ast.ImportStmt:
		return i.execImport(env, s)
	case *ast.ExportStmt:
		return i.execExport(env, s)
	case *ast.MainBlock:
		return i.fail(diag.SyntaxError, s.Pos(), "main block is only allowed at the top level of the entry file")
	default:
		return i.fail(diag.RuntimeError, stmt.Pos(), "unsupported statement %T", stmt)
	}
}

// execCompound runs stmts in env, stopping early when a control-flow flag
// is raised by a child.
func (i *Interp) execCompound(env *runtime.Environment, c *ast.Compound) error {
	i.envStack = append(i.envStack, env)
	defer func() { i.envStack = i.envStack[:len(i.envStack)-1] }()
	for _, stmt := range c.Statements {
		i.trace("exec %T at %s", stmt, stmt.Pos())
		if err := i.execStmt(env, stmt); err != nil {
			return err
		}
		if i.returning || i.breaking || i.continuing {
			return nil
		}
	}
	return nil
}

func (i *Interp) execVarDecl(env *runtime.Environment, s *ast.VarDecl) error {
	var v *runtime.Value
	if s.Init != nil {
		val, err := i.evalExpr(env, s.Init)
		if err != nil {
			return err
		}
		v = val
	} else {
		v = runtime.Null()
	}

	declared := s.Type
	if declared == nil {
		if s.Init == nil {
			return i.fail(diag.TypeError, s.Pos(), "cannot declare %q without a type or an initializer", s.Name)
		}
		if v.Kind == runtime.KNull {
			// `let x = null` with no annotation is ambiguous.
			return i.fail(diag.TypeError, s.Pos(), "cannot infer a type for %q from null; add a type annotation", s.Name)
		}
		declared = v.TypeOf()
	} else if !i.matches(declared, v) {
		return i.fail(diag.TypeError, s.Pos(), "type mismatch for %q: expected %s, got %s",
			s.Name, declared, describeValue(v))
	}

	env.Define(s.Name, bindCell(v))
	return nil
}

// bindCell gives scalar values a fresh cell so later rebinding of one
// variable never disturbs another, while structured values keep their
// shared cell so aliasing through multiple variables and containers
// works.
func bindCell(v *runtime.Value) *runtime.Value {
	switch v.Kind {
	case runtime.KList, runtime.KDict, runtime.KStruct, runtime.KFunction,
		runtime.KBlock, runtime.KForeignObject:
		return v
	default:
		cp := *v
		return &cp
	}
}

func (i *Interp) execIf(env *runtime.Environment, s *ast.IfStmt) error {
	cond, err := i.evalExpr(env, s.Cond)
	if err != nil {
		return err
	}
	if cond.ToBool() {
		return i.execCompound(runtime.NewEnclosed(env), s.Then)
	}
	if s.Else != nil {
		switch e := s.Else.(type) {
		case *ast.IfStmt:
			return i.execIf(env, e)
		case *ast.Compound:
			return i.execCompound(runtime.NewEnclosed(env), e)
		default:
			return i.execStmt(env, s.Else)
		}
	}
	return nil
}

func (i *Interp) execWhile(env *runtime.Environment, s *ast.WhileStmt) error {
	for {
		cond, err := i.evalExpr(env, s.Cond)
		if err != nil {
			return err
		}
		if !cond.ToBool() {
			return nil
		}
		if err := i.execCompound(runtime.NewEnclosed(env), s.Body); err != nil {
			return err
		}
		if i.breaking {
			i.breaking = false
			return nil
		}
		i.continuing = false
		if i.returning {
			return nil
		}
	}
}

func (i *Interp) execFor(env *runtime.Environment, s *ast.ForStmt) error {
	iter, err := i.evalExpr(env, s.Iter)
	if err != nil {
		return err
	}

	runBody := func(item *runtime.Value) (stop bool, err error) {
		bodyEnv := runtime.NewEnclosed(env)
		bodyEnv.Define(s.Var, bindCell(item))
		if err := i.execCompound(bodyEnv, s.Body); err != nil {
			return true, err
		}
		if i.breaking {
			i.breaking = false
			return true, nil
		}
		i.continuing = false
		if i.returning {
			return true, nil
		}
		return false, nil
	}

	switch iter.Kind {
	case runtime.KRange:
		end := iter.RangeEnd
		if iter.RangeInclusive {
			end++
		}
		for n := iter.RangeStart; n < end; n++ {
			if stop, err := runBody(runtime.Int(n)); stop {
				return err
			}
		}
		return nil
	case runtime.KList:
		for _, item := range iter.List {
			if stop, err := runBody(item); stop {
				return err
			}
		}
		return nil
	case runtime.KDict:
		for _, k := range iter.Dict.Keys() {
			if stop, err := runBody(runtime.String(k)); stop {
				return err
			}
		}
		return nil
	case runtime.KString:
		for _, r := range iter.Str {
			if stop, err := runBody(runtime.String(string(r))); stop {
				return err
			}
		}
		return nil
	default:
		return i.fail(diag.TypeError, s.Pos(), "cannot iterate over %s", describeValue(iter))
	}
}

func (i *Interp) execThrow(env *runtime.Environment, s *ast.ThrowStmt) error {
	v, err := i.evalExpr(env, s.Value)
	if err != nil {
		return err
	}
	d := diag.New(diag.Generic, "%s", v.ToString())
	d.Payload = v
	return d.WithStack(i.stack.Snapshot())
}

// execTry implements the exception protocol: the catch body runs in a
// child scope with the payload bound, and the finally body always runs —
// an error raised by finally supersedes any prior one.
func (i *Interp) execTry(env *runtime.Environment, s *ast.TryStmt) error {
	bodyErr := i.execCompound(runtime.NewEnclosed(env), s.Body)

	if bodyErr != nil && s.Catch != nil {
		catchEnv := runtime.NewEnclosed(env)
		catchEnv.Define(s.Catch.Name, payloadOf(bodyErr))
		bodyErr = i.execCompound(catchEnv, s.Catch.Body)
	}

	if s.Finally != nil {
		// finally runs on every path; it must not observe a pending
		// return/break/continue from the protected body as its own.
		ret, brk, cont := i.returning, i.breaking, i.continuing
		retVal := i.returnValue
		i.returning, i.breaking, i.continuing = false, false, false
		finErr := i.execCompound(runtime.NewEnclosed(env), s.Finally)
		if finErr != nil {
			i.returning, i.breaking, i.continuing = false, false, false
			return finErr
		}
		if !i.returning && !i.breaking && !i.continuing {
			i.returning, i.breaking, i.continuing = ret, brk, cont
			i.returnValue = retVal
		}
	}
	return bodyErr
}

// payloadOf recovers the thrown Value from an error: user throws carry
// their payload, while internal diagnostics surface their message as a
// string so catch(e) can always bind something printable.
func payloadOf(err error) *runtime.Value {
	if d, ok := err.(*diag.Diagnostic); ok {
		if v, ok := d.Payload.(*runtime.Value); ok && v != nil {
			return v
		}
		return runtime.String(d.Message)
	}
	return runtime.String(err.Error())
}

func (i *Interp) execFunctionDecl(env *runtime.Environment, s *ast.FunctionDecl, exported bool) error {
	fv := runtime.Function(&runtime.FunctionValue{Decl: s, Env: env})
	env.Define(s.Name, fv)
	if exported {
		env.MarkExportedFunction(s.Name, fv)
	}
	return nil
}

func (i *Interp) execStructDecl(env *runtime.Environment, s *ast.StructDecl, exported bool) error {
	def := &structs.Def{
		Name:           s.Name,
		TypeParameters: s.TypeParams,
	}
	for _, f := range s.Fields {
		def.Fields = append(def.Fields, structs.FieldDef{Name: f.Name, Type: f.Type})
	}
	if err := i.structs.Register(def); err != nil {
		return i.fail(diag.TypeError, s.Pos(), "%v", err)
	}
	if len(s.Methods) > 0 {
		table := i.methods[s.Name]
		if table == nil {
			table = make(map[string]*ast.FunctionDecl)
			i.methods[s.Name] = table
		}
		for _, m := range s.Methods {
			table[m.Name] = m
		}
	}
	if exported {
		env.MarkExportedStruct(s.Name)
	}
	return nil
}

func (i *Interp) execEnumDecl(env *runtime.Environment, s *ast.EnumDecl, exported bool) error {
	i.enums[s.Name] = s.Members
	env.Define(s.Name, runtime.String(enumMarker+s.Name))
	if exported {
		env.MarkExportedEnum(s.Name)
	}
	return nil
}

// execUse handles the single-name `use id [as alias]` form, ambiguous
// between a stdlib module, a file module, and a registry block: stdlib
// wins, then a resolvable module file; an unknown id is a BlockError
// since driving the block registry is the external driver's job.
func (i *Interp) execUse(env *runtime.Environment, s *ast.UseStmt) error {
	alias := s.Alias
	if alias == "" {
		alias = s.BlockID
	}
	if i.host.Has(s.BlockID) {
		env.Define(alias, runtime.String(stdlibModuleMarker+s.BlockID))
		return nil
	}
	if m, err := i.resolver.Load(s.BlockID, i.moduleDirOf()); err == nil {
		env.Define(alias, runtime.String(userModuleMarker+m.Path))
		return nil
	}
	return i.fail(diag.BlockError, s.Pos(),
		"unknown module or block %q: not a stdlib module, not a resolvable module file, and the block registry is not available to the core", s.BlockID)
}

func (i *Interp) execModuleUse(env *runtime.Environment, s *ast.ModuleUseStmt) error {
	m, err := i.resolver.Load(s.Path, i.moduleDirOf())
	if err != nil {
		if d, ok := err.(*diag.Diagnostic); ok {
			return d.WithStack(i.stack.Snapshot())
		}
		return err
	}
	alias := s.Alias
	if alias == "" {
		alias = m.Basename()
	}
	env.Define(alias, runtime.String(userModuleMarker+m.Path))
	return nil
}

// execImport copies individual symbols (or, with a wildcard, the module
// marker itself) from an already-loaded module into the current scope.
func (i *Interp) execImport(env *runtime.Environment, s *ast.ImportStmt) error {
	m, err := i.resolver.Load(s.Path, i.moduleDirOf())
	if err != nil {
		if d, ok := err.(*diag.Diagnostic); ok {
			return d.WithStack(i.stack.Snapshot())
		}
		return err
	}
	if s.WildcardAlias != "" {
		env.Define(s.WildcardAlias, runtime.String(userModuleMarker+m.Path))
		return nil
	}
	for _, item := range s.Items {
		v, ok := m.Env.GetLocal(item.Name)
		if !ok {
			candidates := m.Env.AllNames()
			msg := "module %q has no symbol %q"
			if hint := diag.Suggest(item.Name, candidates); hint != "" {
				return i.fail(diag.ImportError, s.Pos(), msg+"; did you mean %q?", s.Path, item.Name, hint)
			}
			return i.fail(diag.ImportError, s.Pos(), msg, s.Path, item.Name)
		}
		name := item.Name
		if item.Alias != "" {
			name = item.Alias
		}
		env.Define(name, v)
	}
	return nil
}

func (i *Interp) execExport(env *runtime.Environment, s *ast.ExportStmt) error {
	switch d := s.Decl.(type) {
	case *ast.FunctionDecl:
		return i.execFunctionDecl(env, d, true)
	case *ast.StructDecl:
		return i.execStructDecl(env, d, true)
	case *ast.EnumDecl:
		return i.execEnumDecl(env, d, true)
	case *ast.VarDecl:
		if err := i.execVarDecl(env, d); err != nil {
			return err
		}
		if v, ok := env.GetLocal(d.Name); ok {
			env.MarkExportedVariable(d.Name, v)
		}
		return nil
	default:
		// `export <expr>` is the default-export form: evaluate and expose
		// under the conventional name "default".
		if es, ok := s.Decl.(*ast.ExprStmt); ok {
			v, err := i.evalExpr(env, es.X)
			if err != nil {
				return err
			}
			env.Define("default", v)
			env.MarkExportedVariable("default", v)
			return nil
		}
		return i.execStmt(env, s.Decl)
	}
}

// describeValue renders a value's type and printable form for expected-
// vs-got diagnostics.
func describeValue(v *runtime.Value) string {
	if v.Kind == runtime.KNull {
		return "null"
	}
	rendered := v.ToString()
	if len(rendered) > 40 {
		rendered = rendered[:37] + "..."
	}
	return v.TypeOf().String() + " " + rendered
}

// moduleByMarker resolves a user-module marker back to its Module.
func (i *Interp) moduleByMarker(marker string) (*modules.Module, bool) {
	path, ok := markerPayload(marker, userModuleMarker)
	if !ok {
		return nil, false
	}
	return i.resolver.Lookup(path)
}
