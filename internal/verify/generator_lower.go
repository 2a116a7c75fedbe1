package verify

import (
	"fmt"
	"sort"

	"github.com/sunholo/mumei/internal/ast"
	"github.com/sunholo/mumei/internal/smt"
)

// lower walks expr, emitting and discharging every safety obligation
// it implies, and returns the symbolic value it evaluates to.
func (g *generator) lower(expr ast.Expr) (symValue, error) {
	switch e := expr.(type) {
	case *ast.Number:
		return scalarValue(smt.Int(e.Value), ast.KindInt), nil
	case *ast.Float:
		return scalarValue(smt.Real(e.Value), ast.KindFloat), nil
	case *ast.Bool:
		return scalarValue(smt.Bool(e.Value), ast.KindBool), nil
	case *ast.Variable:
		v, ok := g.env[e.Name]
		if !ok {
			return symValue{}, undefinedVariableErr(e.Name, e.Pos)
		}
		return v, nil
	case *ast.ArrayAccess:
		return g.lowerArrayAccess(e)
	case *ast.Call:
		return g.lowerCall(e)
	case *ast.BinaryOp:
		return g.lowerBinary(e)
	case *ast.IfThenElse:
		return g.lowerIf(e)
	case *ast.While:
		return g.lowerWhile(e)
	case *ast.Let:
		val, err := g.lower(e.Value)
		if err != nil {
			return symValue{}, err
		}
		g.env[e.Var] = val
		if e.Body != nil {
			return g.lower(e.Body)
		}
		return val, nil
	case *ast.Assign:
		val, err := g.lower(e.Value)
		if err != nil {
			return symValue{}, err
		}
		if _, ok := g.env[e.Var]; !ok {
			return symValue{}, undefinedVariableErr(e.Var, e.Pos)
		}
		g.env[e.Var] = val
		return val, nil
	case *ast.Block:
		result := zeroValue
		for _, stmt := range e.Stmts {
			v, err := g.lower(stmt)
			if err != nil {
				return symValue{}, err
			}
			result = v
		}
		return result, nil
	case *ast.StructInit:
		return g.lowerStructInit(e)
	case *ast.FieldAccess:
		return g.lowerFieldAccess(e)
	default:
		return symValue{}, unsupportedConstructErr(fmt.Sprintf("%T", expr), expr.Position())
	}
}

func (g *generator) lowerArrayAccess(e *ast.ArrayAccess) (symValue, error) {
	idxVal, err := g.lower(e.Index)
	if err != nil {
		return symValue{}, err
	}
	lenTerm := g.arrayLen(e.Name)
	inBounds := smt.AndT(smt.Ge(idxVal.Scalar, smt.Int(0)), smt.Lt(idxVal.Scalar, lenTerm))
	if err := g.checkObligation("array index out of bounds", inBounds, "ArrayAccess"); err != nil {
		return symValue{}, err
	}
	elem := smt.Call("elem$"+e.Name, smt.SortInt, idxVal.Scalar)
	return scalarValue(elem, ast.KindInt), nil
}

// arrayLen returns the uninterpreted length term for the array bound
// to name, creating it (and asserting it is non-negative) on first use.
func (g *generator) arrayLen(name string) smt.Term {
	if g.arrayLens == nil {
		g.arrayLens = map[string]smt.Term{}
	}
	if t, ok := g.arrayLens[name]; ok {
		return t
	}
	t := smt.IntVar(name + ".len")
	g.arrayLens[name] = t
	g.solver.Assert(smt.Ge(t, smt.Int(0)))
	return t
}

func (g *generator) lowerBinary(e *ast.BinaryOp) (symValue, error) {
	lhs, err := g.lower(e.Lhs)
	if err != nil {
		return symValue{}, err
	}
	rhs, err := g.lower(e.Rhs)
	if err != nil {
		return symValue{}, err
	}
	switch e.Op {
	case ast.Add:
		return scalarValue(smt.Add(lhs.Scalar, rhs.Scalar), lhs.Kind), nil
	case ast.Sub:
		return scalarValue(smt.Sub(lhs.Scalar, rhs.Scalar), lhs.Kind), nil
	case ast.Mul:
		return scalarValue(smt.Mul(lhs.Scalar, rhs.Scalar), lhs.Kind), nil
	case ast.Div:
		zero := smt.Term(smt.Int(0))
		if rhs.Kind == ast.KindFloat {
			zero = smt.Real(0)
		}
		if err := g.checkObligation("division by zero", smt.Neq(rhs.Scalar, zero), "BinaryOp./"); err != nil {
			return symValue{}, err
		}
		resSort := smt.SortInt
		if lhs.Kind == ast.KindFloat {
			resSort = smt.SortReal
		}
		result := smt.AssertDivAxiom(g.solver, lhs.Scalar, rhs.Scalar, resSort)
		return scalarValue(result, lhs.Kind), nil
	case ast.Eq:
		return scalarValue(smt.Eq(lhs.Scalar, rhs.Scalar), ast.KindBool), nil
	case ast.Neq:
		return scalarValue(smt.Neq(lhs.Scalar, rhs.Scalar), ast.KindBool), nil
	case ast.Gt:
		return scalarValue(smt.Gt(lhs.Scalar, rhs.Scalar), ast.KindBool), nil
	case ast.Lt:
		return scalarValue(smt.Lt(lhs.Scalar, rhs.Scalar), ast.KindBool), nil
	case ast.Ge:
		return scalarValue(smt.Ge(lhs.Scalar, rhs.Scalar), ast.KindBool), nil
	case ast.Le:
		return scalarValue(smt.Le(lhs.Scalar, rhs.Scalar), ast.KindBool), nil
	case ast.And:
		return scalarValue(smt.AndT(lhs.Scalar, rhs.Scalar), ast.KindBool), nil
	case ast.Or:
		return scalarValue(smt.OrT(lhs.Scalar, rhs.Scalar), ast.KindBool), nil
	case ast.Implies:
		return scalarValue(smt.ImpliesT(lhs.Scalar, rhs.Scalar), ast.KindBool), nil
	default:
		return symValue{}, unsupportedConstructErr("operator "+e.Op.String(), e.Pos)
	}
}

func (g *generator) lowerCall(e *ast.Call) (symValue, error) {
	switch e.Name {
	case "sqrt":
		if len(e.Args) != 1 {
			return symValue{}, unsupportedConstructErr("sqrt takes exactly one argument", e.Pos)
		}
		arg, err := g.lower(e.Args[0])
		if err != nil {
			return symValue{}, err
		}
		result := smt.AssertSqrtAxiom(g.solver, arg.Scalar)
		return scalarValue(result, ast.KindFloat), nil
	case "len":
		if len(e.Args) != 1 {
			return symValue{}, unsupportedConstructErr("len takes exactly one argument", e.Pos)
		}
		v, ok := e.Args[0].(*ast.Variable)
		if !ok {
			return symValue{}, unsupportedConstructErr("len() argument must be an array name", e.Pos)
		}
		return scalarValue(g.arrayLen(v.Name), ast.KindInt), nil
	}

	callee, ok := g.globalEnv.Atoms[e.Name]
	if !ok {
		return symValue{}, unsupportedConstructErr("call to unknown atom \""+e.Name+"\"", e.Pos)
	}
	if len(callee.Params) != len(e.Args) {
		return symValue{}, unsupportedConstructErr("wrong number of arguments to \""+e.Name+"\"", e.Pos)
	}

	substEnv := map[string]symValue{}
	argTerms := make([]smt.Term, 0, len(e.Args))
	for i, p := range callee.Params {
		argVal, err := g.lower(e.Args[i])
		if err != nil {
			return symValue{}, err
		}
		substEnv[p.Name] = argVal
		if argVal.Scalar != nil {
			argTerms = append(argTerms, argVal.Scalar)
		}
	}

	reqTerm, err := g.lowerBoolInEnv(callee.Requires, substEnv)
	if err != nil {
		return symValue{}, err
	}
	if err := g.checkObligation("call to \""+e.Name+"\" requires", reqTerm, "Call."+e.Name+".requires"); err != nil {
		return symValue{}, err
	}

	// The callee's result is opaque to the caller: we assert its
	// ensures contract as a fact about the result and reason about it
	// uninterpreted from here on, rather than inlining its body.
	result := smt.Call(e.Name, smt.SortInt, argTerms...)
	substEnv["result"] = scalarValue(result, ast.KindInt)
	ensTerm, err := g.lowerBoolInEnv(callee.Ensures, substEnv)
	if err != nil {
		return symValue{}, err
	}
	g.solver.Assert(ensTerm)
	return scalarValue(result, ast.KindInt), nil
}

func (g *generator) lowerIf(e *ast.IfThenElse) (symValue, error) {
	condVal, err := g.lower(e.Cond)
	if err != nil {
		return symValue{}, err
	}
	if condVal.Kind != ast.KindBool {
		return symValue{}, unsupportedConstructErr("if condition must be boolean", e.Pos)
	}

	saved := cloneEnv(g.env)

	g.solver.Push()
	g.solver.Assert(condVal.Scalar)
	thenVal, err := g.lower(e.Then)
	g.solver.Pop()
	if err != nil {
		return symValue{}, err
	}
	thenEnv := g.env
	g.env = cloneEnv(saved)

	g.solver.Push()
	g.solver.Assert(smt.NotT(condVal.Scalar))
	elseVal, err := g.lower(e.Else)
	g.solver.Pop()
	if err != nil {
		return symValue{}, err
	}
	elseEnv := g.env

	merged, err := g.mergeValue(condVal.Scalar, thenVal, elseVal, e.Pos)
	if err != nil {
		return symValue{}, err
	}

	env, err := g.mergeEnv(condVal.Scalar, saved, thenEnv, elseEnv)
	if err != nil {
		return symValue{}, err
	}
	g.env = env
	return merged, nil
}

// mergeValue combines the values two branches produced for the same
// expression behind a fresh variable, asserting that it equals
// whichever branch's value applies — the standard if-then-else
// elimination into two Implies facts, which keeps the result inside
// the solver's linear-arithmetic fragment when both branch values are.
func (g *generator) mergeValue(cond smt.Term, a, b symValue, pos ast.Pos) (symValue, error) {
	if a.Struct != "" || b.Struct != "" {
		if a.Struct != b.Struct {
			return symValue{}, branchKindMismatchErr(pos)
		}
		fields := map[string]symValue{}
		for name, fa := range a.Fields {
			fb, ok := b.Fields[name]
			if !ok {
				return symValue{}, branchKindMismatchErr(pos)
			}
			m, err := g.mergeValue(cond, fa, fb, pos)
			if err != nil {
				return symValue{}, err
			}
			fields[name] = m
		}
		return symValue{Struct: a.Struct, Fields: fields}, nil
	}
	if a.Kind != b.Kind {
		return symValue{}, branchKindMismatchErr(pos)
	}
	fresh := freshVar(g.freshName("if"), kindSort(a.Kind))
	g.solver.Assert(smt.ImpliesT(cond, smt.Eq(fresh, a.Scalar)))
	g.solver.Assert(smt.ImpliesT(smt.NotT(cond), smt.Eq(fresh, b.Scalar)))
	return scalarValue(fresh, a.Kind), nil
}

// mergeEnv merges every variable bound before the branch, folding in
// whatever each branch assigned to it.
func (g *generator) mergeEnv(cond smt.Term, saved, thenEnv, elseEnv map[string]symValue) (map[string]symValue, error) {
	out := make(map[string]symValue, len(saved))
	for name := range saved {
		tv := thenEnv[name]
		ev := elseEnv[name]
		merged, err := g.mergeValue(cond, tv, ev, ast.Pos{})
		if err != nil {
			return nil, err
		}
		out[name] = merged
	}
	return out, nil
}

// lowerInvariant lowers a While's invariant expression, reporting
// VER005 (rather than the generic non-boolean-expression error) when
// it is not boolean-typed.
func (g *generator) lowerInvariant(inv ast.Expr) (smt.Term, error) {
	val, err := g.lower(inv)
	if err != nil {
		return nil, err
	}
	if val.Kind != ast.KindBool {
		return nil, invariantNotBooleanErr(inv.Position())
	}
	return val.Scalar, nil
}

func (g *generator) lowerWhile(e *ast.While) (symValue, error) {
	if e.Invariant == nil {
		return symValue{}, missingInvariantErr(e.Pos)
	}

	invEntry, err := g.lowerInvariant(e.Invariant)
	if err != nil {
		return symValue{}, err
	}
	if err := g.checkObligation("loop invariant does not hold on entry", invEntry, "While.invariant.entry"); err != nil {
		return symValue{}, err
	}

	modified := collectAssignedNames(e.Body)
	saved := cloneEnv(g.env)

	g.havocAll(modified)
	invHavoc, err := g.lowerInvariant(e.Invariant)
	if err != nil {
		g.env = saved
		return symValue{}, err
	}

	condVal, err := g.lower(e.Cond)
	if err != nil {
		g.env = saved
		return symValue{}, err
	}
	if condVal.Kind != ast.KindBool {
		g.env = saved
		return symValue{}, unsupportedConstructErr("while condition must be boolean", e.Pos)
	}

	g.solver.Push()
	g.solver.Assert(invHavoc)
	g.solver.Assert(condVal.Scalar)
	_, bodyErr := g.lower(e.Body)
	var preserveErr error
	if bodyErr == nil {
		invAfter, err := g.lowerInvariant(e.Invariant)
		if err != nil {
			bodyErr = err
		} else {
			preserveErr = g.checkObligation("loop invariant not preserved by body", invAfter, "While.invariant.preserved")
		}
	}
	g.solver.Pop()
	g.env = saved
	if bodyErr != nil {
		return symValue{}, bodyErr
	}
	if preserveErr != nil {
		return symValue{}, preserveErr
	}

	g.havocAll(modified)
	postInv, err := g.lowerInvariant(e.Invariant)
	if err != nil {
		return symValue{}, err
	}
	g.solver.Assert(postInv)
	notCondVal, err := g.lower(e.Cond)
	if err != nil {
		return symValue{}, err
	}
	g.solver.Assert(smt.NotT(notCondVal.Scalar))

	return zeroValue, nil
}

// havocAll rebinds each named variable already in scope to a fresh,
// otherwise-unconstrained symbolic value, modeling "this loop body may
// have changed it to anything" ahead of asserting the invariant holds
// of the new value.
func (g *generator) havocAll(names []string) {
	for _, name := range names {
		old, ok := g.env[name]
		if !ok {
			continue
		}
		g.env[name] = g.havoc(name, old)
	}
}

func (g *generator) havoc(name string, old symValue) symValue {
	if old.Struct != "" {
		fields := map[string]symValue{}
		for fn, fv := range old.Fields {
			fields[fn] = g.havoc(name+"."+fn, fv)
		}
		return symValue{Struct: old.Struct, Fields: fields}
	}
	return scalarValue(freshVar(g.freshName(name), kindSort(old.Kind)), old.Kind)
}

// collectAssignedNames finds every name an Assign rebinds anywhere
// inside e, including through nested blocks, branches, and loops. Let
// bindings are excluded: they introduce a new local rather than
// mutating an existing one.
func collectAssignedNames(e ast.Expr) []string {
	seen := map[string]bool{}
	var walk func(ast.Expr)
	walk = func(x ast.Expr) {
		switch n := x.(type) {
		case *ast.Block:
			for _, s := range n.Stmts {
				walk(s)
			}
		case *ast.Assign:
			seen[n.Var] = true
			walk(n.Value)
		case *ast.Let:
			walk(n.Value)
			if n.Body != nil {
				walk(n.Body)
			}
		case *ast.IfThenElse:
			walk(n.Then)
			walk(n.Else)
		case *ast.While:
			walk(n.Body)
		}
	}
	walk(e)
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (g *generator) lowerStructInit(e *ast.StructInit) (symValue, error) {
	fields := map[string]symValue{}
	for _, f := range e.Fields {
		v, err := g.lower(f.Value)
		if err != nil {
			return symValue{}, err
		}
		fields[f.Name] = v
	}
	return symValue{Struct: e.TypeName, Fields: fields}, nil
}

func (g *generator) lowerFieldAccess(e *ast.FieldAccess) (symValue, error) {
	target, err := g.lower(e.Target)
	if err != nil {
		return symValue{}, err
	}
	if target.Struct == "" {
		return symValue{}, unsupportedConstructErr("field access on a non-struct value", e.Pos)
	}
	v, ok := target.Fields[e.Field]
	if !ok {
		return symValue{}, unsupportedConstructErr("struct \""+target.Struct+"\" has no field \""+e.Field+"\"", e.Pos)
	}
	return v, nil
}

func cloneEnv(env map[string]symValue) map[string]symValue {
	out := make(map[string]symValue, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}
