package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sunholo/mumei/internal/ast"
	"github.com/sunholo/mumei/internal/module"
	"github.com/sunholo/mumei/internal/smt"
	"github.com/sunholo/mumei/internal/types"
)

// Result is the outcome of one verification attempt, written to the
// report sink regardless of whether it succeeded.
type Result struct {
	AtomName           string
	Success            bool
	Reason             string
	Assignments        map[string]string
	ViolatedObligation string
}

var errObligationFailed = errors.New("verification obligation failed")

type generator struct {
	solver    *smt.Solver
	env       map[string]symValue
	globalEnv *module.Env
	registry  *types.Registry
	atom      *ast.Atom
	ctx       context.Context
	fresh     int
	failure   *Result
	arrayLens map[string]smt.Term
}

func (g *generator) freshName(prefix string) string {
	g.fresh++
	return fmt.Sprintf("%s$%d", prefix, g.fresh)
}

// Verify runs the VC generator over atom, discharging its contract
// and every safety obligation encountered in its body through a fresh
// SMT context. A non-nil error means the generator could not even
// build the obligation (an undefined name, an unsupported construct,
// or a solver timeout); a non-nil Result with Success == false means
// an obligation was discharged and refuted, with a counterexample.
func Verify(genv *module.Env, reg *types.Registry, atom *ast.Atom, timeout time.Duration) (*Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	g := &generator{
		solver:    smt.NewSolver(),
		env:       map[string]symValue{},
		globalEnv: genv,
		registry:  reg,
		atom:      atom,
		ctx:       ctx,
	}

	if err := g.bindParams(); err != nil {
		return nil, err
	}

	reqTerm, err := g.lowerBool(atom.Requires)
	if err != nil {
		return nil, err
	}
	g.solver.Assert(reqTerm)

	bodyVal, err := g.lower(atom.Body)
	if err != nil {
		if err == errObligationFailed {
			return g.failure, nil
		}
		return nil, err
	}

	ensEnv := map[string]symValue{}
	for k, v := range g.env {
		ensEnv[k] = v
	}
	ensEnv["result"] = bodyVal
	ensTerm, err := g.lowerBoolInEnv(atom.Ensures, ensEnv)
	if err != nil {
		if err == errObligationFailed {
			return g.failure, nil
		}
		return nil, err
	}
	if err := g.checkObligation("postcondition \"ensures\" does not hold", ensTerm, "Atom.ensures"); err != nil {
		if err == errObligationFailed {
			return g.failure, nil
		}
		return nil, err
	}

	return &Result{AtomName: atom.Name, Success: true}, nil
}

func (g *generator) bindParams() error {
	for _, p := range g.atom.Params {
		declared := "i64"
		if p.Type != nil {
			declared = p.Type.Name
		}
		if sd, ok := g.globalEnv.Structs[declared]; ok {
			val, err := g.freshStructValue(p.Name, sd)
			if err != nil {
				return err
			}
			g.env[p.Name] = val
			continue
		}
		base, err := g.registry.ResolveBaseType(declared)
		if err != nil {
			return err
		}
		kind := types.Kind(base)
		term := freshVar(p.Name, kindSort(kind))
		val := scalarValue(term, kind)
		g.env[p.Name] = val

		if !isPrimitiveBaseType(declared) {
			pred, err := g.instantiateRefinedChain(declared, val)
			if err != nil {
				return err
			}
			g.solver.Assert(pred)
		}
	}
	return nil
}

func (g *generator) freshStructValue(name string, sd *ast.StructDef) (symValue, error) {
	fields := map[string]symValue{}
	for _, f := range sd.Fields {
		fieldName := name + "." + f.Name
		if nested, ok := g.globalEnv.Structs[f.Type.Name]; ok {
			v, err := g.freshStructValue(fieldName, nested)
			if err != nil {
				return symValue{}, err
			}
			fields[f.Name] = v
			continue
		}
		base, err := g.registry.ResolveBaseType(f.Type.Name)
		if err != nil {
			return symValue{}, err
		}
		kind := types.Kind(base)
		v := scalarValue(freshVar(fieldName, kindSort(kind)), kind)
		if !isPrimitiveBaseType(f.Type.Name) {
			pred, err := g.instantiateRefinedChain(f.Type.Name, v)
			if err != nil {
				return symValue{}, err
			}
			g.solver.Assert(pred)
		}
		fields[f.Name] = v
	}
	return symValue{Struct: sd.Name, Fields: fields}, nil
}

func freshVar(name string, sort smt.Sort) smt.Term {
	switch sort {
	case smt.SortReal:
		return smt.RealVar(name)
	case smt.SortBool:
		return smt.BoolVar(name)
	default:
		return smt.IntVar(name)
	}
}

func isPrimitiveBaseType(name string) bool {
	switch name {
	case "i64", "u64", "f64", "bool":
		return true
	default:
		return false
	}
}

// instantiateRefinedChain conjoins the predicate of typeName and every
// refined type its base_type chain passes through (bounded the same
// way types.Registry.ResolveBaseType is), each instantiated with arg
// bound to the refinement's operand.
func (g *generator) instantiateRefinedChain(typeName string, arg symValue) (smt.Term, error) {
	var conj []smt.Term
	name := typeName
	for depth := 0; depth < 64 && !isPrimitiveBaseType(name); depth++ {
		rt, ok := g.globalEnv.Types[name]
		if !ok {
			return nil, unsupportedConstructErr("unknown refined type \""+name+"\"", ast.Pos{})
		}
		term, err := g.lowerBoolInEnv(rt.Predicate, map[string]symValue{rt.Operand: arg})
		if err != nil {
			return nil, err
		}
		conj = append(conj, term)
		name = rt.BaseType
	}
	if len(conj) == 0 {
		return smt.Bool(true), nil
	}
	return smt.AndT(conj...), nil
}

func (g *generator) lowerBool(expr ast.Expr) (smt.Term, error) {
	val, err := g.lower(expr)
	if err != nil {
		return nil, err
	}
	if val.Kind != ast.KindBool {
		return nil, unsupportedConstructErr("expected a boolean-typed expression", expr.Position())
	}
	return val.Scalar, nil
}

func (g *generator) lowerBoolInEnv(expr ast.Expr, env map[string]symValue) (smt.Term, error) {
	saved := g.env
	g.env = env
	term, err := g.lowerBool(expr)
	g.env = saved
	return term, err
}

// checkObligation asserts NotT(obligation) in a fresh scope and
// checks satisfiability: Unsat proves the obligation and returns nil,
// Sat refutes it (recording a counterexample on g.failure and
// returning errObligationFailed), Unknown is reported as a solver
// timeout error.
func (g *generator) checkObligation(reason string, obligation smt.Term, violated string) error {
	g.solver.Push()
	g.solver.Assert(smt.NotT(obligation))
	res, model := g.solver.CheckSat(g.ctx)
	g.solver.Pop()

	switch res {
	case smt.Unsat:
		return nil
	case smt.Sat:
		g.failure = &Result{
			AtomName:           g.atom.Name,
			Success:            false,
			Reason:             reason,
			Assignments:        modelToAssignments(model),
			ViolatedObligation: violated,
		}
		return errObligationFailed
	default:
		return solverTimeoutErr(g.atom.Name, violated)
	}
}

func modelToAssignments(model smt.Model) map[string]string {
	out := map[string]string{}
	for name, v := range model {
		switch v.VSort {
		case smt.SortReal:
			out[name] = fmt.Sprintf("%g", v.RealVal)
		case smt.SortBool:
			out[name] = fmt.Sprintf("%t", v.BoolVal)
		default:
			out[name] = fmt.Sprintf("%d", v.IntVal)
		}
	}
	return out
}
