package codegen

import (
	"fmt"
	"sort"

	"github.com/sunholo/mumei/internal/ast"
	"github.com/sunholo/mumei/internal/module"
	"github.com/sunholo/mumei/internal/types"
)

// generator lowers one already-verified atom's body into a Function,
// threading a name -> current-SSA-operand map through the walk and
// tracking the block currently being appended to.
type generator struct {
	fn           *Function
	env          map[string]string
	valCounter   int
	blockCounter map[string]int
	cur          *Block
}

func (g *generator) freshVal() string {
	g.valCounter++
	return fmt.Sprintf("%%%d", g.valCounter)
}

func (g *generator) freshBlockLabel(base string) string {
	g.blockCounter[base]++
	if n := g.blockCounter[base]; n > 1 {
		return fmt.Sprintf("%s%d", base, n)
	}
	return base
}

func (g *generator) newBlock(label string) *Block {
	b := &Block{Label: label}
	g.fn.Blocks = append(g.fn.Blocks, b)
	return b
}

// Generate lowers atom into a Module. atom must already have passed
// internal/verify; this package does not re-check requires/ensures,
// only safety of the translation itself (every variable bound, every
// expression shape representable in typed i64 IR — §9 restricts
// codegen to the integer/bool fragment, so an f64-typed parameter or
// result is CodegenError::UnsupportedConstruct here rather than a
// silently wrong zero-extension).
func Generate(genv *module.Env, reg *types.Registry, atom *ast.Atom) (*Module, error) {
	fn := &Function{Name: atom.Name}
	g := &generator{
		fn:           fn,
		env:          map[string]string{},
		blockCounter: map[string]int{},
	}

	for _, p := range atom.Params {
		declared := "i64"
		if p.Type != nil {
			declared = p.Type.Name
		}
		if _, ok := genv.Structs[declared]; ok {
			return nil, unsupportedConstructErr("struct-typed parameter \""+p.Name+"\" has no IR representation", atom.Pos)
		}
		base, err := reg.ResolveBaseType(declared)
		if err != nil {
			return nil, err
		}
		if base == "f64" {
			return nil, unsupportedConstructErr("f64 parameter \""+p.Name+"\" (codegen is restricted to the integer/bool fragment, see DESIGN.md)", atom.Pos)
		}
		fn.Params = append(fn.Params, p.Name)
		g.env[p.Name] = "%" + p.Name
	}

	entry := g.newBlock("entry")
	g.cur = entry

	result, err := g.lower(atom.Body)
	if err != nil {
		return nil, err
	}
	g.cur.emit(fmt.Sprintf("ret i64 %s", result))

	return &Module{Name: atom.Name, Fn: fn}, nil
}

func (g *generator) lower(expr ast.Expr) (string, error) {
	switch e := expr.(type) {
	case *ast.Number:
		return fmt.Sprintf("%d", e.Value), nil
	case *ast.Float:
		return "", unsupportedConstructErr("floating-point literal (codegen is restricted to the integer/bool fragment)", e.Pos)
	case *ast.Bool:
		if e.Value {
			return "1", nil
		}
		return "0", nil
	case *ast.Variable:
		v, ok := g.env[e.Name]
		if !ok {
			return "", undefinedVariableErr(e.Name, e.Pos)
		}
		return v, nil
	case *ast.BinaryOp:
		return g.lowerBinary(e)
	case *ast.IfThenElse:
		return g.lowerIf(e)
	case *ast.While:
		return g.lowerWhile(e)
	case *ast.Let:
		val, err := g.lower(e.Value)
		if err != nil {
			return "", err
		}
		g.env[e.Var] = val
		if e.Body != nil {
			return g.lower(e.Body)
		}
		return val, nil
	case *ast.Assign:
		val, err := g.lower(e.Value)
		if err != nil {
			return "", err
		}
		g.env[e.Var] = val
		return val, nil
	case *ast.Block:
		last := "0"
		for _, stmt := range e.Stmts {
			v, err := g.lower(stmt)
			if err != nil {
				return "", err
			}
			last = v
		}
		return last, nil
	default:
		return "", unsupportedConstructErr(fmt.Sprintf("%T", expr), expr.Position())
	}
}

func (g *generator) lowerBinary(e *ast.BinaryOp) (string, error) {
	lhs, err := g.lower(e.Lhs)
	if err != nil {
		return "", err
	}
	rhs, err := g.lower(e.Rhs)
	if err != nil {
		return "", err
	}

	switch e.Op {
	case ast.Add:
		return g.arith("add", lhs, rhs), nil
	case ast.Sub:
		return g.arith("sub", lhs, rhs), nil
	case ast.Mul:
		return g.arith("mul", lhs, rhs), nil
	case ast.Div:
		return g.arith("sdiv", lhs, rhs), nil
	case ast.Eq:
		return g.cmp("eq", lhs, rhs), nil
	case ast.Neq:
		return g.cmp("ne", lhs, rhs), nil
	case ast.Lt:
		return g.cmp("slt", lhs, rhs), nil
	case ast.Gt:
		return g.cmp("sgt", lhs, rhs), nil
	case ast.Le:
		return g.cmp("sle", lhs, rhs), nil
	case ast.Ge:
		return g.cmp("sge", lhs, rhs), nil
	case ast.And:
		return g.arith("and", lhs, rhs), nil
	case ast.Or:
		return g.arith("or", lhs, rhs), nil
	case ast.Implies:
		// a => b  ==  (a xor 1) or b, since both operands are i64 0/1.
		notLhs := g.arith("xor", lhs, "1")
		return g.arith("or", notLhs, rhs), nil
	default:
		return "", unsupportedConstructErr("operator "+e.Op.String(), e.Pos)
	}
}

func (g *generator) arith(op, lhs, rhs string) string {
	result := g.freshVal()
	g.cur.emit(fmt.Sprintf("%s = %s i64 %s, %s", result, op, lhs, rhs))
	return result
}

func (g *generator) cmp(pred, lhs, rhs string) string {
	bit := g.freshVal()
	g.cur.emit(fmt.Sprintf("%s = icmp %s i64 %s, %s", bit, pred, lhs, rhs))
	result := g.freshVal()
	g.cur.emit(fmt.Sprintf("%s = zext i1 %s to i64", result, bit))
	return result
}

// lowerIf follows §4.6's branch-join rule: the condition is compared
// to zero, each branch is lowered and records its actual exit block
// (which may not be the `then`/`else` block itself if the branch
// contains nested control flow), and the merge block's single φ-node
// cites those recorded exit blocks.
func (g *generator) lowerIf(e *ast.IfThenElse) (string, error) {
	condVal, err := g.lower(e.Cond)
	if err != nil {
		return "", err
	}
	bit := g.freshVal()
	g.cur.emit(fmt.Sprintf("%s = icmp ne i64 %s, 0", bit, condVal))

	thenLabel := g.freshBlockLabel("then")
	elseLabel := g.freshBlockLabel("else")
	mergeLabel := g.freshBlockLabel("merge")
	g.cur.emit(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", bit, thenLabel, elseLabel))

	saved := cloneEnv(g.env)

	thenBlock := g.newBlock(thenLabel)
	g.cur = thenBlock
	thenVal, err := g.lower(e.Then)
	if err != nil {
		return "", err
	}
	thenExit := g.cur
	thenExit.emit(fmt.Sprintf("br label %%%s", mergeLabel))
	thenEnv := g.env

	g.env = saved
	elseBlock := g.newBlock(elseLabel)
	g.cur = elseBlock
	elseVal, err := g.lower(e.Else)
	if err != nil {
		return "", err
	}
	elseExit := g.cur
	elseExit.emit(fmt.Sprintf("br label %%%s", mergeLabel))
	elseEnv := g.env

	mergeBlock := g.newBlock(mergeLabel)
	g.cur = mergeBlock

	env, err := g.mergePhiEnv(saved, thenEnv, thenExit.Label, elseEnv, elseExit.Label)
	if err != nil {
		return "", err
	}
	g.env = env

	if thenVal == elseVal {
		return thenVal, nil
	}
	result := g.freshVal()
	mergeBlock.emit(fmt.Sprintf("%s = phi i64 [ %s, %%%s ], [ %s, %%%s ]", result, thenVal, thenExit.Label, elseVal, elseExit.Label))
	return result, nil
}

// mergePhiEnv inserts one φ-node per variable the two branches leave
// disagreeing on, so names assigned inside only one arm are still
// correctly bound after the merge.
func (g *generator) mergePhiEnv(saved, thenEnv map[string]string, thenLabel string, elseEnv map[string]string, elseLabel string) (map[string]string, error) {
	out := make(map[string]string, len(saved))
	for name := range saved {
		tv, ev := thenEnv[name], elseEnv[name]
		if tv == ev {
			out[name] = tv
			continue
		}
		result := g.freshVal()
		g.cur.emit(fmt.Sprintf("%s = phi i64 [ %s, %%%s ], [ %s, %%%s ]", result, tv, thenLabel, ev, elseLabel))
		out[name] = result
	}
	return out, nil
}

// lowerWhile implements §9's fix for mutable locals across loops:
// every name the body assigns gets a φ-node at the header, one
// incoming edge from the pre-header with its value on entry, the
// other from the body's actual exit block with its value after one
// iteration. The φ result, not the pre-loop value, is what the header
// condition and the body itself observe.
func (g *generator) lowerWhile(e *ast.While) (string, error) {
	preheader := g.cur
	mutated := collectAssignedNames(e.Body)

	headerLabel := g.freshBlockLabel("header")
	preheader.emit(fmt.Sprintf("br label %%%s", headerLabel))

	header := g.newBlock(headerLabel)
	g.cur = header

	type phiSlot struct {
		name          string
		result        string
		preheaderVal  string
		preheaderName string
	}
	var phis []phiSlot
	for _, name := range mutated {
		old, ok := g.env[name]
		if !ok {
			continue
		}
		result := g.freshVal()
		phis = append(phis, phiSlot{name: name, result: result, preheaderVal: old, preheaderName: preheader.Label})
		g.env[name] = result
	}

	condVal, err := g.lower(e.Cond)
	if err != nil {
		return "", err
	}
	bit := g.freshVal()
	header.emit(fmt.Sprintf("%s = icmp ne i64 %s, 0", bit, condVal))

	bodyLabel := g.freshBlockLabel("body")
	afterLabel := g.freshBlockLabel("after")
	header.emit(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", bit, bodyLabel, afterLabel))

	body := g.newBlock(bodyLabel)
	g.cur = body
	if _, err := g.lower(e.Body); err != nil {
		return "", err
	}
	bodyExit := g.cur
	bodyExit.emit(fmt.Sprintf("br label %%%s", headerLabel))

	var phiLines []string
	for _, p := range phis {
		updated, ok := g.env[p.name]
		if !ok {
			updated = p.preheaderVal
		}
		phiLines = append(phiLines, fmt.Sprintf("%s = phi i64 [ %s, %%%s ], [ %s, %%%s ]", p.result, p.preheaderVal, p.preheaderName, updated, bodyExit.Label))
	}
	header.prepend(phiLines)

	// The loop exits from the header, so code after the loop sees each
	// mutated name's φ result rather than the body's last value.
	for _, p := range phis {
		g.env[p.name] = p.result
	}

	after := g.newBlock(afterLabel)
	g.cur = after

	// A While expression's own value is always 0.
	return "0", nil
}

// collectAssignedNames finds every name an Assign rebinds anywhere
// inside e. Mirrors internal/verify's helper of the same name and
// purpose: codegen needs it to place φ-nodes, verify needs it to
// havoc, and each package owns its own tiny copy rather than sharing
// a dependency neither otherwise needs.
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

func cloneEnv(env map[string]string) map[string]string {
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}
