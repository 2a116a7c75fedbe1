package smt

// toNNF pushes negation inward until every Not wraps only a Cmp, Var,
// or BoolConst leaf, and rewrites every Cmp{"!=",...} into an
// Or{Lt,Gt} so the linear-arithmetic fragment never has to reason
// about disequality directly.
func toNNF(t Term, negate bool) Term {
	switch v := t.(type) {
	case Not:
		return toNNF(v.X, !negate)
	case And:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = toNNF(a, negate)
		}
		if negate {
			return Or{args}
		}
		return And{args}
	case Or:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = toNNF(a, negate)
		}
		if negate {
			return And{args}
		}
		return Or{args}
	case Implies:
		// L => R  ==  (not L) or R
		rewritten := Or{[]Term{Not{v.L}, v.R}}
		return toNNF(rewritten, negate)
	case Cmp:
		op := v.Op
		if negate {
			op = negateCmpOp(op)
		}
		if op == "!=" {
			return Or{[]Term{Cmp{"<", v.L, v.R}, Cmp{">", v.L, v.R}}}
		}
		return Cmp{op, v.L, v.R}
	case BoolConst:
		if negate {
			return BoolConst{!v.Value}
		}
		return v
	case Var:
		if negate {
			return Not{v}
		}
		return v
	default:
		// Uninterpreted boolean residuals (shouldn't normally occur
		// at Sort() == SortBool outside the cases above).
		if negate {
			return Not{t}
		}
		return t
	}
}

func negateCmpOp(op string) string {
	switch op {
	case "==":
		return "!="
	case "!=":
		return "=="
	case "<":
		return ">="
	case "<=":
		return ">"
	case ">":
		return "<="
	case ">=":
		return "<"
	default:
		return op
	}
}

// toDNF converts an NNF-normalized boolean Term into a disjunction of
// conjunctions of literals (Cmp, Var, Not{Var}, or BoolConst).
func toDNF(t Term) [][]Term {
	switch v := t.(type) {
	case And:
		result := [][]Term{{}}
		for _, a := range v.Args {
			sub := toDNF(a)
			var combined [][]Term
			for _, prefix := range result {
				for _, clause := range sub {
					merged := make([]Term, 0, len(prefix)+len(clause))
					merged = append(merged, prefix...)
					merged = append(merged, clause...)
					combined = append(combined, merged)
				}
			}
			result = combined
		}
		return result
	case Or:
		var result [][]Term
		for _, a := range v.Args {
			result = append(result, toDNF(a)...)
		}
		return result
	default:
		return [][]Term{{t}}
	}
}

// DNF normalizes t and returns it as a disjunction of conjunctions of
// literals, ready for per-disjunct feasibility checking.
func DNF(t Term) [][]Term {
	return toDNF(toNNF(t, false))
}
