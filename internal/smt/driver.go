package smt

// AssertSqrtAxiom introduces the uninterpreted `sqrt` application over
// x and asserts its nonnegativity half of the defining axiom into s.
// The full axiom from §4.4 is `x >= 0 => (f(x) >= 0 && f(x)*f(x) ==
// x)`; the squaring conjunct is nonlinear and outside what this
// driver's Fourier-Motzkin fragment can reason about soundly (see
// DESIGN.md), so only the sign half is asserted as a background fact.
// The returned term is the `sqrt(x)` value itself, safe to use
// wherever the caller needs a symbolic result for `sqrt`.
func AssertSqrtAxiom(s *Solver, x Term) Term {
	result := Sqrt(x)
	s.Assert(ImpliesT(Ge(x, Int(0)), Ge(result, Real(0))))
	return result
}

// AssertDivAxiom introduces `div(a, b)` as a fresh uninterpreted term
// and asserts its defining property `div(a, b) * b == a` into s as a
// background fact. Dividing by a symbolic b is a genuine product of
// two non-constant terms once multiplied back out, which is outside
// what this driver's Fourier-Motzkin fragment can decide directly;
// introducing the quotient as an opaque term instead means a caller's
// `result * b == a` obligation shares the identical nonlinear subterm
// with this axiom, so checkClause's abstraction pass can still resolve
// it without general nonlinear reasoning. resSort is the sort of the
// quotient (Int for integer division, Real for float).
func AssertDivAxiom(s *Solver, a, b Term, resSort Sort) Term {
	result := UF{Func: "div", Args: []Term{a, b}, ResSort: resSort}
	s.Assert(Eq(Mul(result, b), a))
	return result
}
