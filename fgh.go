// Package fgh propagates a function value (f), its gradient (g) and its
// Hessian (h) through arithmetic and elementary functions.
//
// Design goals:
//   - Forward mode, second order, exact closed-form rules
//   - Hessians are gonum symmetric matrices, so symmetry holds by construction
//   - Undefined derivatives are NaN data, never errors; Denanify repairs them
//   - Two products: MulSame for one shared variable space, MulDisjoint for
//     concatenating independent spaces
package fgh

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ============================================================
// Value — value, gradient and Hessian of a scalar function
// ============================================================

// Value is the first two Taylor terms of a scalar function of n variables at
// a point. Values are immutable; every operation returns a fresh Value.
type Value struct {
	f float64
	g []float64
	h *mat.SymDense
}

// New returns the Value (f, g, h). A nil h is the zero-dimensional Hessian.
// It panics with ErrShapeMismatch if len(g) differs from the order of h.
func New(f float64, g []float64, h mat.Symmetric) Value {
	if len(g) != symDim(h) {
		panic(shapeErr("New", len(g), symDim(h)))
	}
	return Value{f: f, g: append([]float64(nil), g...), h: symCopy(h)}
}

// FromSlices builds a Value from a dense row representation of the Hessian,
// which must be square, match len(g) and be exactly symmetric.
func FromSlices(f float64, g []float64, h [][]float64) (Value, error) {
	n := len(g)
	if len(h) != n {
		return Value{}, shapeErr("FromSlices", n, len(h))
	}
	s := symZeros(n)
	for i, row := range h {
		if len(row) != n {
			return Value{}, shapeErr("FromSlices", n, len(row))
		}
		for j := 0; j < i; j++ {
			if row[j] != h[j][i] && !(math.IsNaN(row[j]) && math.IsNaN(h[j][i])) {
				return Value{}, ErrNotSymmetric
			}
		}
		for j := i; j < n; j++ {
			s.SetSym(i, j, row[j])
		}
	}
	return Value{f: f, g: append([]float64(nil), g...), h: s}, nil
}

// F returns the function value.
func (v Value) F() float64 { return v.f }

// G returns a copy of the gradient.
func (v Value) G() []float64 { return append([]float64(nil), v.g...) }

// H returns a copy of the Hessian.
func (v Value) H() *mat.SymDense { return symCopy(v.hess()) }

// Dim returns the number of variables.
func (v Value) Dim() int { return len(v.g) }

// Float64 discards the derivatives.
func (v Value) Float64() float64 { return v.f }

func (v Value) hess() *mat.SymDense {
	if v.h == nil {
		return &mat.SymDense{}
	}
	return v.h
}

// Equal reports exact equality of value, gradient and Hessian.
func (v Value) Equal(o Value) bool {
	return v.f == o.f && floats.Equal(v.g, o.g) && symEqual(v.hess(), o.hess())
}

// NotEqual is !Equal.
func (v Value) NotEqual(o Value) bool { return !v.Equal(o) }

// ============================================================
// Additive group — operands share one variable space
// ============================================================

func (v Value) Add(o Value) Value {
	mustSameSpace("Add", v, o)
	return Value{
		f: v.f + o.f,
		g: floats.AddTo(make([]float64, v.Dim()), v.g, o.g),
		h: symAdd(v.hess(), o.hess()),
	}
}

// AddScalar shifts the value; constants have no derivative.
func (v Value) AddScalar(c float64) Value {
	return Value{f: v.f + c, g: v.G(), h: v.H()}
}

func (v Value) Sub(o Value) Value {
	mustSameSpace("Sub", v, o)
	return Value{
		f: v.f - o.f,
		g: floats.SubTo(make([]float64, v.Dim()), v.g, o.g),
		h: symSub(v.hess(), o.hess()),
	}
}

func (v Value) SubScalar(c float64) Value {
	return Value{f: v.f - c, g: v.G(), h: v.H()}
}

// RSubScalar returns c - v.
func (v Value) RSubScalar(c float64) Value { return v.SubScalar(c).Neg() }

func (v Value) Neg() Value {
	return Value{
		f: -v.f,
		g: floats.ScaleTo(make([]float64, v.Dim()), -1, v.g),
		h: symScale(-1, v.hess()),
	}
}

// ============================================================
// Disjoint-space products — dimensions concatenate, v first
// ============================================================

// MulDisjoint multiplies two functions of different variables. The result
// lives in the concatenated space: the first v.Dim() coordinates belong to v,
// the remaining o.Dim() to o. Multiplying by Identity(k) pads v with k
// variables without changing its derivatives.
func (v Value) MulDisjoint(o Value) Value {
	m, n := v.Dim(), o.Dim()
	g := make([]float64, m+n)
	floats.ScaleTo(g[:m], o.f, v.g)
	floats.ScaleTo(g[m:], v.f, o.g)
	return Value{
		f: v.f * o.f,
		g: g,
		h: symBlock(symScale(o.f, v.hess()), symScale(v.f, o.hess()), v.g, o.g),
	}
}

// DivDisjoint is v.MulDisjoint(o.Pow(-1)).
func (v Value) DivDisjoint(o Value) Value { return v.MulDisjoint(o.Pow(-1)) }

// Scale multiplies value, gradient and Hessian by c.
func (v Value) Scale(c float64) Value {
	return Value{
		f: c * v.f,
		g: floats.ScaleTo(make([]float64, v.Dim()), c, v.g),
		h: symScale(c, v.hess()),
	}
}

// DivScalar divides value, gradient and Hessian by c.
func (v Value) DivScalar(c float64) Value {
	g := make([]float64, v.Dim())
	for i, x := range v.g {
		g[i] = x / c
	}
	return Value{f: v.f / c, g: g, h: symScale(1/c, v.hess())}
}

// RDivScalar returns c / v.
func (v Value) RDivScalar(c float64) Value { return v.Pow(-1).Scale(c) }

// ============================================================
// Same-space products — ordinary product rule
// ============================================================

// MulSame multiplies two functions of the same variables.
func (v Value) MulSame(o Value) Value {
	mustSameSpace("MulSame", v, o)
	g := floats.ScaleTo(make([]float64, v.Dim()), o.f, v.g)
	floats.AddScaled(g, v.f, o.g)
	h := symAdd(symScale(o.f, v.hess()), symScale(v.f, o.hess()))
	return Value{f: v.f * o.f, g: g, h: symRankTwo(h, 1, v.g, o.g)}
}

// DivSame is v.MulSame(o.Pow(-1)).
func (v Value) DivSame(o Value) Value {
	mustSameSpace("DivSame", v, o)
	return v.MulSame(o.Pow(-1))
}

// ============================================================
// Powers
// ============================================================

// Pow applies x^n. Negative and fractional exponents are allowed; at a zero
// value they produce non-finite entries.
func (v Value) Pow(n float64) Value {
	d1 := n * math.Pow(v.f, n-1)
	d2 := n * ((n - 1) * math.Pow(v.f, n-2))
	return Value{
		f: math.Pow(v.f, n),
		g: floats.ScaleTo(make([]float64, v.Dim()), d1, v.g),
		h: symRankOne(symScale(d1, v.hess()), d2, v.g),
	}
}

// Abs is sqrt(v²). It is smooth and only agrees with |x| away from zero.
func (v Value) Abs() Value { return v.Pow(2).Pow(0.5) }

func (v Value) Sqrt() Value { return v.Pow(0.5) }

// ============================================================
// Transcendental functions
// ============================================================

func (v Value) Exp() Value {
	e := math.Exp(v.f)
	return Value{
		f: e,
		g: floats.ScaleTo(make([]float64, v.Dim()), e, v.g),
		h: symScale(e, symRankOne(v.hess(), 1, v.g)),
	}
}

// Log returns ln(v). At a zero (or NaN) value the result is -Inf with an
// all-NaN gradient and Hessian.
func (v Value) Log() Value {
	n := v.Dim()
	if !(math.Abs(v.f) > 0) {
		return Value{f: math.Inf(-1), g: nanSlice(n), h: symNaN(n)}
	}
	g := make([]float64, n)
	for i, x := range v.g {
		g[i] = x / v.f
	}
	h := symRankOne(symScale(v.f, v.hess()), -1, v.g)
	return Value{f: math.Log(v.f), g: g, h: symScale(1/(v.f*v.f), h)}
}

// ============================================================
// Derived queries
// ============================================================

// GradientNorm returns ‖g‖ as a function of v's variables. Third derivatives
// are not tracked, so its Hessian is all NaN.
func (v Value) GradientNorm() Value {
	n := v.Dim()
	f := floats.Norm(v.g, 2)
	g := symMulVec(v.hess(), v.g)
	for i := range g {
		g[i] /= f
	}
	return Value{f: f, g: g, h: symNaN(n)}
}

// Denanify returns a copy of v in which every NaN gradient entry i is
// replaced by 0, row and column i of the Hessian are zeroed, and h[i,i] is
// set to 1. The receiver is left untouched.
func (v Value) Denanify() Value {
	g := v.G()
	h := v.H()
	for i, x := range g {
		if !math.IsNaN(x) {
			continue
		}
		g[i] = 0
		for k := range g {
			h.SetSym(i, k, 0)
		}
		h.SetSym(i, i, 1)
	}
	return Value{f: v.f, g: g, h: h}
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
