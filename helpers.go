package fgh

import (
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ============================================================
// Constructors for common functions
// ============================================================

// Identity is the constant function 1 over n variables. It is the neutral
// element of MulDisjoint and pads a Value into a larger space.
func Identity(n int) Value { return Constant(1, n) }

// Constant is the constant function c over n variables.
func Constant(c float64, n int) Value {
	return Value{f: c, g: make([]float64, n), h: symZeros(n)}
}

// Var is the coordinate function x_i over n variables, evaluated at x.
func Var(x float64, i, n int) Value {
	if i < 0 || i >= n {
		panic(shapeErr("Var", i, n))
	}
	v := Constant(x, n)
	v.g[i] = 1
	return v
}

// Vars seeds one coordinate function per entry of x, all over the same space.
func Vars(x []float64) []Value {
	return lo.Map(x, func(xi float64, i int) Value { return Var(xi, i, len(x)) })
}

// Norm returns the Euclidean norm as a function of the coordinates of r,
// evaluated at r. The norm is not differentiable at the origin, where the
// gradient and Hessian are all NaN.
func Norm(r []float64) Value {
	n := len(r)
	f := floats.Norm(r, 2)
	if !(f > 0) {
		return Value{f: f, g: nanSlice(n), h: symNaN(n)}
	}
	g := floats.ScaleTo(make([]float64, n), 1/f, r)
	h := symScale(1/f, symRankOne(symEye(n), -1, g))
	return Value{f: f, g: g, h: h}
}

// ============================================================
// Determinant
// ============================================================

// Det computes the determinant of a square matrix by summing over all n!
// permutations. It is exact in the sense of using no pivoting, and only
// practical for small n. It panics with mat.ErrSquare for non-square input.
func Det(a mat.Matrix) float64 {
	r, c := a.Dims()
	if r != c {
		panic(mat.ErrSquare)
	}
	p := lo.Range(r)
	sign := 1.0
	det := 0.0
	for {
		term := sign
		for i, j := range p {
			term *= a.At(i, j)
		}
		det += term
		swaps, ok := nextPermutation(p)
		if !ok {
			return det
		}
		if swaps%2 == 1 {
			sign = -sign
		}
	}
}

// nextPermutation advances p to its lexicographic successor in place and
// returns the number of transpositions used. ok is false after the last
// permutation.
func nextPermutation(p []int) (swaps int, ok bool) {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return 0, false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	swaps = 1
	for l, r := i+1, len(p)-1; l < r; l, r = l+1, r-1 {
		p[l], p[r] = p[r], p[l]
		swaps++
	}
	return swaps, true
}
