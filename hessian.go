package fgh

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Hessians are *mat.SymDense. gonum refuses zero-length matrices, so the
// zero-dimensional Hessian is the empty SymDense and every helper here
// short-circuits n == 0.

func symDim(h mat.Symmetric) int {
	if h == nil {
		return 0
	}
	if s, ok := h.(*mat.SymDense); ok && s.IsEmpty() {
		return 0
	}
	return h.SymmetricDim()
}

func symZeros(n int) *mat.SymDense {
	if n == 0 {
		return &mat.SymDense{}
	}
	return mat.NewSymDense(n, nil)
}

func symFill(n int, v float64) *mat.SymDense {
	if n == 0 {
		return &mat.SymDense{}
	}
	data := make([]float64, n*n)
	for i := range data {
		data[i] = v
	}
	return mat.NewSymDense(n, data)
}

func symNaN(n int) *mat.SymDense { return symFill(n, math.NaN()) }

func symEye(n int) *mat.SymDense {
	s := symZeros(n)
	for i := 0; i < n; i++ {
		s.SetSym(i, i, 1)
	}
	return s
}

func symCopy(a mat.Symmetric) *mat.SymDense {
	n := symDim(a)
	s := symZeros(n)
	if n > 0 {
		s.CopySym(a)
	}
	return s
}

// symScale returns alpha*a.
func symScale(alpha float64, a mat.Symmetric) *mat.SymDense {
	n := symDim(a)
	s := symZeros(n)
	if n > 0 {
		s.ScaleSym(alpha, a)
	}
	return s
}

// symAdd returns a + b.
func symAdd(a, b mat.Symmetric) *mat.SymDense {
	n := symDim(a)
	s := symZeros(n)
	if n > 0 {
		s.AddSym(a, b)
	}
	return s
}

// symSub returns a - b.
func symSub(a, b mat.Symmetric) *mat.SymDense {
	return symAdd(a, symScale(-1, b))
}

// symRankOne returns a + alpha*x*xᵀ.
func symRankOne(a mat.Symmetric, alpha float64, x []float64) *mat.SymDense {
	n := symDim(a)
	s := symZeros(n)
	if n > 0 {
		s.SymRankOne(a, alpha, mat.NewVecDense(n, x))
	}
	return s
}

// symRankTwo returns a + alpha*(x*yᵀ + y*xᵀ).
func symRankTwo(a mat.Symmetric, alpha float64, x, y []float64) *mat.SymDense {
	n := symDim(a)
	s := symZeros(n)
	if n > 0 {
		s.RankTwo(a, alpha, mat.NewVecDense(n, x), mat.NewVecDense(n, y))
	}
	return s
}

// symMulVec returns a*x.
func symMulVec(a mat.Symmetric, x []float64) []float64 {
	n := symDim(a)
	out := make([]float64, n)
	if n > 0 {
		mat.NewVecDense(n, out).MulVec(a, mat.NewVecDense(n, x))
	}
	return out
}

// symBlock assembles [[a, c], [cᵀ, b]] where c is the outer product x*yᵀ.
func symBlock(a, b mat.Symmetric, x, y []float64) *mat.SymDense {
	m, n := symDim(a), symDim(b)
	s := symZeros(m + n)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			s.SetSym(i, j, a.At(i, j))
		}
		for j := 0; j < n; j++ {
			s.SetSym(i, m+j, x[i]*y[j])
		}
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(m+i, m+j, b.At(i, j))
		}
	}
	return s
}

func symEqual(a, b mat.Symmetric) bool {
	n := symDim(a)
	if n != symDim(b) {
		return false
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if a.At(i, j) != b.At(i, j) {
				return false
			}
		}
	}
	return true
}

func symRows(a mat.Symmetric) [][]float64 {
	n := symDim(a)
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := range rows[i] {
			rows[i][j] = a.At(i, j)
		}
	}
	return rows
}
