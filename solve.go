package fgh

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// ============================================================
// Newton steps and the gonum optimizer bridge
// ============================================================

// NewtonStep returns d solving H d = -g, the Newton step of v. Apply
// Denanify first if v passed through a singular region.
func NewtonStep(v Value) ([]float64, error) {
	n := v.Dim()
	d := make([]float64, n)
	if n == 0 {
		return d, nil
	}
	rhs := mat.NewVecDense(n, v.G())
	rhs.ScaleVec(-1, rhs)
	if err := mat.NewVecDense(n, d).SolveVec(v.hess(), rhs); err != nil {
		return nil, errors.Wrap(ErrSingular, err.Error())
	}
	return d, nil
}

// Objective is a scalar function written over coordinate seeds.
type Objective func(x []Value) Value

func (fn Objective) eval(x []float64) Value {
	v := fn(Vars(x))
	if v.Dim() != len(x) {
		panic(shapeErr("Objective", v.Dim(), len(x)))
	}
	return v
}

// Problem adapts fn to gonum's optimizer. Derivatives are passed through
// Denanify so that the optimizer never sees NaN curvature.
func Problem(fn Objective) optimize.Problem {
	return optimize.Problem{
		Func: func(x []float64) float64 {
			return fn.eval(x).F()
		},
		Grad: func(grad, x []float64) {
			copy(grad, fn.eval(x).Denanify().g)
		},
		Hess: func(hess *mat.SymDense, x []float64) {
			hess.CopySym(fn.eval(x).Denanify().hess())
		},
	}
}

// Minimize runs gonum's Newton method on fn from x0. A nil settings uses
// gonum's defaults.
func Minimize(fn Objective, x0 []float64, settings *optimize.Settings) (*optimize.Result, error) {
	return optimize.Minimize(Problem(fn), x0, settings, &optimize.Newton{})
}
