package fgh_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fgh "github.com/njchilds90/gofgh"
)

// ============================================================
// Apply dispatch
// ============================================================

func TestApply_Dispatch(t *testing.T) {
	x := fgh.Vars([]float64{2, 3})
	a, b := x[0], x[1]
	y := fgh.Var(4, 0, 1)

	testCases := []struct {
		name string
		op   fgh.Op
		l, r fgh.Operand
		want fgh.Value
	}{
		{"value+value", fgh.OpAdd, a, b, a.Add(b)},
		{"value+scalar", fgh.OpAdd, a, fgh.Scalar(1), a.AddScalar(1)},
		{"scalar+value", fgh.OpAdd, fgh.Scalar(1), a, a.AddScalar(1)},
		{"value-value", fgh.OpSub, a, b, a.Sub(b)},
		{"value-scalar", fgh.OpSub, a, fgh.Scalar(5), a.SubScalar(5)},
		{"scalar-value", fgh.OpSub, fgh.Scalar(5), a, a.RSubScalar(5)},
		{"value*value", fgh.OpMul, a, y, a.MulDisjoint(y)},
		{"value*scalar", fgh.OpMul, a, fgh.Scalar(3), a.Scale(3)},
		{"scalar*value", fgh.OpMul, fgh.Scalar(3), a, a.Scale(3)},
		{"value@value", fgh.OpMatMul, a, b, a.MulSame(b)},
		{"value/value", fgh.OpDiv, a, y, a.DivDisjoint(y)},
		{"value/scalar", fgh.OpDiv, a, fgh.Scalar(2), a.DivScalar(2)},
		{"scalar/value", fgh.OpDiv, fgh.Scalar(2), a, a.RDivScalar(2)},
		{"value//value", fgh.OpFloorDiv, a, b, a.DivSame(b)},
		{"value**scalar", fgh.OpPow, a, fgh.Scalar(3), a.Pow(3)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := fgh.Apply(tc.op, tc.l, tc.r)
			require.NoError(t, err)
			assert.True(t, got.Equal(tc.want), "got\n%v\nwant\n%v", got, tc.want)
		})
	}
}

func TestApply_Unsupported(t *testing.T) {
	a := fgh.Identity(2)
	testCases := []struct {
		name string
		op   fgh.Op
		l, r fgh.Operand
	}{
		{"scalar@value", fgh.OpMatMul, fgh.Scalar(2), a},
		{"value@scalar", fgh.OpMatMul, a, fgh.Scalar(2)},
		{"value//scalar", fgh.OpFloorDiv, a, fgh.Scalar(2)},
		{"value**value", fgh.OpPow, a, a},
		{"scalar**value", fgh.OpPow, fgh.Scalar(2), a},
		{"scalar+scalar", fgh.OpAdd, fgh.Scalar(1), fgh.Scalar(2)},
		{"nil operand", fgh.OpAdd, a, nil},
		{"unary op", fgh.OpExp, a, a},
		{"unknown op", fgh.Op("mod"), a, a},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fgh.Apply(tc.op, tc.l, tc.r)
			assert.ErrorIs(t, err, fgh.ErrUnsupportedOperand)
		})
	}
}

func TestApply_ShapeMismatch(t *testing.T) {
	a, b := fgh.Identity(2), fgh.Identity(3)
	for _, op := range []fgh.Op{fgh.OpAdd, fgh.OpSub, fgh.OpMatMul, fgh.OpFloorDiv} {
		t.Run(string(op), func(t *testing.T) {
			_, err := fgh.Apply(op, a, b)
			assert.ErrorIs(t, err, fgh.ErrShapeMismatch)
		})
	}
	got, err := fgh.Apply(fgh.OpMul, a, b)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Dim())
}

func TestApplyUnary(t *testing.T) {
	a := sample()
	want := map[fgh.Op]fgh.Value{
		fgh.OpNeg:      a.Neg(),
		fgh.OpAbs:      a.Abs(),
		fgh.OpSqrt:     a.Sqrt(),
		fgh.OpExp:      a.Exp(),
		fgh.OpLog:      a.Log(),
		fgh.OpDenanify: a.Denanify(),
	}
	for _, op := range fgh.UnaryOps {
		t.Run(string(op), func(t *testing.T) {
			assert.True(t, op.IsUnary())
			got, err := fgh.ApplyUnary(op, a)
			require.NoError(t, err)
			if w, ok := want[op]; ok {
				assert.True(t, got.Equal(w))
			}
		})
	}

	gn, err := fgh.ApplyUnary(fgh.OpGradientNorm, a)
	require.NoError(t, err)
	assert.Equal(t, a.GradientNorm().F(), gn.F())

	_, err = fgh.ApplyUnary(fgh.OpAdd, a)
	assert.ErrorIs(t, err, fgh.ErrUnsupportedOperand)
	assert.False(t, fgh.OpAdd.IsUnary())
}
