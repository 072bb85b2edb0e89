package fgh_test

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fgh "github.com/njchilds90/gofgh"
)

// ============================================================
// Text rendering
// ============================================================

func TestString_LabeledBlocks(t *testing.T) {
	s := fgh.Var(2, 0, 2).String()
	assert.True(t, strings.HasPrefix(s, "value:\n2\n\ngradient:\n[1 0]\n\nhessian:\n"), s)
}

func TestString_ZeroDimension(t *testing.T) {
	assert.Equal(t, "value:\n3\n\ngradient:\n[]\n\nhessian:\n[]", fgh.Constant(3, 0).String())
}

func TestFormat_NumericVerbsUseValue(t *testing.T) {
	v := fgh.Var(5, 0, 2)
	assert.Equal(t, "5.00", fmt.Sprintf("%.2f", v))
	assert.Equal(t, "5.000e+00", fmt.Sprintf("%.3e", v))
	assert.Equal(t, "    5", fmt.Sprintf("%5g", v))
	assert.Equal(t, v.String(), fmt.Sprintf("%v", v))
	assert.Equal(t, v.String(), fmt.Sprint(v))
}

func TestLaTeX(t *testing.T) {
	got := fgh.Var(2, 0, 1).LaTeX()
	assert.Equal(t, `f = 2,\quad \nabla f = \begin{pmatrix}1\end{pmatrix},\quad H = \begin{pmatrix}0\end{pmatrix}`, got)

	broken := fgh.Constant(0, 1).Log().LaTeX()
	assert.Contains(t, broken, `f = -\infty`)
	assert.Contains(t, broken, `\mathrm{NaN}`)
}

// ============================================================
// JSON serialization
// ============================================================

func TestJSON_Marshal(t *testing.T) {
	b, err := json.Marshal(fgh.Var(2, 0, 1))
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":2,"gradient":[1],"hessian":[[0]]}`, string(b))
}

func TestJSON_RoundTrip(t *testing.T) {
	for name, v := range map[string]fgh.Value{
		"sample":     sample(),
		"dimension0": fgh.Constant(1, 0),
		"padded":     sample().MulDisjoint(fgh.Identity(1)),
	} {
		t.Run(name, func(t *testing.T) {
			b, err := json.Marshal(v)
			require.NoError(t, err)
			var got fgh.Value
			require.NoError(t, json.Unmarshal(b, &got))
			assert.True(t, got.Equal(v), "round trip of %s", b)
		})
	}
}

func TestJSON_NonFiniteSentinels(t *testing.T) {
	b, err := json.Marshal(fgh.Constant(0, 2).Log())
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"-Inf","gradient":["NaN","NaN"],"hessian":[["NaN","NaN"],["NaN","NaN"]]}`, string(b))

	var got fgh.Value
	require.NoError(t, json.Unmarshal(b, &got))
	assert.True(t, math.IsInf(got.F(), -1))
	assert.True(t, math.IsNaN(got.G()[1]))
	assert.True(t, math.IsNaN(got.H().At(0, 1)))
}

func TestJSON_UnmarshalErrors(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want error
	}{
		{"asymmetric", `{"value":1,"gradient":[1,2],"hessian":[[1,2],[3,4]]}`, fgh.ErrNotSymmetric},
		{"ragged", `{"value":1,"gradient":[1],"hessian":[[1,2]]}`, fgh.ErrShapeMismatch},
		{"short hessian", `{"value":1,"gradient":[1,2],"hessian":[[1,2]]}`, fgh.ErrShapeMismatch},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var v fgh.Value
			assert.ErrorIs(t, json.Unmarshal([]byte(tc.in), &v), tc.want)
		})
	}

	var v fgh.Value
	assert.Error(t, json.Unmarshal([]byte(`{"value":"one","gradient":[],"hessian":[]}`), &v))
}

func TestFromSlices(t *testing.T) {
	v, err := fgh.FromSlices(0.7, []float64{1, -2}, [][]float64{{0.5, 0.1}, {0.1, -0.3}})
	require.NoError(t, err)
	assert.True(t, v.Equal(sample()))
}
