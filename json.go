package fgh

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// ============================================================
// JSON serialization
// ============================================================

// jsonFloat carries NaN and ±Inf through JSON as the strings "NaN", "+Inf"
// and "-Inf". Finite numbers stay numbers.
type jsonFloat float64

func (x jsonFloat) MarshalJSON() ([]byte, error) {
	f := float64(x)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (x *jsonFloat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.Wrapf(err, "fgh: invalid number %q", s)
		}
		*x = jsonFloat(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return errors.Wrap(err, "fgh: invalid number")
	}
	*x = jsonFloat(f)
	return nil
}

type valueJSON struct {
	Value    jsonFloat     `json:"value"`
	Gradient []jsonFloat   `json:"gradient"`
	Hessian  [][]jsonFloat `json:"hessian"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	out := valueJSON{
		Value:    jsonFloat(v.f),
		Gradient: make([]jsonFloat, v.Dim()),
		Hessian:  make([][]jsonFloat, v.Dim()),
	}
	for i, x := range v.g {
		out.Gradient[i] = jsonFloat(x)
	}
	for i, row := range symRows(v.hess()) {
		out.Hessian[i] = make([]jsonFloat, len(row))
		for j, x := range row {
			out.Hessian[i][j] = jsonFloat(x)
		}
	}
	return json.Marshal(out)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var in valueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	g := make([]float64, len(in.Gradient))
	for i, x := range in.Gradient {
		g[i] = float64(x)
	}
	h := make([][]float64, len(in.Hessian))
	for i, row := range in.Hessian {
		h[i] = make([]float64, len(row))
		for j, x := range row {
			h[i][j] = float64(x)
		}
	}
	parsed, err := FromSlices(float64(in.Value), g, h)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
