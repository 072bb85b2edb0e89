package fgh

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ============================================================
// Text and LaTeX rendering
// ============================================================

func (v Value) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "value:\n%v\n\ngradient:\n%v\n\nhessian:\n", v.f, v.g)
	if v.Dim() == 0 {
		sb.WriteString("[]")
	} else {
		fmt.Fprintf(&sb, "%v", mat.Formatted(v.h, mat.Squeeze()))
	}
	return sb.String()
}

// Format prints the labeled blocks of String for %v and %s. Any other verb
// formats the value alone, so "%.3f" and "%8.2e" behave as for a float64.
func (v Value) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v', 's':
		fmt.Fprint(s, v.String())
	default:
		fmt.Fprintf(s, fmt.FormatString(s, verb), v.f)
	}
}

// LaTeX renders f, ∇f and H.
func (v Value) LaTeX() string {
	var sb strings.Builder
	sb.WriteString("f = ")
	sb.WriteString(latexFloat(v.f))
	sb.WriteString(",\\quad \\nabla f = \\begin{pmatrix}")
	for i, x := range v.g {
		if i > 0 {
			sb.WriteString(" \\\\ ")
		}
		sb.WriteString(latexFloat(x))
	}
	sb.WriteString("\\end{pmatrix},\\quad H = \\begin{pmatrix}")
	for i, row := range symRows(v.hess()) {
		if i > 0 {
			sb.WriteString(" \\\\ ")
		}
		for j, x := range row {
			if j > 0 {
				sb.WriteString(" & ")
			}
			sb.WriteString(latexFloat(x))
		}
	}
	sb.WriteString("\\end{pmatrix}")
	return sb.String()
}

func latexFloat(x float64) string {
	switch {
	case math.IsNaN(x):
		return "\\mathrm{NaN}"
	case math.IsInf(x, 1):
		return "\\infty"
	case math.IsInf(x, -1):
		return "-\\infty"
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}
