package fgh

import (
	"github.com/pkg/errors"
)

var (
	// ErrShapeMismatch reports operands whose variable spaces have different
	// dimensions, or a gradient whose length does not match its Hessian.
	ErrShapeMismatch = errors.New("fgh: shape mismatch")

	// ErrUnsupportedOperand reports an operator applied to operand kinds it
	// has no meaning for, such as a scalar exponent base or Scalar @ Value.
	ErrUnsupportedOperand = errors.New("fgh: unsupported operand")

	// ErrNotSymmetric reports a Hessian given as rows that is not symmetric.
	ErrNotSymmetric = errors.New("fgh: hessian is not symmetric")

	// ErrSingular reports a Hessian that cannot be solved against.
	ErrSingular = errors.New("fgh: singular hessian")
)

func shapeErr(op string, m, n int) error {
	return errors.Wrapf(ErrShapeMismatch, "%s: dimension %d does not match %d", op, m, n)
}

func checkSameSpace(op string, a, b Value) error {
	if a.Dim() != b.Dim() {
		return shapeErr(op, a.Dim(), b.Dim())
	}
	return nil
}

func mustSameSpace(op string, a, b Value) {
	if err := checkSameSpace(op, a, b); err != nil {
		panic(err)
	}
}
