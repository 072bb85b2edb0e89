package fgh

import (
	"github.com/pkg/errors"
)

// ============================================================
// Operand — Value | Scalar
// ============================================================

// Operand is either a Value or a Scalar. The set is closed.
type Operand interface {
	operand()
}

// Scalar is a plain number used as an operand. It has no derivatives.
type Scalar float64

func (Value) operand()  {}
func (Scalar) operand() {}

// Op names an operation understood by Apply and ApplyUnary.
type Op string

const (
	OpAdd      Op = "add"
	OpSub      Op = "sub"
	OpMul      Op = "mul"      // disjoint spaces
	OpMatMul   Op = "matmul"   // same space
	OpDiv      Op = "div"      // disjoint spaces
	OpFloorDiv Op = "floordiv" // same space
	OpPow      Op = "pow"

	OpNeg          Op = "neg"
	OpAbs          Op = "abs"
	OpSqrt         Op = "sqrt"
	OpExp          Op = "exp"
	OpLog          Op = "log"
	OpGradientNorm Op = "gradient_norm"
	OpDenanify     Op = "denanify"
)

// BinaryOps and UnaryOps list the operations in a stable order.
var (
	BinaryOps = []Op{OpAdd, OpSub, OpMul, OpMatMul, OpDiv, OpFloorDiv, OpPow}
	UnaryOps  = []Op{OpNeg, OpAbs, OpSqrt, OpExp, OpLog, OpGradientNorm, OpDenanify}
)

// IsUnary reports whether op takes a single operand.
func (op Op) IsUnary() bool {
	for _, u := range UnaryOps {
		if op == u {
			return true
		}
	}
	return false
}

func unsupported(op Op, a, b Operand) error {
	return errors.Wrapf(ErrUnsupportedOperand, "%s(%s, %s)", op, kind(a), kind(b))
}

func kind(o Operand) string {
	switch o.(type) {
	case Value:
		return "value"
	case Scalar:
		return "scalar"
	default:
		return "nil"
	}
}

// Apply evaluates a binary operation. Value⊕Value pairs are dimension-checked
// and return ErrShapeMismatch instead of panicking; pairings without a
// meaning return ErrUnsupportedOperand.
func Apply(op Op, a, b Operand) (Value, error) {
	switch x := a.(type) {
	case Value:
		switch y := b.(type) {
		case Value:
			return applyValues(op, x, y)
		case Scalar:
			return applyScalarRight(op, x, float64(y))
		}
	case Scalar:
		if y, ok := b.(Value); ok {
			return applyScalarLeft(op, float64(x), y)
		}
	}
	return Value{}, unsupported(op, a, b)
}

func applyValues(op Op, a, b Value) (Value, error) {
	switch op {
	case OpAdd, OpSub, OpMatMul, OpFloorDiv:
		if err := checkSameSpace(string(op), a, b); err != nil {
			return Value{}, err
		}
	}
	switch op {
	case OpAdd:
		return a.Add(b), nil
	case OpSub:
		return a.Sub(b), nil
	case OpMul:
		return a.MulDisjoint(b), nil
	case OpMatMul:
		return a.MulSame(b), nil
	case OpDiv:
		return a.DivDisjoint(b), nil
	case OpFloorDiv:
		return a.DivSame(b), nil
	}
	return Value{}, unsupported(op, a, b)
}

func applyScalarRight(op Op, a Value, c float64) (Value, error) {
	switch op {
	case OpAdd:
		return a.AddScalar(c), nil
	case OpSub:
		return a.SubScalar(c), nil
	case OpMul:
		return a.Scale(c), nil
	case OpDiv:
		return a.DivScalar(c), nil
	case OpPow:
		return a.Pow(c), nil
	}
	return Value{}, unsupported(op, a, Scalar(c))
}

func applyScalarLeft(op Op, c float64, a Value) (Value, error) {
	switch op {
	case OpAdd:
		return a.AddScalar(c), nil
	case OpSub:
		return a.RSubScalar(c), nil
	case OpMul:
		return a.Scale(c), nil
	case OpDiv:
		return a.RDivScalar(c), nil
	}
	return Value{}, unsupported(op, Scalar(c), a)
}

// ApplyUnary evaluates a single-operand operation.
func ApplyUnary(op Op, a Value) (Value, error) {
	switch op {
	case OpNeg:
		return a.Neg(), nil
	case OpAbs:
		return a.Abs(), nil
	case OpSqrt:
		return a.Sqrt(), nil
	case OpExp:
		return a.Exp(), nil
	case OpLog:
		return a.Log(), nil
	case OpGradientNorm:
		return a.GradientNorm(), nil
	case OpDenanify:
		return a.Denanify(), nil
	}
	return Value{}, errors.Wrapf(ErrUnsupportedOperand, "%s(value)", op)
}
