// Package tools exposes the fgh algebra as MCP tools.
//
// Values travel as JSON objects {"value", "gradient", "hessian"} with NaN and
// ±Inf spelled as strings; a scalar operand is {"scalar": x}.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	fgh "github.com/njchilds90/gofgh"
)

const (
	ToolApply    = "fgh_apply"
	ToolNorm     = "fgh_norm"
	ToolIdentity = "fgh_identity"
	ToolDet      = "fgh_det"
)

// Limits bounds the size of tool inputs.
type Limits struct {
	MaxDimension int
	MaxDetOrder  int
}

// Server holds the tool handlers.
type Server struct {
	log     logrus.FieldLogger
	metrics *Metrics
	limits  Limits
}

// New returns a tool server. metrics may be nil.
func New(log logrus.FieldLogger, metrics *Metrics, limits Limits) *Server {
	return &Server{log: log, metrics: metrics, limits: limits}
}

// Tools returns every tool with its instrumented handler.
func (s *Server) Tools() []server.ServerTool {
	ops := lo.Map(append(append([]fgh.Op{}, fgh.BinaryOps...), fgh.UnaryOps...), func(op fgh.Op, _ int) string {
		return string(op)
	})
	return []server.ServerTool{
		{
			Tool: mcp.NewTool(ToolApply,
				mcp.WithDescription(`Apply an operation to value/gradient/Hessian operands.

Binary: add, sub, mul (disjoint variables, dimensions concatenate), matmul (same variables),
div (disjoint), floordiv (same variables), pow (value ** scalar).
Unary (no "b"): neg, abs, sqrt, exp, log, gradient_norm, denanify.

Operands are {"value": 2, "gradient": [1, 0], "hessian": [[0, 0], [0, 0]]} or {"scalar": 3}.`),
				mcp.WithString("op", mcp.Required(), mcp.Enum(ops...), mcp.Description("Operation name")),
				mcp.WithObject("a", mcp.Required(), mcp.Description("Left operand")),
				mcp.WithObject("b", mcp.Description("Right operand; omitted for unary operations")),
			),
			Handler: s.instrument(ToolApply, mcp.NewTypedToolHandler(s.Apply)),
		},
		{
			Tool: mcp.NewTool(ToolNorm,
				mcp.WithDescription("Euclidean norm of a vector with its gradient and Hessian"),
				mcp.WithArray("vector", mcp.Required(), mcp.Items(map[string]any{"type": "number"})),
			),
			Handler: s.instrument(ToolNorm, mcp.NewTypedToolHandler(s.Norm)),
		},
		{
			Tool: mcp.NewTool(ToolIdentity,
				mcp.WithDescription("Constant 1 over n variables, used to pad a value into a larger space"),
				mcp.WithNumber("n", mcp.Required(), mcp.Description("Number of variables")),
			),
			Handler: s.instrument(ToolIdentity, mcp.NewTypedToolHandler(s.Identity)),
		},
		{
			Tool: mcp.NewTool(ToolDet,
				mcp.WithDescription("Determinant of a small square matrix by permutation expansion"),
				mcp.WithArray("matrix", mcp.Required(), mcp.Description("Rows of the matrix"),
					mcp.Items(map[string]any{"type": "array", "items": map[string]any{"type": "number"}})),
			),
			Handler: s.instrument(ToolDet, mcp.NewTypedToolHandler(s.Det)),
		},
	}
}

func (s *Server) instrument(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			s.log.WithError(ctx.Err()).WithField("tool", name).Warn("tool called with cancelled context")
			return mcp.NewToolResultError("request cancelled"), nil
		}
		start := time.Now()
		res, err := h(ctx, req)
		outcome := "ok"
		if err != nil || (res != nil && res.IsError) {
			outcome = "error"
		}
		s.metrics.observe(name, outcome, time.Since(start))
		s.log.WithFields(logrus.Fields{
			"tool":     name,
			"outcome":  outcome,
			"duration": time.Since(start),
		}).Debug("tool call completed")
		return res, err
	}
}

func (s *Server) fail(tool string, err error) (*mcp.CallToolResult, error) {
	s.log.WithError(err).WithField("tool", tool).Warn("tool call rejected")
	return mcp.NewToolResultError(err.Error()), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) checkDim(what string, n int) error {
	if n > s.limits.MaxDimension {
		return errors.Errorf("%s has %d variables, limit is %d", what, n, s.limits.MaxDimension)
	}
	return nil
}

// ============================================================
// fgh_apply
// ============================================================

// ApplyArgs are the arguments of fgh_apply.
type ApplyArgs struct {
	Op string          `json:"op"`
	A  json.RawMessage `json:"a"`
	B  json.RawMessage `json:"b,omitempty"`
}

type scalarJSON struct {
	Scalar *float64 `json:"scalar"`
}

func decodeOperand(raw json.RawMessage) (fgh.Operand, error) {
	if len(raw) == 0 || strings.TrimSpace(string(raw)) == "null" {
		return nil, nil
	}
	var probe scalarJSON
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, errors.Wrap(err, "operand must be an object")
	}
	if probe.Scalar != nil {
		return fgh.Scalar(*probe.Scalar), nil
	}
	var v fgh.Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Server) Apply(ctx context.Context, req mcp.CallToolRequest, args ApplyArgs) (*mcp.CallToolResult, error) {
	op := fgh.Op(args.Op)
	a, err := decodeOperand(args.A)
	if err != nil {
		return s.fail(ToolApply, errors.WithMessage(err, "a"))
	}
	b, err := decodeOperand(args.B)
	if err != nil {
		return s.fail(ToolApply, errors.WithMessage(err, "b"))
	}
	for name, o := range map[string]fgh.Operand{"a": a, "b": b} {
		if v, ok := o.(fgh.Value); ok {
			if err := s.checkDim(name, v.Dim()); err != nil {
				return s.fail(ToolApply, err)
			}
		}
	}

	var out fgh.Value
	if op.IsUnary() {
		v, ok := a.(fgh.Value)
		if !ok || b != nil {
			return s.fail(ToolApply, errors.Wrapf(fgh.ErrUnsupportedOperand, "%s takes a single value operand", op))
		}
		out, err = fgh.ApplyUnary(op, v)
	} else {
		out, err = fgh.Apply(op, a, b)
	}
	if err != nil {
		return s.fail(ToolApply, err)
	}
	if err := s.checkDim("result", out.Dim()); err != nil {
		return s.fail(ToolApply, err)
	}
	s.log.WithFields(logrus.Fields{"op": op, "dim": out.Dim()}).Debug("applied operation")
	return jsonResult(out)
}

// ============================================================
// fgh_norm, fgh_identity, fgh_det
// ============================================================

// NormArgs are the arguments of fgh_norm.
type NormArgs struct {
	Vector []float64 `json:"vector"`
}

func (s *Server) Norm(ctx context.Context, req mcp.CallToolRequest, args NormArgs) (*mcp.CallToolResult, error) {
	if err := s.checkDim("vector", len(args.Vector)); err != nil {
		return s.fail(ToolNorm, err)
	}
	return jsonResult(fgh.Norm(args.Vector))
}

// IdentityArgs are the arguments of fgh_identity.
type IdentityArgs struct {
	N int `json:"n"`
}

func (s *Server) Identity(ctx context.Context, req mcp.CallToolRequest, args IdentityArgs) (*mcp.CallToolResult, error) {
	if args.N < 0 {
		return s.fail(ToolIdentity, errors.Errorf("n must not be negative, got %d", args.N))
	}
	if err := s.checkDim("identity", args.N); err != nil {
		return s.fail(ToolIdentity, err)
	}
	return jsonResult(fgh.Identity(args.N))
}

// DetArgs are the arguments of fgh_det.
type DetArgs struct {
	Matrix [][]float64 `json:"matrix"`
}

// DetResult is the fgh_det response body.
type DetResult struct {
	Det float64 `json:"det"`
}

func (s *Server) Det(ctx context.Context, req mcp.CallToolRequest, args DetArgs) (*mcp.CallToolResult, error) {
	n := len(args.Matrix)
	if n == 0 {
		return s.fail(ToolDet, errors.New("matrix must have at least one row"))
	}
	if n > s.limits.MaxDetOrder {
		return s.fail(ToolDet, errors.Errorf("matrix order %d exceeds limit %d", n, s.limits.MaxDetOrder))
	}
	for i, row := range args.Matrix {
		if len(row) != n {
			return s.fail(ToolDet, errors.Wrapf(fgh.ErrShapeMismatch, "row %d has %d entries, want %d", i, len(row), n))
		}
	}
	det := fgh.Det(mat.NewDense(n, n, lo.Flatten(args.Matrix)))
	return jsonResult(DetResult{Det: det})
}

// ============================================================
// Prompts
// ============================================================

const PromptNewton = "newton-step"

// Prompts returns the prompts served next to the tools.
func (s *Server) Prompts() []server.ServerPrompt {
	return []server.ServerPrompt{
		{
			Prompt: mcp.NewPrompt(PromptNewton,
				mcp.WithPromptDescription("Compute one Newton step for an objective using the fgh tools"),
				mcp.WithArgument("objective",
					mcp.ArgumentDescription("Objective function, e.g. (1-x)^2 + 100(y-x^2)^2"),
					mcp.RequiredArgument(),
				),
				mcp.WithArgument("point",
					mcp.ArgumentDescription("Point to expand around, e.g. [-1.2, 1]"),
					mcp.RequiredArgument(),
				),
			),
			Handler: s.newtonPrompt,
		},
	}
}

func (s *Server) newtonPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	if ctx.Err() != nil {
		return nil, errors.New("request cancelled")
	}
	objective := req.Params.Arguments["objective"]
	point := req.Params.Arguments["point"]
	if objective == "" || point == "" {
		return nil, errors.New("objective and point are required")
	}
	s.log.WithFields(logrus.Fields{"objective": objective, "point": point}).Info("building newton-step prompt")

	text := fmt.Sprintf(`Minimize f = %s starting from x = %s.

1. Seed every coordinate x_i as {"value": x_i, "gradient": e_i, "hessian": 0} over n variables.
2. Build f with %s. Use "matmul" and "floordiv" for operands over the same variables;
   "mul" and "div" concatenate disjoint variable sets.
3. Apply "denanify" to the result so that NaN derivatives do not poison the step.
4. Solve H d = -g for the Newton step d and report x + d together with f, g and H.`,
		objective, point, ToolApply)

	return mcp.NewGetPromptResult(
		"Newton step",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}
