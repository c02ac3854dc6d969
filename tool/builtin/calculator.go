// Package builtin contains the general-purpose tools every agent gets:
// arithmetic, sandboxed file access and knowledge lookup.
package builtin

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/tool"
)

// ErrDivisionByZero is returned by Evaluate for x/0.
var ErrDivisionByZero = errors.New("division by zero")

const (
	maxExpressionLen = 1024
	maxNesting       = 32
)

// CalculatorArgs describes the calculator parameters.
type CalculatorArgs struct {
	Expression string `json:"expression" description:"Arithmetic expression, e.g. '3*7+2' or '(10+5)/3'"`
}

// NewCalculator returns the calculator tool. It returns the numeric value so
// "3*7+2" observes as 23.
func NewCalculator() *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"calculator",
		"Evaluate an arithmetic expression with + - * / and parentheses",
		CalculatorArgs{},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			expression, _ := args["expression"].(string)
			return Evaluate(expression)
		},
	)
}

// Evaluate computes an arithmetic expression over decimal numbers with the
// operators + - * / and parentheses. Anything else is rejected before the
// expression reaches the evaluator.
func Evaluate(expression string) (float64, error) {
	if err := checkArithmetic(expression); err != nil {
		return 0, err
	}

	divByZero := false
	program, err := expr.Compile(expression,
		expr.Function("div", func(params ...any) (any, error) {
			a, b := params[0].(float64), params[1].(float64)
			if b == 0 {
				divByZero = true
				return nil, ErrDivisionByZero
			}
			return a / b, nil
		}, new(func(float64, float64) float64)),
		expr.Patch(floatArithmetic{}),
		expr.AsFloat64(),
	)
	if err != nil {
		return 0, fmt.Errorf("invalid expression: %w", err)
	}

	out, err := expr.Run(program, nil)
	if divByZero {
		return 0, ErrDivisionByZero
	}
	if err != nil {
		return 0, fmt.Errorf("evaluate expression: %w", err)
	}

	v, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("expression did not produce a number")
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("result is not a finite number")
	}

	return v, nil
}

// checkArithmetic admits numbers, + - * / and parentheses only. It also
// bounds length and nesting, which bounds the parser's recursion.
func checkArithmetic(expression string) error {
	if strings.TrimSpace(expression) == "" {
		return fmt.Errorf("empty expression")
	}
	if len(expression) > maxExpressionLen {
		return fmt.Errorf("expression longer than %d characters", maxExpressionLen)
	}
	if strings.Contains(expression, "**") {
		return fmt.Errorf("unsupported operator ** at position %d", strings.Index(expression, "**"))
	}

	depth, dots := 0, 0
	for i, c := range expression {
		switch {
		case c >= '0' && c <= '9':
			continue
		case c == '.':
			dots++
			if dots > 1 {
				return fmt.Errorf("invalid number at position %d", i)
			}
			continue
		case c == '(':
			depth++
			if depth > maxNesting {
				return fmt.Errorf("expression nested too deeply")
			}
		case c == ')':
			depth--
		case c == '+' || c == '-' || c == '*' || c == '/' || c == ' ' || c == '\t' || c == '\n':
		default:
			return fmt.Errorf("unexpected %q at position %d", c, i)
		}
		dots = 0
	}

	return nil
}

// floatArithmetic makes every literal a float and routes division through
// div, so 7/2 is 3.5 and x/0 is reported instead of yielding Inf.
type floatArithmetic struct{}

func (floatArithmetic) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IntegerNode:
		ast.Patch(node, &ast.FloatNode{Value: float64(n.Value)})
	case *ast.BinaryNode:
		if n.Operator == "/" {
			ast.Patch(node, &ast.CallNode{
				Callee:    &ast.IdentifierNode{Value: "div"},
				Arguments: []ast.Node{n.Left, n.Right},
			})
		}
	}
}
