package expr

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by Compile.
var (
	ErrEmptyExpression  = errors.New("expr: empty expression")
	ErrUnbalancedQuotes = errors.New("expr: unbalanced quotes")
)

// BinaryOp is a function that compares two values and returns a boolean result.
type BinaryOp func(left, right any) bool

// Evaluator evaluates boolean expressions with optional custom operators.
type Evaluator struct {
	customOps map[string]BinaryOp
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithCustomOperator registers a custom binary operator. Custom operators
// are word operators and must be surrounded by spaces in the expression.
func WithCustomOperator(name string, fn BinaryOp) Option {
	return func(e *Evaluator) {
		if e.customOps == nil {
			e.customOps = make(map[string]BinaryOp)
		}
		e.customOps[name] = fn
	}
}

// New creates a new Evaluator with the given options.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate evaluates a boolean expression against fields.
func (e *Evaluator) Evaluate(src string, fields map[string]any) (bool, error) {
	return e.evaluateCondition(src, fields)
}

// Eval evaluates an expression with the default evaluator.
func Eval(src string, fields map[string]any) (bool, error) {
	return New().Evaluate(src, fields)
}

// Expression is a validated expression bound to an evaluator.
type Expression struct {
	src       string
	evaluator *Evaluator
}

// Compile validates src and binds it to e. Evaluating a compiled
// expression never re-validates.
func (e *Evaluator) Compile(src string) (*Expression, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmptyExpression
	}
	if strings.Count(src, "'")%2 != 0 || strings.Count(src, `"`)%2 != 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnbalancedQuotes, src)
	}
	return &Expression{src: src, evaluator: e}, nil
}

// Compile validates src with the default evaluator.
func Compile(src string) (*Expression, error) {
	return New().Compile(src)
}

// Eval evaluates the expression against fields.
func (x *Expression) Eval(fields map[string]any) (bool, error) {
	return x.evaluator.evaluateCondition(x.src, fields)
}

// String returns the expression source.
func (x *Expression) String() string {
	return x.src
}

// builtinOps are tried in order; longer operators come first so ">=" is
// never split as ">".
var builtinOps = []struct {
	op      string
	compare BinaryOp
}{
	{"==", compareEquals},
	{"!=", compareNotEquals},
	{">=", compareGTE},
	{"<=", compareLTE},
	{">", compareGT},
	{"<", compareLT},
	{" contains ", compareContains},
	{" has ", compareContains},
}

// evaluateCondition evaluates a condition expression.
// Precedence, lowest first: or, and, not/!, comparison, value.
func (e *Evaluator) evaluateCondition(src string, fields map[string]any) (bool, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return false, nil
	}

	if parts := strings.SplitN(src, " or ", 2); len(parts) == 2 {
		left, err := e.evaluateCondition(parts[0], fields)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return e.evaluateCondition(parts[1], fields)
	}

	if parts := strings.SplitN(src, " and ", 2); len(parts) == 2 {
		left, err := e.evaluateCondition(parts[0], fields)
		if err != nil {
			return false, err
		}
		if !left {
			return false, nil
		}
		return e.evaluateCondition(parts[1], fields)
	}

	if strings.HasPrefix(src, "not ") {
		result, err := e.evaluateCondition(strings.TrimPrefix(src, "not "), fields)
		return !result, err
	}

	if strings.HasPrefix(src, "!") && !strings.HasPrefix(src, "!=") {
		result, err := e.evaluateCondition(strings.TrimPrefix(src, "!"), fields)
		return !result, err
	}

	for _, op := range builtinOps {
		if parts := strings.SplitN(src, op.op, 2); len(parts) == 2 {
			left := Resolve(parts[0], fields)
			right := Resolve(parts[1], fields)
			return op.compare(left, right), nil
		}
	}

	for name, fn := range e.customOps {
		if parts := strings.SplitN(src, " "+name+" ", 2); len(parts) == 2 {
			left := Resolve(parts[0], fields)
			right := Resolve(parts[1], fields)
			return fn(left, right), nil
		}
	}

	return IsTruthy(Resolve(src, fields)), nil
}
