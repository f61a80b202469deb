package transform

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// celEnv is the shared CEL environment for applicability expressions.
// Expressions see two variables:
//
//	attrs  map(string, string)  the taxon's effective attributes
//	part   string               the requested part id
//
// The environment is immutable and safe for concurrent compilation.
var celEnv = func() *cel.Env {
	env, err := cel.NewEnv(
		cel.Variable("attrs", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("part", cel.StringType),
	)
	if err != nil {
		panic(fmt.Sprintf("transform: failed to build CEL environment: %v", err))
	}
	return env
}()

// CELPredicate is an applicability predicate compiled from a CEL expression.
//
// Expressions are boolean-valued over the attrs map and the part string:
//
//	attrs["cookable"] == "true" && part != "shell"
//	part in ["tail", "loin"]
//
// Compilation errors surface at construction; evaluation errors (e.g., a
// missing map key reached without the has() guard) mean "not applicable",
// never a request failure.
type CELPredicate struct {
	source  string
	program cel.Program
}

// NewCELPredicate compiles a CEL expression into a predicate.
// The expression must evaluate to a boolean.
func NewCELPredicate(expr string) (*CELPredicate, error) {
	ast, iss := celEnv.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("compile applicability expression: %w", iss.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("applicability expression must be boolean, got %s", ast.OutputType())
	}

	program, err := celEnv.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build applicability program: %w", err)
	}

	return &CELPredicate{source: expr, program: program}, nil
}

// MustCELPredicate is like NewCELPredicate but panics on compile errors.
// Intended for statically known expressions in registration code.
func MustCELPredicate(expr string) *CELPredicate {
	p, err := NewCELPredicate(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Applicable implements Predicate. Evaluation failures count as not
// applicable.
func (p *CELPredicate) Applicable(attrs map[string]string, part string) bool {
	if attrs == nil {
		attrs = map[string]string{}
	}
	out, _, err := p.program.Eval(map[string]any{
		"attrs": attrs,
		"part":  part,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// Expression returns the CEL source the predicate was compiled from.
func (p *CELPredicate) Expression() string {
	return p.source
}
