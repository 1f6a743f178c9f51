// Package query filters bibliography entries with CEL expressions such as
//
//	kind == "article" && year >= 2015 && authors.exists(a, a == "Knuth")
//
// The variables are key, kind, year (0 when unknown), fields (the effective
// fields, inherited ones included), and the family names in authors and
// editors, plus keywords.
package query

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/samber/lo"

	"github.com/drgo/bibdoc"
)

// Filter is a compiled, type-checked CEL expression. It is safe for
// concurrent use.
type Filter struct {
	src string
	prg cel.Program
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("key", cel.StringType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("year", cel.IntType),
		cel.Variable("fields", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("authors", cel.ListType(cel.StringType)),
		cel.Variable("editors", cel.ListType(cel.StringType)),
		cel.Variable("keywords", cel.ListType(cel.StringType)),
		cel.CrossTypeNumericComparisons(true),
	)
}

// Compile parses and checks expr. It must evaluate to a bool.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty filter")
	}
	env, err := newEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter must be a condition, got %s", ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build program: %w", err)
	}
	return &Filter{src: expr, prg: prg}, nil
}

func (f *Filter) String() string { return f.src }

// Match evaluates the filter against e. Field errors of e (bad names, broken
// crossrefs) are returned rather than treated as a mismatch.
func (f *Filter) Match(e *bibdoc.Entry) (bool, error) {
	vars, err := Vars(e)
	if err != nil {
		return false, err
	}
	out, _, err := f.prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("%s: %w", e.Key, err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, fmt.Errorf("%s: filter returned %T", e.Key, out.Value())
	}
	return ok, nil
}

// Vars builds the CEL activation for e.
func Vars(e *bibdoc.Entry) (map[string]any, error) {
	fields := map[string]string{}
	resolved, err := e.Bibliography().ResolvedFields(e)
	if err != nil {
		return nil, err
	}
	for _, fld := range resolved {
		fields[fld.Name] = fld.Value
	}
	year, _, err := e.Year()
	if err != nil {
		return nil, err
	}
	authors, _, err := e.Authors()
	if err != nil {
		return nil, err
	}
	editors, _, err := e.Editors()
	if err != nil {
		return nil, err
	}
	keywords, _, err := e.Keywords()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"key":      e.Key,
		"kind":     e.Kind,
		"year":     int64(year),
		"fields":   fields,
		"authors":  families(authors),
		"editors":  families(editors),
		"keywords": lo.Ternary(keywords == nil, []string{}, keywords),
	}, nil
}

func families(names []bibdoc.Name) []string {
	out := lo.FilterMap(names, func(n bibdoc.Name, _ int) (string, bool) {
		return n.Family(), !n.IsOthers()
	})
	return lo.Ternary(out == nil, []string{}, out)
}

// Select returns the entries of bib matching f, in source order. Entries
// whose fields cannot be evaluated are passed to skip, if not nil, and left
// out.
func Select(f *Filter, bib *bibdoc.Bibliography, skip func(*bibdoc.Entry, error)) []*bibdoc.Entry {
	var out []*bibdoc.Entry
	for e := range bib.All() {
		ok, err := f.Match(e)
		if err != nil {
			if skip != nil {
				skip(e, err)
			}
			continue
		}
		if ok {
			out = append(out, e)
		}
	}
	return out
}
