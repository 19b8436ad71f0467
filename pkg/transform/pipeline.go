// Package transform rewrites the record array bound to a named declaration:
// it locates the declaration, rewrites the label field of every record into
// a generated key obtained through the translation gateway, and appends a
// declaration mapping each generated key to the original text.
package transform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/relabel/pkg/bridge"
	"github.com/Sumatoshi-tech/relabel/pkg/jsast"
	"github.com/Sumatoshi-tech/relabel/pkg/jsgen"
	"github.com/Sumatoshi-tech/relabel/pkg/observability"
)

// Pipeline defaults.
const (
	DefaultTarget   = "defaultOptions"
	DefaultBinding  = "newIndependentObject"
	DefaultDeclKind = "const"
)

// Sentinel errors. ErrInput and ErrOutput classify every fatal failure.
var (
	ErrInput          = errors.New("input error")
	ErrOutput         = errors.New("output error")
	ErrTargetNotArray = errors.New("target initializer is not an array literal")
)

// Result describes one transformation.
type Result struct {
	Language jsast.Language
	Code     string
	Entries  []MappingEntry

	// Found reports whether the target declaration exists. When false, Code
	// is the input regenerated without changes.
	Found bool

	Elements int
	Duration time.Duration
}

// Rewritten returns the number of rewritten elements.
func (r *Result) Rewritten() int {
	return len(r.Entries)
}

// Fallbacks returns the number of keys generated from untranslated text.
func (r *Result) Fallbacks() int {
	n := 0

	for _, entry := range r.Entries {
		if entry.Fallback {
			n++
		}
	}

	return n
}

// Pipeline sequences parse, locate, rewrite and generate.
type Pipeline struct {
	Parser   *jsast.Parser
	Rewriter *Rewriter
	Tracer   trace.Tracer
	Metrics  *observability.RunMetrics
	Logger   *slog.Logger

	// Target is the declaration name to rewrite; empty means DefaultTarget.
	Target string

	// Binding names the appended mapping declaration; empty means
	// DefaultBinding.
	Binding string

	// DeclKind is the appended declaration keyword; empty means const.
	DeclKind string

	Generate jsgen.Options
}

func (p *Pipeline) tracer() trace.Tracer {
	if p.Tracer == nil {
		return nooptrace.NewTracerProvider().Tracer("relabel")
	}

	return p.Tracer
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}

	return p.Logger
}

func (p *Pipeline) parser() *jsast.Parser {
	if p.Parser == nil {
		p.Parser = jsast.NewParser()
	}

	return p.Parser
}

// Transform rewrites src, naming the grammar after filename. Parse failures
// and a non-array target initializer are reported as ErrInput; generation
// failures as ErrOutput. A missing target is not an error: the result has
// Found false and no appended declaration.
func (p *Pipeline) Transform(ctx context.Context, filename string, src []byte) (*Result, error) {
	started := time.Now()

	lang, err := jsast.DetectLanguage(filename, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}

	tree, err := p.parse(ctx, lang, src)
	if err != nil {
		return nil, err
	}

	res := &Result{Language: lang}
	target := orDefault(p.Target, DefaultTarget)
	conv := bridge.NewConverter()

	arr, found := Locate(tree, target)

	switch {
	case !found:
		p.logger().InfoContext(ctx, "target declaration not found, nothing to rewrite", "target", target)
	case !arr.Is(jsast.KindArrayExpression):
		kind := "no initializer"
		if arr != nil {
			kind = arr.Type
		}

		return nil, fmt.Errorf("%w: %s: %w (%s)", ErrInput, target, ErrTargetNotArray, kind)
	default:
		res.Found = true

		rewritten, rewriteErr := p.rewrite(ctx, arr, res)
		if rewriteErr != nil {
			return nil, rewriteErr
		}

		conv.Replace(arr, rewritten)
	}

	program, ok := conv.Convert(tree).(*jsgen.Program)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInput, jsast.ErrNoRootNode)
	}

	if res.Found {
		program.Body = append(program.Body, p.mappingDeclaration(res.Entries))
	}

	code, err := p.generate(ctx, program)
	if err != nil {
		return nil, err
	}

	res.Code = code
	res.Duration = time.Since(started)

	p.Metrics.RecordRewrites(ctx, res.Rewritten(), res.Fallbacks())

	return res, nil
}

func (p *Pipeline) parse(ctx context.Context, lang jsast.Language, src []byte) (*jsast.Node, error) {
	ctx, span := p.tracer().Start(ctx, "relabel.parse",
		trace.WithAttributes(attribute.String("relabel.language", string(lang)), attribute.Int("relabel.bytes", len(src))))
	defer span.End()

	tree, err := p.parser().ParseLanguage(ctx, lang, src)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")

		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}

	return tree, nil
}

// rewrite runs RewriteElement for every element concurrently. Results are
// stored by element index so the output order never depends on which
// translation finished first.
func (p *Pipeline) rewrite(ctx context.Context, arr *jsast.Node, res *Result) (*jsgen.ArrayExpression, error) {
	ctx, span := p.tracer().Start(ctx, "relabel.rewrite")
	defer span.End()

	elements := arr.List(jsast.FieldElements)
	res.Elements = len(elements)

	nodes := make([]jsgen.Node, len(elements))
	entries := make([]*MappingEntry, len(elements))

	rw := p.Rewriter
	if rw == nil {
		rw = &Rewriter{Logger: p.Logger}
	}

	g, gctx := errgroup.WithContext(ctx)

	for idx, element := range elements {
		g.Go(func() error {
			node, entry := rw.RewriteElement(gctx, element)
			nodes[idx] = node

			if entry != nil {
				entry.Index = idx
				entries[idx] = entry
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("rewrite %s: %w", orDefault(p.Target, DefaultTarget), err)
	}

	for _, entry := range entries {
		if entry != nil {
			res.Entries = append(res.Entries, *entry)
		}
	}

	span.SetAttributes(
		attribute.Int("relabel.elements", len(elements)),
		attribute.Int("relabel.rewritten", res.Rewritten()),
		attribute.Int("relabel.fallbacks", res.Fallbacks()),
	)

	out := jsgen.NewArrayExpression(nodes...)
	jsgen.SetComments(out, arr.LeadingComments, arr.TrailingComments)

	return out, nil
}

// mappingDeclaration builds `const <binding> = { "<key>": "<original>", ... }`.
func (p *Pipeline) mappingDeclaration(entries []MappingEntry) *jsgen.VariableDeclaration {
	props := make([]jsgen.Node, 0, len(entries))

	for _, entry := range entries {
		value, err := jsgen.ValueToNode(entry.Original)
		if err != nil {
			value = jsgen.NewStringLiteral(entry.Original)
		}

		props = append(props, jsgen.NewObjectProperty(jsgen.NewStringLiteral(entry.Key), value))
	}

	return jsgen.NewVariableDeclaration(
		orDefault(p.DeclKind, DefaultDeclKind),
		jsgen.NewVariableDeclarator(
			jsgen.NewIdentifier(orDefault(p.Binding, DefaultBinding)),
			jsgen.NewObjectExpression(props...),
		),
	)
}

func (p *Pipeline) generate(ctx context.Context, program *jsgen.Program) (string, error) {
	_, span := p.tracer().Start(ctx, "relabel.generate")
	defer span.End()

	code, err := jsgen.Generate(program, p.Generate)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")

		return "", fmt.Errorf("%w: generate: %w", ErrOutput, err)
	}

	span.SetAttributes(attribute.Int("relabel.bytes", len(code)))

	return code, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
