package transform

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Sumatoshi-tech/relabel/pkg/bridge"
	"github.com/Sumatoshi-tech/relabel/pkg/jsast"
	"github.com/Sumatoshi-tech/relabel/pkg/jsgen"
	"github.com/Sumatoshi-tech/relabel/pkg/translate"
)

// Rewriter defaults.
const (
	DefaultField        = "label"
	DefaultTemplate     = "workspace.system_keyboard_%s"
	TemplatePlaceholder = "%s"
)

// whitespaceRun matches what JavaScript's \s matches, including the BOM and
// the Unicode line and paragraph separators.
var whitespaceRun = regexp.MustCompile(`[\s\p{Zs}\x{FEFF}\x{2028}\x{2029}\x{000B}]+`)

// MappingEntry records one rewritten field: the generated key and the value
// the field held before.
type MappingEntry struct {
	Key        string `json:"key"        yaml:"key"`
	Original   string `json:"original"   yaml:"original"`
	Translated string `json:"translated" yaml:"translated"`
	Index      int    `json:"index"      yaml:"index"`
	Fallback   bool   `json:"fallback"   yaml:"fallback"`
}

// KeyFor builds the key for a translated text: every whitespace run becomes a
// single underscore and the result replaces the first %s in template.
func KeyFor(template, translated string) string {
	slug := whitespaceRun.ReplaceAllString(translated, "_")

	return strings.Replace(template, TemplatePlaceholder, slug, 1)
}

// Rewriter rewrites the configured field of record literals into generated
// keys.
type Rewriter struct {
	Translator translate.Translator
	Logger     *slog.Logger

	// Field is the property name to rewrite; empty means DefaultField.
	Field string

	// Template is the key template; empty means DefaultTemplate.
	Template string
}

func (r *Rewriter) field() string {
	if r.Field == "" {
		return DefaultField
	}

	return r.Field
}

func (r *Rewriter) template() string {
	if r.Template == "" {
		return DefaultTemplate
	}

	return r.Template
}

func (r *Rewriter) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}

	return r.Logger
}

// RewriteElement rewrites one array element. When the element is an object
// literal whose first property named Field holds a string, that property's
// value is replaced by the generated key and a mapping entry is returned.
// Any other element is converted unchanged and yields no entry. A nil
// element (array hole) stays nil.
func (r *Rewriter) RewriteElement(ctx context.Context, element *jsast.Node) (jsgen.Node, *MappingEntry) {
	if element == nil {
		return nil, nil
	}

	if !element.Is(jsast.KindObjectExpression) {
		return bridge.Convert(element), nil
	}

	props := element.List(jsast.FieldProperties)

	target := r.findField(props)
	if target < 0 {
		return bridge.Convert(element), nil
	}

	prop := props[target]

	value, _ := prop.Child(jsast.FieldValue).LiteralValue()

	original, isString := value.(string)
	if !isString {
		r.logger().Warn("field is not a string literal, leaving element unchanged",
			"field", r.field(), "value", prop.Child(jsast.FieldValue).Raw, "offset", prop.Span.Start)

		return bridge.Convert(element), nil
	}

	translated, err := r.translate(ctx, original)

	entry := &MappingEntry{
		Key:        KeyFor(r.template(), translated),
		Original:   original,
		Translated: translated,
		Fallback:   err != nil,
	}

	conv := bridge.NewConverter()
	conv.Replace(prop, &jsgen.ObjectProperty{
		Key:      conv.Convert(prop.Child(jsast.FieldKey)),
		Value:    jsgen.NewStringLiteral(entry.Key),
		Computed: prop.Bool(jsast.FieldComputed),
	})

	obj := jsgen.NewObjectExpression(conv.ConvertAll(props)...)
	jsgen.SetComments(obj, element.LeadingComments, element.TrailingComments)

	return obj, entry
}

func (r *Rewriter) findField(props []*jsast.Node) int {
	for idx, prop := range props {
		if name, ok := prop.PropertyKeyName(); ok && name == r.field() {
			return idx
		}
	}

	return -1
}

// translate always returns a usable text: the source text when the
// translator fails or returns nothing.
func (r *Rewriter) translate(ctx context.Context, text string) (string, error) {
	if r.Translator == nil {
		return text, translate.ErrNoResult
	}

	out, err := r.Translator.Translate(ctx, text)
	if err != nil {
		return text, err
	}

	if strings.TrimSpace(out) == "" {
		r.logger().Warn("empty translation, keeping source text", "text", text)

		return text, translate.ErrNoResult
	}

	return out, nil
}
