// Package locale exports rewrite mapping entries as a YAML i18n catalogue
// with one section per language:
//
//	zh:
//	  workspace.system_keyboard_Lock: 锁定
//	en:
//	  workspace.system_keyboard_Lock: Lock
package locale

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/relabel/pkg/transform"
)

// fallbackComment marks keys whose translation fell back to the source text.
const fallbackComment = "untranslated"

// ErrSameLanguage is returned when source and target language codes match.
var ErrSameLanguage = errors.New("source and target language must differ")

// Catalog holds the mapping entries of one run.
type Catalog struct {
	From    string
	To      string
	Entries []transform.MappingEntry
}

// Node builds the YAML document. Entries keep their order; a repeated key
// keeps its first entry.
func (c *Catalog) Node() (*yaml.Node, error) {
	if c.From == c.To {
		return nil, fmt.Errorf("%w: %q", ErrSameLanguage, c.From)
	}

	from := &yaml.Node{Kind: yaml.MappingNode}
	to := &yaml.Node{Kind: yaml.MappingNode}
	seen := make(map[string]bool, len(c.Entries))

	for _, entry := range c.Entries {
		if seen[entry.Key] {
			continue
		}

		seen[entry.Key] = true

		from.Content = append(from.Content, scalar(entry.Key), scalar(entry.Original))

		value := scalar(entry.Translated)
		if entry.Fallback {
			value.LineComment = fallbackComment
		}

		to.Content = append(to.Content, scalar(entry.Key), value)
	}

	root := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		scalar(c.From), from,
		scalar(c.To), to,
	}}

	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}, nil
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// Encode writes the catalogue as YAML.
func (c *Catalog) Encode(w io.Writer) error {
	doc, err := c.Node()
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode locale catalogue: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode locale catalogue: %w", err)
	}

	return nil
}

// WriteFile writes the catalogue to path atomically.
func (c *Catalog) WriteFile(path string) error {
	var buf bytes.Buffer

	if err := c.Encode(&buf); err != nil {
		return err
	}

	if err := transform.WriteAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write locale catalogue: %w", err)
	}

	return nil
}

// Decode reads a catalogue back as language -> key -> text.
func Decode(r io.Reader) (map[string]map[string]string, error) {
	var out map[string]map[string]string

	if err := yaml.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode locale catalogue: %w", err)
	}

	return out, nil
}
