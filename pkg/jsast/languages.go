package jsast

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unsafe"

	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/tsx"
	"github.com/alexaandru/go-sitter-forest/typescript"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/src-d/enry/v2"
)

// Language identifies a supported tree-sitter grammar.
type Language string

// Supported grammars.
const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
)

// ErrUnsupportedLanguage is returned when a file is not JavaScript or TypeScript.
var ErrUnsupportedLanguage = errors.New("unsupported language")

//nolint:gochecknoglobals // Static grammar table.
var languageFuncs = map[Language]func() unsafe.Pointer{
	JavaScript: javascript.GetLanguage,
	TypeScript: typescript.GetLanguage,
	TSX:        tsx.GetLanguage,
}

// Extensions whose grammar is fixed regardless of what enry reports; .jsx and
// .tsx need the JSX-aware grammars.
//
//nolint:gochecknoglobals // Static extension table.
var extensionLanguages = map[string]Language{
	".js":  JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".jsx": JavaScript,
	".ts":  TypeScript,
	".mts": TypeScript,
	".cts": TypeScript,
	".tsx": TSX,
}

//nolint:gochecknoglobals // Shared grammar cache, grammars are immutable.
var languageCache sync.Map

// DetectLanguage picks the grammar for a file. Known extensions win; anything
// else is classified by enry from the file name and content (shebangs,
// modelines).
func DetectLanguage(filename string, content []byte) (Language, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if lang, ok := extensionLanguages[ext]; ok {
		return lang, nil
	}

	switch enry.GetLanguage(filepath.Base(filename), content) {
	case "JavaScript", "JSX":
		return JavaScript, nil
	case "TypeScript":
		return TypeScript, nil
	case "TSX":
		return TSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filename)
	}
}

// grammar returns the tree-sitter language for lang.
func grammar(lang Language) (*sitter.Language, error) {
	if cached, ok := languageCache.Load(lang); ok {
		if grammarLang, castOK := cached.(*sitter.Language); castOK {
			return grammarLang, nil
		}
	}

	fn, ok := languageFuncs[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	grammarLang := sitter.NewLanguage(fn())
	languageCache.Store(lang, grammarLang)

	return grammarLang, nil
}
