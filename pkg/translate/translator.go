// Package translate provides the text translation collaborator: a Baidu
// general translation client and the rate-limited gateway that serializes
// calls to it and falls back to the source text on any failure.
package translate

import (
	"context"
	"errors"
)

// Sentinel errors for translation calls.
var (
	ErrMissingCredentials = errors.New("translator app id and secret are required")
	ErrTransport          = errors.New("translation request failed")
	ErrBadResponse        = errors.New("malformed translation response")
	ErrAPI                = errors.New("translation api error")
	ErrNoResult           = errors.New("translation response has no result")
	ErrInvalidProxy       = errors.New("invalid proxy url")
)

// Translator turns source text into translated text.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Func adapts a plain function to Translator.
type Func func(ctx context.Context, text string) (string, error)

// Translate implements Translator.
func (f Func) Translate(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Static is a Translator backed by a fixed table. Texts missing from the table
// fail with ErrNoResult.
type Static map[string]string

// Translate implements Translator.
func (s Static) Translate(_ context.Context, text string) (string, error) {
	if out, ok := s[text]; ok {
		return out, nil
	}

	return "", ErrNoResult
}
