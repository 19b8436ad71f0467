package jsast

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ErrBadString is returned for malformed string literals.
var ErrBadString = errors.New("malformed string literal")

// DecodeString returns the value of a quoted JavaScript string literal,
// resolving every escape sequence the language defines, including \u{...},
// surrogate pairs and line continuations.
func DecodeString(raw string) (string, error) {
	if len(raw) < 2 {
		return "", fmt.Errorf("%w: %q", ErrBadString, raw)
	}

	quote := raw[0]
	if (quote != '"' && quote != '\'') || raw[len(raw)-1] != quote {
		return "", fmt.Errorf("%w: %q", ErrBadString, raw)
	}

	body := raw[1 : len(raw)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var sb strings.Builder

	sb.Grow(len(body))

	for idx := 0; idx < len(body); {
		ch := body[idx]
		if ch != '\\' {
			sb.WriteByte(ch)
			idx++

			continue
		}

		consumed, err := decodeEscape(body[idx+1:], &sb)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %w", ErrBadString, raw, err)
		}

		idx += 1 + consumed
	}

	return sb.String(), nil
}

// decodeEscape writes the character for the escape at the start of s (the
// text after a backslash) and returns the number of bytes consumed.
func decodeEscape(s string, sb *strings.Builder) (int, error) {
	if s == "" {
		return 0, errors.New("dangling backslash")
	}

	switch s[0] {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '0':
		if len(s) > 1 && s[1] >= '0' && s[1] <= '9' {
			return decodeLegacyOctal(s, sb)
		}

		sb.WriteByte(0)
	case '1', '2', '3', '4', '5', '6', '7':
		return decodeLegacyOctal(s, sb)
	case 'x':
		return decodeHex(s, 2, sb)
	case 'u':
		return decodeUnicode(s, sb)
	case '\r':
		if len(s) > 1 && s[1] == '\n' {
			return 2, nil
		}

		return 1, nil
	case '\n':
		return 1, nil
	default:
		r, size := utf8.DecodeRuneInString(s)
		if r == '\u2028' || r == '\u2029' {
			return size, nil
		}

		sb.WriteRune(r)

		return size, nil
	}

	return 1, nil
}

func decodeLegacyOctal(s string, sb *strings.Builder) (int, error) {
	end := 1
	for end < len(s) && end < 3 && s[end] >= '0' && s[end] <= '7' {
		end++
	}

	value, err := strconv.ParseUint(s[:end], 8, 16)
	if err != nil {
		return 0, err
	}

	if value > 0xFF {
		end--
		value >>= 3
	}

	sb.WriteRune(rune(value))

	return end, nil
}

func decodeHex(s string, digits int, sb *strings.Builder) (int, error) {
	if len(s) < 1+digits {
		return 0, errors.New("short hex escape")
	}

	value, err := strconv.ParseUint(s[1:1+digits], 16, 32)
	if err != nil {
		return 0, err
	}

	sb.WriteRune(rune(value))

	return 1 + digits, nil
}

func decodeUnicode(s string, sb *strings.Builder) (int, error) {
	if len(s) > 1 && s[1] == '{' {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return 0, errors.New("unterminated code point escape")
		}

		value, err := strconv.ParseUint(s[2:end], 16, 32)
		if err != nil || value > utf8.MaxRune {
			return 0, errors.New("bad code point escape")
		}

		sb.WriteRune(rune(value))

		return end + 1, nil
	}

	if len(s) < 5 {
		return 0, errors.New("short unicode escape")
	}

	high, err := strconv.ParseUint(s[1:5], 16, 32)
	if err != nil {
		return 0, err
	}

	// Surrogate pair spelled as two escapes.
	if utf16.IsSurrogate(rune(high)) && len(s) >= 11 && s[5] == '\\' && s[6] == 'u' {
		low, lowErr := strconv.ParseUint(s[7:11], 16, 32)
		if lowErr == nil {
			if combined := utf16.DecodeRune(rune(high), rune(low)); combined != utf8.RuneError {
				sb.WriteRune(combined)

				return 11, nil
			}
		}
	}

	sb.WriteRune(rune(high))

	return 5, nil
}
