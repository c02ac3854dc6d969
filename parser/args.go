package parser

import (
	"encoding/json"
	"regexp"
	"strings"
)

// matchParen returns the text between the opening parenthesis at s[0] and
// its matching close, honoring quotes and nested brackets.
func matchParen(s string) (string, bool) {
	depth := 0
	var quote byte
	escape := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case escape:
				escape = false
			case c == '\\':
				escape = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				if c != ')' {
					return "", false
				}
				return s[1:i], true
			}
		}
	}
	return "", false
}

// splitTopLevel splits s on commas that are outside quotes and brackets.
// Empty input yields no pieces.
func splitTopLevel(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var (
		pieces []string
		depth  int
		quote  byte
		escape bool
		start  int
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case escape:
				escape = false
			case c == '\\':
				escape = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				pieces = append(pieces, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}

	return append(pieces, strings.TrimSpace(s[start:]))
}

var keywordPattern = regexp.MustCompile(`(?s)^([A-Za-z_][A-Za-z0-9_]*)\s*=([^=].*|)$`)

// splitKeyword recognizes `key=value` pieces.
func splitKeyword(piece string) (key, value string, ok bool) {
	m := keywordPattern.FindStringSubmatch(piece)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// decodeValue decodes a literal: quoted strings, JSON numbers, booleans,
// null, arrays and objects. Python-style True/False/None are accepted.
// Anything else is kept as raw text.
func decodeValue(raw string) any {
	raw = strings.TrimSpace(raw)

	switch raw {
	case "True":
		return true
	case "False":
		return false
	case "None":
		return nil
	}

	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		inner := raw[1 : len(raw)-1]
		inner = strings.ReplaceAll(inner, `\'`, `'`)
		inner = strings.ReplaceAll(inner, `\\`, `\`)
		return inner
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}

	return raw
}
