package util

import "strings"

// ExtractBalanced returns the first balanced block that starts with open in
// text, matching brackets outside of JSON string literals. It reports false
// when no complete block exists.
func ExtractBalanced(text string, open, closing byte) (string, bool) {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return "", false
	}

	depth := 0
	inStr := false
	escape := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if escape {
			escape = false
			continue
		}
		if inStr {
			switch c {
			case '\\':
				escape = true
			case '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}

// ExtractObject returns the first balanced {...} block of text.
func ExtractObject(text string) (string, bool) {
	return ExtractBalanced(text, '{', '}')
}
