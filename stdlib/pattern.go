package stdlib

import (
	"fmt"
	"regexp"
	"strings"
)

// The string library's pattern matching is delegated to Go's regexp
// engine through a syntax translation. Lua character classes map onto
// explicit ranges, '-' becomes the lazy '*?', and '%' escapes become
// regexp escapes. Back-references and balanced-match items (%1, %b, %f)
// have no RE2 equivalent and are rejected.

var classRanges = map[byte]string{
	'a': `A-Za-z`,
	'c': `\x00-\x1f`,
	'd': `0-9`,
	'g': `\x21-\x7e`,
	'l': `a-z`,
	'p': `!-/:-@\[-` + "`" + `{-~`,
	's': ` \t\n\v\f\r`,
	'u': `A-Z`,
	'w': `0-9A-Za-z`,
	'x': `0-9A-Fa-f`,
}

func classFor(c byte, inSet bool) (string, error) {
	lower := c | 0x20
	ranges, ok := classRanges[lower]
	if !ok {
		// %x for a non-class character is an escape of that character.
		return regexp.QuoteMeta(string(c)), nil
	}
	upper := c >= 'A' && c <= 'Z'
	if inSet {
		if upper {
			return "", fmt.Errorf("complemented class %%%c inside a set is not supported", c)
		}
		return ranges, nil
	}
	if upper {
		return "[^" + ranges + "]", nil
	}
	return "[" + ranges + "]", nil
}

// pattern is a translated Lua pattern. A '^' at the very start is not
// part of the match at all: it restricts the match to the scan origin,
// which gsub needs to know so it stops after the first attempt.
type pattern struct {
	re       *regexp.Regexp
	anchored bool
}

// compilePattern translates a Lua pattern for find, match and gsub: a
// leading '^' anchors the match at the start of the searched text.
func compilePattern(pat string) (*pattern, error) {
	anchored := strings.HasPrefix(pat, "^")
	if anchored {
		pat = pat[1:]
	}
	src, err := translatePattern(pat)
	if err != nil {
		return nil, err
	}
	if anchored {
		src = `\A` + src
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, err
	}
	return &pattern{re: re, anchored: anchored}, nil
}

// compileIterPattern translates a Lua pattern for gmatch, where a
// leading '^' is an ordinary character like any other caret.
func compileIterPattern(pat string) (*regexp.Regexp, error) {
	src, err := translatePattern(pat)
	if err != nil {
		return nil, err
	}
	return regexp.Compile(src)
}

func translatePattern(pat string) (string, error) {
	var b strings.Builder
	inSet := false

	for i := 0; i < len(pat); i++ {
		c := pat[i]
		switch {
		case c == '%':
			i++
			if i >= len(pat) {
				return "", fmt.Errorf("malformed pattern (ends with '%%')")
			}
			e := pat[i]
			if e >= '1' && e <= '9' {
				return "", fmt.Errorf("back-reference %%%c is not supported", e)
			}
			if e == 'b' || e == 'f' {
				return "", fmt.Errorf("pattern item %%%c is not supported", e)
			}
			cls, err := classFor(e, inSet)
			if err != nil {
				return "", err
			}
			b.WriteString(cls)

		case inSet:
			switch c {
			case ']':
				inSet = false
				b.WriteByte(']')
			case '\\':
				b.WriteString(`\\`)
			default:
				b.WriteByte(c)
			}

		case c == '[':
			inSet = true
			b.WriteByte('[')
			if i+1 < len(pat) && pat[i+1] == '^' {
				b.WriteByte('^')
				i++
			}

		case c == '-':
			// Lua's lazy repetition.
			b.WriteString("*?")

		case c == '\\' || c == '{' || c == '}' || c == '|' || c == '^':
			// Literal in Lua patterns, magic in regexp. A caret is only
			// an anchor at position zero, which the callers strip.
			b.WriteByte('\\')
			b.WriteByte(c)

		default:
			b.WriteByte(c)
		}
	}
	if inSet {
		return "", fmt.Errorf("malformed pattern (missing ']')")
	}
	return b.String(), nil
}
