package stdlib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompilePatternClasses(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    string
	}{
		{`%d+`, "abc123def", "123"},
		{`%a+`, "123abc456", "abc"},
		{`%s+`, "a \t b", " \t "},
		{`%w+`, "--id42--", "id42"},
		{`%u%l+`, "someWord here", "Word"},
		{`%x+`, "zzcafezz", "cafe"},
		{`%%`, "100%", "%"},
		{`%.`, "a.b", "."},
	}
	for _, tt := range tests {
		p, err := compilePattern(tt.pattern)
		require.NoError(t, err, tt.pattern)
		require.Equal(t, tt.want, p.re.FindString(tt.input), tt.pattern)
	}
}

func TestCompilePatternSetsAndRepeats(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    string
	}{
		{`[abc]+`, "xxbacxx", "bac"},
		{`[^abc]+`, "abXYab", "XY"},
		{`[%d%s]+`, "a1 2b", "1 2"},
		{`a-b`, "aaab", "aaab"},
		{`<(.-)>`, "<x><y>", "<x>"},
		{`^start`, "start here", "start"},
		{`end$`, "the end", "end"},
	}
	for _, tt := range tests {
		p, err := compilePattern(tt.pattern)
		require.NoError(t, err, tt.pattern)
		require.Equal(t, tt.want, p.re.FindString(tt.input), tt.pattern)
	}
}

func TestCompilePatternAnchor(t *testing.T) {
	p, err := compilePattern(`^ab`)
	require.NoError(t, err)
	require.True(t, p.anchored)
	require.Equal(t, "ab", p.re.FindString("abab"))
	require.Equal(t, "", p.re.FindString("xab"), "anchored pattern must not match past the start")

	// A caret anywhere else is an ordinary character.
	p, err = compilePattern(`a^b`)
	require.NoError(t, err)
	require.False(t, p.anchored)
	require.Equal(t, "a^b", p.re.FindString("xa^bx"))
}

func TestCompileIterPatternKeepsCaretLiteral(t *testing.T) {
	re, err := compileIterPattern(`^%d`)
	require.NoError(t, err)
	require.Equal(t, "^1", re.FindString("2 ^1 ^3"))
}

func TestCompilePatternLiteralMagic(t *testing.T) {
	// Characters magic in regexp but literal in this syntax.
	p, err := compilePattern(`a{b}|c\d`)
	require.NoError(t, err)
	require.Equal(t, `a{b}|c\d`, p.re.FindString(`xa{b}|c\dx`))
}

func TestCompilePatternRejectsUnsupported(t *testing.T) {
	for _, pat := range []string{`%1`, `%bxy`, `%f[%a]`, `abc%`, `[abc`} {
		_, err := compilePattern(pat)
		require.Error(t, err, pat)
	}
}
