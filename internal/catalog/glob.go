package catalog

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// compileGlob translates a pattern with SQLite GLOB semantics into a regular expression:
// '*' matches any sequence and '?' any single character, '/' included; [...] is a character
// class, negated by a leading '^', with ']' literal when it comes first. There is no escape
// character, so '\' matches itself.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			end, class, err := globClass(runes, i)
			if err != nil {
				return nil, err
			}
			b.WriteString(class)
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)
	return regexp.Compile(b.String())
}

// globClass converts the class opening at runes[start] and returns the index of its closing ']'.
func globClass(runes []rune, start int) (int, string, error) {
	var b strings.Builder
	b.WriteString("[")
	i := start + 1
	if i < len(runes) && runes[i] == '^' {
		b.WriteString("^")
		i++
	}
	if i < len(runes) && runes[i] == ']' {
		b.WriteString(`\]`)
		i++
	}
	for ; i < len(runes); i++ {
		switch r := runes[i]; r {
		case ']':
			b.WriteString("]")
			return i, b.String(), nil
		case '\\', '[', '^':
			b.WriteString(`\` + string(r))
		default:
			b.WriteRune(r)
		}
	}
	return 0, "", errors.Errorf("unterminated character class in %q", string(runes))
}
