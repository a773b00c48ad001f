package jobs

import (
	"strings"

	"github.com/alessio/shellescape"
)

var doubleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`")

// dquote wraps s in double quotes, escaping the characters the shell still interprets inside them.
func dquote(s string) string {
	return `"` + doubleQuoteEscaper.Replace(s) + `"`
}

// keyValue renders key="value", the argument form the analysis executable expects.
func keyValue(key string, value string) string {
	return key + "=" + dquote(value)
}

// keyValues renders key="v1","v2",...
func keyValues(key string, values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = dquote(v)
	}
	return key + "=" + strings.Join(quoted, ",")
}

// word quotes a single shell word only when it needs quoting.
func word(s string) string {
	return shellescape.Quote(s)
}

// command joins argv into one shell line.
func command(argv ...string) string {
	return shellescape.QuoteCommand(argv)
}
