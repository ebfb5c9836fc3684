package definition

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aretw0/machine/pkg/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AnonymousIdentity is used when a definition has neither identity nor friendly name.
const AnonymousIdentity = "anonymous"

// Normalize returns a copy of def with the success and error exits present
// and Identity resolved. Fn is not checked here; a missing Fn is reported
// when the machine is executed.
func Normalize(def domain.Definition) (domain.Definition, error) {
	if !def.ImplementationType.Known() {
		return domain.Definition{}, fmt.Errorf("unrecognized implementation type %q", def.ImplementationType)
	}
	if def.Timeout < 0 {
		return domain.Definition{}, fmt.Errorf("invalid timeout %s: must not be negative", def.Timeout)
	}

	exits := make(map[string]domain.ExitSpec, len(def.Exits)+2)
	for name, spec := range def.Exits {
		exits[name] = spec
	}
	if _, ok := exits[domain.ExitSuccess]; !ok {
		exits[domain.ExitSuccess] = domain.ExitSpec{}
	}
	if _, ok := exits[domain.ExitError]; !ok {
		exits[domain.ExitError] = domain.ExitSpec{}
	}

	def.Exits = exits
	def.Identity = Identity(def)
	return def, nil
}

// Identity resolves the effective identity of def: its explicit Identity,
// else the camel-cased FriendlyName, else AnonymousIdentity.
func Identity(def domain.Definition) string {
	if def.Identity != "" {
		return def.Identity
	}
	if id := CamelCase(def.FriendlyName); id != "" {
		return id
	}
	return AnonymousIdentity
}

// CamelCase converts a human-readable name such as "Send HTTP request" into
// "sendHttpRequest".
func CamelCase(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return ""
	}
	// Casers are stateful and must not be shared between goroutines.
	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und)

	var b strings.Builder
	b.WriteString(lower.String(words[0]))
	for _, w := range words[1:] {
		b.WriteString(title.String(w))
	}
	return b.String()
}

// splitWords breaks s on separators and on case changes ("fooBar", "HTTPServer").
func splitWords(s string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}
