package twibot

import "strings"

// PrefixFunc reports whether a message body addresses the bot, returning
// the body with the prefix stripped. Alias lookup runs on the stripped
// body.
type PrefixFunc func(body string) (string, bool)

// NewNaturalPrefix returns a PrefixFunc matching the phrase "Name, ...",
// e.g. "Robot, ban <@1>". The name is matched case-insensitively.
func NewNaturalPrefix(name string) PrefixFunc {
	prefix := strings.ToLower(name) + ","
	return func(body string) (string, bool) {
		first, tail, err := PopFirstWord(body)
		if err != nil {
			return "", false
		}
		if strings.ToLower(first) != prefix {
			return "", false
		}
		return tail, true
	}
}

// NewSigilPrefix returns a PrefixFunc matching a leading sigil glued to the
// first word, e.g. "!" for "!ban <@1>". The sigil is stripped; the first
// word stays.
func NewSigilPrefix(sigil string) PrefixFunc {
	return func(body string) (string, bool) {
		body = strings.TrimLeft(body, " \t\n")
		if !strings.HasPrefix(body, sigil) {
			return "", false
		}
		return body[len(sigil):], true
	}
}

// CombinePrefixes combines PrefixFuncs; the first one that matches wins.
func CombinePrefixes(prefixes ...PrefixFunc) PrefixFunc {
	return func(body string) (string, bool) {
		for _, prefix := range prefixes {
			if stripped, ok := prefix(body); ok {
				return stripped, true
			}
		}
		return "", false
	}
}
