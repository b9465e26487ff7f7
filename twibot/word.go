package twibot

import (
	"strings"

	"github.com/pkg/errors"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

var wordParser = syntax.NewParser(
	syntax.Variant(syntax.LangPOSIX),
)

// PopFirstWord pops the first shell-like word from the text and returns it
// along with the rest of the string.
func PopFirstWord(text string) (first, tail string, err error) {
	scanner := NewWordScanner(text)
	if !scanner.Scan() {
		if scanner.Err() != nil {
			return "", "", scanner.Err()
		}
		return "", "", errors.New("no word to pop")
	}
	return scanner.Word(), scanner.Tail(), nil
}

// WordScanner scans shell-like words off a message body. Alias lookup uses
// it to pop the leading command path words; the remaining tail is the
// argument text handed to the usage matcher verbatim.
type WordScanner struct {
	text string
	word string
	err  error
}

// NewWordScanner creates a WordScanner over text.
func NewWordScanner(text string) *WordScanner {
	return &WordScanner{text: text}
}

// Scan scans the next word. It returns false at the end of the text or on
// a scan error.
func (s *WordScanner) Scan() bool {
	if s.err != nil || strings.TrimSpace(s.text) == "" {
		return false
	}

	var first *syntax.Word
	err := wordParser.Words(strings.NewReader(s.text), func(word *syntax.Word) bool {
		first = word
		return false
	})
	if err != nil {
		s.err = errors.Wrap(err, "cannot parse for shell word")
		return false
	}
	if first == nil {
		return false
	}

	lit, err := expand.Literal(nil, first)
	if err != nil {
		s.err = errors.Wrap(err, "cannot render parsed shell word")
		return false
	}

	s.word = lit
	s.text = strings.TrimSpace(s.text[first.End().Offset():])
	return true
}

// Word returns the current word.
func (s *WordScanner) Word() string {
	return s.word
}

// Tail returns the remaining text.
func (s *WordScanner) Tail() string {
	return s.text
}

// Err returns the error that occurred during scanning, if any.
func (s *WordScanner) Err() error {
	return s.err
}
