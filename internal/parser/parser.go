package parser

import (
	"errors"
	"strings"
	"unicode"
)

var (
	// ErrUnclosedQuote is returned when a single or double quote is never closed
	ErrUnclosedQuote = errors.New("unclosed quote")
	// ErrUnescapedCharacter is returned when the line ends with a bare backslash
	ErrUnescapedCharacter = errors.New("no escaped character")
)

// Tokenizer splits a command line into shell words
type Tokenizer interface {
	Tokenize(line string) ([]string, error)
}

// WordTokenizer implements POSIX-style word splitting: whitespace separates words,
// single quotes preserve everything literally, double quotes allow \" and \\ escapes,
// and a backslash outside quotes escapes the next character.
type WordTokenizer struct{}

// NewWordTokenizer creates a new WordTokenizer
func NewWordTokenizer() *WordTokenizer {
	return &WordTokenizer{}
}

type scanState int

const (
	stateOutside scanState = iota
	stateSingleQuote
	stateDoubleQuote
)

// word accumulates the runes of the token being built. quoted marks a word that
// contained a quote pair, so that '' and "" still produce an (empty) word.
type word struct {
	buf    strings.Builder
	quoted bool
}

func (w *word) started() bool {
	return w.quoted || w.buf.Len() > 0
}

func (w *word) flush(words []string) []string {
	if !w.started() {
		return words
	}
	words = append(words, w.buf.String())
	w.buf.Reset()
	w.quoted = false
	return words
}

// Tokenize splits line into words
func (t *WordTokenizer) Tokenize(line string) ([]string, error) {
	words := []string{}
	state := stateOutside
	escaping := false
	var current word

	for _, ch := range line {
		switch state {
		case stateOutside:
			switch {
			case escaping:
				current.buf.WriteRune(ch)
				escaping = false
			case unicode.IsSpace(ch):
				words = current.flush(words)
			case ch == '\'':
				state = stateSingleQuote
				current.quoted = true
			case ch == '"':
				state = stateDoubleQuote
				current.quoted = true
			case ch == '\\':
				escaping = true
			default:
				current.buf.WriteRune(ch)
			}

		case stateSingleQuote:
			if ch == '\'' {
				state = stateOutside
				continue
			}
			current.buf.WriteRune(ch)

		case stateDoubleQuote:
			switch {
			case escaping:
				if ch != '\\' && ch != '"' {
					current.buf.WriteRune('\\')
				}
				current.buf.WriteRune(ch)
				escaping = false
			case ch == '"':
				state = stateOutside
			case ch == '\\':
				escaping = true
			default:
				current.buf.WriteRune(ch)
			}
		}
	}

	if state != stateOutside {
		return nil, ErrUnclosedQuote
	}
	if escaping {
		return nil, ErrUnescapedCharacter
	}

	return current.flush(words), nil
}

// Split tokenizes line with the default tokenizer
func Split(line string) ([]string, error) {
	return NewWordTokenizer().Tokenize(line)
}
