package command_runner

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// Tokenize splits a command line into words using POSIX shell quoting rules.
// No expansion of any kind is performed.
func Tokenize(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyCommand
	}
	tokens, err := shellquote.Split(raw)
	if err != nil {
		return nil, &MalformedCommandError{Err: err}
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyCommand
	}
	return tokens, nil
}

// JoinTokens quotes tokens so that Tokenize returns them unchanged.
func JoinTokens(tokens []string) string {
	return shellquote.Join(tokens...)
}
