package command_runner

import (
	"errors"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr error
	}{
		{name: "flags", raw: "deploy --env prod", want: []string{"deploy", "--env", "prod"}},
		{name: "double quotes", raw: `greet "hello world"`, want: []string{"greet", "hello world"}},
		{name: "single quotes", raw: `echo 'a "b" c'`, want: []string{"echo", `a "b" c`}},
		{name: "escaped space", raw: `touch my\ file`, want: []string{"touch", "my file"}},
		{name: "extra whitespace", raw: "  check \t ", want: []string{"check"}},
		{name: "no expansion", raw: "echo $HOME *", want: []string{"echo", "$HOME", "*"}},
		{name: "empty", raw: "", wantErr: ErrEmptyCommand},
		{name: "blank", raw: "   \t\n", wantErr: ErrEmptyCommand},
		{name: "unterminated double quote", raw: `greet "hello`, wantErr: ErrMalformedCommand},
		{name: "unterminated single quote", raw: `greet 'hello`, wantErr: ErrMalformedCommand},
		{name: "trailing escape", raw: `greet hello\`, wantErr: ErrMalformedCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Tokenize() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenize_MalformedErrorType(t *testing.T) {
	_, err := Tokenize(`greet "hello`)
	var malformed *MalformedCommandError
	if !errors.As(err, &malformed) {
		t.Fatalf("Tokenize() error = %T, want *MalformedCommandError", err)
	}
	if malformed.Unwrap() == nil {
		t.Error("MalformedCommandError must carry the tokenizer error")
	}
}

func TestJoinTokens_RoundTrip(t *testing.T) {
	tests := [][]string{
		{"deploy", "--env", "prod"},
		{"greet", "hello world"},
		{"echo", `it's "quoted"`, `back\slash`},
		{"echo", "", "$HOME", "tab\there"},
	}
	for _, tokens := range tests {
		t.Run(tokens[0]+" "+tokens[1], func(t *testing.T) {
			got, err := Tokenize(JoinTokens(tokens))
			if err != nil {
				t.Fatalf("Tokenize(JoinTokens()) error = %v", err)
			}
			if !reflect.DeepEqual(got, tokens) {
				t.Errorf("round trip = %q, want %q", got, tokens)
			}
		})
	}
}
