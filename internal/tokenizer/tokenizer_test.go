package tokenizer

import (
	"testing"

	coretok "github.com/shapestone/shape-core/pkg/tokenizer"
)

func TestTokenize_VersionLine(t *testing.T) {
	tok := NewVersionTokenizer()
	tok.Initialize("HTTP/1.1\r\n")

	tokens, eos := tok.Tokenize()
	if !eos {
		t.Error("expected EOS")
	}

	expected := []struct {
		kind  string
		value string
	}{
		{TokenVersion, "HTTP/1.1"},
		{TokenCRLF, "\r\n"},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("token count = %d, want %d", len(tokens), len(expected))
	}
	for i, exp := range expected {
		if tokens[i].Kind() != exp.kind {
			t.Errorf("token[%d].Kind() = %q, want %q", i, tokens[i].Kind(), exp.kind)
		}
		if tokens[i].ValueString() != exp.value {
			t.Errorf("token[%d].Value() = %q, want %q", i, tokens[i].ValueString(), exp.value)
		}
	}
}

func TestTokenize_TextWithoutPrefix(t *testing.T) {
	tok := NewVersionTokenizer()
	tok.Initialize("1.0\n")

	tokens, _ := tok.Tokenize()
	if len(tokens) == 0 {
		t.Fatal("expected tokens, got none")
	}
	if tokens[0].Kind() != TokenText || tokens[0].ValueString() != "1.0" {
		t.Errorf("tokens[0] = %v, want Text('1.0')", tokens[0])
	}
}

func TestStripVersionPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HTTP/1.1", "1.1"},
		{"HTTP/2.0", "2.0"},
		{"HTTP/x.y", "x.y"},
		{"1.1", "1.1"},
		{"HTTPS/1.1", "HTTPS/1.1"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripVersionPrefix(tt.in); got != tt.want {
			t.Errorf("StripVersionPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVersionMatcher_Stream(t *testing.T) {
	stream := coretok.NewStream("HTTP/1.0 trailing")
	tok := VersionMatcher()(stream)
	if tok == nil {
		t.Fatal("expected token, got nil")
	}
	if tok.Kind() != TokenVersion || tok.ValueString() != "HTTP/1.0" {
		t.Errorf("token = %v, want Version('HTTP/1.0')", tok)
	}
}
