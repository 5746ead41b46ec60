package tokenizer

import (
	"github.com/shapestone/shape-core/pkg/tokenizer"
)

// NewVersionTokenizer creates a tokenizer for the version part of a request
// line. Matchers are tried in order:
// 1. HTTP version ("HTTP/" followed by digits and dots)
// 2. CRLF (line endings)
// 3. Text (everything else up to a line ending)
//
// Whitespace is significant in a request line, so no whitespace skipper is used.
func NewVersionTokenizer() tokenizer.Tokenizer {
	return tokenizer.NewTokenizerWithoutWhitespace(
		VersionMatcher(),
		CRLFMatcher(),
		TextMatcher(),
	)
}

// HasVersionPrefix reports whether raw starts with a protocol version token.
func HasVersionPrefix(raw string) bool {
	tok := NewVersionTokenizer()
	tok.Initialize(raw)
	tokens, _ := tok.Tokenize()
	return len(tokens) > 0 && tokens[0].Kind() == TokenVersion
}

// StripVersionPrefix removes a leading "HTTP/" from raw when the tokenizer
// classifies it as a version token, and returns raw unchanged otherwise.
func StripVersionPrefix(raw string) string {
	if HasVersionPrefix(raw) {
		return raw[len(VersionPrefix):]
	}
	return raw
}

// CRLFMatcher matches \r\n, a bare \r or a bare \n.
func CRLFMatcher() tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		r, ok := stream.PeekChar()
		if !ok {
			return nil
		}

		if r == '\r' {
			value := []rune{'\r'}
			stream.NextChar()
			r2, ok := stream.PeekChar()
			if ok && r2 == '\n' {
				stream.NextChar()
				value = append(value, '\n')
			}
			return tokenizer.NewToken(TokenCRLF, value)
		}
		if r == '\n' {
			stream.NextChar()
			return tokenizer.NewToken(TokenCRLF, []rune{'\n'})
		}
		return nil
	}
}

// VersionMatcher matches "HTTP/" followed by digits and dots.
func VersionMatcher() tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		var value []rune
		for _, expected := range VersionPrefix {
			r, ok := stream.PeekChar()
			if !ok || r != expected {
				return nil
			}
			stream.NextChar()
			value = append(value, r)
		}

		for {
			r, ok := stream.PeekChar()
			if !ok {
				break
			}
			if (r >= '0' && r <= '9') || r == '.' {
				stream.NextChar()
				value = append(value, r)
			} else {
				break
			}
		}

		return tokenizer.NewToken(TokenVersion, value)
	}
}

// TextMatcher matches any run of characters up to a line ending or EOS.
func TextMatcher() tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		var value []rune
		for {
			r, ok := stream.PeekChar()
			if !ok || r == '\r' || r == '\n' {
				break
			}
			stream.NextChar()
			value = append(value, r)
		}

		if len(value) == 0 {
			return nil
		}
		return tokenizer.NewToken(TokenText, value)
	}
}
