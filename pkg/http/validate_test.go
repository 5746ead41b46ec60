package http

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"valid request", "GET / HTTP/1.1\r\nHost: example.com\r\n\r\n", ""},
		{"valid response", "HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n", ""},
		{"asterisk target", "OPTIONS * HTTP/1.1\r\n\r\n", ""},
		{"unsupported method", "PATCH / HTTP/1.1\r\n\r\n", "Unsupported HTTP method!"},
		{"uri too long", "GET /" + strings.Repeat("a", 1024) + " HTTP/1.1\r\n\r\n", "The URI was too long (max=1024)!"},
		{"duplicate header", "GET / HTTP/1.1\r\nA: 1\r\nA: 2\r\n\r\n", "Duplicate header in request!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateReader(t *testing.T) {
	if err := ValidateReader(strings.NewReader("HEAD /x HTTP/1.1\r\n\r\n")); err != nil {
		t.Errorf("ValidateReader() error = %v", err)
	}
}
