package payment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-gifting/internal/payment"
)

func TestSanitizeComment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "ありがとう!", "ありがとう!"},
		{"emoji dropped", "great 🎉 show", "great  show"},
		{"newline becomes space", "line one\nline two", "line one line two"},
		{"crlf is one break", "line one\r\nline two", "line one line two"},
		{"bare cr becomes space", "line one\rline two", "line one line two"},
		{"multiple breaks each become a space", "a\n\nb", "a  b"},
		{"bmp symbols kept", "応援してます♪", "応援してます♪"},
		{"empty stays empty", "", ""},
		{"only emoji", "🎉🎊", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, payment.SanitizeComment(tt.in))
		})
	}
}
