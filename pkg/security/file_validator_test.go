package security_test

import (
	"strings"
	"testing"

	"go-jobboard-backend/pkg/security"

	"github.com/stretchr/testify/assert"
)

func TestValidateResumeFile(t *testing.T) {
	pdfBytes := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	docxBytes := append([]byte{0x50, 0x4B, 0x03, 0x04}, make([]byte, 64)...)

	tests := []struct {
		name     string
		filename string
		data     []byte
		maxBytes int64
		valid    bool
		errPart  string
	}{
		{"pdf accepted", "resume.PDF", pdfBytes, 1 << 20, true, ""},
		{"docx accepted as zip container", "resume.docx", docxBytes, 1 << 20, true, ""},
		{"empty rejected", "resume.pdf", nil, 1 << 20, false, "empty"},
		{"oversized rejected", "resume.pdf", pdfBytes, 10, false, "exceeds"},
		{"unknown extension rejected", "resume.txt", []byte("hello world"), 1 << 20, false, "not allowed"},
		{"missing extension rejected", "resume", pdfBytes, 1 << 20, false, "no extension"},
		{"renamed executable rejected", "resume.pdf", []byte("MZ\x90\x00\x03\x00\x00\x00"), 1 << 20, false, "does not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := security.ValidateResumeFile(tt.filename, tt.data, tt.maxBytes)
			assert.Equal(t, tt.valid, result.Valid)
			if tt.valid {
				assert.Empty(t, result.Error)
				assert.Equal(t, strings.ToLower(tt.filename[strings.LastIndex(tt.filename, "."):]), result.Extension)
			} else {
				assert.Contains(t, result.Error, tt.errPart)
			}
		})
	}
}
