package security

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool   // Whether the file passed all validation checks
	Extension    string // Normalized file extension
	DetectedMIME string // MIME type sniffed from content
	Error        string // Error message if validation failed
}

// Magic byte signatures for resume formats
var magicBytes = map[string][][]byte{
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},                         // %PDF
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}}, // OLE Compound Document
	".docx": {{0x50, 0x4B, 0x03, 0x04}},                         // ZIP (PK..)
}

// Sniffed MIME types accepted per extension. Office files are sometimes only
// recognised as their container format.
var allowedMIMETypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
}

// ValidateResumeFile performs 3-layer file validation:
// 1. Extension whitelist check
// 2. Magic byte verification (content matches extension)
// 3. Sniffed MIME type must belong to the extension's family
func ValidateResumeFile(filename string, data []byte, maxBytes int64) FileValidationResult {
	result := FileValidationResult{}

	if len(data) == 0 {
		result.Error = "file is empty"
		return result
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		result.Error = fmt.Sprintf("file exceeds the %d MB limit", maxBytes/(1<<20))
		return result
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	// Layer 1: Extension whitelist
	allowed, ok := allowedMIMETypes[ext]
	if !ok {
		result.Error = "file extension not allowed: " + ext + " (allowed: .pdf, .doc, .docx)"
		return result
	}

	// Layer 2: Magic bytes
	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension"
		return result
	}

	// Layer 3: MIME sniffing
	detected := mimetype.Detect(data)
	result.DetectedMIME = detected.String()
	matched := false
	for _, m := range allowed {
		if detected.Is(m) {
			matched = true
			result.DetectedMIME = m
			break
		}
	}
	if !matched {
		result.Error = "MIME type not allowed: " + detected.String()
		return result
	}

	result.Valid = true
	return result
}

// validateMagicBytes checks if file content starts with expected magic bytes
func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}
	for _, sig := range magicBytes[ext] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}
