package extraction

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"grantpilot/internal/apperr"
)

const (
	// MaxDocumentChars bounds the document text sent to the model.
	MaxDocumentChars = 8000
	pdfPlaceholder   = "[PDF document - extracting text content]"
)

// DecodeDocument turns a base64 payload, optionally carrying a data URL
// prefix, into prompt text.
func DecodeDocument(data, mimeType string) (string, error) {
	if i := strings.IndexByte(data, ','); i >= 0 && strings.HasPrefix(data, "data:") {
		data = data[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return "", apperr.Validation("invalid base64 document: %v", err)
	}

	switch {
	case mimeType == "text/plain":
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError)), nil
	case strings.Contains(mimeType, "pdf"):
		return pdfPlaceholder, nil
	default:
		return strings.ToValidUTF8(string(raw), ""), nil
	}
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
