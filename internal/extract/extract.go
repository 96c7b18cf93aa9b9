// Package extract turns uploaded document bytes into plaintext paragraphs.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MIME types the pipeline accepts.
const (
	TypePDF  = "application/pdf"
	TypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypeDOC  = "application/msword"
)

var typeByExtension = map[string]string{
	".pdf":  TypePDF,
	".docx": TypeDOCX,
	".doc":  TypeDOC,
}

// FileType maps an upload filename to its MIME type, or "" when the
// extension is not supported.
func FileType(filename string) string {
	return typeByExtension[strings.ToLower(filepath.Ext(filename))]
}

// Text extracts plaintext from document bytes according to fileType.
// Word documents of either vintage go through the OOXML reader; a true
// legacy .doc binary fails there and surfaces as an extraction error.
func Text(content []byte, fileType string) (string, error) {
	switch fileType {
	case TypePDF:
		return pdfText(content)
	case TypeDOCX, TypeDOC:
		return docxText(content)
	default:
		return "", fmt.Errorf("unsupported file type %q", fileType)
	}
}

// SplitParagraphs breaks extracted text into trimmed, non-empty paragraphs
// on blank lines, preserving document order.
func SplitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	paragraphs := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}
