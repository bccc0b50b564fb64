// Package extract pulls plain text out of uploaded documents.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrUnsupportedFormat is returned for files that are not PDF, DOCX or TXT.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrInvalidEncoding is returned for text files that are not UTF-8.
	ErrInvalidEncoding = errors.New("text file is not valid UTF-8")
)

// Format is a supported document kind.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
)

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
	utf8BOM  = []byte("\xef\xbb\xbf")
)

// Detect picks the format from the file extension, falling back to the leading
// bytes when the name carries no known extension.
func Detect(name string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".txt", ".text":
		return FormatTXT, nil
	case "":
		switch {
		case bytes.HasPrefix(data, pdfMagic):
			return FormatPDF, nil
		case bytes.HasPrefix(data, zipMagic):
			return FormatDOCX, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FromFile returns the text content of the named document.
func FromFile(name string, data []byte) (string, error) {
	format, err := Detect(name, data)
	if err != nil {
		return "", err
	}

	var text string
	switch format {
	case FormatPDF:
		text, err = fromPDF(data)
	case FormatDOCX:
		text, err = fromDOCX(data)
	case FormatTXT:
		text, err = fromTXT(data)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", format, err)
	}
	return norm.NFC.String(strings.TrimSpace(text)), nil
}

func fromTXT(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", ErrInvalidEncoding
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}
