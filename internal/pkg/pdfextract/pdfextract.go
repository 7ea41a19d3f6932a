package pdfextract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
)

// Extractor satisfies the text-extractor capability over PDF files on disk.
type Extractor struct{}

func (Extractor) Extract(path string) (string, error) {
	return ExtractFile(path)
}

// ErrNoText reports a readable PDF that yielded no extractable text.
// Callers must treat it as an extraction failure, not as an empty document.
var ErrNoText = errors.New("pdf contains no extractable text")

// ExtractFile reads the PDF at path and returns its full plain text.
func ExtractFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf failed: %w", err)
	}
	defer f.Close()
	return ExtractText(f)
}

// ExtractText extracts plain text from the PDF read from r. It never
// partially succeeds: the result is either non-empty text or an error.
func ExtractText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read pdf failed: %w", err)
	}
	if len(b) == 0 {
		return "", ErrNoText
	}

	readerAt := bytes.NewReader(b)
	pdfReader, err := pdf.NewReader(readerAt, int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("parse pdf failed: %w", err)
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text failed: %w", err)
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", fmt.Errorf("read pdf text failed: %w", err)
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return "", ErrNoText
	}
	return string(out), nil
}
