package documents

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

const (
	FormatPDF  = ".pdf"
	FormatDOCX = ".docx"
	FormatTXT  = ".txt"
)

// ErrUnsupportedFormat marks a file whose extension has no text extractor.
var ErrUnsupportedFormat = errors.New("unsupported format")

type extractor func(data []byte) (string, error)

var extractors = map[string]extractor{
	FormatPDF:  extractPDF,
	FormatDOCX: extractDOCX,
	FormatTXT:  extractTXT,
}

var (
	xmlTags       = regexp.MustCompile(`<[^>]+>`)
	inlineSpaces  = regexp.MustCompile(`[ \t\r\f\v]+`)
	repeatedLines = regexp.MustCompile(`\s*\n\s*`)
)

// Format returns the lowercase extension of name.
func Format(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Supported reports whether name has an extractable format.
func Supported(name string) bool {
	_, ok := extractors[Format(name)]
	return ok
}

// ExtractText returns the plain text of a pdf, docx or txt document.
func ExtractText(name string, data []byte) (string, error) {
	format := Format(name)
	extract, ok := extractors[format]
	if !ok {
		if format == "" {
			format = "no extension"
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return extract(data)
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return normalizeWhitespace(buf.String()), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var body []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		body, err = readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("read docx body: %w", err)
		}
		break
	}
	if len(body) == 0 {
		return "", errors.New("no word/document.xml found in docx")
	}

	text := string(body)
	text = strings.ReplaceAll(text, "</w:p>", "\n")
	text = strings.ReplaceAll(text, "<w:tab/>", "\t")
	text = xmlTags.ReplaceAllString(text, " ")
	return normalizeWhitespace(html.UnescapeString(text)), nil
}

func extractTXT(data []byte) (string, error) {
	return normalizeWhitespace(string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))), nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = inlineSpaces.ReplaceAllString(s, " ")
	s = repeatedLines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
