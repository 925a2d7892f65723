package resume

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/jonathan/jobboard/internal/textutil"
)

// MaxUploadBytes bounds the size of an uploaded resume document.
const MaxUploadBytes = 10 << 20

// UnsupportedTypeError reports a document extension the reader cannot handle.
type UnsupportedTypeError struct {
	Ext string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %q (supported: %s)", e.Ext, strings.Join(SupportedExtensions(), ", "))
}

// SupportedExtensions lists the document types ReadDocument accepts.
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".doc", ".odt", ".rtf", ".html", ".htm", ".txt"}
}

// ReadDocument extracts plain text from an uploaded resume.
// Office and PDF formats go through docconv, HTML through goquery,
// and plain text is read as-is. The result is whitespace-normalized.
func ReadDocument(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	limited := io.LimitReader(r, MaxUploadBytes)

	switch ext {
	case ".pdf", ".docx", ".doc", ".odt", ".rtf":
		res, err := docconv.Convert(limited, docconv.MimeTypeByExtension(filename), false)
		if err != nil {
			return "", fmt.Errorf("failed to convert %s document: %w", ext, err)
		}
		return textutil.CleanText(res.Body), nil
	case ".html", ".htm":
		raw, err := io.ReadAll(limited)
		if err != nil {
			return "", fmt.Errorf("failed to read document: %w", err)
		}
		return textutil.StripHTML(string(raw))
	case ".txt":
		raw, err := io.ReadAll(limited)
		if err != nil {
			return "", fmt.Errorf("failed to read document: %w", err)
		}
		return textutil.CleanText(string(raw)), nil
	default:
		return "", &UnsupportedTypeError{Ext: ext}
	}
}
