// Package ingest turns files into study sources.
package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/abhisek/studyaudit/internal/quiz"
)

// MaxDocumentSize is the largest document accepted.
const MaxDocumentSize = 20 << 20

// accepted lists the media types a document may have.
var accepted = []string{
	"application/pdf",
	"text/plain",
	"text/markdown",
	"image/png",
	"image/jpeg",
	"image/webp",
	"image/gif",
}

// ErrIngestion reports a document that could not become a Source.
type ErrIngestion struct {
	Name string
	Err  error
}

func (e *ErrIngestion) Error() string {
	return fmt.Sprintf("cannot use %q: %v", e.Name, e.Err)
}

func (e *ErrIngestion) Unwrap() error { return e.Err }

// ReadDocument reads the file at path and builds a document Source.
func ReadDocument(path string) (quiz.Source, error) {
	name := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		return quiz.Source{}, &ErrIngestion{Name: name, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxDocumentSize+1))
	if err != nil {
		return quiz.Source{}, &ErrIngestion{Name: name, Err: err}
	}
	return FromBytes(name, data)
}

// FromBytes builds a document Source from an in-memory payload.
func FromBytes(name string, data []byte) (quiz.Source, error) {
	if len(data) == 0 {
		return quiz.Source{}, &ErrIngestion{Name: name, Err: fmt.Errorf("document is empty")}
	}
	if len(data) > MaxDocumentSize {
		return quiz.Source{}, &ErrIngestion{Name: name, Err: fmt.Errorf("document exceeds %d MiB", MaxDocumentSize>>20)}
	}

	mediaType, err := detect(name, data)
	if err != nil {
		return quiz.Source{}, &ErrIngestion{Name: name, Err: err}
	}
	return quiz.DocumentSource(name, mediaType, data), nil
}

func detect(name string, data []byte) (string, error) {
	mt := mimetype.Detect(data)

	// Markdown sniffs as plain text; the extension tells them apart.
	if mt.Is("text/plain") {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".md", ".markdown":
			return "text/markdown", nil
		}
		return "text/plain", nil
	}

	for _, t := range accepted {
		if mt.Is(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unsupported document type %s", mt.String())
}
