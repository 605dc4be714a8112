// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrInvalidWriter is returned when a Writer's names are unusable.
var ErrInvalidWriter = errors.New("invalid artifact writer")

type (
	// Clock supplies the modification time stored in the archive.
	Clock interface {
		Now() time.Time
	}

	// Writer writes the raw module and its archive into DistDir.
	Writer struct {
		DistDir string
		// RawName is the raw module file name.
		RawName string
		// ArchiveName is the zip file name.
		ArchiveName string
		// EntryName is the name of the single archive entry. It must differ
		// from RawName.
		EntryName string
		// Directive is prepended, followed by a newline. Empty adds nothing.
		Directive string
		// Clock stamps the archive entry. Nil uses the system time.
		Clock Clock
	}

	// Artifacts describes what Write produced.
	Artifacts struct {
		RawPath     string
		ArchivePath string
		EntryName   string
		// Size is the length of the final module in bytes.
		Size int
		// ArchiveSize is the length of the zip file in bytes.
		ArchiveSize int
	}
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Validate checks that the Writer names a directory and three distinct files.
func (w *Writer) Validate() error {
	switch {
	case w.DistDir == "":
		return fmt.Errorf("%w: empty output directory", ErrInvalidWriter)
	case w.RawName == "" || w.ArchiveName == "" || w.EntryName == "":
		return fmt.Errorf("%w: raw, archive and entry names are required", ErrInvalidWriter)
	case w.EntryName == w.RawName:
		return fmt.Errorf("%w: archive entry %q must differ from raw file name", ErrInvalidWriter, w.EntryName)
	case w.RawName == w.ArchiveName:
		return fmt.Errorf("%w: raw and archive both write %q", ErrInvalidWriter, w.RawName)
	}
	return nil
}

// Final returns the module as written: directive line, then code.
func (w *Writer) Final(code []byte) []byte {
	if w.Directive == "" {
		return code
	}
	out := make([]byte, 0, len(w.Directive)+1+len(code))
	out = append(out, w.Directive...)
	out = append(out, '\n')
	return append(out, code...)
}

// Write persists code as the raw module and as the archive entry. The output
// directory is created if needed and existing files are overwritten. Both
// writes complete before Write returns.
func (w *Writer) Write(ctx context.Context, code []byte) (*Artifacts, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	final := w.Final(code)

	if err := os.MkdirAll(w.DistDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	rawPath := filepath.Join(w.DistDir, w.RawName)
	if err := os.WriteFile(rawPath, final, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", rawPath, err)
	}

	archive, err := w.pack(final)
	if err != nil {
		return nil, err
	}

	archivePath := filepath.Join(w.DistDir, w.ArchiveName)
	if err := os.WriteFile(archivePath, archive, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", archivePath, err)
	}

	return &Artifacts{
		RawPath:     rawPath,
		ArchivePath: archivePath,
		EntryName:   w.EntryName,
		Size:        len(final),
		ArchiveSize: len(archive),
	}, nil
}

// pack builds the single-entry archive in memory.
func (w *Writer) pack(content []byte) ([]byte, error) {
	clock := w.Clock
	if clock == nil {
		clock = systemClock{}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	header := &zip.FileHeader{
		Name:     w.EntryName,
		Method:   zip.Deflate,
		Modified: clock.Now(),
	}
	header.SetMode(0o644)

	fw, err := zw.CreateHeader(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive entry: %w", err)
	}
	if _, err := fw.Write(content); err != nil {
		return nil, fmt.Errorf("failed to compress archive entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
