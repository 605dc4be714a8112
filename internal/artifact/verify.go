// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrMismatch is the sentinel wrapped by MismatchError.
var ErrMismatch = errors.New("artifacts disagree")

// MismatchError reports why an archive does not match its raw module.
type MismatchError struct {
	ArchivePath string
	Reason      string
}

// Error implements the error interface for MismatchError.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s", e.ArchivePath, e.Reason)
}

// Unwrap returns ErrMismatch for errors.Is() compatibility.
func (e *MismatchError) Unwrap() error { return ErrMismatch }

// Verify checks that archivePath holds exactly one entry named entryName whose
// bytes equal the content of rawPath.
func Verify(rawPath, archivePath, entryName string) error {
	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", rawPath, err)
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", archivePath, err)
	}
	defer zr.Close()

	if len(zr.File) != 1 {
		return &MismatchError{
			ArchivePath: archivePath,
			Reason:      fmt.Sprintf("expected exactly one entry, found %d", len(zr.File)),
		}
	}

	entry := zr.File[0]
	if entry.Name != entryName {
		return &MismatchError{
			ArchivePath: archivePath,
			Reason:      fmt.Sprintf("entry is named %q, expected %q", entry.Name, entryName),
		}
	}

	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("failed to read entry %s: %w", entry.Name, err)
	}

	if !bytes.Equal(content, raw) {
		return &MismatchError{
			ArchivePath: archivePath,
			Reason:      fmt.Sprintf("entry %q (%d bytes) differs from %s (%d bytes)", entry.Name, len(content), rawPath, len(raw)),
		}
	}
	return nil
}
