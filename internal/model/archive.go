package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for files that are neither zip nor rar.
var ErrUnsupportedFormat = errors.New("only .zip and .rar files are supported")

// Format represents a supported archive container.
type Format int

const (
	// FormatZip is a PKZIP archive.
	FormatZip Format = iota

	// FormatRar is a RAR archive (1.5 through 5.0).
	FormatRar
)

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatRar:
		return ".rar"
	default:
		return ".zip"
	}
}

func (f Format) String() string {
	return strings.TrimPrefix(f.Extension(), ".")
}

// FormatFromPath returns the format implied by the file extension.
//
// The comparison ignores case, so "BACKUP.ZIP" is a zip archive.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return FormatZip, nil
	case ".rar":
		return FormatRar, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// Archive is an input archive and the paths derived from it.
//
// Paths are computed once by NewArchive and never change, so the same
// input always produces the same extraction invocation.
type Archive struct {
	// Path is the archive location as given by the user.
	Path string

	// Name is the base file name, used in user-facing messages.
	Name string

	// Format is the container format implied by the extension.
	Format Format

	// OutputFolder is Path with its extension removed. The extraction
	// tool creates it; it is removed again if extraction fails.
	OutputFolder string
}

// NewArchive creates an Archive for path.
//
// Returns ErrUnsupportedFormat if the extension is not .zip or .rar.
// The file itself is not touched.
func NewArchive(path string) (*Archive, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	return &Archive{
		Path:         path,
		Name:         filepath.Base(path),
		Format:       format,
		OutputFolder: outputFolder(path),
	}, nil
}

// Destination returns the output folder with a trailing path separator.
//
// The separator tells the extraction tool to treat the argument as a
// directory and create it when missing.
func (a *Archive) Destination() string {
	return a.OutputFolder + string(filepath.Separator)
}

// outputFolder strips the final extension from path.
func outputFolder(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
