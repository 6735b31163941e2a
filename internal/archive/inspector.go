package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mholt/archives"

	"github.com/handiism/gemini-extractor/internal/model"
)

var (
	// ErrInspect wraps every failure to read archive metadata.
	ErrInspect = errors.New("failed to inspect archive")

	// ErrFormatMismatch means the file content is not what its extension says.
	ErrFormatMismatch = errors.New("archive content does not match its extension")
)

// CommentReader reads an archive comment some other way.
type CommentReader interface {
	Comment(ctx context.Context, a *model.Archive) (string, error)
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithCommentFallback makes Comment hand rar archives whose comment is
// stored compressed to r.
func WithCommentFallback(r CommentReader) Option {
	return func(i *Inspector) { i.fallback = r }
}

// Inspector reads archive metadata.
//
// Inspector holds no per-archive state; one value can serve any number
// of archives.
type Inspector struct {
	fallback CommentReader
}

// NewInspector creates a new Inspector.
func NewInspector(opts ...Option) *Inspector {
	i := &Inspector{}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Identify confirms that the file content matches the archive's format.
func (i *Inspector) Identify(ctx context.Context, a *model.Archive) error {
	file, err := os.Open(a.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInspect, err)
	}
	defer file.Close()

	format, _, err := archives.Identify(ctx, a.Path, file)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInspect, err)
	}

	if !strings.EqualFold(format.Extension(), a.Format.Extension()) {
		return fmt.Errorf("%w: %w: %s looks like %s", ErrInspect, ErrFormatMismatch, a.Name, format.Extension())
	}
	return nil
}

// RequiresPassword reports whether a has any encrypted content.
//
// Errors are wrapped in ErrInspect.
func (i *Inspector) RequiresPassword(ctx context.Context, a *model.Archive) (bool, error) {
	if err := i.Identify(ctx, a); err != nil {
		return false, err
	}

	var (
		protected bool
		err       error
	)
	switch a.Format {
	case model.FormatZip:
		protected, err = zipRequiresPassword(a.Path)
	case model.FormatRar:
		protected, err = rarRequiresPassword(ctx, a.Path)
	default:
		err = model.ErrUnsupportedFormat
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInspect, err)
	}
	return protected, nil
}

// Comment returns the archive-level comment of a, or "" if it has none.
//
// Compressed rar comments go to the fallback reader when one is
// configured and fail with ErrCompressedComment otherwise.
func (i *Inspector) Comment(ctx context.Context, a *model.Archive) (string, error) {
	var (
		comment string
		err     error
	)
	switch a.Format {
	case model.FormatZip:
		comment, err = zipComment(a.Path)
	case model.FormatRar:
		comment, err = rarComment(a.Path)
		if errors.Is(err, ErrCompressedComment) && i.fallback != nil {
			comment, err = i.fallback.Comment(ctx, a)
		}
	default:
		err = model.ErrUnsupportedFormat
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInspect, err)
	}
	return comment, nil
}

// decodeComment turns raw comment bytes into printable UTF-8.
//
// Invalid byte sequences become U+FFFD. Trailing NULs, which some rar
// writers pad comments with, are dropped.
func decodeComment(data []byte) string {
	return strings.ToValidUTF8(strings.TrimRight(string(data), "\x00"), "\uFFFD")
}
