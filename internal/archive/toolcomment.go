package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/handiism/gemini-extractor/internal/model"
)

// ErrListingFormat means the tool's archive listing had no recognizable
// header, so no comment could be taken from it.
var ErrListingFormat = errors.New("unrecognized archive listing")

// ToolRunner runs the extraction tool. runner.Runner satisfies it.
type ToolRunner interface {
	Run(ctx context.Context, tool string, args []string, outputFolder string, onLine func(string)) error
}

// ToolComment reads rar comments by asking the extraction tool, which can
// decompress them.
//
// rar and WinRAR write the comment to a file with the "cw" command. unrar
// has no such command, so its listing is parsed instead.
type ToolComment struct {
	locate func() (string, error)
	runner ToolRunner
}

// NewToolComment creates a ToolComment that runs the tool found by locate.
func NewToolComment(locate func() (string, error), runner ToolRunner) *ToolComment {
	return &ToolComment{locate: locate, runner: runner}
}

// Comment returns the comment of a as reported by the tool.
func (c *ToolComment) Comment(ctx context.Context, a *model.Archive) (string, error) {
	tool, err := c.locate()
	if err != nil {
		return "", err
	}
	if isUnrar(tool) {
		return c.listComment(ctx, tool, a)
	}
	return c.writeComment(ctx, tool, a)
}

func isUnrar(tool string) bool {
	return strings.HasPrefix(strings.ToLower(filepath.Base(tool)), "unrar")
}

// writeComment runs "cw" into a temporary file and reads it back. The
// tool writes nothing when the archive has no comment.
func (c *ToolComment) writeComment(ctx context.Context, tool string, a *model.Archive) (string, error) {
	dir, err := os.MkdirTemp("", "gemini-extractor-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "comment.txt")
	if err := c.runner.Run(ctx, tool, []string{"cw", "-y", "-p-", a.Path, out}, "", nil); err != nil {
		return "", fmt.Errorf("reading comment with %s: %w", filepath.Base(tool), err)
	}

	data, err := os.ReadFile(out)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return decodeCommentFile(data)
}

// decodeCommentFile decodes a comment file written by the tool. Files with
// a UTF-16 or UTF-8 byte order mark are decoded accordingly, anything else
// is taken as UTF-8.
func decodeCommentFile(data []byte) (string, error) {
	text, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(decodeComment(text), "\r\n"), nil
}

// listComment runs "l" and returns the lines between the archive details
// and the file table:
//
//	Archive: photos.rar
//	Details: RAR 5
//	<comment>
//	Attributes      Size     Date    Time   Name
func (c *ToolComment) listComment(ctx context.Context, tool string, a *model.Archive) (string, error) {
	var lines []string
	err := c.runner.Run(ctx, tool, []string{"l", "-y", "-p-", a.Path}, "", func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		return "", fmt.Errorf("reading comment with %s: %w", filepath.Base(tool), err)
	}
	return parseListingComment(lines)
}

func parseListingComment(lines []string) (string, error) {
	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "Details:") {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return "", ErrListingFormat
	}

	var comment []string
	for _, line := range lines[start:] {
		if strings.HasPrefix(line, "Attributes") {
			break
		}
		comment = append(comment, line)
	}
	return strings.Join(comment, "\n"), nil
}
