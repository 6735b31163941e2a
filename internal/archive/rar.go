package archive

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/nwaples/rardecode/v2"
)

func rarRequiresPassword(ctx context.Context, path string) (bool, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		if errors.Is(err, rardecode.ErrArchiveEncrypted) {
			return true, nil
		}
		return false, err
	}
	defer r.Close()

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		h, err := r.Next()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			if errors.Is(err, rardecode.ErrArchiveEncrypted) || errors.Is(err, rardecode.ErrArchivedFileEncrypted) {
				return true, nil
			}
			return false, err
		}
		if h.Encrypted || h.HeaderEncrypted {
			return true, nil
		}
	}
}

func rarComment(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", err
	}
	return readRarComment(file, info.Size())
}
