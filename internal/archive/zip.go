package archive

import "archive/zip"

// flagEncrypted is general purpose bit 0 of a zip entry header.
const flagEncrypted = 0x1

func zipRequiresPassword(path string) (bool, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return false, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Flags&flagEncrypted != 0 {
			return true, nil
		}
	}
	return false, nil
}

func zipComment(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	return decodeComment([]byte(r.Comment)), nil
}
