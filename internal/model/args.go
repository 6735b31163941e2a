package model

import (
	"regexp"
	"strconv"
)

// ExtractCommand is the tool command that extracts with full paths.
const ExtractCommand = "x"

// PasswordFlag prefixes the password argument.
const PasswordFlag = "-p"

// ExtractArgs returns the tool arguments for extracting archive.
//
// With an empty password the list is:
//
//	x <archive> <output folder><sep>
//
// Otherwise the password flag goes right after the command:
//
//	x -p<password> <archive> <output folder><sep>
//
// ExtractArgs has no hidden state; equal inputs give equal output.
func ExtractArgs(archive *Archive, password string) []string {
	args := []string{ExtractCommand}
	if password != "" {
		args = append(args, PasswordFlag+password)
	}
	return append(args, archive.Path, archive.Destination())
}

var percentPattern = regexp.MustCompile(`(\d{1,3})%`)

// ParsePercent returns the last percentage found in a line of tool output
// as a fraction between 0 and 1.
//
// RAR console tools print lines such as "Extracting  photo.jpg   45%".
// Values above 100 are ignored.
func ParsePercent(line string) (float64, bool) {
	matches := percentPattern.FindAllStringSubmatch(line, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		n, err := strconv.Atoi(matches[i][1])
		if err != nil || n > 100 {
			continue
		}
		return float64(n) / 100, true
	}
	return 0, false
}
