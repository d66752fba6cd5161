package storage

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const fallbackFilename = "video"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces a client supplied name to a safe ASCII base name
// that cannot escape the upload directory.
func SanitizeFilename(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range decomposed {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}

	ascii := strings.NewReplacer("/", " ", `\`, " ").Replace(b.String())
	joined := strings.Join(strings.Fields(ascii), "_")
	cleaned := strings.Trim(unsafeFilenameChars.ReplaceAllString(joined, ""), "._")

	if cleaned == "" {
		return fallbackFilename
	}
	return cleaned
}
