package archive

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes accented characters and strips the combining
// marks, so "crème brûlée" slugs the same as "creme brulee".
var foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

const maxSlugLen = 50

// Slug converts prompt text into a filesystem-safe name fragment:
// lowercase ASCII letters, digits, and dashes, capped at 50 characters.
func Slug(prompt string) string {
	folded, _, err := transform.String(foldTransformer, prompt)
	if err != nil {
		folded = prompt
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	lastDash := true
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		slug = "image"
	}
	return slug
}

// EntryName builds the deterministic archive entry for one image: the
// zero-padded sequence index keeps entries ordered and collision-free even
// when two prompts slug identically.
func EntryName(seq int, prompt string) string {
	return fmt.Sprintf("%03d-%s.png", seq, Slug(prompt))
}
