package vectorindex

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Namespace maps a file key to an ASCII-only namespace. Accented letters are
// transliterated to their base letter and anything outside [A-Za-z0-9._/-]
// becomes '-'. A key that needed any rewriting gets a hash of the raw key
// appended, so two keys never share a namespace.
func Namespace(fileKey string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, fileKey)
	if err != nil {
		folded = fileKey
	}

	var b strings.Builder
	for _, r := range folded {
		if safeRune(r) {
			b.WriteRune(r)
			continue
		}
		if !strings.HasSuffix(b.String(), "-") {
			b.WriteByte('-')
		}
	}

	ns := strings.Trim(b.String(), "-")
	if ns == fileKey {
		return ns
	}
	sum := sha256.Sum256([]byte(fileKey))
	suffix := hex.EncodeToString(sum[:8])
	if ns == "" {
		return "ns-" + suffix
	}
	return ns + "-" + suffix
}

func safeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '/', r == '-':
		return true
	}
	return false
}
