// Package storage guarda las imágenes adjuntas a ingresos y salidas en disco local o en S3.
package storage

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// KeyPrefix carpeta raíz de los adjuntos dentro del almacenamiento.
const KeyPrefix = "uploads"

const fallbackBase = "imagen"

// ObjectKey arma la ruta uploads/YYYY/MM/DD/<base>_<HHMMSS_micro><ext> a partir del nombre original.
func ObjectKey(filename string, now time.Time) string {
	base, ext := splitName(filename)
	stamp := fmt.Sprintf("%s_%06d", now.Format("150405"), now.Nanosecond()/1000)
	return path.Join(KeyPrefix, now.Format("2006"), now.Format("01"), now.Format("02"), base+"_"+stamp+ext)
}

func splitName(filename string) (string, string) {
	name := SanitizeFilename(filename)
	ext := strings.ToLower(path.Ext(name))
	base := strings.TrimSuffix(name, path.Ext(name))
	if base == "" {
		base = fallbackBase
	}
	return base, ext
}

// SanitizeFilename deja solo letras ASCII, dígitos, '.', '-' y '_'; quita tildes y cualquier directorio.
func SanitizeFilename(filename string) string {
	name := filename
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, name); err == nil {
		name = folded
	}

	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
