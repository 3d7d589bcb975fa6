package docpdf

import (
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/coregx/docpdf/internal/pdfval"
)

// Info holds the optional PDF document-information dictionary fields. A
// zero-value Info emits no /Info object at all: per SPEC_FULL.md §6, an
// Info object is only allocated when at least one field is non-empty/non-zero.
type Info struct {
	Title        string
	Subject      string
	Author       string
	Creator      string
	Producer     string
	Keywords     string
	CreationDate time.Time
	ModDate      time.Time
}

// hasValue reports whether any Info field carries data worth emitting.
func (i Info) hasValue() bool {
	return i.Title != "" || i.Subject != "" || i.Author != "" || i.Creator != "" ||
		i.Producer != "" || i.Keywords != "" || !i.CreationDate.IsZero() || !i.ModDate.IsZero()
}

// applyTo writes every populated field onto the Info object's attribute
// dictionary as escaped PDF literal strings.
func (i Info) applyTo(attrs *pdfval.Dict) {
	setIfNonEmpty(attrs, "/Title", i.Title)
	setIfNonEmpty(attrs, "/Subject", i.Subject)
	setIfNonEmpty(attrs, "/Author", i.Author)
	setIfNonEmpty(attrs, "/Creator", i.Creator)
	setIfNonEmpty(attrs, "/Producer", i.Producer)
	setIfNonEmpty(attrs, "/Keywords", i.Keywords)
	if !i.CreationDate.IsZero() {
		attrs.Set("/CreationDate", pdfval.Str(formatPDFDate(i.CreationDate)))
	}
	if !i.ModDate.IsZero() {
		attrs.Set("/ModDate", pdfval.Str(formatPDFDate(i.ModDate)))
	}
}

func setIfNonEmpty(attrs *pdfval.Dict, key, value string) {
	if value == "" {
		return
	}
	attrs.Set(key, pdfval.Str(transliterate(value)))
}

// formatPDFDate renders t as "D:YYYYMMDDHHMMSS<+-HH>'<MM>'", the format
// SPEC_FULL.md §6 requires, timezone apostrophes included.
func formatPDFDate(t time.Time) string {
	_, offsetSeconds := t.Zone()
	sign := "+"
	if offsetSeconds < 0 {
		sign = "-"
		offsetSeconds = -offsetSeconds
	}
	offsetHours := offsetSeconds / 3600
	offsetMinutes := (offsetSeconds % 3600) / 60
	return t.Format("D:20060102150405") + sign +
		twoDigits(offsetHours) + "'" + twoDigits(offsetMinutes) + "'"
}

func twoDigits(n int) string {
	s := itoaPad(n)
	return s
}

func itoaPad(n int) string {
	if n < 10 {
		return "0" + itoa(n)
	}
	return itoa(n)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// transliterate passes s through unchanged when every rune fits
// PDFDocEncoding's directly representable range; otherwise it falls back to
// the closest Windows-1252 (PDFDocEncoding's practical superset) transliteration
// via golang.org/x/text/encoding/charmap, dropping code points Windows-1252
// itself cannot represent. This is a last-resort path: the common case of
// plain ASCII titles/authors never touches it.
func transliterate(s string) string {
	needsFallback := false
	for _, r := range s {
		if r > 0xFF {
			needsFallback = true
			break
		}
	}
	if !needsFallback {
		return s
	}
	var b strings.Builder
	enc := charmap.Windows1252.NewEncoder()
	for _, r := range s {
		out, err := enc.String(string(r))
		if err != nil || out == "" {
			continue
		}
		b.WriteString(out)
	}
	return b.String()
}
