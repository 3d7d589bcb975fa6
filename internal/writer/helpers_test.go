package writer_test

import (
	"strings"

	"github.com/coregx/docpdf/internal/pdfval"
)

func renderValue(v pdfval.Value) (string, error) {
	return pdfval.RenderPrecision(v, 1, 4)
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
