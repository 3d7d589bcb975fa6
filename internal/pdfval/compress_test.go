package pdfval_test

import (
	"bytes"
	"compress/zlib"
	"io"
	"testing"

	"github.com/coregx/docpdf/internal/pdfval"
)

func TestDeflate_RoundTrips(t *testing.T) {
	original := []byte("BT /F1 12 Tf ET\nBT 72 720 Td (hello) Tj ET\n")

	compressed := pdfval.Deflate(original)

	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("zlib.NewReader: %v", err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("io.ReadAll: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Errorf("round trip mismatch: got %q, want %q", got, original)
	}
}

func TestDeflate_Empty(t *testing.T) {
	compressed := pdfval.Deflate(nil)
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("zlib.NewReader: %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("io.ReadAll: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty round trip, got %d bytes", len(got))
	}
}
