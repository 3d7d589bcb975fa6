package pdfval

import (
	"bytes"
	"compress/zlib"
)

// Deflate zlib-compresses b at the default compression level, the single
// filter this module supports (/FlateDecode), matching the teacher's
// CompressStream helper.
func Deflate(b []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write(b)
	_ = w.Close()
	return buf.Bytes()
}
