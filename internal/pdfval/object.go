package pdfval

// Object is one indirect PDF object: a number, an ordered attribute
// dictionary, and an optional byte stream. Generation number is always 0.
// Back-references to other objects are carried by number (Ref), never by
// pointer, which sidesteps cycles like pages <-> pages-tree entirely.
type Object struct {
	Num    int
	Attrs  *Dict
	Stream []byte
}

// NewObject allocates an object with the given number and, if typeName is
// non-empty, sets /Type to it.
func NewObject(num int, typeName string) *Object {
	o := &Object{Num: num, Attrs: NewDict()}
	if typeName != "" {
		o.Attrs.Set("/Type", Name(typeName))
	}
	return o
}

// ExtendStream appends raw bytes to the object's stream and refreshes
// /Length, matching the source's extend_stream behavior of recomputing
// /Length on every append.
func (o *Object) ExtendStream(b []byte) {
	o.Stream = append(o.Stream, b...)
	o.Attrs.Set("/Length", Int(len(o.Stream)))
}

// SetCompressedStream replaces the stream with already-compressed bytes and
// marks /Filter /FlateDecode, refreshing /Length.
func (o *Object) SetCompressedStream(b []byte) {
	o.Stream = b
	o.Attrs.Set("/Filter", Name("/FlateDecode"))
	o.Attrs.Set("/Length", Int(len(o.Stream)))
}
