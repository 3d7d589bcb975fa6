// Package pdfval implements the PdfValue tagged union and the PdfObject
// attribute container it renders, per the heterogeneous-PDF-values design
// note: a tagged sum type with an explicit renderer, not inheritance.
package pdfval

import (
	"strconv"
	"strings"

	"github.com/coregx/docpdf/errs"
)

// Kind tags which case of the PdfValue union is populated.
type Kind int

const (
	KindInteger Kind = iota
	KindReal
	KindString
	KindName
	KindArray
	KindDict
	KindRaw
	KindRef
)

// Value is a recursive tagged variant covering every shape a PDF attribute
// value can take: integer, real, literal string, name, array, dictionary
// (insertion-order preserved), raw pre-encoded bytes, and an indirect
// reference to another object.
type Value struct {
	kind   Kind
	i      int64
	r      float64
	s      string   // string / name / raw (raw holds pre-encoded PDF syntax)
	arr    []Value  // array elements
	dict   *Dict    // dictionary
	refNum int      // object number for KindRef
}

// Int constructs an integer value.
func Int(v int) Value { return Value{kind: KindInteger, i: int64(v)} }

// Real constructs a real-number value. Formatting to the configured decimal
// precision happens at render time via RenderPrecision.
func Real(v float64) Value { return Value{kind: KindReal, r: v} }

// Str constructs an ASCII literal-string value (the renderer wraps it in
// parentheses and escapes it per PDF §3.2.3).
func Str(v string) Value { return Value{kind: KindString, s: v} }

// Name constructs a name value; the leading "/" is added by the caller's
// convention (attribute keys and this constructor both expect the slash
// already present, matching the teacher's string-literal style).
func Name(v string) Value { return Value{kind: KindName, s: v} }

// Arr constructs an array value.
func Arr(items ...Value) Value { return Value{kind: KindArray, arr: items} }

// Raw constructs a pre-encoded fragment emitted verbatim, e.g. "[0 0 612 792]".
func Raw(v string) Value { return Value{kind: KindRaw, s: v} }

// Ref constructs an indirect reference to the object numbered objNum.
func Ref(objNum int) Value { return Value{kind: KindRef, refNum: objNum} }

// DictVal wraps a *Dict as a Value so it can be nested inside another
// dictionary or array.
func DictVal(d *Dict) Value { return Value{kind: KindDict, dict: d} }

// Dict is an ordered name -> Value mapping. Insertion order is preserved on
// render because PDF readers tolerate any key order but byte-level tests do
// not.
type Dict struct {
	keys   []string
	values map[string]Value
}

// NewDict returns an empty ordered dictionary.
func NewDict() *Dict {
	return &Dict{values: make(map[string]Value)}
}

// Set assigns a single value to key, overwriting any previous value but
// keeping the key's original insertion position if it already existed.
func (d *Dict) Set(key string, v Value) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Add implements the promotion rule from the original's add_attribute_value:
// a missing key gets a single-entry array, a scalar already present is
// promoted to a two-element array, and an array already present is appended
// to (so a second Add after a first Add appends). This
// must be reproduced exactly because /Contents and /Kids rely on it.
func (d *Dict) Add(key string, v Value) {
	existing, ok := d.values[key]
	if !ok {
		d.Set(key, Arr(v))
		return
	}
	if existing.kind == KindArray {
		existing.arr = append(existing.arr, v)
		d.values[key] = existing
		return
	}
	d.Set(key, Arr(existing, v))
}

// Get returns the value stored at key and whether it was present.
func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Len returns the number of keys in the dictionary.
func (d *Dict) Len() int { return len(d.keys) }

// RenderPrecision serializes v into ASCII PDF syntax at the given dictionary
// depth (1-based) and float precision. It is the renderer's single recursive
// descent entry point.
func RenderPrecision(v Value, depth int, precision uint) (string, error) {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10), nil
	case KindReal:
		return formatReal(v.r, precision), nil
	case KindString:
		return "(" + EscapeLiteral(v.s) + ")", nil
	case KindName:
		return v.s, nil
	case KindRaw:
		return v.s, nil
	case KindRef:
		return strconv.Itoa(v.refNum) + " 0 R", nil
	case KindArray:
		parts := make([]string, 0, len(v.arr))
		for _, item := range v.arr {
			rendered, err := RenderPrecision(item, depth, precision)
			if err != nil {
				return "", err
			}
			parts = append(parts, rendered)
		}
		return "[" + strings.Join(parts, " ") + "]", nil
	case KindDict:
		return renderDict(v.dict, depth, precision)
	default:
		return "", &errs.EncodingError{Context: "PdfValue render", Value: v.kind}
	}
}

func renderDict(d *Dict, depth int, precision uint) (string, error) {
	openTabs := strings.Repeat("\t", depth-1)
	entryTabs := strings.Repeat("\t", depth)
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(openTabs)
	b.WriteString("<<\n")
	for _, key := range d.keys {
		val := d.values[key]
		rendered, err := RenderPrecision(val, depth+1, precision)
		if err != nil {
			return "", err
		}
		b.WriteString(entryTabs)
		b.WriteString(key)
		b.WriteString(" ")
		b.WriteString(rendered)
		b.WriteString("\n")
	}
	b.WriteString(openTabs)
	b.WriteString(">>")
	return b.String(), nil
}

// formatReal rounds v to precision decimal digits, then trims trailing
// zeros/point, mirroring the original's per-value round(value, decimal_precision)
// pass immediately before serialization.
func formatReal(v float64, precision uint) string {
	s := strconv.FormatFloat(v, 'f', int(precision), 64)
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "" || s == "-0" {
		s = "0"
	}
	return s
}

// EscapeLiteral escapes a string for use inside a PDF literal-string "(...)".
// Per PDF §3.2.3: backslash and every parenthesis are backslash-escaped, and
// newline, carriage return and tab become \n, \r and \t; other control
// bytes pass through unchanged. The teacher's own escaper is an acknowledged no-op
// stub; this is a real implementation.
func EscapeLiteral(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
