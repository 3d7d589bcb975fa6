package docpdf

// PDFSettings is the single configuration surface for a build: whether
// streams are deflated, how many decimal digits real numbers render with,
// and whether TextArea debug-layout rectangles are drawn. There is no
// external config file format or env-var binding; a caller constructs one
// struct and hands it to NewDocument, the way the teacher's Creator seeds
// page-size/margin defaults in Creator.New().
type PDFSettings struct {
	Compression      bool
	DecimalPrecision uint
	DebugLayout      bool
}

// NewPDFSettings returns the documented defaults: compression on, four
// decimal digits of precision, debug layout off.
func NewPDFSettings() PDFSettings {
	return PDFSettings{
		Compression:      true,
		DecimalPrecision: 4,
		DebugLayout:      false,
	}
}
