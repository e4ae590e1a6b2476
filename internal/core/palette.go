package core

// ColorEntry is one palette slot. Only the first element is used for fills;
// further elements are free for renderers (e.g. a lighter outline shade).
type ColorEntry []string

type Palette []ColorEntry

// Color returns the fill color for metric i, cycling through the palette.
// An empty palette or empty entry yields "" and the renderer picks its default.
func (p Palette) Color(i int) string {
	if len(p) == 0 || i < 0 {
		return ""
	}
	entry := p[i%len(p)]
	if len(entry) == 0 {
		return ""
	}
	return entry[0]
}

// DefaultPalette is Paul Tol's qualitative scheme, used when a document
// carries no colors of its own.
var DefaultPalette = Palette{
	{"#4477AA"}, // blue
	{"#EE6677"}, // rose
	{"#228833"}, // green
	{"#CCBB44"}, // olive
	{"#66CCEE"}, // cyan
	{"#AA3377"}, // purple
	{"#BBBBBB"}, // grey
}
