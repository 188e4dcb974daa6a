package bridge

import (
	"strconv"
	"strings"
)

// Segment is one transcribed span with times in milliseconds.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// EncodeSegments renders segments as the exchange JSON array:
//
//	[{"text":"...","start":0.000000,"end":1230.000000},...]
//
// Only quote, backslash, \n, \r and \t are escaped inside text; every other
// byte, control characters included, is copied verbatim.
func EncodeSegments(segments []Segment) string {
	var b strings.Builder
	b.Grow(2 + len(segments)*64)
	b.WriteByte('[')
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"text":"`)
		escapeText(&b, seg.Text)
		b.WriteString(`","start":`)
		b.WriteString(formatMillis(seg.Start))
		b.WriteString(`,"end":`)
		b.WriteString(formatMillis(seg.End))
		b.WriteByte('}')
	}
	b.WriteByte(']')
	return b.String()
}

func escapeText(b *strings.Builder, text string) {
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
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
}

// formatMillis matches C++ std::to_string(double), i.e. printf("%f").
func formatMillis(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
