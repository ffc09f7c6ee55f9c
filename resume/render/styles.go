package render

// RunStyle captures the font settings for one kind of line.
type RunStyle struct {
	Bold   bool
	Italic bool
	Size   float64
	Color  [3]int
}

const (
	fontFamily  = "Helvetica"
	pageMargin  = 18.0
	lineHeight  = 5.0
	sectionGap  = 4.0
	HeadingSize = 12
	NameSize    = 20
)

var (
	HeadingColor = [3]int{0x1F, 0x29, 0x37}
	NameColor    = [3]int{0x11, 0x11, 0x11}
	BodyColor    = [3]int{0x33, 0x33, 0x33}
)

// StyleMap centralizes the formatting for key resume elements.
var StyleMap = map[string]RunStyle{
	"name": {
		Bold:  true,
		Size:  NameSize,
		Color: NameColor,
	},
	"sectionHeading": {
		Bold:  true,
		Size:  HeadingSize,
		Color: HeadingColor,
	},
	"roleLine": {
		Bold:  true,
		Size:  10.5,
		Color: NameColor,
	},
	"meta": {
		Italic: true,
		Size:   9,
		Color:  BodyColor,
	},
	"body": {
		Size:  10,
		Color: BodyColor,
	},
}

func (s RunStyle) fontStyle() string {
	out := ""
	if s.Bold {
		out += "B"
	}
	if s.Italic {
		out += "I"
	}
	return out
}
