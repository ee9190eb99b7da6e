package normalize

import "unicode"

// pictographs covers emoji, dingbats, technical and arrow symbols, variation
// selectors, regional indicators, tag characters and the zero width joiner
var pictographs = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200D, Hi: 0x200D, Stride: 1},
		{Lo: 0x2300, Hi: 0x23FF, Stride: 1},
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1},
		{Lo: 0x2B00, Hi: 0x2BFF, Stride: 1},
		{Lo: 0xFE00, Hi: 0xFE0F, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1FAFF, Stride: 1},
		{Lo: 0xE0020, Hi: 0xE007F, Stride: 1},
	},
}

// IsPictograph reports whether r is stripped from rendered text
func IsPictograph(r rune) bool { return unicode.Is(pictographs, r) }
