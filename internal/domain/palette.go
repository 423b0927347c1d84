package domain

import (
	"slices"
	"strings"
)

// Color is a hex color string from the category palette.
type Color string

// Fixed colors used outside the category palette.
const (
	AccentColor      Color = "#741FFF"
	AllCategoryColor Color = "#B385FF"
	DividerColor     Color = "#D7D7D7"
	SurfaceColor     Color = "#E5E7EC"
)

// Palette lists the category colors in picker order.
var Palette = []Color{
	"#FFA7A7", // red
	"#FFB347", // apricot
	"#FFDC60", // yellow
	"#66D8A4", // green
	"#6ED1E3", // blue
	"#73BCF8", // teal
	"#C79EDA", // lilac
	"#FCC3FF", // pink
}

// PaletteNames stores display names for palette colors.
var PaletteNames = map[Color]string{
	"#FFA7A7": "red",
	"#FFB347": "apricot",
	"#FFDC60": "yellow",
	"#66D8A4": "green",
	"#6ED1E3": "blue",
	"#73BCF8": "teal",
	"#C79EDA": "lilac",
	"#FCC3FF": "pink",
}

// NormalizeColor canonicalizes a hex color value.
func NormalizeColor(c Color) Color {
	return Color(strings.ToUpper(strings.TrimSpace(string(c))))
}

// IsPaletteColor reports whether c is one of the category palette colors.
func IsPaletteColor(c Color) bool {
	return slices.Contains(Palette, NormalizeColor(c))
}

// PaletteIndex returns the picker index of c, or -1.
func PaletteIndex(c Color) int {
	return slices.Index(Palette, NormalizeColor(c))
}
