package output

import (
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// namedColor resolves a CSS color name, falling back to black.
func namedColor(name string) color.Color {
	if c, ok := colornames.Map[strings.ToLower(name)]; ok {
		return c
	}
	return color.Black
}
