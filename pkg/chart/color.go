package chart

import (
	"image/color"

	"gonum.org/v1/plot/plotutil"
)

// Fixed colours for the sex categories
var (
	Blue = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	Red  = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
)

var groupColors = map[string]color.Color{
	"male":   Blue,
	"female": Red,
}

// GroupColor returns the colour of the i-th group named name
func GroupColor(name string, i int) color.Color {
	if c, ok := groupColors[name]; ok {
		return c
	}
	return plotutil.Color(i)
}
