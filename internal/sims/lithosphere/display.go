package lithosphere

import "image/color"

const (
	oceanShades = 16
	landShades  = 16

	// Land taller than ContBase + landRelief maps to the last palette
	// entry.
	landRelief = 2.0
)

var lithoPalette = buildLithoPalette()

// Palette exposes the hypsometric tints used for rendering the world.
func (w *World) Palette() []color.RGBA {
	return lithoPalette
}

func buildLithoPalette() []color.RGBA {
	palette := make([]color.RGBA, oceanShades+landShades)
	deep := color.NRGBA{R: 8, G: 20, B: 60, A: 255}
	shallow := color.NRGBA{R: 40, G: 100, B: 180, A: 255}
	for i := 0; i < oceanShades; i++ {
		palette[i] = toRGBA(blendColors(deep, shallow, float64(i)/float64(oceanShades-1)))
	}
	lowland := color.NRGBA{R: 70, G: 130, B: 60, A: 255}
	upland := color.NRGBA{R: 150, G: 120, B: 80, A: 255}
	peak := color.NRGBA{R: 235, G: 235, B: 240, A: 255}
	for i := 0; i < landShades; i++ {
		f := float64(i) / float64(landShades-1)
		c := blendColors(lowland, upland, f*2)
		if f > 0.5 {
			c = blendColors(upland, peak, (f-0.5)*2)
		}
		palette[oceanShades+i] = toRGBA(c)
	}
	return palette
}

func toRGBA(c color.NRGBA) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func blendColors(a, b color.NRGBA, f float64) color.NRGBA {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return color.NRGBA{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*f),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*f),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*f),
		A: 255,
	}
}

// refreshDisplay quantizes the composed height map into palette indices.
func (w *World) refreshDisplay() {
	cells := w.display.Cells()
	for i, h := range w.heights {
		cells[i] = quantizeHeight(h)
	}
}

func quantizeHeight(h float64) uint8 {
	if h < ContBase {
		f := h / ContBase
		i := int(f * float64(oceanShades))
		if i >= oceanShades {
			i = oceanShades - 1
		}
		return uint8(i)
	}
	f := (h - ContBase) / landRelief
	i := int(f * float64(landShades))
	if i >= landShades {
		i = landShades - 1
	}
	return uint8(oceanShades + i)
}
