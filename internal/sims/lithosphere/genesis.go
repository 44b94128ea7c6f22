package lithosphere

import (
	"sort"

	"github.com/aquilax/go-perlin"
)

const noiseScale = 64.0

// buildInitialTerrain fills the world height map with perlin-based crust:
// cells above the sea-level quantile become continental shelf at ContBase,
// the rest fresh oceanic floor at OceanicBase.
func (w *World) buildInitialTerrain() {
	gen := perlin.NewPerlin(2, 2, 6, w.rng.Int64())

	vals := make([]float64, len(w.heights))
	for y := 0; y < w.dim.H; y++ {
		for x := 0; x < w.dim.W; x++ {
			vals[y*w.dim.W+x] = gen.Noise2D(float64(x)/noiseScale, float64(y)/noiseScale)
		}
	}

	// Threshold at the configured quantile so the land fraction is stable
	// across seeds.
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	qi := int(w.cfg.Params.SeaLevel * float64(len(sorted)))
	if qi >= len(sorted) {
		qi = len(sorted) - 1
	}
	threshold := sorted[qi]

	for i, v := range vals {
		if v >= threshold {
			w.heights[i] = ContBase
		} else {
			w.heights[i] = OceanicBase
		}
		w.ages[i] = w.tick
	}
}

// createPlates partitions the current world height map into PlateCount
// plates by growing random seed cells breadth-first over the torus, then
// crops each region to its bounding box and hands it to NewPlate.
func (w *World) createPlates() {
	area := w.dim.Area()
	count := w.cfg.Params.PlateCount
	if count < 1 {
		count = 1
	}
	if count > area {
		count = area
	}

	assign := make([]int, area)
	for i := range assign {
		assign[i] = -1
	}

	fronts := make([][]int, count)
	for i := range fronts {
		for {
			c := w.rng.IntN(area)
			if assign[c] == -1 {
				assign[c] = i
				fronts[i] = []int{c}
				break
			}
		}
	}

	// All fronts grow one ring per round so the plates end up roughly
	// equal in size.
	for {
		grew := false
		for i := range fronts {
			if len(fronts[i]) == 0 {
				continue
			}
			var next []int
			for _, c := range fronts[i] {
				cy := c / w.dim.W
				cx := c - cy*w.dim.W
				for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
					nc := w.dim.Index(cx+d[0], cy+d[1])
					if assign[nc] == -1 {
						assign[nc] = i
						next = append(next, nc)
					}
				}
			}
			fronts[i] = next
			if len(next) > 0 {
				grew = true
			}
		}
		if !grew {
			break
		}
	}

	type box struct {
		x0, y0, x1, y1 int
		seen           bool
	}
	boxes := make([]box, count)
	for c, pi := range assign {
		cy := c / w.dim.W
		cx := c - cy*w.dim.W
		b := &boxes[pi]
		if !b.seen {
			*b = box{x0: cx, y0: cy, x1: cx, y1: cy, seen: true}
			continue
		}
		if cx < b.x0 {
			b.x0 = cx
		}
		if cx > b.x1 {
			b.x1 = cx
		}
		if cy < b.y0 {
			b.y0 = cy
		}
		if cy > b.y1 {
			b.y1 = cy
		}
	}

	w.plates = w.plates[:0]
	remap := make([]int, count)
	for i := range boxes {
		remap[i] = -1
		b := boxes[i]
		if !b.seen {
			continue
		}
		pw := b.x1 - b.x0 + 1
		ph := b.y1 - b.y0 + 1
		buf := make([]float64, pw*ph)
		for y := b.y0; y <= b.y1; y++ {
			for x := b.x0; x <= b.x1; x++ {
				c := y*w.dim.W + x
				if assign[c] == i {
					buf[(y-b.y0)*pw+(x-b.x0)] = w.heights[c]
				}
			}
		}
		p, err := NewPlate(w.rng.Int64(), buf, pw, ph, b.x0, b.y0, w.tick, w.dim)
		if err != nil {
			w.fail(err)
			continue
		}
		remap[i] = len(w.plates)
		w.plates = append(w.plates, p)
	}

	for c, pi := range assign {
		w.prevOwner[c] = remap[pi]
	}
}
