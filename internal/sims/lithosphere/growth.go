package lithosphere

import "lithos/internal/core"

// chunk is the quantum the raster grows in; each side extends in multiples
// of it.
const chunk = 8

// SetCrust writes a crust column at a world coordinate, growing the local
// raster first when the coordinate falls outside it. When crust already
// exists at the cell the new age is the mass-weighted mean of the existing
// and supplied ages. Negative heights are clamped to zero.
func (p *Plate) SetCrust(wx, wy int, z float64, t int) error {
	if z < 0 {
		z = 0
	}

	lx, ly := wx, wy
	i := p.mapIndex(&lx, &ly)
	if i == core.BadIndex {
		if z == 0 {
			return nil // nothing to deposit, no reason to grow
		}
		if err := p.grow(wx, wy); err != nil {
			return err
		}
		lx, ly = wx, wy
		i = p.mapIndex(&lx, &ly)
		if i == core.BadIndex {
			return ErrNoGrowthRoom
		}
	}

	hts := p.heights.Cells()
	ags := p.ages.Cells()

	old := hts[i]
	if old > 0 {
		t = int((old*float64(ags[i]) + z*float64(t)) / (old + z))
	}
	if z > 0 {
		ags[i] = t
	}

	p.mass += z - old
	hts[i] = z
	return nil
}

// grow extends the raster so that world coordinate (wx, wy) falls inside
// it. Each axis grows toward the nearer edge, in multiples of chunk, capped
// at the world's side; bounding boxes of all continents are shifted to the
// new origin. Growth reallocates the rasters; the old buffers are dropped
// before returning.
func (p *Plate) grow(wx, wy int) error {
	W, H := p.world.W, p.world.H
	x, y := p.world.Wrap(wx, wy)

	ilft := int(p.left)
	itop := int(p.top)
	irgt := ilft + p.w - 1
	ibtm := itop + p.h - 1

	// Distance from the cell to each plate edge. A side is a candidate
	// only when the cell lies beyond it; the far side absorbs the seam
	// crossing.
	const invalid = 1 << 30
	lft, rgt, top, btm := invalid, invalid, invalid, invalid
	if d := ilft - x; d >= 0 {
		lft = d
	}
	if x < ilft {
		if d := W + x - irgt; d >= 0 {
			rgt = d
		}
	} else if d := x - irgt; d >= 0 {
		rgt = d
	}
	if d := itop - y; d >= 0 {
		top = d
	}
	if y < itop {
		if d := H + y - ibtm; d >= 0 {
			btm = d
		}
	} else if d := y - ibtm; d >= 0 {
		btm = d
	}

	// Keep the smaller distance per axis; anything at least a world side
	// long is unusable.
	dLft, dRgt, dTop, dBtm := 0, 0, 0, 0
	if lft < rgt && lft < W {
		dLft = lft
	} else if rgt <= lft && rgt < W {
		dRgt = rgt
	}
	if top < btm && top < H {
		dTop = top
	} else if btm <= top && btm < H {
		dBtm = btm
	}

	// Round every chosen distance up to the next chunk.
	if dLft > 0 {
		dLft = (dLft/chunk + 1) * chunk
	}
	if dRgt > 0 {
		dRgt = (dRgt/chunk + 1) * chunk
	}
	if dTop > 0 {
		dTop = (dTop/chunk + 1) * chunk
	}
	if dBtm > 0 {
		dBtm = (dBtm/chunk + 1) * chunk
	}

	// The plate can never outgrow the world.
	if p.w+dLft+dRgt > W {
		dLft = 0
		dRgt = W - p.w
	}
	if p.h+dTop+dBtm > H {
		dTop = 0
		dBtm = H - p.h
	}

	if dLft+dRgt+dTop+dBtm == 0 {
		return ErrNoGrowthRoom
	}

	oldW, oldH := p.w, p.h

	p.left -= float64(dLft)
	if p.left < 0 {
		p.left += float64(W)
	}
	p.w += dLft + dRgt

	p.top -= float64(dTop)
	if p.top < 0 {
		p.top += float64(H)
	}
	p.h += dTop + dBtm

	heights := core.NewHeightGrid(p.w, p.h)
	ages := core.NewAgeGrid(p.w, p.h)
	segment := make([]int, p.w*p.h)
	for i := range segment {
		segment[i] = segNone
	}

	for j := 0; j < oldH; j++ {
		dst := (dTop+j)*p.w + dLft
		src := j * oldW
		copy(heights.Cells()[dst:dst+oldW], p.heights.Cells()[src:src+oldW])
		copy(ages.Cells()[dst:dst+oldW], p.ages.Cells()[src:src+oldW])
		copy(segment[dst:dst+oldW], p.segment[src:src+oldW])
	}

	p.heights = heights
	p.ages = ages
	p.segment = segment

	for i := range p.segs {
		p.segs[i].shift(dLft, dTop)
	}
	return nil
}
