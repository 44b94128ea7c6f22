package lithosphere

import "lithos/internal/core"

// ContinentID indexes a plate's continent table.
type ContinentID = int

// continent describes one 4-connected region of continental crust on a
// plate: its bounding box in plate-local coordinates, its cell count and the
// number of collisions it has taken this lifecycle. area == 0 marks a
// tombstone left behind by a completed aggregation.
type continent struct {
	x0, y0, x1, y1 int
	area           int
	collCount      int
}

func (c *continent) isEmpty() bool { return c.area == 0 }

func (c *continent) enlargeToContain(x, y int) {
	if x < c.x0 {
		c.x0 = x
	}
	if x > c.x1 {
		c.x1 = x
	}
	if y < c.y0 {
		c.y0 = y
	}
	if y > c.y1 {
		c.y1 = y
	}
}

// shift translates the bounding box after the owning raster grew leftward or
// upward.
func (c *continent) shift(dx, dy int) {
	c.x0 += dx
	c.x1 += dx
	c.y0 += dy
	c.y1 += dy
}

// ResetSegments drops all continent bookkeeping. Segmentation is a cache; it
// is rebuilt lazily by the next continent lookup.
func (p *Plate) ResetSegments() {
	for i := range p.segment {
		p.segment[i] = segNone
	}
	p.segs = p.segs[:0]
}

// SelectCollisionSegment returns the id of the continent at a world
// coordinate on this plate, segmenting it first if needed. It is the
// receiving half of an aggregation.
func (p *Plate) SelectCollisionSegment(wx, wy int) (ContinentID, error) {
	return p.continentAt(wx, wy)
}

// GetContinentArea returns the cell count of the continent at a world
// coordinate, or 0 if the cell carries no segmented continent.
func (p *Plate) GetContinentArea(wx, wy int) int {
	i := p.mapIndex(&wx, &wy)
	if i == core.BadIndex {
		return 0
	}
	id := p.segment[i]
	if id == segNone || id >= len(p.segs) {
		return 0
	}
	return p.segs[id].area
}

// continentAt resolves the continent covering a world coordinate, creating
// the segment on demand.
func (p *Plate) continentAt(wx, wy int) (ContinentID, error) {
	lx, ly := wx, wy
	i := p.mapIndex(&lx, &ly)
	if i == core.BadIndex {
		return 0, ErrNoSegment
	}
	id := p.segment[i]
	if id == segNone {
		id = p.createSegment(lx, ly)
	}
	if id < 0 || id >= len(p.segs) {
		return 0, ErrNoSegment
	}
	return id, nil
}

// createSegment flood fills the 4-connected region of continental crust
// around the plate-local cell (x, y) and appends a continent entry for it.
// The fill runs scanline by scanline and wraps around a raster edge only
// when the plate spans the whole world on that axis.
func (p *Plate) createSegment(x, y int) ContinentID {
	origin := y*p.w + x
	id := len(p.segs)

	if p.segment[origin] != segNone {
		return p.segment[origin]
	}

	hts := p.heights.Cells()
	seg := p.segment

	canGoLeft := x > 0 && hts[origin-1] >= ContBase
	canGoRight := x < p.w-1 && hts[origin+1] >= ContBase
	canGoUp := y > 0 && hts[origin-p.w] >= ContBase
	canGoDown := y < p.h-1 && hts[origin+p.w] >= ContBase

	// The cell may border a region segmented earlier; if so, join it
	// instead of flooding a duplicate.
	nbour := segNone
	switch {
	case canGoLeft && seg[origin-1] != segNone:
		nbour = seg[origin-1]
	case canGoRight && seg[origin+1] != segNone:
		nbour = seg[origin+1]
	case canGoUp && seg[origin-p.w] != segNone:
		nbour = seg[origin-p.w]
	case canGoDown && seg[origin+p.w] != segNone:
		nbour = seg[origin+p.w]
	}
	if nbour != segNone {
		seg[origin] = nbour
		s := &p.segs[nbour]
		s.area++
		s.enlargeToContain(x, y)
		return nbour
	}

	data := continent{x0: x, x1: x, y0: y, y1: y}

	wrapX := p.w == p.world.W
	wrapY := p.h == p.world.H

	spansTodo := make([][]int, p.h)
	spansDone := make([][]int, p.h)

	seg[origin] = id
	spansTodo[y] = append(spansTodo[y], x, x)

	for {
		linesProcessed := 0
		for line := 0; line < p.h; line++ {
			if len(spansTodo[line]) == 0 {
				continue
			}

			// Pop spans until one still has unscanned cells left
			// after subtracting everything already done on this
			// line.
			var start, end int
			for {
				n := len(spansTodo[line])
				end = spansTodo[line][n-1]
				start = spansTodo[line][n-2]
				spansTodo[line] = spansTodo[line][:n-2]

				done := spansDone[line]
				for j := 0; j+1 < len(done); j += 2 {
					if start >= done[j] && start <= done[j+1] {
						start = done[j+1] + 1
					}
					if end >= done[j] && end <= done[j+1] {
						end = done[j] - 1
					}
				}
				if start <= end || len(spansTodo[line]) == 0 {
					break
				}
			}
			if start > end {
				continue
			}

			rowAbove := line - 1
			if line == 0 {
				rowAbove = p.h - 1
			}
			rowBelow := line + 1
			if line == p.h-1 {
				rowBelow = 0
			}
			lineHere := line * p.w
			lineAbove := rowAbove * p.w
			lineBelow := rowBelow * p.w

			for start > 0 && seg[lineHere+start-1] == segNone && hts[lineHere+start-1] >= ContBase {
				start--
				seg[lineHere+start] = id
			}
			for end < p.w-1 && seg[lineHere+end+1] == segNone && hts[lineHere+end+1] >= ContBase {
				end++
				seg[lineHere+end] = id
			}

			// Wrap the row ends across the seam on world-wide plates.
			if wrapX && start == 0 && seg[lineHere+p.w-1] == segNone && hts[lineHere+p.w-1] >= ContBase {
				seg[lineHere+p.w-1] = id
				spansTodo[line] = append(spansTodo[line], p.w-1, p.w-1)
			}
			if wrapX && end == p.w-1 && seg[lineHere] == segNone && hts[lineHere] >= ContBase {
				seg[lineHere] = id
				spansTodo[line] = append(spansTodo[line], 0, 0)
			}

			data.area += 1 + end - start
			if line < data.y0 {
				data.y0 = line
			}
			if line > data.y1 {
				data.y1 = line
			}
			if start < data.x0 {
				data.x0 = start
			}
			if end > data.x1 {
				data.x1 = end
			}

			if line > 0 || wrapY {
				for j := start; j <= end; j++ {
					if seg[lineAbove+j] == segNone && hts[lineAbove+j] >= ContBase {
						a := j
						seg[lineAbove+j] = id
						j++
						for j < p.w && seg[lineAbove+j] == segNone && hts[lineAbove+j] >= ContBase {
							seg[lineAbove+j] = id
							j++
						}
						spansTodo[rowAbove] = append(spansTodo[rowAbove], a, j-1)
					}
				}
			}
			if line < p.h-1 || wrapY {
				for j := start; j <= end; j++ {
					if seg[lineBelow+j] == segNone && hts[lineBelow+j] >= ContBase {
						a := j
						seg[lineBelow+j] = id
						j++
						for j < p.w && seg[lineBelow+j] == segNone && hts[lineBelow+j] >= ContBase {
							seg[lineBelow+j] = id
							j++
						}
						spansTodo[rowBelow] = append(spansTodo[rowBelow], a, j-1)
					}
				}
			}

			spansDone[line] = append(spansDone[line], start, end)
			linesProcessed++
		}
		if linesProcessed == 0 {
			break
		}
	}

	p.segs = append(p.segs, data)
	return id
}
