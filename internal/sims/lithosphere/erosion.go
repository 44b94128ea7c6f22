package lithosphere

// neighbour is one of the four cardinal cells around an erosion site. ok
// marks it admissible: inside the raster (or across the seam on world-wide
// plates) and strictly lower than the site.
type neighbour struct {
	idx int
	h   float64
	ok  bool
}

// lowerNeighbours resolves the four neighbours of the cell at (x, y) in
// W, E, N, S order. Neighbours beyond a raster edge are admitted only when
// the plate spans the whole world on that axis; admitted neighbours at or
// above the cell's own height are reported with ok cleared.
func (p *Plate) lowerNeighbours(x, y, index int) [4]neighbour {
	hts := p.heights.Cells()
	h := hts[index]

	wrapX := p.w == p.world.W
	wrapY := p.h == p.world.H

	var nb [4]neighbour
	if x > 0 || wrapX {
		i := y*p.w + (x-1+p.w)%p.w
		nb[0] = neighbour{idx: i, h: hts[i], ok: hts[i] < h}
	}
	if x < p.w-1 || wrapX {
		i := y*p.w + (x+1)%p.w
		nb[1] = neighbour{idx: i, h: hts[i], ok: hts[i] < h}
	}
	if y > 0 || wrapY {
		i := ((y-1+p.h)%p.h)*p.w + x
		nb[2] = neighbour{idx: i, h: hts[i], ok: hts[i] < h}
	}
	if y < p.h-1 || wrapY {
		i := ((y+1)%p.h)*p.w + x
		nb[3] = neighbour{idx: i, h: hts[i], ok: hts[i] < h}
	}
	return nb
}

// Erode runs one hydraulic erosion pass over the plate. Rivers are seeded
// at every top (a cell at or above lowerBound whose four neighbours are all
// admissible and strictly lower) and flow along the steepest descent,
// shaving 20% of the gap to lowerBound at every visited cell. A second pass
// adds relief noise and redistributes each tall cell's overhang among its
// lower neighbours, conserving mass cell-locally, then rescans mass and
// mass center.
func (p *Plate) Erode(lowerBound float64) {
	hts := p.heights.Cells()
	total := p.w * p.h

	tmp := make([]float64, total)
	p.heights.CopyTo(tmp)

	var sources, sinks []int

	// Tops seed the rivers. A cell at a raster edge qualifies only on an
	// axis where the plate spans the whole world and its neighbours wrap.
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			index := y*p.w + x
			if hts[index] < lowerBound {
				continue
			}
			nb := p.lowerNeighbours(x, y, index)
			if nb[0].ok && nb[1].ok && nb[2].ok && nb[3].ok {
				sources = append(sources, index)
			}
		}
	}

	visited := make([]bool, total)

	for len(sources) > 0 {
		for len(sources) > 0 {
			index := sources[len(sources)-1]
			sources = sources[:len(sources)-1]
			y := index / p.w
			x := index - y*p.w

			if hts[index] < lowerBound {
				continue
			}

			nb := p.lowerNeighbours(x, y, index)

			// Walk to the lowest admissible neighbour; blocked
			// directions read as our own height so they never win.
			dest := -1
			lowest := hts[index]
			for _, n := range nb {
				if n.ok && n.h < lowest {
					lowest = n.h
					dest = n.idx
				}
			}
			if dest < 0 {
				continue // local minimum, the river ends
			}

			if !visited[dest] {
				sinks = append(sinks, dest)
				visited[dest] = true
			}

			tmp[index] -= (tmp[index] - lowerBound) * 0.2
		}
		sources, sinks = sinks, sources[:0]
	}

	// Relief noise, up to ±10% of each cell.
	for i := 0; i < total; i++ {
		alpha := 0.2 * p.rng.Float64()
		tmp[i] += 0.1*tmp[i] - alpha*tmp[i]
	}

	copy(hts, tmp)
	for i := range tmp {
		tmp[i] = 0
	}
	p.mass = 0
	p.cx, p.cy = 0, 0

	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			index := y*p.w + x
			p.mass += hts[index]
			tmp[index] += hts[index] // redistribution lands on top of this

			p.cx += float64(x) * hts[index]
			p.cy += float64(y) * hts[index]

			if hts[index] < lowerBound {
				continue
			}

			nb := p.lowerNeighbours(x, y, index)
			lower := 0
			for _, n := range nb {
				if n.ok {
					lower++
				}
			}
			if lower == 0 {
				continue
			}

			// minDiff is the drop to the tallest lower neighbour,
			// diffSum how much the others sit below that one.
			minDiff := hts[index]
			for _, n := range nb {
				if n.ok && hts[index]-n.h < minDiff {
					minDiff = hts[index] - n.h
				}
			}
			diffSum := 0.0
			for _, n := range nb {
				if n.ok {
					diffSum += hts[index] - n.h - minDiff
				}
			}

			if diffSum < minDiff {
				// Not enough room below: level everything to
				// the tallest lower neighbour, then split the
				// remainder evenly across self and neighbours.
				for _, n := range nb {
					if n.ok {
						tmp[n.idx] += hts[index] - n.h - minDiff
					}
				}
				tmp[index] -= minDiff

				share := (minDiff - diffSum) / float64(1+lower)
				for _, n := range nb {
					if n.ok {
						tmp[n.idx] += share
					}
				}
				tmp[index] += share
			} else {
				// Cut the cell down to its tallest lower
				// neighbour and spread the removed crust in
				// proportion to each slope.
				unit := minDiff / diffSum
				tmp[index] -= minDiff
				for _, n := range nb {
					if n.ok {
						tmp[n.idx] += unit * (hts[index] - n.h - minDiff)
					}
				}
			}
		}
	}

	copy(hts, tmp)

	if p.mass > 0 {
		p.cx /= p.mass
		p.cy /= p.mass
	}
}
