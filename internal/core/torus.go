package core

// BadIndex is returned by Wedge.MapIndex for coordinates that fall outside
// the wedge. It is the largest representable int so that successful indices
// always compare smaller.
const BadIndex = int(^uint(0) >> 1)

// WorldDim is the immutable size of the toroidal world. All world coordinate
// arithmetic wraps modulo W horizontally and H vertically.
type WorldDim struct {
	W, H int
}

// WrapX maps x onto [0, W).
func (d WorldDim) WrapX(x int) int { return ((x % d.W) + d.W) % d.W }

// WrapY maps y onto [0, H).
func (d WorldDim) WrapY(y int) int { return ((y % d.H) + d.H) % d.H }

// Wrap maps both coordinates onto the world.
func (d WorldDim) Wrap(x, y int) (int, int) { return d.WrapX(x), d.WrapY(y) }

// Contains reports whether (x, y) lies inside the world without wrapping.
func (d WorldDim) Contains(x, y int) bool {
	return x >= 0 && x < d.W && y >= 0 && y < d.H
}

// Index returns the row-major index of a wrapped world coordinate.
func (d WorldDim) Index(x, y int) int {
	return d.WrapY(y)*d.W + d.WrapX(x)
}

// Area returns the cell count of the world.
func (d WorldDim) Area() int { return d.W * d.H }

// Wedge is a rectangle on the torus: it starts at (Left, Top) and spans
// W×H cells, possibly crossing the world seam on either axis. It is the sole
// translator between world coordinates and row-major raster indices.
type Wedge struct {
	World         WorldDim
	Left, Top     int
	Width, Height int
}

// MapIndex resolves a world coordinate against the wedge. On success it
// rewrites *px, *py to wedge-local coordinates and returns the row-major
// index; otherwise it returns BadIndex and leaves the coordinates wrapped
// onto the world.
func (r Wedge) MapIndex(px, py *int) int {
	x := r.World.WrapX(*px)
	y := r.World.WrapY(*py)
	if x < r.Left {
		x += r.World.W
	}
	if y < r.Top {
		y += r.World.H
	}
	if x >= r.Left+r.Width || y >= r.Top+r.Height {
		*px = r.World.WrapX(x)
		*py = r.World.WrapY(y)
		return BadIndex
	}
	*px = x - r.Left
	*py = y - r.Top
	return (y-r.Top)*r.Width + (x - r.Left)
}

// Contains reports whether the wrapped world coordinate falls inside the
// wedge.
func (r Wedge) Contains(x, y int) bool {
	x, y = r.World.Wrap(x, y)
	if x < r.Left {
		x += r.World.W
	}
	if y < r.Top {
		y += r.World.H
	}
	return x < r.Left+r.Width && y < r.Top+r.Height
}
