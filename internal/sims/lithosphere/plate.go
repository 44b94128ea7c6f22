package lithosphere

import (
	"errors"
	"math"

	"lithos/internal/core"
	rng "lithos/pkg/core"
)

const (
	// ContBase is the minimum crust thickness for a cell to count as
	// continental. Thinner crust is oceanic and subducts on contact.
	ContBase = 1.0

	// OceanicBase is the thickness of freshly generated oceanic crust.
	OceanicBase = 0.1

	initialSpeed      = 1.0
	deformationWeight = 2.0
)

// segNone marks a cell that belongs to no segmented continent.
const segNone = -1

var (
	// ErrNilHeightmap reports a plate constructed without an initial crust buffer.
	ErrNilHeightmap = errors.New("lithosphere: initial heightmap must not be nil")
	// ErrBadDimensions reports non-positive plate dimensions, a negative
	// origin, or an initial heightmap shorter than w*h.
	ErrBadDimensions = errors.New("lithosphere: plate dimensions must be positive, origin non-negative, heightmap at least w*h")
	// ErrNegativeAge reports a negative initial crust age.
	ErrNegativeAge = errors.New("lithosphere: plate age must not be negative")
	// ErrNoGrowthRoom reports a crust write outside the raster with no valid
	// direction left to grow it in.
	ErrNoGrowthRoom = errors.New("lithosphere: cell outside plate raster with no room to grow")
	// ErrNoSegment reports a continent lookup that could neither find nor
	// create a segment for the requested cell.
	ErrNoSegment = errors.New("lithosphere: no segment exists at the requested cell")
)

// Plate is a rigid piece of crust drifting over the toroidal world. It owns
// a local height/age raster covering the torus wedge starting at (left, top)
// and keeps its mass up to date across every crust transfer. The mass center
// is computed at construction and recomputed by Erode; other crust writes
// leave it unchanged.
type Plate struct {
	world core.WorldDim
	rng   *rng.RNG

	left, top float64 // origin of the local raster in world coordinates
	w, h      int

	heights *core.HeightGrid
	ages    *core.AgeGrid
	segment []int
	segs    []continent

	mass     float64
	cx, cy   float64 // mass center in plate-local coordinates
	vx, vy   float64 // unit direction of travel
	velocity float64
	dx, dy   float64 // impulse accumulated since the last Move
	rotDir   int
}

// NewPlate builds a plate from an initial crust patch of w*h heights whose
// top-left corner sits at world coordinate (x, y). Every cell that carries
// crust is stamped with plateAge. The drift direction is drawn uniformly
// from the seeded generator and the initial speed is one cell per tick.
func NewPlate(seed int64, heights []float64, w, h, x, y, plateAge int, world core.WorldDim) (*Plate, error) {
	if heights == nil {
		return nil, ErrNilHeightmap
	}
	if w <= 0 || h <= 0 || x < 0 || y < 0 || len(heights) < w*h {
		return nil, ErrBadDimensions
	}
	if plateAge < 0 {
		return nil, ErrNegativeAge
	}

	p := &Plate{
		world:   world,
		rng:     rng.NewRNG(seed),
		left:    float64(x),
		top:     float64(y),
		w:       w,
		h:       h,
		heights: core.NewHeightGrid(w, h),
		ages:    core.NewAgeGrid(w, h),
		segment: make([]int, w*h),
	}

	angle := 2 * math.Pi * p.rng.Float64()
	p.velocity = 1
	p.rotDir = p.rng.Sign()
	p.vx = math.Cos(angle) * initialSpeed
	p.vy = math.Sin(angle) * initialSpeed

	hts := p.heights.Cells()
	ags := p.ages.Cells()
	k := 0
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			v := heights[k]
			hts[k] = v
			p.mass += v
			p.cx += float64(px) * v
			p.cy += float64(py) * v
			if v > 0 {
				ags[k] = plateAge
			}
			p.segment[k] = segNone
			k++
		}
	}
	if p.mass > 0 {
		p.cx /= p.mass
		p.cy /= p.mass
	}
	return p, nil
}

// Width returns the local raster width.
func (p *Plate) Width() int { return p.w }

// Height returns the local raster height.
func (p *Plate) Height() int { return p.h }

// Left returns the x world coordinate of the raster origin.
func (p *Plate) Left() int { return int(p.left) }

// Top returns the y world coordinate of the raster origin.
func (p *Plate) Top() int { return int(p.top) }

// Mass returns the total crust carried by the plate.
func (p *Plate) Mass() float64 { return p.mass }

// Velocity returns the scalar speed of the plate.
func (p *Plate) Velocity() float64 { return p.velocity }

// Momentum returns the product of the plate's mass and speed.
func (p *Plate) Momentum() float64 { return p.mass * p.velocity }

// Direction returns the unit direction of travel.
func (p *Plate) Direction() (float64, float64) { return p.vx, p.vy }

// Contains reports whether the wrapped world coordinate falls inside the
// plate's raster.
func (p *Plate) Contains(wx, wy int) bool {
	return p.wedge().Contains(wx, wy)
}

// GetCrust returns the crust thickness at a world coordinate, or 0 when the
// coordinate lies outside the plate.
func (p *Plate) GetCrust(wx, wy int) float64 {
	i := p.mapIndex(&wx, &wy)
	if i == core.BadIndex {
		return 0
	}
	return p.heights.Cells()[i]
}

// GetCrustTimestamp returns the crust age at a world coordinate, or 0 when
// the coordinate lies outside the plate.
func (p *Plate) GetCrustTimestamp(wx, wy int) int {
	i := p.mapIndex(&wx, &wy)
	if i == core.BadIndex {
		return 0
	}
	return p.ages.Cells()[i]
}

// GetMap exposes the plate's height and age rasters. The buffers are owned
// by the plate and remain valid until the next growing SetCrust call.
func (p *Plate) GetMap() (*core.HeightGrid, *core.AgeGrid) {
	return p.heights, p.ages
}

// Move integrates the pending impulse into the velocity, renormalizes the
// direction, applies the plate's circular drift and translates the raster
// origin on the torus. The raster contents are untouched.
func (p *Plate) Move() {
	p.vx += p.dx
	p.vy += p.dy
	p.dx = 0
	p.dy = 0

	// Keep the direction a unit vector; fold the length change into the
	// scalar speed, so an impulse along the motion speeds the plate up and
	// one against it slows the plate down (never below zero).
	l := math.Sqrt(p.vx*p.vx + p.vy*p.vy)
	p.vx /= l
	p.vy /= l
	p.velocity += l - 1.0
	if p.velocity < 0 {
		p.velocity = 0
	}

	// Circular motion with a radius tied to the world size. The rotation
	// angle grows quadratically with speed.
	worldAvgSide := float64(p.world.W+p.world.H) / 2
	alpha := float64(p.rotDir) * p.velocity / (worldAvgSide * 0.33)
	cos := math.Cos(alpha * p.velocity)
	sin := math.Sin(alpha * p.velocity)
	p.vx, p.vy = p.vx*cos-p.vy*sin, p.vy*cos+p.vx*sin

	p.left = wrapCoord(p.left+p.vx*p.velocity, float64(p.world.W))
	p.top = wrapCoord(p.top+p.vy*p.velocity, float64(p.world.H))
}

func wrapCoord(v, side float64) float64 {
	if v < 0 {
		v += side
	}
	if v >= side {
		v -= side
	}
	return v
}

func (p *Plate) wedge() core.Wedge {
	return core.Wedge{
		World:  p.world,
		Left:   int(p.left),
		Top:    int(p.top),
		Width:  p.w,
		Height: p.h,
	}
}

// mapIndex translates a world coordinate into the local raster. On success
// the coordinates are rewritten to plate-local form.
func (p *Plate) mapIndex(px, py *int) int {
	return p.wedge().MapIndex(px, py)
}
