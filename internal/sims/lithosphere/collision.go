package lithosphere

import (
	"math"

	"lithos/internal/core"
)

// AddCollision records a collision against the continent at a world
// coordinate, segmenting it lazily, and returns the continent's area.
func (p *Plate) AddCollision(wx, wy int) (int, error) {
	id, err := p.continentAt(wx, wy)
	if err != nil {
		return 0, err
	}
	p.segs[id].collCount++
	return p.segs[id].area, nil
}

// CollisionInfo returns the collision count of the continent at a world
// coordinate together with the count/area ratio used by the aggregation
// heuristic.
func (p *Plate) CollisionInfo(wx, wy int) (int, float64, error) {
	id, err := p.continentAt(wx, wy)
	if err != nil {
		return 0, 0, err
	}
	s := &p.segs[id]
	return s.collCount, float64(s.collCount) / float64(1+s.area), nil
}

// Collide resolves the impulse exchange between this plate and o colliding
// at world coordinate (wx, wy) with collMass worth of deforming crust. The
// restitution coefficient is zero, so the plates stick rather than bounce.
// The giving side is charged against collMass alone while the receiver
// integrates the new crust with its full inertia.
func (p *Plate) Collide(o *Plate, wx, wy int, collMass float64) {
	const coeffRest = 0.0

	if p.mass <= 0 || collMass <= 0 {
		return
	}

	apx, apy := wx, wy
	bpx, bpy := wx, wy
	if p.mapIndex(&apx, &apy) == core.BadIndex || o.mapIndex(&bpx, &bpy) == core.BadIndex {
		return
	}

	// The contact normal is the difference of the two
	// mass-center-to-contact vectors, each taken in its own plate's local
	// coordinates.
	apDx := float64(apx - int(p.cx))
	apDy := float64(apy - int(p.cy))
	bpDx := float64(bpx - int(o.cx))
	bpDy := float64(bpy - int(o.cy))
	nx := apDx - bpDx
	ny := apDy - bpDy

	if nx*nx+ny*ny <= 0 {
		return
	}
	nLen := math.Sqrt(nx*nx + ny*ny)
	nx /= nLen
	ny /= nLen

	relVx := p.vx - o.vx
	relVy := p.vy - o.vy
	relDotN := relVx*nx + relVy*ny
	if relDotN <= 0 {
		return // already separating
	}

	denom := (nx*nx + ny*ny) * (1.0/p.mass + 1.0/collMass)
	j := -(1 + coeffRest) * relDotN / denom

	p.dx += nx * j / p.mass
	p.dy += ny * j / p.mass
	o.dx -= nx * j / (collMass + o.mass)
	o.dy -= ny * j / (collMass + o.mass)
}

// ApplyFriction slows the plate by the kinetic energy the deformation of
// deformedMass consumed. The speed never drops below zero.
func (p *Plate) ApplyFriction(deformedMass float64) {
	if p.mass <= 0 {
		return
	}
	dec := deformationWeight * deformedMass / p.mass
	if dec > p.velocity {
		dec = p.velocity
	}
	p.velocity -= dec
}

// AddCrustByCollision places crust received from another plate at a world
// coordinate and claims the cell for the given continent. The raster grows
// if the coordinate falls outside it.
func (p *Plate) AddCrustByCollision(wx, wy int, z float64, t int, cont ContinentID) error {
	if err := p.SetCrust(wx, wy, p.GetCrust(wx, wy)+z, t); err != nil {
		return err
	}

	lx, ly := wx, wy
	i := p.mapIndex(&lx, &ly)
	if i == core.BadIndex || cont < 0 || cont >= len(p.segs) {
		return ErrNoSegment
	}
	p.segment[i] = cont
	s := &p.segs[cont]
	s.area++
	s.enlargeToContain(lx, ly)
	return nil
}

// AddCrustBySubduction folds subducted crust under the plate's leading
// edge: the deposit lands not at (wx, wy) but at an inland offset derived
// from the relative motion hint (dx, dy), with cubed noise to roughen the
// resulting arc. Crust only accumulates where the plate already has some;
// deposits that land outside the local raster are lost to the mantle.
func (p *Plate) AddCrustBySubduction(wx, wy int, z float64, t int, dx, dy float64) {
	lx, ly := wx, wy
	if p.mapIndex(&lx, &ly) == core.BadIndex {
		return
	}

	// When the hint points along our own motion, drop its component along
	// our direction, so deposits drift inland rather than trailing the plate.
	if dot := p.vx*dx + p.vy*dy; dot > 0 {
		dx -= dot * p.vx
		dy -= dot * p.vy
	}

	offset := p.rng.Float64()
	offset = offset * offset * offset * float64(p.rng.Sign())
	dx = 10*dx + 3*offset
	dy = 10*dy + 3*offset

	nx := int(float64(lx) + dx)
	ny := int(float64(ly) + dy)

	// Wrap only when the plate covers the whole axis; otherwise the
	// offset may fall off the raster.
	if p.w == p.world.W {
		nx = ((nx % p.w) + p.w) % p.w
	}
	if p.h == p.world.H {
		ny = ((ny % p.h) + p.h) % p.h
	}
	if nx < 0 || nx >= p.w || ny < 0 || ny >= p.h {
		return
	}

	i := ny*p.w + nx
	hts := p.heights.Cells()
	ags := p.ages.Cells()
	if hts[i] > 0 {
		t = int((hts[i]*float64(ags[i]) + z*float64(t)) / (hts[i] + z))
		if z > 0 {
			ags[i] = t
		}
		hts[i] += z
		p.mass += z
	}
}

// AggregateCrust transfers the whole continent under world coordinate
// (wx, wy) from this plate onto o and returns the mass moved. The source
// continent is left as a tombstone so that further collision points on the
// same continent this tick aggregate nothing.
func (p *Plate) AggregateCrust(o *Plate, wx, wy int) (float64, error) {
	lx, ly := wx, wy
	i := p.mapIndex(&lx, &ly)
	if i == core.BadIndex {
		return 0, ErrNoSegment
	}
	segID := p.segment[i]
	if segID == segNone || segID >= len(p.segs) {
		return 0, nil
	}

	// One continent may collide at several points in the same tick. The
	// first aggregation empties it; the tombstone makes the rest no-ops.
	src := &p.segs[segID]
	if src.isEmpty() {
		return 0, nil
	}

	active, err := o.SelectCollisionSegment(wx, wy)
	if err != nil {
		return 0, err
	}

	// Shift into the second torus image to keep the per-cell offsets
	// positive.
	wx += p.world.W
	wy += p.world.H

	oldMass := p.mass
	hts := p.heights.Cells()
	ags := p.ages.Cells()

	for y := src.y0; y <= src.y1; y++ {
		for x := src.x0; x <= src.x1; x++ {
			ci := y*p.w + x
			if p.segment[ci] == segID && hts[ci] > 0 {
				if err := o.AddCrustByCollision(wx+x-lx, wy+y-ly, hts[ci], ags[ci], active); err != nil {
					return oldMass - p.mass, err
				}
				p.mass -= hts[ci]
				hts[ci] = 0
			}
		}
	}

	src.area = 0
	return oldMass - p.mass, nil
}
