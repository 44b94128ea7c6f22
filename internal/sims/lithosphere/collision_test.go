package lithosphere

import (
	"math"
	"testing"

	"lithos/internal/core"
)

func uniformPlate(t *testing.T, w, h, x, y int, height float64, world core.WorldDim) *Plate {
	t.Helper()
	buf := make([]float64, w*h)
	for i := range buf {
		buf[i] = height
	}
	return mustPlate(t, buf, w, h, x, y, 0, world)
}

func TestCollideImpulse(t *testing.T) {
	world := core.WorldDim{W: 8, H: 8}
	a := uniformPlate(t, 4, 4, 0, 0, 1, world)
	b := uniformPlate(t, 4, 4, 0, 0, 1, world)

	// Pin the geometry so the contact normal is exactly (1, 0): the
	// contact sits right of a's center and left of b's.
	a.cx, a.cy = 1, 2
	b.cx, b.cy = 3, 2
	a.mass = 10
	b.mass = 100
	a.vx, a.vy = 1, 0
	b.vx, b.vy = 0, -1

	collMass := 10.0
	a.Collide(b, 2, 2, collMass)

	// relDotN = ((1,0)-(0,-1)) . (1,0) = 1
	// J = -relDotN / (1/10 + 1/10) = -5
	wantADx := 1 * -5.0 / 10
	wantBDx := -(1 * -5.0) / (collMass + 100)

	if !almostEqual(a.dx, wantADx, 1e-9) || !almostEqual(a.dy, 0, 1e-9) {
		t.Fatalf("a impulse = (%f, %f), want (%f, 0)", a.dx, a.dy, wantADx)
	}
	if !almostEqual(b.dx, wantBDx, 1e-9) || !almostEqual(b.dy, 0, 1e-9) {
		t.Fatalf("b impulse = (%f, %f), want (%f, 0)", b.dx, b.dy, wantBDx)
	}
}

func TestCollideSeparatingPlatesNoOp(t *testing.T) {
	world := core.WorldDim{W: 8, H: 8}
	a := uniformPlate(t, 4, 4, 0, 0, 1, world)
	b := uniformPlate(t, 4, 4, 0, 0, 1, world)

	a.cx, a.cy = 1, 2
	b.cx, b.cy = 3, 2
	a.vx, a.vy = -1, 0 // moving away from b
	b.vx, b.vy = 0, 0

	a.Collide(b, 2, 2, 5)

	if a.dx != 0 || a.dy != 0 || b.dx != 0 || b.dy != 0 {
		t.Fatal("separating plates must exchange no impulse")
	}
}

func TestCollideDegenerateNormalNoOp(t *testing.T) {
	world := core.WorldDim{W: 8, H: 8}
	a := uniformPlate(t, 4, 4, 0, 0, 1, world)
	b := uniformPlate(t, 4, 4, 0, 0, 1, world)

	// Identical centers collapse the normal to zero length.
	a.cx, a.cy = 2, 2
	b.cx, b.cy = 2, 2
	a.vx, a.vy = 1, 0

	a.Collide(b, 2, 2, 5)

	if a.dx != 0 || a.dy != 0 || b.dx != 0 || b.dy != 0 {
		t.Fatal("a degenerate contact normal must exchange no impulse")
	}
}

func TestAddCrustByCollision(t *testing.T) {
	world := core.WorldDim{W: 16, H: 16}
	buf := make([]float64, 16)
	buf[1*4+1] = ContBase // one continental cell at local (1, 1)
	p := mustPlate(t, buf, 4, 4, 0, 0, 5, world)

	id, err := p.SelectCollisionSegment(1, 1)
	if err != nil {
		t.Fatalf("SelectCollisionSegment: %v", err)
	}
	if got := p.GetContinentArea(1, 1); got != 1 {
		t.Fatalf("fresh continent area = %d, want 1", got)
	}

	if err := p.AddCrustByCollision(2, 1, 1.5, 7, id); err != nil {
		t.Fatalf("AddCrustByCollision: %v", err)
	}

	if got := p.GetCrust(2, 1); !almostEqual(got, 1.5, 1e-12) {
		t.Fatalf("crust at receiving cell = %f, want 1.5", got)
	}
	if got := p.GetContinentArea(2, 1); got != 2 {
		t.Fatalf("continent area after accretion = %d, want 2", got)
	}
	seg := p.segs[id]
	if seg.x0 > 1 || seg.x1 < 2 || seg.y0 > 1 || seg.y1 < 1 {
		t.Fatalf("bounding box (%d,%d)-(%d,%d) must contain both cells", seg.x0, seg.y0, seg.x1, seg.y1)
	}
	if !almostEqual(p.Mass(), ContBase+1.5, 1e-12) {
		t.Fatalf("mass = %f, want %f", p.Mass(), ContBase+1.5)
	}
}

func TestAddCrustBySubductionDeposits(t *testing.T) {
	world := core.WorldDim{W: 8, H: 8}
	p := uniformPlate(t, 8, 8, 0, 0, 1, world) // world-wide: deposits always land

	before := p.Mass()
	p.AddCrustBySubduction(3, 3, 0.5, 10, 0.4, -0.3)

	if !almostEqual(p.Mass(), before+0.5, 1e-9) {
		t.Fatalf("mass = %f, want %f: a world-wide plate loses no deposits", p.Mass(), before+0.5)
	}

	hm, _ := p.GetMap()
	raised := 0
	for _, v := range hm.Cells() {
		if v > 1 {
			raised++
		}
	}
	if raised != 1 {
		t.Fatalf("exactly one cell should have received the deposit, got %d", raised)
	}
}

func TestAddCrustBySubductionLostOffRaster(t *testing.T) {
	world := core.WorldDim{W: 64, H: 64}
	p := uniformPlate(t, 4, 4, 0, 0, 1, world)

	// Point the plate north and push the deposit south: the offset is at
	// least 10-3 cells, far beyond the 4-cell raster, so it is dropped.
	p.vx, p.vy = 0, -1

	before := p.Mass()
	p.AddCrustBySubduction(1, 1, 0.5, 10, 0, 1)

	if p.Mass() != before {
		t.Fatalf("mass = %f, want %f: deposits beyond the raster are lost", p.Mass(), before)
	}
}

func TestAggregateCrust(t *testing.T) {
	world := core.WorldDim{W: 8, H: 8}

	// Plate a carries a 3x3 continent at (2..4, 2..4); plate b overlaps
	// the same area with no crust of its own.
	bufA := make([]float64, 64)
	for y := 2; y <= 4; y++ {
		for x := 2; x <= 4; x++ {
			bufA[y*8+x] = 1
		}
	}
	a := mustPlate(t, bufA, 8, 8, 0, 0, 0, world)
	b := mustPlate(t, make([]float64, 64), 8, 8, 0, 0, 0, world)

	if _, err := a.AddCollision(3, 3); err != nil {
		t.Fatalf("AddCollision: %v", err)
	}

	moved, err := a.AggregateCrust(b, 3, 3)
	if err != nil {
		t.Fatalf("AggregateCrust: %v", err)
	}
	if !almostEqual(moved, 9, 1e-9) {
		t.Fatalf("mass transferred = %f, want 9", moved)
	}
	if !almostEqual(a.Mass(), 0, 1e-9) {
		t.Fatalf("a.Mass() = %f, want 0", a.Mass())
	}
	if !almostEqual(b.Mass(), 9, 1e-9) {
		t.Fatalf("b.Mass() = %f, want 9", b.Mass())
	}
	for y := 2; y <= 4; y++ {
		for x := 2; x <= 4; x++ {
			if got := b.GetCrust(x, y); !almostEqual(got, 1, 1e-12) {
				t.Fatalf("b crust at (%d, %d) = %f, want 1", x, y, got)
			}
		}
	}

	if got := a.GetContinentArea(3, 3); got != 0 {
		t.Fatalf("source continent must be tombstoned, area = %d", got)
	}

	// The tombstone makes a second hit on the same continent a no-op.
	moved, err = a.AggregateCrust(b, 3, 3)
	if err != nil {
		t.Fatalf("second AggregateCrust: %v", err)
	}
	if moved != 0 {
		t.Fatalf("second aggregation moved %f, want 0", moved)
	}
}

func TestAggregationConservesTotalMass(t *testing.T) {
	world := core.WorldDim{W: 16, H: 16}

	bufA := make([]float64, 64)
	for y := 1; y <= 4; y++ {
		for x := 1; x <= 5; x++ {
			bufA[y*8+x] = 1 + 0.125*float64(x+y)
		}
	}
	a := mustPlate(t, bufA, 8, 8, 0, 0, 0, world)
	b := uniformPlate(t, 8, 8, 0, 0, 0.25, world)

	total := a.Mass() + b.Mass()
	if _, err := a.AddCollision(3, 3); err != nil {
		t.Fatalf("AddCollision: %v", err)
	}
	if _, err := a.AggregateCrust(b, 3, 3); err != nil {
		t.Fatalf("AggregateCrust: %v", err)
	}

	if !almostEqual(a.Mass()+b.Mass(), total, 1e-4*total) {
		t.Fatalf("total mass %f drifted from %f", a.Mass()+b.Mass(), total)
	}
}

func TestAddCollisionCounts(t *testing.T) {
	world := core.WorldDim{W: 16, H: 16}
	buf := make([]float64, 16)
	buf[0] = ContBase
	buf[1] = ContBase
	buf[4] = ContBase
	buf[5] = ContBase
	p := mustPlate(t, buf, 4, 4, 0, 0, 0, world)

	area, err := p.AddCollision(0, 0)
	if err != nil {
		t.Fatalf("AddCollision: %v", err)
	}
	if area != 4 {
		t.Fatalf("continent area = %d, want 4", area)
	}
	if _, err := p.AddCollision(1, 1); err != nil {
		t.Fatalf("AddCollision: %v", err)
	}

	count, ratio, err := p.CollisionInfo(0, 0)
	if err != nil {
		t.Fatalf("CollisionInfo: %v", err)
	}
	if count != 2 {
		t.Fatalf("collision count = %d, want 2", count)
	}
	if !almostEqual(ratio, 2.0/5.0, 1e-12) {
		t.Fatalf("collision ratio = %f, want %f", ratio, 2.0/5.0)
	}
}

func TestCollideThenMoveAppliesImpulse(t *testing.T) {
	world := core.WorldDim{W: 64, H: 64}
	a := uniformPlate(t, 4, 4, 0, 0, 1, world)
	b := uniformPlate(t, 4, 4, 0, 0, 1, world)

	a.cx, a.cy = 1, 2
	b.cx, b.cy = 3, 2
	a.vx, a.vy = 1, 0
	b.vx, b.vy = 0, -1
	a.rotDir = 0
	b.rotDir = 0

	a.Collide(b, 2, 2, b.Mass())
	a.Move()
	b.Move()

	if a.Velocity() >= 1 {
		t.Fatalf("the head-on giver must slow down, velocity = %f", a.Velocity())
	}
	vx, vy := a.Direction()
	if !almostEqual(math.Hypot(vx, vy), 1, 1e-6) {
		t.Fatal("direction must stay unit after absorbing the impulse")
	}
}
