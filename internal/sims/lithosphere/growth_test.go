package lithosphere

import (
	"testing"

	"lithos/internal/core"
)

func TestSetCrustAutoGrowth(t *testing.T) {
	world := core.WorldDim{W: 64, H: 64}
	p := uniformPlate(t, 8, 8, 0, 0, 1, world)
	before := p.Mass()

	if err := p.SetCrust(20, 0, 1.0, 0); err != nil {
		t.Fatalf("SetCrust: %v", err)
	}

	if p.Width() <= 8 {
		t.Fatalf("raster width = %d, must have grown past 8", p.Width())
	}
	if p.Width()%chunk != 0 {
		t.Fatalf("raster width = %d, must grow in multiples of %d", p.Width(), chunk)
	}
	if p.Height() != 8 {
		t.Fatalf("raster height = %d, must not grow vertically", p.Height())
	}
	if got := p.GetCrust(20, 0); !almostEqual(got, 1.0, 1e-12) {
		t.Fatalf("crust at grown cell = %f, want 1.0", got)
	}
	if !almostEqual(p.Mass(), before+1.0, 1e-12) {
		t.Fatalf("mass = %f, want %f", p.Mass(), before+1.0)
	}

	// The original patch must be untouched.
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := p.GetCrust(x, y); !almostEqual(got, 1, 1e-12) {
				t.Fatalf("original cell (%d, %d) = %f, want 1", x, y, got)
			}
		}
	}
}

func TestSetCrustGrowsLeftAndShiftsSegments(t *testing.T) {
	world := core.WorldDim{W: 64, H: 64}
	p := uniformPlate(t, 8, 8, 16, 16, ContBase, world)

	id, err := p.SelectCollisionSegment(18, 18)
	if err != nil {
		t.Fatalf("SelectCollisionSegment: %v", err)
	}
	boxBefore := p.segs[id]

	// (12, 18) sits 4 cells left of the plate: growth extends the left
	// edge by one chunk and every continent box shifts with it.
	if err := p.SetCrust(12, 18, 2.0, 0); err != nil {
		t.Fatalf("SetCrust: %v", err)
	}

	if p.Left() != 8 {
		t.Fatalf("left edge = %d, want 8 after one chunk of leftward growth", p.Left())
	}
	if p.Width() != 16 {
		t.Fatalf("raster width = %d, want 16", p.Width())
	}
	boxAfter := p.segs[id]
	if boxAfter.x0 != boxBefore.x0+chunk || boxAfter.x1 != boxBefore.x1+chunk {
		t.Fatalf("segment box x = (%d, %d), want (%d, %d)",
			boxAfter.x0, boxAfter.x1, boxBefore.x0+chunk, boxBefore.x1+chunk)
	}
	if boxAfter.y0 != boxBefore.y0 || boxAfter.y1 != boxBefore.y1 {
		t.Fatal("segment box y must not move on horizontal growth")
	}

	if got := p.GetCrust(12, 18); !almostEqual(got, 2.0, 1e-12) {
		t.Fatalf("crust at grown cell = %f, want 2.0", got)
	}
	// Segment assignments survive the copy into the grown raster.
	if got := p.GetContinentArea(18, 18); got != p.segs[id].area {
		t.Fatalf("continent lookup after growth = %d, want %d", got, p.segs[id].area)
	}
}

func TestSetCrustAgeBlend(t *testing.T) {
	world := core.WorldDim{W: 16, H: 16}
	buf := []float64{1, 0, 0, 0}
	p := mustPlate(t, buf, 2, 2, 0, 0, 100, world)

	// Existing crust of 1 at age 100 blended with the supplied column of
	// 4 at age 0: (1*100 + 4*0) / (1+4) = 20.
	if err := p.SetCrust(0, 0, 4.0, 0); err != nil {
		t.Fatalf("SetCrust: %v", err)
	}
	if got := p.GetCrustTimestamp(0, 0); got != 20 {
		t.Fatalf("blended age = %d, want 20", got)
	}
	if got := p.GetCrust(0, 0); !almostEqual(got, 4.0, 1e-12) {
		t.Fatalf("crust = %f, want 4.0: SetCrust replaces the column", got)
	}
	if !almostEqual(p.Mass(), 4.0, 1e-12) {
		t.Fatalf("mass = %f, want 4.0", p.Mass())
	}
}

func TestSetCrustFreshCellKeepsSuppliedAge(t *testing.T) {
	world := core.WorldDim{W: 16, H: 16}
	p := mustPlate(t, make([]float64, 4), 2, 2, 0, 0, 0, world)

	if err := p.SetCrust(1, 1, 0.5, 42); err != nil {
		t.Fatalf("SetCrust: %v", err)
	}
	if got := p.GetCrustTimestamp(1, 1); got != 42 {
		t.Fatalf("age = %d, want the supplied 42 on previously empty crust", got)
	}
}

func TestSetCrustClampsNegative(t *testing.T) {
	world := core.WorldDim{W: 16, H: 16}
	buf := []float64{2, 0, 0, 0}
	p := mustPlate(t, buf, 2, 2, 0, 0, 0, world)

	if err := p.SetCrust(0, 0, -5, 0); err != nil {
		t.Fatalf("SetCrust: %v", err)
	}
	if got := p.GetCrust(0, 0); got != 0 {
		t.Fatalf("crust = %f, want 0 after a negative write", got)
	}
	if p.Mass() != 0 {
		t.Fatalf("mass = %f, want 0", p.Mass())
	}
}

func TestSetCrustOutsideWithZeroIsNoOp(t *testing.T) {
	world := core.WorldDim{W: 64, H: 64}
	p := uniformPlate(t, 8, 8, 0, 0, 1, world)

	if err := p.SetCrust(40, 40, 0, 0); err != nil {
		t.Fatalf("SetCrust: %v", err)
	}
	if p.Width() != 8 || p.Height() != 8 {
		t.Fatal("writing zero crust outside the raster must not grow it")
	}
}

func TestGrowthNeverExceedsWorld(t *testing.T) {
	world := core.WorldDim{W: 16, H: 16}
	p := uniformPlate(t, 8, 8, 4, 4, 1, world)

	// Force repeated growth all over the world.
	for _, c := range [][2]int{{0, 8}, {15, 15}, {0, 0}, {13, 2}} {
		if err := p.SetCrust(c[0], c[1], 0.5, 1); err != nil {
			t.Fatalf("SetCrust(%d, %d): %v", c[0], c[1], err)
		}
	}

	if p.Width() > world.W || p.Height() > world.H {
		t.Fatalf("raster %dx%d outgrew the %dx%d world", p.Width(), p.Height(), world.W, world.H)
	}
	for _, c := range [][2]int{{0, 8}, {15, 15}, {0, 0}, {13, 2}} {
		if got := p.GetCrust(c[0], c[1]); !almostEqual(got, 0.5, 1e-12) {
			t.Fatalf("crust at (%d, %d) = %f, want 0.5", c[0], c[1], got)
		}
	}
}

func TestGrowthAcrossSeam(t *testing.T) {
	world := core.WorldDim{W: 64, H: 64}
	p := uniformPlate(t, 8, 8, 60, 0, 1, world)

	// (5, 3) lies just past the seam, two cells right of the plate's
	// right edge at 67 (= 3 mod 64).
	if err := p.SetCrust(5, 3, 1.5, 0); err != nil {
		t.Fatalf("SetCrust: %v", err)
	}
	if got := p.GetCrust(5, 3); !almostEqual(got, 1.5, 1e-12) {
		t.Fatalf("crust across the seam = %f, want 1.5", got)
	}
	if p.Left() != 60 {
		t.Fatalf("left edge = %d, want 60: rightward growth keeps the origin", p.Left())
	}
}
