package lithosphere

import (
	"strconv"

	"lithos/internal/core"
	rng "lithos/pkg/core"
)

// World drives a set of plates over a shared toroidal surface: it composes
// the plates into one height map every tick, detects crust overlaps, routes
// the collision/subduction/aggregation calls between the plates in the
// order they require, and periodically erodes them.
type World struct {
	cfg Config
	dim core.WorldDim

	plates []*Plate

	heights   []float64
	ages      []int
	owner     []int
	prevOwner []int

	deformed []float64
	events   []collisionEvent

	display *core.ByteGrid

	rng   *rng.RNG
	tick  int
	cycle int
	err   error
}

// collisionEvent records a continental overlap found during composition.
// a is the overriding plate, b the folded one.
type collisionEvent struct {
	a, b   int
	wx, wy int
	crust  float64
}

// New returns a lithosphere simulation with the provided dimensions using
// defaults.
func New(w, h int) *World {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	return NewWithConfig(cfg)
}

// NewWithConfig returns a lithosphere world configured from the provided
// options.
func NewWithConfig(cfg Config) *World {
	dim := core.WorldDim{W: cfg.Width, H: cfg.Height}
	total := dim.Area()
	if total < 0 {
		total = 0
	}
	return &World{
		cfg:       cfg,
		dim:       dim,
		heights:   make([]float64, total),
		ages:      make([]int, total),
		owner:     make([]int, total),
		prevOwner: make([]int, total),
		display:   core.NewByteGrid(cfg.Width, cfg.Height),
		rng:       rng.NewRNG(cfg.Seed),
	}
}

// Name returns the simulation identifier.
func (w *World) Name() string { return "lithosphere" }

// Size reports the world dimensions.
func (w *World) Size() core.Size { return core.Size{W: w.dim.W, H: w.dim.H} }

// Cells exposes the current display buffer.
func (w *World) Cells() []uint8 { return w.display.Cells() }

// HeightMap exposes the composed world height map.
func (w *World) HeightMap() []float64 { return w.heights }

// AgeMap exposes the composed world crust ages.
func (w *World) AgeMap() []int { return w.ages }

// Plates exposes the live plates.
func (w *World) Plates() []*Plate { return w.plates }

// Tick returns the number of steps taken since the last Reset.
func (w *World) Tick() int { return w.tick }

// Err returns the first error the driver swallowed, if any. The core never
// recovers internally; a non-nil value means the run is suspect.
func (w *World) Err() error { return w.err }

// PlateStats reports the live plate count and their mean scalar speed.
func (w *World) PlateStats() (int, float64) {
	if len(w.plates) == 0 {
		return 0, 0
	}
	total := 0.0
	for _, p := range w.plates {
		total += p.Velocity()
	}
	return len(w.plates), total / float64(len(w.plates))
}

// LandFraction reports the share of the surface at continental height.
func (w *World) LandFraction() float64 {
	if len(w.heights) == 0 {
		return 0
	}
	land := 0
	for _, h := range w.heights {
		if h >= ContBase {
			land++
		}
	}
	return float64(land) / float64(len(w.heights))
}

// Reset rebuilds the world from scratch using deterministic randomness.
func (w *World) Reset(seed int64) {
	if w.dim.W == 0 || w.dim.H == 0 {
		return
	}
	effective := seed
	if effective == 0 {
		effective = w.cfg.Seed
	}
	w.rng = rng.NewRNG(effective)
	w.tick = 0
	w.cycle = 0
	w.err = nil
	w.buildInitialTerrain()
	w.createPlates()
	w.compose()
	w.refreshDisplay()
}

// Step advances the simulation by one tick: compose, interact, move, erode.
func (w *World) Step() {
	if len(w.plates) == 0 {
		return
	}

	for _, p := range w.plates {
		p.ResetSegments()
	}

	w.compose()
	w.resolveCollisions()

	for _, p := range w.plates {
		p.Move()
	}

	w.tick++
	if ep := w.cfg.Params.ErosionPeriod; ep > 0 && w.tick%ep == 0 {
		for _, p := range w.plates {
			p.Erode(ContBase)
		}
	}

	w.maybeRestart()
	w.refreshDisplay()
}

func (w *World) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// compose rasterizes every plate onto the world surface. Where two plates
// overlap it settles the contact on the spot: continental crust folds and
// queues an impulse event, oceanic crust subducts under whatever it hit.
// Cells no plate covers anymore turn into fresh oceanic floor on the plate
// that held them last tick.
func (w *World) compose() {
	for i := range w.owner {
		w.owner[i] = -1
		w.heights[i] = 0
		w.ages[i] = 0
	}
	w.events = w.events[:0]
	if cap(w.deformed) < len(w.plates) {
		w.deformed = make([]float64, len(w.plates))
	}
	w.deformed = w.deformed[:len(w.plates)]
	for i := range w.deformed {
		w.deformed[i] = 0
	}

	for pi, p := range w.plates {
		hm, am := p.GetMap()
		hts := hm.Cells()
		ags := am.Cells()
		for y := 0; y < p.Height(); y++ {
			for x := 0; x < p.Width(); x++ {
				h := hts[y*p.Width()+x]
				if h <= 0 {
					continue
				}
				wx := w.dim.WrapX(p.Left() + x)
				wy := w.dim.WrapY(p.Top() + y)
				wc := wy*w.dim.W + wx

				prev := w.owner[wc]
				if prev < 0 {
					w.owner[wc] = pi
					w.heights[wc] = h
					w.ages[wc] = ags[y*p.Width()+x]
					continue
				}
				if prev == pi {
					continue
				}
				w.settleOverlap(pi, prev, wx, wy, wc, h)
			}
		}
	}

	// Divergent boundaries: the surface a plate drifted away from gets
	// new oceanic crust, which keeps belonging to that plate.
	for wc := range w.owner {
		if w.owner[wc] >= 0 {
			continue
		}
		prev := w.prevOwner[wc]
		if prev < 0 || prev >= len(w.plates) {
			continue
		}
		wy := wc / w.dim.W
		wx := wc - wy*w.dim.W
		if err := w.plates[prev].SetCrust(wx, wy, OceanicBase, w.tick); err != nil {
			w.fail(err)
			continue
		}
		w.owner[wc] = prev
		w.heights[wc] = OceanicBase
		w.ages[wc] = w.tick
	}

	copy(w.prevOwner, w.owner)
}

// settleOverlap handles one cell claimed by two plates.
func (w *World) settleOverlap(pi, prev, wx, wy, wc int, h float64) {
	p := w.plates[pi]
	o := w.plates[prev]
	hb := w.heights[wc]

	contA := h >= ContBase
	contB := hb >= ContBase

	if contA && contB {
		// Continent meets continent: the thicker stack stays on top
		// and takes a fold of the other's crust; the momentum exchange
		// is resolved later from the queued event.
		winner, loser := pi, prev
		wh, lh := h, hb
		if hb > h {
			winner, loser = prev, pi
			wh, lh = hb, h
		}
		wp := w.plates[winner]
		lp := w.plates[loser]
		fold := lh * w.cfg.Params.FoldingRatio
		lt := lp.GetCrustTimestamp(wx, wy)
		if err := wp.SetCrust(wx, wy, wh+fold, lt); err != nil {
			w.fail(err)
		}
		if err := lp.SetCrust(wx, wy, lh-fold, lt); err != nil {
			w.fail(err)
		}
		w.deformed[loser] += fold
		w.events = append(w.events, collisionEvent{a: winner, b: loser, wx: wx, wy: wy, crust: fold})

		w.owner[wc] = winner
		w.heights[wc] = wp.GetCrust(wx, wy)
		w.ages[wc] = wp.GetCrustTimestamp(wx, wy)
		return
	}

	// At least one side is oceanic and dives. Between two oceanic cells
	// the younger crust sinks, as it rides higher off the mantle.
	sub, ovr := pi, prev
	switch {
	case contA && !contB:
		sub, ovr = prev, pi
	case !contA && contB:
		sub, ovr = pi, prev
	default:
		if p.GetCrustTimestamp(wx, wy) < o.GetCrustTimestamp(wx, wy) {
			sub, ovr = prev, pi
		}
	}

	sp := w.plates[sub]
	op := w.plates[ovr]
	sh := sp.GetCrust(wx, wy)
	st := sp.GetCrustTimestamp(wx, wy)
	svx, svy := sp.Direction()
	op.AddCrustBySubduction(wx, wy, sh, st, svx*sp.Velocity(), svy*sp.Velocity())
	if err := sp.SetCrust(wx, wy, 0, st); err != nil {
		w.fail(err)
	}
	w.deformed[sub] += sh

	w.owner[wc] = ovr
	w.heights[wc] = op.GetCrust(wx, wy)
	w.ages[wc] = op.GetCrustTimestamp(wx, wy)
}

// resolveCollisions drains the event queue: impulse exchange first, then
// collision bookkeeping, then aggregation once a continent has taken enough
// hits, and finally friction from all the crust deformed this tick.
func (w *World) resolveCollisions() {
	for _, ev := range w.events {
		a := w.plates[ev.a]
		b := w.plates[ev.b]

		a.Collide(b, ev.wx, ev.wy, ev.crust)

		if _, err := a.AddCollision(ev.wx, ev.wy); err != nil {
			w.fail(err)
			continue
		}
		if _, err := b.AddCollision(ev.wx, ev.wy); err != nil {
			w.fail(err)
			continue
		}

		count, ratio, err := b.CollisionInfo(ev.wx, ev.wy)
		if err != nil {
			w.fail(err)
			continue
		}
		if count > w.cfg.Params.AggrOverlapAbs || ratio > w.cfg.Params.AggrOverlapRel {
			if _, err := b.AggregateCrust(a, ev.wx, ev.wy); err != nil {
				w.fail(err)
			}
		}
	}

	for i, p := range w.plates {
		if w.deformed[i] > 0 {
			p.ApplyFriction(w.deformed[i])
		}
	}
}

// maybeRestart ends the current tectonic cycle once the plates have ground
// to a near halt, re-partitioning the composed surface into a fresh set of
// plates. The surface itself carries over.
func (w *World) maybeRestart() {
	if w.cycle >= w.cfg.Params.CycleCount || len(w.plates) == 0 {
		return
	}
	total := 0.0
	for _, p := range w.plates {
		total += p.Velocity()
	}
	if total/float64(len(w.plates)) > w.cfg.Params.RestartSpeed {
		return
	}
	w.cycle++
	w.createPlates()
}

// Parameters publishes the current tunables.
func (w *World) Parameters() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "world",
			Params: []core.Parameter{
				{Key: "w", Label: "Width", Type: core.ParamTypeInt, Value: strconv.Itoa(w.dim.W)},
				{Key: "h", Label: "Height", Type: core.ParamTypeInt, Value: strconv.Itoa(w.dim.H)},
				{Key: "seed", Label: "Seed", Type: core.ParamTypeInt, Value: strconv.FormatInt(w.cfg.Seed, 10)},
			},
		},
		{
			Name: "tectonics",
			Params: []core.Parameter{
				{Key: "sea_level", Label: "Sea level", Type: core.ParamTypeFloat, Value: strconv.FormatFloat(w.cfg.Params.SeaLevel, 'f', -1, 64)},
				{Key: "plates", Label: "Plates", Type: core.ParamTypeInt, Value: strconv.Itoa(w.cfg.Params.PlateCount)},
				{Key: "erosion_period", Label: "Erosion period", Type: core.ParamTypeInt, Value: strconv.Itoa(w.cfg.Params.ErosionPeriod)},
				{Key: "folding_ratio", Label: "Folding ratio", Type: core.ParamTypeFloat, Value: strconv.FormatFloat(w.cfg.Params.FoldingRatio, 'f', -1, 64)},
				{Key: "aggr_overlap_abs", Label: "Aggregation count", Type: core.ParamTypeInt, Value: strconv.Itoa(w.cfg.Params.AggrOverlapAbs)},
				{Key: "aggr_overlap_rel", Label: "Aggregation ratio", Type: core.ParamTypeFloat, Value: strconv.FormatFloat(w.cfg.Params.AggrOverlapRel, 'f', -1, 64)},
				{Key: "cycles", Label: "Cycles", Type: core.ParamTypeInt, Value: strconv.Itoa(w.cfg.Params.CycleCount)},
			},
		},
	}}
}

func init() {
	core.Register("lithosphere", func(cfg map[string]string) core.Sim {
		return NewWithConfig(FromMap(cfg))
	})
}
