//go:build ebiten

package ui

import (
	"fmt"

	"lithos/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type driftStats interface {
	Tick() int
	PlateStats() (int, float64)
}

// Overlay draws a small status readout on top of the simulation view.
type Overlay struct {
	sim     core.Sim
	visible bool
}

// NewOverlay constructs an overlay for the provided simulation.
func NewOverlay(sim core.Sim) *Overlay {
	return &Overlay{sim: sim, visible: true}
}

// Update handles the overlay toggle key.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		o.visible = !o.visible
	}
}

// Draw renders the status line when the overlay is visible.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if !o.visible {
		return
	}
	stats, ok := o.sim.(driftStats)
	if !ok {
		return
	}
	plates, speed := stats.PlateStats()
	msg := fmt.Sprintf("tick %d  plates %d  mean speed %.3f", stats.Tick(), plates, speed)
	ebitenutil.DebugPrintAt(screen, msg, 4, 4)
}
