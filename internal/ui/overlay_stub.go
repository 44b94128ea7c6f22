//go:build !ebiten

package ui

import "lithos/internal/core"

// Overlay is a placeholder for the headless build.
type Overlay struct{}

// NewOverlay returns an inert overlay in the headless build.
func NewOverlay(core.Sim) *Overlay { return &Overlay{} }

// Update is a no-op placeholder.
func (o *Overlay) Update() {}

// Draw is a no-op placeholder to satisfy the interface shape.
func (o *Overlay) Draw(any) {}
