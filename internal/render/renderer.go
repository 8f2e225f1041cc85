// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"github.com/relabs-tech/artificial_horizon/internal/display"
	"github.com/relabs-tech/artificial_horizon/internal/mode"
	"github.com/relabs-tech/artificial_horizon/internal/orientation"
)

// Renderer owns both views and dispatches to the one for the active mode.
// It satisfies mode.Resetter.
type Renderer struct {
	Roll  RollView
	Pitch PitchView
}

// Render draws st in mode m. Views are not reset here: switching modes
// without calling Reset first draws over stale pixels.
func (r *Renderer) Render(s display.Surface, st orientation.State, m mode.Mode) {
	if m == mode.PitchOnly {
		r.Pitch.Draw(s, st.Pitch)
		return
	}
	r.Roll.Draw(s, st.Roll)
}

// Reset returns both views to undrawn.
func (r *Renderer) Reset() {
	r.Roll.Reset()
	r.Pitch.Reset()
}
