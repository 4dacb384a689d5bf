// Package swipe turns card gestures into decisions.
package swipe

import (
	"math"

	"github.com/KevDevLee/namens-tinder/internal/config"
	"github.com/KevDevLee/namens-tinder/internal/domain"
)

// Thresholds are in px for offsets and px/s for velocities.
type Thresholds struct {
	Horizontal float64
	Vertical   float64
	Band       float64
	Flick      float64
	Highlight  float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Horizontal: 120,
		Vertical:   140,
		Band:       80,
		Flick:      1000,
		Highlight:  40,
	}
}

// ThresholdsFromConfig reads SWIPE_*; unset or non-positive values keep the default.
func ThresholdsFromConfig(cfg *config.Config) Thresholds {
	t := DefaultThresholds()
	pick := func(dst *float64, v float64) {
		if v > 0 {
			*dst = v
		}
	}
	pick(&t.Horizontal, cfg.Swipe.Horizontal)
	pick(&t.Vertical, cfg.Swipe.Vertical)
	pick(&t.Band, cfg.Swipe.Band)
	pick(&t.Flick, cfg.Swipe.Flick)
	pick(&t.Highlight, cfg.Swipe.Highlight)
	return t
}

// Gesture is the card offset and release velocity at drag end.
// Screen coordinates: negative DY is up.
type Gesture struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// Classify maps a finished drag to a decision. ok is false when the card
// should snap back.
func Classify(g Gesture, t Thresholds) (d domain.Decision, ok bool) {
	inBand := math.Abs(g.DY) < t.Band

	switch {
	case (g.DX > t.Horizontal && inBand) || g.VX > t.Flick:
		return domain.Like, true
	case (g.DX < -t.Horizontal && inBand) || g.VX < -t.Flick:
		return domain.Nope, true
	case g.DY < -t.Vertical || g.VY < -t.Flick:
		return domain.Maybe, true
	}
	return "", false
}

// Pending is the tint shown while dragging. It never commits anything.
func Pending(dx, dy float64, t Thresholds) domain.Decision {
	switch {
	case dx > t.Highlight:
		return domain.Like
	case dx < -t.Highlight:
		return domain.Nope
	case dy < -t.Highlight:
		return domain.Maybe
	}
	return ""
}

// Direction is where a committed card leaves the screen.
type Direction string

const (
	Right Direction = "right"
	Left  Direction = "left"
	Up    Direction = "up"
)

func ExitDirection(d domain.Decision) Direction {
	switch d {
	case domain.Like:
		return Right
	case domain.Nope:
		return Left
	}
	return Up
}
