package models

import (
	"fmt"

	"gorm.io/gorm"

	"yard-tracker/internal/positioning"
)

// Anchor is a surveyed router or beacon stored in the anchor registry.
type Anchor struct {
	gorm.Model
	AnchorID        int      `gorm:"uniqueIndex;not null" json:"anchor_id"`
	Name            string   `json:"name"`
	X               float64  `gorm:"not null" json:"x"`
	Y               float64  `gorm:"not null" json:"y"`
	ReferenceSignal *float64 `json:"reference_signal,omitempty"`
}

func (a *Anchor) Validate() error {
	if a.AnchorID < 0 {
		return fmt.Errorf("anchor_id must not be negative, got %d", a.AnchorID)
	}
	return nil
}

func (a *Anchor) ToPositioning() positioning.Anchor {
	anchor := positioning.Anchor{
		ID:       a.AnchorID,
		Position: positioning.Point{X: a.X, Y: a.Y},
	}
	if a.ReferenceSignal != nil {
		ref := *a.ReferenceSignal
		anchor.ReferenceSignal = &ref
	}
	return anchor
}

func AnchorsToPositioning(rows []*Anchor) []positioning.Anchor {
	anchors := make([]positioning.Anchor, 0, len(rows))
	for _, row := range rows {
		anchors = append(anchors, row.ToPositioning())
	}
	return anchors
}

// AnchorFromPositioning builds a registry row for a surveyed anchor.
func AnchorFromPositioning(anchor positioning.Anchor) *Anchor {
	row := &Anchor{
		AnchorID: anchor.ID,
		Name:     fmt.Sprintf("anchor-%d", anchor.ID),
		X:        anchor.Position.X,
		Y:        anchor.Position.Y,
	}
	if anchor.ReferenceSignal != nil {
		ref := *anchor.ReferenceSignal
		row.ReferenceSignal = &ref
	}
	return row
}
