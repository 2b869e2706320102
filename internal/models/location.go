package models

import (
	"fmt"
	"strings"
)

// LocationKind identifies which resource a task, paint, or flooring record
// is attached to.
type LocationKind string

const (
	LocationHome LocationKind = "home"
	LocationRoom LocationKind = "room"
	LocationItem LocationKind = "item"
)

// Location is a tagged attachment target. It replaces scattered
// which-of-homeID/roomID/itemID null checks: the boundary validates once
// and everything downstream switches on Kind.
type Location struct {
	Kind LocationKind
	ID   string
}

// NewLocation builds a Location from at most one of the three identifiers.
// Exactly one must be set.
func NewLocation(homeID, roomID, itemID string) (Location, error) {
	homeID = strings.TrimSpace(homeID)
	roomID = strings.TrimSpace(roomID)
	itemID = strings.TrimSpace(itemID)

	set := 0
	loc := Location{}
	if homeID != "" {
		set++
		loc = Location{Kind: LocationHome, ID: homeID}
	}
	if roomID != "" {
		set++
		loc = Location{Kind: LocationRoom, ID: roomID}
	}
	if itemID != "" {
		set++
		loc = Location{Kind: LocationItem, ID: itemID}
	}

	if set != 1 {
		return Location{}, fmt.Errorf("location: exactly one of home, room, or item must be set (got %d)", set)
	}
	return loc, nil
}

// Valid reports whether the location carries a kind and an identifier.
func (l Location) Valid() bool {
	switch l.Kind {
	case LocationHome, LocationRoom, LocationItem:
		return strings.TrimSpace(l.ID) != ""
	default:
		return false
	}
}
