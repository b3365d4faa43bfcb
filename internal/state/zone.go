// Package state defines the entity/zone state model (spec §3/§4.1):
// CardInstance, Zone, Player, and GameState, plus invariants E1-E5 and Z.
// It generalizes the teacher's state.go/types.go from Yu-Gi-Oh zones and
// ATK/DEF position to MTG zones and tapped/untapped status.
package state

import "github.com/arcanelabs/duelcore/internal/ids"

// Zone is the closed set of places a card can be (spec invariant Z: every
// card is in exactly one zone at all times).
type Zone int

const (
	ZoneLibrary Zone = iota
	ZoneHand
	ZoneBattlefield
	ZoneStack
	ZoneGraveyard
	ZoneExile
)

func (z Zone) String() string {
	switch z {
	case ZoneLibrary:
		return "Library"
	case ZoneHand:
		return "Hand"
	case ZoneBattlefield:
		return "Battlefield"
	case ZoneStack:
		return "Stack"
	case ZoneGraveyard:
		return "Graveyard"
	case ZoneExile:
		return "Exile"
	default:
		return "Unknown"
	}
}

// IsPublic reports whether the zone's contents are visible to both players,
// used by view-building to decide what a Controller is shown.
func (z Zone) IsPublic() bool {
	switch z {
	case ZoneHand, ZoneLibrary:
		return false
	default:
		return true
	}
}
