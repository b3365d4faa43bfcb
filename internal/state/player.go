package state

import (
	"github.com/arcanelabs/duelcore/internal/ids"
	"github.com/arcanelabs/duelcore/internal/mana"
)

const (
	StartingLife    = 20
	InitialHandSize = 7
	MaxHandSize     = 7
)

// Player holds one player's life total, mana pool, and zone contents other
// than the shared Battlefield/Stack (which live on GameState since both
// players' permanents/spells coexist there). Direct analog of the
// teacher's Player struct, trading HP for Life and Scrapheap/Purged for
// Graveyard/Exile.
type Player struct {
	Id   ids.PlayerId
	Life int

	Library   []ids.CardId // index 0 is the top of the library
	Hand      []ids.CardId
	Graveyard []ids.CardId
	Exile     []ids.CardId

	LandsPlayedThisTurn int
	ManaPool            mana.Pool
}

// DeckCount returns the number of cards remaining in the library.
func (p *Player) DeckCount() int { return len(p.Library) }

// HandCount returns the number of cards in hand.
func (p *Player) HandCount() int { return len(p.Hand) }
