package session

import (
	"encoding/json"
	"log"

	game_constants "Sobremesa/constants/game"
	"Sobremesa/models/events"
	"Sobremesa/services/games/okey"
)

// OkeyAdapter replicates the tile-rummy state: the round's indicator, the
// local hand (kept sorted for display) and the visible discard piles.
type OkeyAdapter struct {
	session *Session

	Indicator    okey.Tile
	hasIndicator bool
	Hand         []okey.Tile
	Discards     map[string][]okey.Tile // player id -> discard pile
}

func NewOkeyAdapter() *OkeyAdapter {
	return &OkeyAdapter{Discards: make(map[string][]okey.Tile)}
}

func (a *OkeyAdapter) GameType() string { return game_constants.GAME_OKEY }

func (a *OkeyAdapter) Bind(s *Session) {
	a.session = s
	s.conn.On(events.EventIndicatorSet, a.handleIndicatorSet)
	s.conn.On(events.EventTileDrawn, a.handleTileDrawn)
	s.conn.On(events.EventTileDiscarded, a.handleTileDiscarded)
}

// IsWildcard classifies a tile for the current round, covering both the
// indicator-derived okey and the printed jokers.
func (a *OkeyAdapter) IsWildcard(t okey.Tile) bool {
	if !a.hasIndicator {
		return t.FakeJoker
	}
	return okey.IsWildcard(t, a.Indicator)
}

// DrawTile asks for the next tile, from the pile or the previous
// player's discard.
func (a *OkeyAdapter) DrawTile(fromPile bool) error {
	return a.session.SubmitMove(nil, "draw", fromPile)
}

// DiscardTile removes the tile from the hand optimistically (the drag
// lands immediately on screen) and rolls it back if the server rejects
// the discard.
func (a *OkeyAdapter) DiscardTile(tile okey.Tile) error {
	return a.session.SubmitMove(func() (revert func()) {
		index := a.removeFromHand(tile)
		if index < 0 {
			return func() {}
		}
		return func() {
			a.Hand = append(a.Hand, tile)
			okey.SortTiles(a.Hand)
			log.Printf("[OKEY] Discard rejected, tile %s back in hand", tile)
		}
	}, "discard", events.TilePayload{Color: tile.Color, Number: tile.Number, FakeJoker: tile.FakeJoker})
}

func (a *OkeyAdapter) removeFromHand(tile okey.Tile) int {
	for i, t := range a.Hand {
		if t == tile {
			a.Hand = append(a.Hand[:i], a.Hand[i+1:]...)
			return i
		}
	}
	return -1
}

func (a *OkeyAdapter) handleIndicatorSet(payload json.RawMessage) {
	var p events.IndicatorSetPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("[OKEY-ERROR] Malformed indicator_set, ignoring: %v", err)
		return
	}
	a.Indicator = okey.Tile{Color: p.Indicator.Color, Number: p.Indicator.Number}
	a.hasIndicator = true
	log.Printf("[OKEY] Indicator is %s, wildcard is %s", a.Indicator, okey.WildcardFor(a.Indicator))
}

func (a *OkeyAdapter) handleTileDrawn(payload json.RawMessage) {
	var p events.TileDrawnPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("[OKEY-ERROR] Malformed tile_drawn, ignoring: %v", err)
		return
	}
	// Opponents' draws arrive without the tile face
	if p.PlayerID == a.session.conn.PlayerID() && p.Tile != nil {
		a.Hand = append(a.Hand, okey.Tile{
			Color: p.Tile.Color, Number: p.Tile.Number, FakeJoker: p.Tile.FakeJoker,
		})
		okey.SortTiles(a.Hand)
	}
}

func (a *OkeyAdapter) handleTileDiscarded(payload json.RawMessage) {
	var p events.TileDiscardedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("[OKEY-ERROR] Malformed tile_discarded, ignoring: %v", err)
		return
	}
	tile := okey.Tile{Color: p.Tile.Color, Number: p.Tile.Number, FakeJoker: p.Tile.FakeJoker}
	a.Discards[p.PlayerID] = append(a.Discards[p.PlayerID], tile)
	if p.PlayerID == a.session.conn.PlayerID() {
		// Our optimistic removal is now confirmed
		a.session.confirmPending()
	}
}
