// Package okey holds the deterministic tile rules of the rummy game:
// wildcard (okey) classification from the round's indicator tile and the
// stable display ordering of a hand. Mirrored from the server.
package okey

import (
	"fmt"
	"sort"

	game_constants "Sobremesa/constants/game"
)

// Tile colors
const (
	Red = iota
	Yellow
	Blue
	Black
)

var colorNames = [...]string{"red", "yellow", "blue", "black"}

// Tile is one piece of the set. FakeJoker marks the two printed wildcard
// tiles, which are distinct from the indicator-derived wildcard.
type Tile struct {
	Color     int  `json:"color"`
	Number    int  `json:"number"`
	FakeJoker bool `json:"fake_joker,omitempty"`
}

func (t Tile) String() string {
	if t.FakeJoker {
		return "joker"
	}
	return fmt.Sprintf("%s-%d", colorNames[t.Color%len(colorNames)], t.Number)
}

// NextNumber wraps 13 back to 1, matching the circular number sequence
// the indicator rule uses.
func NextNumber(n int) int {
	if n >= game_constants.OKEY_MAX_NUMBER {
		return game_constants.OKEY_MIN_NUMBER
	}
	return n + 1
}

// WildcardFor derives the round's wildcard tile from the indicator: same
// color, next number.
func WildcardFor(indicator Tile) Tile {
	return Tile{Color: indicator.Color, Number: NextNumber(indicator.Number)}
}

// IsWildcard classifies a tile for the round defined by the indicator.
// Both cases count: the printed jokers and the indicator-derived tile.
func IsWildcard(t, indicator Tile) bool {
	if t.FakeJoker {
		return true
	}
	w := WildcardFor(indicator)
	return t.Color == w.Color && t.Number == w.Number
}

// SortTiles orders a hand for display: by color, then by number, with the
// printed jokers grouped at the end. The sort is stable so equal tiles
// (the set has two of each) keep their relative order.
func SortTiles(tiles []Tile) {
	sort.SliceStable(tiles, func(i, j int) bool {
		a, b := tiles[i], tiles[j]
		if a.FakeJoker != b.FakeJoker {
			return !a.FakeJoker
		}
		if a.Color != b.Color {
			return a.Color < b.Color
		}
		return a.Number < b.Number
	})
}

// CountWildcards returns how many tiles of the hand play as wildcards
// this round.
func CountWildcards(tiles []Tile, indicator Tile) int {
	n := 0
	for _, t := range tiles {
		if IsWildcard(t, indicator) {
			n++
		}
	}
	return n
}
