package okey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWildcardFromIndicator(t *testing.T) {
	indicator := Tile{Color: Blue, Number: 7}

	assert.True(t, IsWildcard(Tile{Color: Blue, Number: 8}, indicator))
	assert.False(t, IsWildcard(Tile{Color: Blue, Number: 7}, indicator), "the indicator itself is not the wildcard")
	assert.False(t, IsWildcard(Tile{Color: Red, Number: 8}, indicator), "wrong color")
	assert.False(t, IsWildcard(Tile{Color: Blue, Number: 9}, indicator), "wrong number")
}

func TestWildcardNumberWraps(t *testing.T) {
	indicator := Tile{Color: Black, Number: 13}

	assert.Equal(t, Tile{Color: Black, Number: 1}, WildcardFor(indicator))
	assert.True(t, IsWildcard(Tile{Color: Black, Number: 1}, indicator))
}

func TestPrintedJokerIsAlwaysWildcard(t *testing.T) {
	// The printed joker counts regardless of the indicator
	for _, indicator := range []Tile{
		{Color: Red, Number: 1},
		{Color: Yellow, Number: 13},
		{Color: Blue, Number: 6},
	} {
		assert.True(t, IsWildcard(Tile{FakeJoker: true}, indicator))
	}
}

func TestSortTiles(t *testing.T) {
	hand := []Tile{
		{Color: Black, Number: 2},
		{FakeJoker: true},
		{Color: Red, Number: 11},
		{Color: Red, Number: 3},
		{Color: Yellow, Number: 1},
		{Color: Red, Number: 3}, // duplicate tile, the set has two of each
	}

	SortTiles(hand)

	assert.Equal(t, []Tile{
		{Color: Red, Number: 3},
		{Color: Red, Number: 3},
		{Color: Red, Number: 11},
		{Color: Yellow, Number: 1},
		{Color: Black, Number: 2},
		{FakeJoker: true},
	}, hand)
}

func TestSortTilesDeterministic(t *testing.T) {
	a := []Tile{{Color: Blue, Number: 5}, {Color: Red, Number: 9}, {FakeJoker: true}}
	b := []Tile{{FakeJoker: true}, {Color: Red, Number: 9}, {Color: Blue, Number: 5}}

	SortTiles(a)
	SortTiles(b)
	assert.Equal(t, a, b)
}

func TestCountWildcards(t *testing.T) {
	indicator := Tile{Color: Yellow, Number: 4}
	hand := []Tile{
		{Color: Yellow, Number: 5},
		{Color: Yellow, Number: 5},
		{FakeJoker: true},
		{Color: Blue, Number: 5},
	}

	assert.Equal(t, 3, CountWildcards(hand, indicator))
}
