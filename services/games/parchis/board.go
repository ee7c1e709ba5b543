// Package parchis holds the deterministic rules of the dice-race board
// game. These computations are mirrored from the authoritative server and
// must stay bit-identical to it: they are used to render server results
// and to pre-validate moves before submitting them.
package parchis

import (
	"errors"

	game_constants "Sobremesa/constants/game"
)

// Piece progress encoding, relative to the piece's own color:
//
//	AtHome                          waiting in the holding area
//	0 .. TRACK_LENGTH-1             on the shared circular track
//	TRACK_LENGTH .. +HOME_STRETCH-1 inside the private home stretch
//	FinishedProgress                removed from play
const AtHome = -1

const (
	TrackLength      = game_constants.PARCHIS_TRACK_LENGTH
	HomeStretch      = game_constants.PARCHIS_HOME_STRETCH
	FinishedProgress = TrackLength + HomeStretch
)

// Safe cells on the shared track (absolute positions): entry cells and
// star cells where capture can never occur.
var safeCells = map[int]bool{
	0: true, 8: true, 13: true, 21: true,
	26: true, 34: true, 39: true, 47: true,
}

var (
	ErrNeedSix      = errors.New("a six is required to leave home")
	ErrOvershoot    = errors.New("move overshoots the home stretch")
	ErrAlreadyHome  = errors.New("piece already finished")
	ErrBadDiceValue = errors.New("dice value out of range")
)

// EntryOffset returns the absolute track cell where the given color
// enters the shared track.
func EntryOffset(color int) int {
	return (color % game_constants.PARCHIS_MAX_COLORS) * game_constants.PARCHIS_ENTRY_SPACING
}

// IsSafe reports whether the absolute track cell is a safe cell.
func IsSafe(cell int) bool {
	return safeCells[cell]
}

// OnSharedTrack reports whether a progress value places the piece on the
// shared circular track (where it can capture and be captured).
func OnSharedTrack(progress int) bool {
	return progress >= 0 && progress < TrackLength
}

// AbsoluteCell maps a color-relative progress to the absolute cell on the
// shared track. The second return is false for pieces at home, in the
// home stretch or finished: those occupy no shared cell.
func AbsoluteCell(color, progress int) (int, bool) {
	if !OnSharedTrack(progress) {
		return 0, false
	}
	return (EntryOffset(color) + progress) % TrackLength, true
}

// Advance computes the new progress for a piece given a dice value.
// Leaving home requires an exact six and lands the piece on its entry
// offset; finishing the home stretch requires landing exactly on
// FinishedProgress.
func Advance(progress, dice int) (int, error) {
	if dice < 1 || dice > 6 {
		return progress, ErrBadDiceValue
	}
	if progress == FinishedProgress {
		return progress, ErrAlreadyHome
	}
	if progress == AtHome {
		if dice != 6 {
			return progress, ErrNeedSix
		}
		return 0, nil
	}
	next := progress + dice
	if next > FinishedProgress {
		return progress, ErrOvershoot
	}
	return next, nil
}
