// Package drawing tracks the hint-reveal state of the guessing game. The
// mask is updated only by explicit server hint events, never inferred
// locally from partial guesses, so the client can never leak the answer.
package drawing

import (
	"errors"
	"strings"
)

const maskRune = '_'

var (
	ErrIndexOutOfRange = errors.New("hint index out of range")
	ErrLengthMismatch  = errors.New("revealed word length does not match the mask")
)

// HintState is the guessers' view of the hidden word: a fixed-length
// masked string with individually revealed letters.
type HintState struct {
	letters []rune
}

// NewHintState builds an all-masked state for a word of the given length.
func NewHintState(length int) *HintState {
	letters := make([]rune, length)
	for i := range letters {
		letters[i] = maskRune
	}
	return &HintState{letters: letters}
}

// Length of the hidden word.
func (h *HintState) Length() int {
	return len(h.letters)
}

// ApplyHint reveals one letter at the position the server named.
// Applying the same hint twice is harmless.
func (h *HintState) ApplyHint(index int, letter rune) error {
	if index < 0 || index >= len(h.letters) {
		return ErrIndexOutOfRange
	}
	h.letters[index] = letter
	return nil
}

// RevealAll replaces the mask with the full word, used when the round
// ends and the server discloses the answer.
func (h *HintState) RevealAll(word string) error {
	runes := []rune(word)
	if len(runes) != len(h.letters) {
		return ErrLengthMismatch
	}
	copy(h.letters, runes)
	return nil
}

// Masked renders the current mask for display ("_ a _ _ e" style is left
// to the UI; this is the raw string).
func (h *HintState) Masked() string {
	return string(h.letters)
}

// RevealedCount returns how many positions are currently visible.
func (h *HintState) RevealedCount() int {
	n := 0
	for _, r := range h.letters {
		if r != maskRune {
			n++
		}
	}
	return n
}

// FullyRevealed reports whether no masked positions remain.
func (h *HintState) FullyRevealed() bool {
	return !strings.ContainsRune(string(h.letters), maskRune)
}
