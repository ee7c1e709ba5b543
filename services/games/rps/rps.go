// Package rps is the two-choice outcome rule shared by the
// human-vs-human renderer and the local bot referee. Keeping one
// evaluator for both paths is what guarantees they can never disagree.
package rps

import (
	"fmt"
	"math/rand"
)

// Choice is one element of the 3-cycle. Each choice beats exactly one
// other and loses to exactly one other.
type Choice int

const (
	Rock Choice = iota
	Paper
	Scissors
)

var choiceNames = [...]string{"rock", "paper", "scissors"}

func (c Choice) String() string {
	return choiceNames[int(c)%len(choiceNames)]
}

// ParseChoice maps the wire representation back to a Choice.
func ParseChoice(s string) (Choice, error) {
	for i, name := range choiceNames {
		if s == name {
			return Choice(i), nil
		}
	}
	return 0, fmt.Errorf("unknown choice %q", s)
}

// Result of a two-choice round.
type Result int

const (
	Draw Result = iota
	FirstWins
	SecondWins
)

// Outcome determines the round result by cyclic adjacency: paper beats
// rock, scissors beat paper, rock beats scissors.
func Outcome(a, b Choice) Result {
	switch (int(a) - int(b) + 3) % 3 {
	case 0:
		return Draw
	case 1:
		return FirstWins
	default:
		return SecondWins
	}
}

// BotChooser picks the bot opponent's choices. The generator is seeded
// explicitly so bot games are reproducible in tests.
type BotChooser struct {
	rng *rand.Rand
}

func NewBotChooser(seed int64) *BotChooser {
	return &BotChooser{rng: rand.New(rand.NewSource(seed))}
}

func (b *BotChooser) Choose() Choice {
	return Choice(b.rng.Intn(3))
}
