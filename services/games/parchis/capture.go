package parchis

// Board holds the progress of every piece, indexed by color then piece.
// It is a plain value so the session can copy it for optimistic moves and
// throw the copy away on rejection.
type Board struct {
	Pieces [][]int // [color][piece] -> progress
}

// NewBoard creates a board with every piece at home for the given number
// of active colors.
func NewBoard(colors, piecesPerColor int) *Board {
	pieces := make([][]int, colors)
	for c := range pieces {
		pieces[c] = make([]int, piecesPerColor)
		for i := range pieces[c] {
			pieces[c][i] = AtHome
		}
	}
	return &Board{Pieces: pieces}
}

// Capture identifies the opposing piece occupying a shared-track cell.
type Capture struct {
	Color int
	Piece int
}

// FindCapture returns the opposing piece captured by moverColor landing
// at newProgress, if any. Capture requires an exact landing on a
// non-safe shared-track cell occupied by another color.
func (b *Board) FindCapture(moverColor, newProgress int) (Capture, bool) {
	cell, onTrack := AbsoluteCell(moverColor, newProgress)
	if !onTrack || IsSafe(cell) {
		return Capture{}, false
	}
	for color, pieces := range b.Pieces {
		if color == moverColor {
			continue
		}
		for piece, progress := range pieces {
			occupied, ok := AbsoluteCell(color, progress)
			if ok && occupied == cell {
				return Capture{Color: color, Piece: piece}, true
			}
		}
	}
	return Capture{}, false
}

// ApplyMove advances a piece and resolves any capture, sending the victim
// back to its holding area. It returns the capture (if one occurred) and
// whether the moved piece just finished.
func (b *Board) ApplyMove(color, piece, dice int) (Capture, bool, error) {
	next, err := Advance(b.Pieces[color][piece], dice)
	if err != nil {
		return Capture{}, false, err
	}
	captured, hasCapture := b.FindCapture(color, next)
	b.Pieces[color][piece] = next
	if hasCapture {
		b.Pieces[captured.Color][captured.Piece] = AtHome
	}
	return captured, next == FinishedProgress, nil
}

// AllFinished reports whether every piece of the color completed the race.
func (b *Board) AllFinished(color int) bool {
	for _, progress := range b.Pieces[color] {
		if progress != FinishedProgress {
			return false
		}
	}
	return true
}

// HasLegalMove reports whether the color can move any piece with the
// given dice value. Used to render the "no moves, turn passes" state the
// server will confirm.
func (b *Board) HasLegalMove(color, dice int) bool {
	for piece := range b.Pieces[color] {
		if _, err := Advance(b.Pieces[color][piece], dice); err == nil {
			return true
		}
	}
	return false
}
