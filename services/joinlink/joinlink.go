// Package joinlink builds and parses the shareable room URLs shown at
// the table, plus their QR rendering for the second player to scan.
package joinlink

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// JoinLink identifies one joinable room at one venue.
type JoinLink struct {
	RoomCode  string
	VenueCode string
}

// Build composes the join URL the host shares.
func Build(baseURL, roomCode, venueCode string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid join base url: %w", err)
	}
	q := u.Query()
	q.Set("room", roomCode)
	if venueCode != "" {
		q.Set("venue", venueCode)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Parse extracts the room and venue from a scanned join URL.
func Parse(link string) (JoinLink, error) {
	u, err := url.Parse(link)
	if err != nil {
		return JoinLink{}, fmt.Errorf("invalid join link: %w", err)
	}
	room := u.Query().Get("room")
	if room == "" {
		return JoinLink{}, fmt.Errorf("join link carries no room code")
	}
	return JoinLink{RoomCode: room, VenueCode: u.Query().Get("venue")}, nil
}

// QRPNG renders the join URL as a PNG for on-screen display.
func QRPNG(link string) ([]byte, error) {
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encoding join QR: %w", err)
	}
	return png, nil
}
