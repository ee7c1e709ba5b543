package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// Room code alphabet without 0/O/1/I so codes survive being read aloud
// at a table or typed from a printed QR card.
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RoomCode generates a short human-shareable room code.
func RoomCode(length int) string {
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomCodeAlphabet))))
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			panic(fmt.Sprintf("room code generation failed: %v", err))
		}
		code[i] = roomCodeAlphabet[n.Int64()]
	}
	return string(code)
}

// PlayerID generates the per-session player id. It is regenerated for
// every fresh connection and deliberately NOT a persistent account id.
func PlayerID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("player id generation failed: %v", err))
	}
	return hex.EncodeToString(buf)
}

// GuestName builds a fallback display name for users without a profile.
func GuestName() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		panic(fmt.Sprintf("guest name generation failed: %v", err))
	}
	return fmt.Sprintf("Invitado-%04d", n.Int64())
}
