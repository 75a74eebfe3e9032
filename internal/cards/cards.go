// Package cards holds the suit lookup used when rendering cards.
package cards

import "strings"

// Color is the print color of a suit.
type Color string

const (
	Red   Color = "red"
	Black Color = "black"
	Gray  Color = "gray"
)

// Suit describes one of the four suits.
type Suit struct {
	Code   string
	Name   string
	Symbol string
	Color  Color
}

var suits = map[string]Suit{
	"H": {Code: "H", Name: "HEARTS", Symbol: "♥", Color: Red},
	"D": {Code: "D", Name: "DIAMONDS", Symbol: "♦", Color: Red},
	"C": {Code: "C", Name: "CLUBS", Symbol: "♣", Color: Black},
	"S": {Code: "S", Name: "SPADES", Symbol: "♠", Color: Black},
}

// LookupSuit resolves a suit code. Full names (HEARTS, ...) are accepted too.
func LookupSuit(code string) (Suit, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if s, ok := suits[code]; ok {
		return s, true
	}
	for _, s := range suits {
		if s.Name == code {
			return s, true
		}
	}
	return Suit{}, false
}

// ColorOf returns the suit color, or Gray for unknown codes.
func ColorOf(code string) Color {
	if s, ok := LookupSuit(code); ok {
		return s.Color
	}
	return Gray
}

// Display returns the server's display name when present, otherwise rank
// followed by the suit symbol.
func Display(rank, suit, displayName string) string {
	if displayName != "" {
		return displayName
	}
	if rank == "" && suit == "" {
		return "??"
	}
	if s, ok := LookupSuit(suit); ok {
		return rank + s.Symbol
	}
	return rank
}
