package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/pokeradvisor/poker"
)

// Command is one parsed line of input.
type Command struct {
	Name string
	Args []string
}

// commandAliases maps short forms to command names.
var commandAliases = map[string]string{
	"":        "analyze",
	"a":       "analyze",
	"analyze": "analyze",
	"h":       "hand",
	"hand":    "hand",
	"b":       "board",
	"board":   "board",
	"v":       "variant",
	"variant": "variant",
	"pot":     "pot",
	"call":    "call",
	"gto":     "gto",
	"clear":   "clear",
	"reset":   "clear",
	"help":    "help",
	"?":       "help",
	"q":       "quit",
	"quit":    "quit",
	"exit":    "quit",
}

var helpLines = []string{
	"hand AhKd        set hole cards (h)",
	"board Kc7d2s     set the board, empty to clear (b)",
	"variant omaha    texasHoldem, omaha, omahaHiLo or shortDeck (v)",
	"pot 100 25       pot size and amount to call, empty to clear",
	"call 25          amount to call",
	"gto              toggle GTO explanations",
	"analyze          run the analysis, or just press Enter (a)",
	"AhKd Kc7d2s      set hand and board, then analyze",
	"clear            forget the hand and the log",
	"quit             leave (q)",
}

// ErrUnknownCommand is returned for input that is neither a command nor cards.
var ErrUnknownCommand = errors.New("unknown command")

// ParseCommand splits a line into a command. A line starting with cards is
// shorthand for setting the hand (and board) and analyzing.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{Name: "analyze"}, nil
	}

	word := strings.ToLower(fields[0])
	if name, ok := commandAliases[word]; ok {
		return Command{Name: name, Args: fields[1:]}, nil
	}

	if _, err := poker.ParseCardString(fields[0]); err == nil {
		return Command{Name: "quick", Args: fields}, nil
	}
	return Command{}, fmt.Errorf("%w %q, type 'help'", ErrUnknownCommand, fields[0])
}

// SplitCards cuts concatenated card codes into two-character codes without
// validating them, so the analyzer can report every bad card at once.
func SplitCards(s string) ([]string, error) {
	s = strings.NewReplacer(" ", "", ",", "").Replace(s)
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%q has an odd number of characters", s)
	}
	codes := make([]string, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		codes = append(codes, s[i:i+2])
	}
	return codes, nil
}

func parseAmount(field, s string) (*float64, error) {
	v, err := strconv.ParseFloat(strings.TrimPrefix(s, "$"), 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("%s must be a non-negative number, got %q", field, s)
	}
	return &v, nil
}
