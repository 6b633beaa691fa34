package poker

import (
	"fmt"
	"strings"
)

// ValidationResult aggregates every problem found in a set of card codes.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// ValidationError reports all card problems at once.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, "; ")
}

// ValidateCards checks hole and board card codes for the variant and returns
// every problem found rather than stopping at the first.
func ValidateCards(v Variant, hole, board []string) ValidationResult {
	var errs []string

	if want := v.HoleCards(); len(hole) != want {
		errs = append(errs, fmt.Sprintf("Expected %d hole cards for %s, got %d", want, v.Label(), len(hole)))
	}
	switch len(board) {
	case 0, 3, 4, 5:
	default:
		errs = append(errs, fmt.Sprintf("Board must have 0, 3, 4, or 5 cards, got %d", len(board)))
	}

	seen := make(map[string]struct{}, len(hole)+len(board))
	for _, code := range append(append([]string(nil), hole...), board...) {
		if msg := validateCode(v, code); msg != "" {
			errs = append(errs, msg)
			continue
		}
		if _, dup := seen[code]; dup {
			errs = append(errs, "Duplicate card detected: "+code)
			continue
		}
		seen[code] = struct{}{}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func validateCode(v Variant, code string) string {
	if len(code) != 2 {
		return fmt.Sprintf("Invalid card format: %q", code)
	}
	rank, err := ParseRank(code[0])
	if err != nil {
		return fmt.Sprintf("Invalid rank %q in card %q", string(code[0]), code)
	}
	if !v.ValidRank(rank) {
		return fmt.Sprintf("Rank %q is not used in %s (card %q)", string(code[0]), v.Label(), code)
	}
	if _, err := ParseSuit(code[1]); err != nil {
		return fmt.Sprintf("Invalid suit %q in card %q", string(code[1]), code)
	}
	return ""
}

// ParseHoleAndBoard validates and parses hole and board codes in one step.
// Validation failures are returned as a *ValidationError.
func ParseHoleAndBoard(v Variant, hole, board []string) ([]Card, []Card, error) {
	if err := ValidateCards(v, hole, board).Err(); err != nil {
		return nil, nil, err
	}
	h, err := ParseCards(hole)
	if err != nil {
		return nil, nil, err
	}
	b, err := ParseCards(board)
	if err != nil {
		return nil, nil, err
	}
	return h, b, nil
}
