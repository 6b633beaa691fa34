// Package vision turns photographs of cards into validated card codes with
// the help of an external image classifier.
package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/pokeradvisor/poker"
)

// Confidence is the reader's certainty about a set of cards.
type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	Low    Confidence = "low"
)

// ParseConfidence maps unknown values to Low.
func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case High:
		return High
	case Medium:
		return Medium
	default:
		return Low
	}
}

// Kind says which cards a photograph shows.
type Kind string

const (
	KindHand  Kind = "hand"
	KindBoard Kind = "board"
)

// Reading is the raw answer for one photograph. Cards are untrusted.
type Reading struct {
	Cards      []string
	Confidence Confidence
	Notes      string
}

// Reader identifies the cards in a single photograph.
type Reader interface {
	Read(ctx context.Context, img Image, kind Kind, holeCount int) (Reading, error)
}

// Request holds the base64 or data URL encoded photographs.
type Request struct {
	HandImage  string        `json:"handImage"`
	BoardImage string        `json:"boardImage,omitempty"`
	Variant    poker.Variant `json:"variant"`
}

// Recognition is the validated outcome. When Ambiguous is set Message says
// what the user should do next.
type Recognition struct {
	HoleCards  []string   `json:"holeCards"`
	BoardCards []string   `json:"boardCards"`
	Confidence Confidence `json:"confidence"`
	Ambiguous  bool       `json:"ambiguous"`
	Message    string     `json:"message,omitempty"`
}

const (
	unclearHandMessage  = "Could not clearly identify your hole cards. Please retake the photo with both cards fully visible and well-lit, or enter them manually."
	unclearBoardMessage = "Could not clearly identify the board cards. Please retake the photo with all board cards fully visible, or enter them manually."
	failedMessage       = "Card recognition is unavailable right now. Please try again or enter your cards manually."
)

// Recognizer validates what a Reader sees.
type Recognizer struct {
	reader Reader
	logger *log.Logger
}

// NewRecognizer creates a Recognizer backed by reader.
func NewRecognizer(reader Reader, logger *log.Logger) *Recognizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Recognizer{reader: reader, logger: logger.WithPrefix("vision")}
}

// Recognize reads the hole cards and, when a board photo is present, the
// board. Unclear photos give an Ambiguous recognition rather than an error.
// Errors are ErrMissingImage, ErrInvalidImage or a *RecognitionError.
func (r *Recognizer) Recognize(ctx context.Context, req Request) (*Recognition, error) {
	if strings.TrimSpace(req.HandImage) == "" {
		if strings.TrimSpace(req.BoardImage) == "" {
			return nil, ErrMissingImage
		}
		return nil, fmt.Errorf("%w: a photo of your hole cards is required", ErrMissingImage)
	}
	hand, err := DecodeImage(req.HandImage)
	if err != nil {
		return nil, fmt.Errorf("hand image: %w", err)
	}
	var board *Image
	if strings.TrimSpace(req.BoardImage) != "" {
		img, err := DecodeImage(req.BoardImage)
		if err != nil {
			return nil, fmt.Errorf("board image: %w", err)
		}
		board = &img
	}

	v := req.Variant
	holeReading, err := r.read(ctx, hand, KindHand, v)
	if err != nil {
		return nil, err
	}
	if len(holeReading.Cards) == 0 || holeReading.Confidence == Low {
		return ambiguous(nil, nil, notesOr(holeReading.Notes, unclearHandMessage)), nil
	}
	if board == nil {
		return r.finish(v, holeReading.Cards, nil, holeReading.Confidence), nil
	}

	boardReading, err := r.read(ctx, *board, KindBoard, v)
	if err != nil {
		var rerr *RecognitionError
		if errors.As(err, &rerr) {
			rerr.Partial = ambiguous(holeReading.Cards, nil, rerr.Message)
		}
		return nil, err
	}
	if len(boardReading.Cards) == 0 || boardReading.Confidence == Low {
		return ambiguous(holeReading.Cards, nil, notesOr(boardReading.Notes, unclearBoardMessage)), nil
	}

	if dups := duplicates(holeReading.Cards, boardReading.Cards); len(dups) > 0 {
		msg := fmt.Sprintf("Duplicate card(s) detected: %s. Please check your photos, the same card cannot appear in both your hand and the board.",
			strings.Join(dups, ", "))
		return ambiguous(holeReading.Cards, boardReading.Cards, msg), nil
	}

	conf := Medium
	if holeReading.Confidence == High && boardReading.Confidence == High {
		conf = High
	}
	return r.finish(v, holeReading.Cards, boardReading.Cards, conf), nil
}

func (r *Recognizer) read(ctx context.Context, img Image, kind Kind, v poker.Variant) (Reading, error) {
	reading, err := r.reader.Read(ctx, img, kind, v.HoleCards())
	if err != nil {
		if ctx.Err() != nil {
			return Reading{}, ctx.Err()
		}
		r.logger.Warn("Card reader failed", "kind", kind, "error", err)
		return Reading{}, &RecognitionError{Message: failedMessage, Err: err}
	}

	cards := reading.Cards[:0:0]
	for _, code := range reading.Cards {
		code = strings.TrimSpace(code)
		if c, err := poker.ParseCard(code); err == nil && v.ValidRank(c.Rank()) {
			cards = append(cards, code)
		} else {
			r.logger.Debug("Dropping unrecognized card code", "kind", kind, "code", code)
		}
	}
	reading.Cards = cards
	return reading, nil
}

// finish runs the same validation as manual entry, so a reader that sees
// three hole cards is reported, not trusted.
func (r *Recognizer) finish(v poker.Variant, hole, board []string, conf Confidence) *Recognition {
	if res := poker.ValidateCards(v, hole, board); !res.Valid {
		msg := strings.Join(res.Errors, "; ") + ". Please retake the photo or enter your cards manually."
		return ambiguous(hole, board, msg)
	}
	return &Recognition{
		HoleCards:  hole,
		BoardCards: nonNil(board),
		Confidence: conf,
	}
}

func ambiguous(hole, board []string, msg string) *Recognition {
	return &Recognition{
		HoleCards:  nonNil(hole),
		BoardCards: nonNil(board),
		Confidence: Low,
		Ambiguous:  true,
		Message:    msg,
	}
}

func duplicates(hole, board []string) []string {
	seen := make(map[string]bool, len(hole)+len(board))
	var dups []string
	for _, c := range append(append([]string(nil), hole...), board...) {
		if seen[c] {
			dups = append(dups, c)
		}
		seen[c] = true
	}
	return dups
}

func notesOr(notes, fallback string) string {
	if strings.TrimSpace(notes) != "" {
		return notes
	}
	return fallback
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
