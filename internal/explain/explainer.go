// Package explain asks an external text service to elaborate on an analysis.
// The template explanation computed by the analyzer is always the fallback.
package explain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/pokeradvisor/internal/analyzer"
	"github.com/lox/pokeradvisor/poker"
)

// ErrEmptyExplanation is returned when the service answers with no text.
var ErrEmptyExplanation = errors.New("explanation service returned no text")

// Out is one draw category as the explainer sees it.
type Out struct {
	Type  string  `json:"type"`
	Count float64 `json:"count"`
}

// State is the game snapshot sent for explanation. Template holds the
// analyzer's own explanation.
type State struct {
	Variant           poker.Variant `json:"variant"`
	Street            poker.Street  `json:"street"`
	HoleCards         []string      `json:"holeCards"`
	BoardCards        []string      `json:"boardCards"`
	HandName          string        `json:"handName,omitempty"`
	Equity            *float64      `json:"equity,omitempty"`
	PotOdds           *float64      `json:"potOdds,omitempty"`
	Outs              []Out         `json:"outs,omitempty"`
	RecommendedAction string        `json:"recommendedAction,omitempty"`
	Template          string        `json:"template,omitempty"`
}

// FromResult builds the state for a finished analysis.
func FromResult(res *analyzer.Result) State {
	eq := res.Equity
	s := State{
		Variant:           res.Variant,
		Street:            res.Street,
		HoleCards:         poker.CardStrings(res.HoleCards),
		BoardCards:        poker.CardStrings(res.BoardCards),
		HandName:          res.HandName,
		Equity:            &eq,
		PotOdds:           res.PotOdds,
		RecommendedAction: res.RecommendedAction.String(),
		Template:          res.Explanation,
	}
	for _, o := range res.Outs {
		s.Outs = append(s.Outs, Out{Type: o.Type.Tag(), Count: o.Count})
	}
	return s
}

// Prompt renders the state as the user message for a text model.
func (s State) Prompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Game: %s\n", s.Variant.Label())
	fmt.Fprintf(&b, "Street: %s\n", s.Street)
	fmt.Fprintf(&b, "Hole cards: %s\n", joinOr(s.HoleCards, "unknown"))
	fmt.Fprintf(&b, "Board: %s\n", joinOr(s.BoardCards, "none"))
	fmt.Fprintf(&b, "Current hand: %s\n", orDefault(s.HandName, "unknown"))
	fmt.Fprintf(&b, "Equity: %s\n", percent(s.Equity))
	fmt.Fprintf(&b, "Pot odds: %s\n", percent(s.PotOdds))

	outs := make([]string, len(s.Outs))
	for i, o := range s.Outs {
		outs[i] = fmt.Sprintf("%s: %g", o.Type, o.Count)
	}
	fmt.Fprintf(&b, "Outs: %s\n", joinOr(outs, "None"))
	fmt.Fprintf(&b, "Recommended action: %s\n\n", orDefault(s.RecommendedAction, "unknown"))
	b.WriteString("Explain why this action is correct and what the player should consider.")
	return b.String()
}

func percent(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

func joinOr(s []string, empty string) string {
	if len(s) == 0 {
		return empty
	}
	return strings.Join(s, ", ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Explainer produces a free-text elaboration of a game state.
type Explainer interface {
	Explain(ctx context.Context, s State) (string, error)
}

const systemPrompt = `You are a poker strategy advisor. Given the game state, explain the recommended action in two to four sentences.
Be specific about equity, pot odds and draw strength. Use poker terms but stay accessible. Do not use markdown.`

type explainRequest struct {
	System string `json:"system"`
	Prompt string `json:"prompt"`
	State  State  `json:"state"`
}

type explainResponse struct {
	Explanation string `json:"explanation"`
}

// HTTPExplainer posts game states to a remote text service.
type HTTPExplainer struct {
	url    string
	apiKey string
	client *http.Client
	logger *log.Logger
}

// NewHTTPExplainer creates an explainer posting to url.
func NewHTTPExplainer(url, apiKey string, timeout time.Duration, logger *log.Logger) *HTTPExplainer {
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPExplainer{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		logger: logger.WithPrefix("explain"),
	}
}

// Explain implements Explainer.
func (h *HTTPExplainer) Explain(ctx context.Context, s State) (string, error) {
	body, err := json.Marshal(explainRequest{System: systemPrompt, Prompt: s.Prompt(), State: s})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	h.logger.Debug("Explained hand", "status", resp.StatusCode, "duration", time.Since(start))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("explanation service returned %s", resp.Status)
	}

	var out explainResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	text := strings.TrimSpace(out.Explanation)
	if text == "" {
		return "", ErrEmptyExplanation
	}
	return text, nil
}

// Source says where an explanation came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceTemplate Source = "template"
)

// Fallback wraps an Explainer so failures are absorbed and the template
// explanation is returned instead. A nil Explainer always falls back.
type Fallback struct {
	next   Explainer
	logger *log.Logger
}

// WithFallback wraps next.
func WithFallback(next Explainer, logger *log.Logger) *Fallback {
	if logger == nil {
		logger = log.Default()
	}
	return &Fallback{next: next, logger: logger.WithPrefix("explain")}
}

// Explain never fails. Cancellation of ctx also yields the template.
func (f *Fallback) Explain(ctx context.Context, s State) (string, Source) {
	if f.next == nil {
		return s.Template, SourceTemplate
	}
	text, err := f.next.Explain(ctx, s)
	if err != nil {
		f.logger.Warn("Explanation service failed, using template", "error", err)
		return s.Template, SourceTemplate
	}
	return text, SourceRemote
}
