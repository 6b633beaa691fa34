package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// maxResponseSize bounds what we read back from the classifier.
const maxResponseSize = 1 << 20

const systemPrompt = `You identify playing cards in photographs and report their exact rank and suit.
Tell suits apart by the symbol shape, not only the colour: hearts and diamonds are red, clubs and spades are black.
Never guess. Leave out any card you cannot read and lower your confidence.`

func instructions(kind Kind, holeCount int) string {
	what := fmt.Sprintf("the player's %d private hole cards", holeCount)
	if kind == KindBoard {
		what = "the community board cards (3 on the flop, 4 on the turn, 5 on the river)"
	}
	return fmt.Sprintf(`This photo shows %s.
Answer with JSON only: {"cards": ["As", "Td"], "confidence": "high", "notes": ""}.
Ranks are 2-9, T, J, Q, K, A. Suits are h, d, c, s.
Set confidence to "low" if any card is partly hidden or unclear.`, what)
}

type readRequest struct {
	Kind         Kind   `json:"kind"`
	HoleCount    int    `json:"holeCount"`
	MediaType    string `json:"mediaType"`
	Image        string `json:"image"`
	System       string `json:"system"`
	Instructions string `json:"instructions"`
}

type readResponse struct {
	Cards      []string `json:"cards"`
	Confidence string   `json:"confidence"`
	Notes      string   `json:"notes"`
}

// HTTPReader asks a remote classifier to read one photograph at a time.
type HTTPReader struct {
	url    string
	apiKey string
	client *http.Client
	logger *log.Logger
}

// NewHTTPReader creates a reader posting to url. An empty apiKey sends no
// Authorization header.
func NewHTTPReader(url, apiKey string, timeout time.Duration, logger *log.Logger) *HTTPReader {
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPReader{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		logger: logger.WithPrefix("vision"),
	}
}

// Read implements Reader.
func (h *HTTPReader) Read(ctx context.Context, img Image, kind Kind, holeCount int) (Reading, error) {
	body, err := json.Marshal(readRequest{
		Kind:         kind,
		HoleCount:    holeCount,
		MediaType:    img.MediaType,
		Image:        img.Base64(),
		System:       systemPrompt,
		Instructions: instructions(kind, holeCount),
	})
	if err != nil {
		return Reading{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return Reading{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return Reading{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Reading{}, fmt.Errorf("failed to read response: %w", err)
	}
	h.logger.Debug("Read cards", "kind", kind, "status", resp.StatusCode, "duration", time.Since(start))
	if resp.StatusCode != http.StatusOK {
		return Reading{}, fmt.Errorf("classifier returned %s", resp.Status)
	}

	var out readResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return Reading{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return Reading{
		Cards:      out.Cards,
		Confidence: ParseConfidence(out.Confidence),
		Notes:      out.Notes,
	}, nil
}
