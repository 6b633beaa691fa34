package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/lox/pokeradvisor/internal/analyzer"
	"github.com/lox/pokeradvisor/internal/explain"
	"github.com/lox/pokeradvisor/internal/vision"
	"github.com/lox/pokeradvisor/poker"
	"github.com/lox/pokeradvisor/sdk/advisor"
	"github.com/lox/pokeradvisor/sdk/classification"
)

// ExplainRequest is the body of POST /api/explain.
type ExplainRequest struct {
	explain.State
	GTOMode bool `json:"gtoMode,omitempty"`
}

// ExplainResponse is the reply of POST /api/explain.
type ExplainResponse struct {
	Explanation string         `json:"explanation"`
	Source      explain.Source `json:"source"`
}

type recognizeRequest struct {
	HandImage  any    `json:"handImage"`
	BoardImage any    `json:"boardImage"`
	Variant    string `json:"variant"`
	HoleCount  int    `json:"holeCount"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzer.Request
	if err := s.decode(w, r, SchemaAnalyze, maxJSONBody, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req ExplainRequest
	if err := s.decode(w, r, SchemaExplain, maxJSONBody, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Template == "" {
		req.Template = templateExplanation(req)
	}

	text, src := s.explainer.Explain(r.Context(), req.State)
	s.writeJSON(w, http.StatusOK, ExplainResponse{Explanation: text, Source: src})
}

// templateExplanation rebuilds the analyzer's explanation from the state
// when the caller did not send it.
func templateExplanation(req ExplainRequest) string {
	var action advisor.Action
	if err := action.UnmarshalText([]byte(req.RecommendedAction)); err != nil {
		return ""
	}
	sum := advisor.Summary{
		Action:   action,
		PotOdds:  req.PotOdds,
		Street:   req.Street,
		HandName: req.HandName,
	}
	if req.Equity != nil {
		sum.Equity = *req.Equity
	}
	for _, o := range req.Outs {
		var dt classification.DrawType
		if err := dt.UnmarshalText([]byte(o.Type)); err != nil {
			continue
		}
		sum.Outs = append(sum.Outs, classification.OutInfo{Type: dt, Count: o.Count, Clean: true})
		sum.CleanOuts += int(o.Count)
	}
	return advisor.Explain(sum, req.GTOMode)
}

func (s *Server) handleRecognize(w http.ResponseWriter, r *http.Request) {
	var req recognizeRequest
	if err := s.decode(w, r, SchemaRecognize, maxImageBody, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	hand, handOK := imageField(req.HandImage)
	board, boardOK := imageField(req.BoardImage)
	switch {
	case hand == "" && board == "" && handOK && boardOK:
		s.writeError(w, r, vision.ErrMissingImage)
		return
	case !handOK:
		s.writeError(w, r, &APIError{Status: http.StatusBadRequest, Message: "Invalid hand image format", Code: CodeInvalidImage})
		return
	case !boardOK:
		s.writeError(w, r, &APIError{Status: http.StatusBadRequest, Message: "Invalid board image format", Code: CodeInvalidImage})
		return
	}

	if s.recognizer == nil {
		s.writeError(w, r, &APIError{
			Status:  http.StatusServiceUnavailable,
			Message: "Card recognition is not configured. Please enter your cards manually.",
			Code:    CodeRecognitionFailed,
		})
		return
	}

	variant, err := poker.ParseVariant(req.Variant)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", analyzer.ErrInvalidRequest, err))
		return
	}
	if req.Variant == "" && req.HoleCount == 4 {
		variant = poker.Omaha
	}

	rec, err := s.recognizer.Recognize(r.Context(), vision.Request{HandImage: hand, BoardImage: board, Variant: variant})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// imageField accepts an absent field or a string.
func imageField(v any) (string, bool) {
	switch img := v.(type) {
	case nil:
		return "", true
	case string:
		return img, true
	default:
		return "", false
	}
}

// decode reads a bounded body, validates it against schema and unmarshals it
// into dst.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, schema string, limit int64, dst any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return &APIError{
				Status:  http.StatusRequestEntityTooLarge,
				Message: fmt.Sprintf("request body exceeds %d bytes", tooBig.Limit),
				Code:    CodeInvalidRequest,
			}
		}
		return &APIError{Status: http.StatusBadRequest, Message: "failed to read request body", Code: CodeInvalidRequest}
	}
	if err := s.validator.Validate(schema, data); err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &APIError{Status: http.StatusBadRequest, Message: err.Error(), Code: CodeInvalidRequest}
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", r.URL.Path, "code", apiErr.Code, "error", err, "request_id", RequestID(r.Context()))
	} else {
		s.logger.Debug("Request rejected", "path", r.URL.Path, "code", apiErr.Code, "error", err)
	}
	s.writeJSON(w, apiErr.Status, apiErr)
}
