package server

import (
	"errors"
	"net/http"

	"github.com/lox/pokeradvisor/internal/analyzer"
	"github.com/lox/pokeradvisor/internal/vision"
	"github.com/lox/pokeradvisor/poker"
)

// Error codes returned in the error envelope.
const (
	CodeInvalidCards      = "INVALID_CARDS"
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeAnalysisFailed    = "ANALYSIS_FAILED"
	CodeAnalysisTimeout   = "ANALYSIS_TIMEOUT"
	CodeMissingImage      = "MISSING_IMAGE"
	CodeInvalidImage      = "INVALID_IMAGE"
	CodeRecognitionFailed = "RECOGNITION_FAILED"
)

// APIError is the JSON error envelope.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

// toAPIError maps an error from the analysis or recognition layers to its
// envelope.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var verr *poker.ValidationError
	if errors.As(err, &verr) {
		return &APIError{Status: http.StatusBadRequest, Message: verr.Error(), Code: CodeInvalidCards, Details: verr.Errors}
	}
	var serr *SchemaError
	if errors.As(err, &serr) {
		return &APIError{Status: http.StatusBadRequest, Message: serr.Error(), Code: CodeInvalidRequest, Details: serr.Violations}
	}
	var rerr *vision.RecognitionError
	if errors.As(err, &rerr) {
		out := &APIError{Status: http.StatusUnprocessableEntity, Message: rerr.Message, Code: CodeRecognitionFailed}
		if rerr.Partial != nil {
			out.Details = rerr.Partial
		}
		return out
	}

	switch {
	case errors.Is(err, analyzer.ErrInvalidRequest):
		return &APIError{Status: http.StatusBadRequest, Message: err.Error(), Code: CodeInvalidRequest}
	case errors.Is(err, analyzer.ErrTimeout):
		return &APIError{Status: http.StatusServiceUnavailable, Message: err.Error(), Code: CodeAnalysisTimeout}
	case errors.Is(err, vision.ErrMissingImage):
		return &APIError{Status: http.StatusBadRequest, Message: "No image provided. Please upload a photo of your cards.", Code: CodeMissingImage}
	case errors.Is(err, vision.ErrInvalidImage):
		return &APIError{Status: http.StatusBadRequest, Message: err.Error(), Code: CodeInvalidImage}
	case errors.Is(err, vision.ErrRecognitionFailed):
		return &APIError{Status: http.StatusUnprocessableEntity, Message: err.Error(), Code: CodeRecognitionFailed}
	default:
		return &APIError{Status: http.StatusInternalServerError, Message: err.Error(), Code: CodeAnalysisFailed}
	}
}
