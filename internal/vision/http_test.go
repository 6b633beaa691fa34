package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPReader(t *testing.T) {
	t.Parallel()
	var got readRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(readResponse{Cards: []string{"Ah", "Kd"}, Confidence: "high", Notes: "clear"})
	}))
	defer srv.Close()

	reader := NewHTTPReader(srv.URL, "secret", 5*time.Second, quietLogger())
	img, err := DecodeImage("data:image/png;base64," + photo)
	require.NoError(t, err)

	reading, err := reader.Read(context.Background(), img, KindHand, 2)
	require.NoError(t, err)
	assert.Equal(t, Reading{Cards: []string{"Ah", "Kd"}, Confidence: High, Notes: "clear"}, reading)

	assert.Equal(t, KindHand, got.Kind)
	assert.Equal(t, 2, got.HoleCount)
	assert.Equal(t, "image/png", got.MediaType)
	assert.Equal(t, photo, got.Image)
	assert.Contains(t, got.Instructions, "2 private hole cards")
	assert.NotEmpty(t, got.System)
}

func TestHTTPReaderBoardInstructions(t *testing.T) {
	t.Parallel()
	assert.Contains(t, instructions(KindBoard, 4), "community board cards")
	assert.Contains(t, instructions(KindHand, 4), "4 private hole cards")
}

func TestHTTPReaderErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("the cards are Ah and Kd"))
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			reader := NewHTTPReader(srv.URL, "", time.Second, quietLogger())
			_, err := reader.Read(context.Background(), Image{Data: []byte("x"), MediaType: "image/jpeg"}, KindHand, 2)
			assert.Error(t, err)
		})
	}
}

func TestHTTPReaderThroughRecognizer(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req readRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		resp := readResponse{Cards: []string{"9c", "9d"}, Confidence: "high"}
		if req.Kind == KindBoard {
			resp.Cards = []string{"9h", "Ts", "2d", "Kc"}
			resp.Confidence = "medium"
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	r := NewRecognizer(NewHTTPReader(srv.URL, "", time.Second, quietLogger()), quietLogger())
	got, err := r.Recognize(context.Background(), Request{HandImage: photo, BoardImage: photo})
	require.NoError(t, err)
	assert.False(t, got.Ambiguous)
	assert.Equal(t, Medium, got.Confidence)
	assert.Equal(t, []string{"9h", "Ts", "2d", "Kc"}, got.BoardCards)
}
