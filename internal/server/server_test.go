package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/pokeradvisor/internal/analyzer"
	"github.com/lox/pokeradvisor/internal/explain"
	"github.com/lox/pokeradvisor/internal/vision"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	seed := int64(11)
	a := analyzer.New(analyzer.Options{
		EquityTrials:   500,
		HandOddsTrials: 500,
		Workers:        2,
		Seed:           &seed,
		Logger:         testLogger(),
	})
	srv, err := NewServer(a, testLogger(), append([]Option{WithClock(quartz.NewMock(t))}, opts...)...)
	require.NoError(t, err)
	return srv
}

type envelope struct {
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details"`
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestServerHealth(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestAnalyzeEndpoint(t *testing.T) {
	t.Parallel()
	h := newTestServer(t).Handler()

	rec := post(t, h, "/api/analyze", `{
		"holeCards": ["7h", "8h"],
		"boardCards": ["Th", "9h", "2c"],
		"potSize": 100,
		"amountToCall": 50
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got struct {
		ID                string `json:"id"`
		Street            string `json:"street"`
		Variant           string `json:"variant"`
		PotOddsRatio      string `json:"potOddsRatio"`
		RecommendedAction string `json:"recommendedAction"`
		Outs              []struct {
			Type  string  `json:"type"`
			Count float64 `json:"count"`
		} `json:"outs"`
		TopActions  []json.RawMessage `json:"topActions"`
		Explanation string            `json:"explanation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "flop", got.Street)
	assert.Equal(t, "texasHoldem", got.Variant)
	assert.Equal(t, "2.0:1", got.PotOddsRatio)
	assert.Contains(t, []string{"fold", "check", "call", "raise"}, got.RecommendedAction)
	assert.NotEmpty(t, got.Outs)
	assert.NotEmpty(t, got.TopActions)
	assert.NotEmpty(t, got.Explanation)
}

func TestAnalyzeEndpointErrors(t *testing.T) {
	t.Parallel()
	h := newTestServer(t).Handler()

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"bad cards", `{"holeCards": ["Ah", "Ah"], "boardCards": ["Kd", "Xx", "2c"]}`, http.StatusBadRequest, CodeInvalidCards},
		{"wrong hole count", `{"holeCards": ["Ah"], "variant": "omaha"}`, http.StatusBadRequest, CodeInvalidCards},
		{"unknown variant", `{"holeCards": ["Ah", "Kd"], "variant": "razz"}`, http.StatusBadRequest, CodeInvalidRequest},
		{"missing hole cards", `{"boardCards": []}`, http.StatusBadRequest, CodeInvalidRequest},
		{"negative pot", `{"holeCards": ["Ah", "Kd"], "potSize": -5, "amountToCall": 1}`, http.StatusBadRequest, CodeInvalidRequest},
		{"malformed json", `{"holeCards": [`, http.StatusBadRequest, CodeInvalidRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := post(t, h, "/api/analyze", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			env := decodeEnvelope(t, rec)
			assert.Equal(t, tc.code, env.Code)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestAnalyzeEndpointAggregatesCardErrors(t *testing.T) {
	t.Parallel()
	rec := post(t, newTestServer(t).Handler(), "/api/analyze", `{"holeCards": ["Ah", "Ah", "1x"], "boardCards": ["Kd"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeEnvelope(t, rec)
	var details []string
	require.NoError(t, json.Unmarshal(env.Details, &details))
	assert.GreaterOrEqual(t, len(details), 3)
	assert.Equal(t, strings.Join(details, "; "), env.Error)
}

func TestAnalyzeMethodNotAllowed(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	rec := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBodyTooLarge(t *testing.T) {
	t.Parallel()
	body := `{"holeCards": ["Ah", "Kd"], "handName": "` + strings.Repeat("x", maxJSONBody) + `"}`
	rec := post(t, newTestServer(t).Handler(), "/api/analyze", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, CodeInvalidRequest, decodeEnvelope(t, rec).Code)
}

type explainerFunc func(context.Context, explain.State) (string, error)

func (f explainerFunc) Explain(ctx context.Context, s explain.State) (string, error) {
	return f(ctx, s)
}

func TestExplainEndpoint(t *testing.T) {
	t.Parallel()
	body := `{
		"variant": "texasHoldem",
		"street": "flop",
		"holeCards": ["7h", "8h"],
		"boardCards": ["Th", "9h", "2c"],
		"handName": "Eight High",
		"equity": 0.35,
		"potOdds": 0.25,
		"outs": [{"type": "flushDraw", "count": 9}],
		"recommendedAction": "call"
	}`

	t.Run("remote", func(t *testing.T) {
		t.Parallel()
		var seen explain.State
		srv := newTestServer(t, WithExplainer(explainerFunc(func(_ context.Context, s explain.State) (string, error) {
			seen = s
			return "Call with your draw.", nil
		})))
		rec := post(t, srv.Handler(), "/api/explain", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got ExplainResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, ExplainResponse{Explanation: "Call with your draw.", Source: explain.SourceRemote}, got)
		assert.Equal(t, []string{"7h", "8h"}, seen.HoleCards)
		assert.NotEmpty(t, seen.Template, "the template is computed before the remote call")
	})

	t.Run("fallback", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t, WithExplainer(explainerFunc(func(context.Context, explain.State) (string, error) {
			return "", errors.New("service down")
		})))
		rec := post(t, srv.Handler(), "/api/explain", body)
		require.Equal(t, http.StatusOK, rec.Code)

		var got ExplainResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, explain.SourceTemplate, got.Source)
		assert.Equal(t,
			"You have Flush Draw with 9 clean outs. Your equity of 35.0% exceeds the 25.0% required by pot odds, making this a profitable call.",
			got.Explanation)
	})

	t.Run("caller template wins", func(t *testing.T) {
		t.Parallel()
		rec := post(t, newTestServer(t).Handler(), "/api/explain", `{"recommendedAction": "fold", "template": "Fold it."}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var got ExplainResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, ExplainResponse{Explanation: "Fold it.", Source: explain.SourceTemplate}, got)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		rec := post(t, newTestServer(t).Handler(), "/api/explain", `{"recommendedAction": "shove"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeInvalidRequest, decodeEnvelope(t, rec).Code)
	})
}

type fakeReader struct {
	readings map[vision.Kind]vision.Reading
	err      error
}

func (f fakeReader) Read(_ context.Context, _ vision.Image, kind vision.Kind, _ int) (vision.Reading, error) {
	return f.readings[kind], f.err
}

func TestRecognizeEndpoint(t *testing.T) {
	t.Parallel()
	photo := base64.StdEncoding.EncodeToString([]byte("jpeg bytes"))
	reader := fakeReader{readings: map[vision.Kind]vision.Reading{
		vision.KindHand:  {Cards: []string{"Ah", "Kd"}, Confidence: vision.High},
		vision.KindBoard: {Cards: []string{"2c", "7s", "Jd"}, Confidence: vision.High},
	}}
	withReader := newTestServer(t, WithRecognizer(vision.NewRecognizer(reader, testLogger()))).Handler()
	failing := newTestServer(t, WithRecognizer(vision.NewRecognizer(fakeReader{err: errors.New("timeout")}, testLogger()))).Handler()
	unconfigured := newTestServer(t).Handler()

	tests := []struct {
		name   string
		h      http.Handler
		body   string
		status int
		code   string
	}{
		{"missing", withReader, `{}`, http.StatusBadRequest, CodeMissingImage},
		{"empty strings", withReader, `{"handImage": "", "boardImage": ""}`, http.StatusBadRequest, CodeMissingImage},
		{"board only", withReader, `{"boardImage": "` + photo + `"}`, http.StatusBadRequest, CodeMissingImage},
		{"hand not a string", withReader, `{"handImage": 42}`, http.StatusBadRequest, CodeInvalidImage},
		{"board not a string", withReader, `{"handImage": "` + photo + `", "boardImage": ["x"]}`, http.StatusBadRequest, CodeInvalidImage},
		{"not base64", withReader, `{"handImage": "@@@@"}`, http.StatusBadRequest, CodeInvalidImage},
		{"unconfigured", unconfigured, `{"handImage": "` + photo + `"}`, http.StatusServiceUnavailable, CodeRecognitionFailed},
		{"reader down", failing, `{"handImage": "` + photo + `"}`, http.StatusUnprocessableEntity, CodeRecognitionFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := post(t, tc.h, "/api/recognize", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, decodeEnvelope(t, rec).Code)
		})
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		rec := post(t, withReader, "/api/recognize", `{"handImage": "data:image/jpeg;base64,`+photo+`", "boardImage": "`+photo+`"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got vision.Recognition
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, vision.Recognition{
			HoleCards:  []string{"Ah", "Kd"},
			BoardCards: []string{"2c", "7s", "Jd"},
			Confidence: vision.High,
		}, got)
	})
}

func TestCORS(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, WithAllowedOrigins([]string{"https://app.example"})).Handler()

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	ok := preflight("https://app.example")
	assert.Equal(t, http.StatusNoContent, ok.Code)
	assert.Equal(t, "https://app.example", ok.Header().Get("Access-Control-Allow-Origin"))

	denied := preflight("https://evil.example")
	assert.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))
}

func TestAccessLog(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := newTestServer(t, WithAccessLog(zerolog.New(&buf))).Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "7d444840-9dc0-11d1-b245-5ffdce74fad2")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "7d444840-9dc0-11d1-b245-5ffdce74fad2", rec.Header().Get(requestIDHeader))

	var line struct {
		Level     string `json:"level"`
		RequestID string `json:"request_id"`
		Method    string `json:"method"`
		Path      string `json:"path"`
		Status    int    `json:"status"`
		Bytes     int    `json:"bytes"`
		Message   string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line), buf.String())
	assert.Equal(t, "info", line.Level)
	assert.Equal(t, "7d444840-9dc0-11d1-b245-5ffdce74fad2", line.RequestID)
	assert.Equal(t, http.MethodGet, line.Method)
	assert.Equal(t, "/health", line.Path)
	assert.Equal(t, http.StatusOK, line.Status)
	assert.Equal(t, 2, line.Bytes)
	assert.Equal(t, "request", line.Message)
}

func dialWS(t *testing.T, srv *Server) (*websocket.Conn, func()) {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return ws, func() {
		_ = ws.Close()
		ts.Close()
	}
}

func TestWebSocketAnalyze(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	ws, done := dialWS(t, srv)
	defer done()

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{
		"type": "analyze",
		"id": "req-1",
		"data": {"holeCards": ["As", "Kd"], "boardCards": ["Kc", "7d", "2s"]}
	}`)))
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{
		"type": "analyze",
		"id": "req-2",
		"data": {"holeCards": ["As", "As"]}
	}`)))
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type": "subscribe", "id": "req-3", "data": {}}`)))

	_ = ws.SetReadDeadline(time.Now().Add(10 * time.Second))

	var first Message
	require.NoError(t, ws.ReadJSON(&first))
	assert.Equal(t, MessageTypeResult, first.Type)
	assert.Equal(t, "req-1", first.ID)
	var res struct {
		Street   string `json:"street"`
		HandName string `json:"handName"`
	}
	require.NoError(t, json.Unmarshal(first.Data, &res))
	assert.Equal(t, "flop", res.Street)
	assert.Equal(t, "Pair of Kings", res.HandName)

	var second Message
	require.NoError(t, ws.ReadJSON(&second))
	assert.Equal(t, MessageTypeError, second.Type)
	assert.Equal(t, "req-2", second.ID)
	var env envelope
	require.NoError(t, json.Unmarshal(second.Data, &env))
	assert.Equal(t, CodeInvalidCards, env.Code)

	var third Message
	require.NoError(t, ws.ReadJSON(&third))
	assert.Equal(t, MessageTypeError, third.Type)
	require.NoError(t, json.Unmarshal(third.Data, &env))
	assert.Equal(t, CodeInvalidRequest, env.Code)

	assert.Equal(t, 1, srv.ConnectionCount())
}

func TestWebSocketRejectsOrigin(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(newTestServer(t, WithAllowedOrigins([]string{"https://app.example"})).Handler())
	defer ts.Close()

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer ws.Close()
	require.Eventually(t, func() bool { return srv.ConnectionCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Eventually(t, func() bool { return srv.ConnectionCount() == 0 }, 5*time.Second, 10*time.Millisecond)

	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "want going-away close frame, got %v", err)
}
