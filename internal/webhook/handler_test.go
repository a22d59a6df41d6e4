package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-interview/backend/internal/session"
)

const testSecret = "webhook-test-secret"

type fakeStarter struct {
	mu       sync.Mutex
	started  []string
	registry *session.Registry
}

func (f *fakeStarter) StartSession(meetingID, topic string) (*session.Session, error) {
	f.mu.Lock()
	f.started = append(f.started, meetingID)
	f.mu.Unlock()
	return f.registry.Create(meetingID, topic)
}

func (f *fakeStarter) startedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.started)
}

type fakeRunner struct {
	mu      sync.Mutex
	stopped int
}

func (r *fakeRunner) StartInterview() error { return nil }
func (r *fakeRunner) Stop() {
	r.mu.Lock()
	r.stopped++
	r.mu.Unlock()
}

func newTestServer(t *testing.T, autoJoin bool) (*gin.Engine, *session.Registry, *fakeStarter) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registry := session.NewRegistry(zap.NewNop())
	starter := &fakeStarter{registry: registry}
	router := NewRouter(registry, starter, autoJoin, zap.NewNop())
	handler := NewHandler(NewVerifier(testSecret), router, zap.NewNop())

	engine := gin.New()
	engine.POST("/webhook", handler.Receive)
	return engine, registry, starter
}

func postSigned(engine *gin.Engine, body []byte) *httptest.ResponseRecorder {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set(HeaderTimestamp, ts)
	req.Header.Set(HeaderSignature, signBody(testSecret, ts, body))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func eventBody(t *testing.T, event string, object map[string]interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"event":   event,
		"payload": map[string]interface{}{"object": object},
	})
	require.NoError(t, err)
	return raw
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	engine, _, _ := newTestServer(t, false)

	body := eventBody(t, EventMeetingStarted, map[string]interface{}{"id": 123})
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set(HeaderTimestamp, "1700000000")
	req.Header.Set(HeaderSignature, "v0=deadbeef")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookAnswersChallenge(t *testing.T) {
	engine, _, _ := newTestServer(t, false)

	body, err := json.Marshal(map[string]interface{}{
		"event":   EventURLValidation,
		"payload": map[string]interface{}{"plainToken": "tok-1"},
	})
	require.NoError(t, err)

	w := postSigned(engine, body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChallengeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tok-1", resp.PlainToken)
	assert.Equal(t, NewVerifier(testSecret).RespondToChallenge("tok-1").EncryptedToken, resp.EncryptedToken)
}

func TestMeetingStartedAutoJoin(t *testing.T) {
	body := func(t *testing.T) []byte {
		return eventBody(t, EventMeetingStarted, map[string]interface{}{"id": 42, "topic": "Interview"})
	}

	t.Run("manual mode ignores it", func(t *testing.T) {
		engine, registry, starter := newTestServer(t, false)
		w := postSigned(engine, body(t))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, starter.startedCount())
		assert.Zero(t, registry.Len())
	})

	t.Run("auto mode starts a session", func(t *testing.T) {
		engine, registry, starter := newTestServer(t, true)
		w := postSigned(engine, body(t))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, starter.startedCount())
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("redelivery is harmless", func(t *testing.T) {
		engine, registry, starter := newTestServer(t, true)
		assert.Equal(t, http.StatusOK, postSigned(engine, body(t)).Code)
		assert.Equal(t, http.StatusOK, postSigned(engine, body(t)).Code)
		assert.Equal(t, 2, starter.startedCount())
		assert.Equal(t, 1, registry.Len())
	})
}

func TestMeetingEndedStopsRunner(t *testing.T) {
	engine, registry, _ := newTestServer(t, false)

	sess, err := registry.Create("42", "Interview")
	require.NoError(t, err)
	runner := &fakeRunner{}
	sess.AttachRunner(runner)

	w := postSigned(engine, eventBody(t, EventMeetingEnded, map[string]interface{}{"id": 42}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, runner.stopped)
	assert.Zero(t, registry.Len())
}

func TestMeetingEndedUnknownMeeting(t *testing.T) {
	engine, registry, _ := newTestServer(t, false)

	w := postSigned(engine, eventBody(t, EventMeetingEnded, map[string]interface{}{"id": 999}))
	assert.Equal(t, http.StatusOK, w.Code, "unknown meeting is acknowledged, not an error")
	assert.Zero(t, registry.Len())
}

func TestParticipantJoinedAppends(t *testing.T) {
	engine, registry, _ := newTestServer(t, false)

	sess, err := registry.Create("42", "Interview")
	require.NoError(t, err)

	body := eventBody(t, EventParticipantJoined, map[string]interface{}{
		"id":          42,
		"participant": map[string]interface{}{"user_id": "u1", "user_name": "Ada"},
	})
	assert.Equal(t, http.StatusOK, postSigned(engine, body).Code)
	// Participant list mirrors the event stream: redelivery appends again.
	assert.Equal(t, http.StatusOK, postSigned(engine, body).Code)
	assert.Equal(t, 2, sess.ParticipantCount())
}

func TestUnknownEventIgnored(t *testing.T) {
	engine, registry, starter := newTestServer(t, true)

	w := postSigned(engine, eventBody(t, "meeting.sharing_started", map[string]interface{}{"id": 42}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, starter.startedCount())
	assert.Zero(t, registry.Len())
}
