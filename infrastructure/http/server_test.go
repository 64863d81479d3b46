package http

import (
	"anongram/domain"
	"anongram/errors"
	"anongram/infrastructure/ws"
	"anongram/observability"
	"anongram/relay"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeChatService struct {
	messages []domain.ChatMessage
	err      error
}

func (f *fakeChatService) GetConversation(a, b domain.ParticipantID) ([]domain.ChatMessage, error) {
	return f.messages, f.err
}

type fakeUserService struct {
	profiles []domain.Profile
	err      error
}

func (f *fakeUserService) Profiles() ([]domain.Profile, error) {
	return f.profiles, f.err
}

type nullStore struct{}

func (nullStore) Append(domain.ChatMessage) error { return nil }
func (nullStore) QueryByParticipants(a, b domain.ParticipantID) ([]domain.ChatMessage, error) {
	return nil, nil
}

func newTestServer(t *testing.T, chats *fakeChatService, users *fakeUserService) *httptest.Server {
	t.Helper()
	log := slog.Default()

	registry := relay.NewRegistry(log)
	messageRelay := relay.NewRelay(log, registry, nullStore{})
	wsHandler := ws.NewHandler(log, messageRelay, registry, 8, ws.Timeouts{
		WriteWait: time.Second,
		PongWait:  10 * time.Second,
	})

	monitor, err := observability.NewMonitor(log, registry.Size)
	require.NoError(t, err)

	server := httptest.NewServer(NewServer(log, chats, users, monitor, wsHandler).Router())
	t.Cleanup(server.Close)
	return server
}

func Test_Health_Reports_OK(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t, &fakeChatService{}, &fakeUserService{})

	resp, err := http.Get(server.URL + "/health")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	var stats observability.HealthStats
	req.NoError(json.NewDecoder(resp.Body).Decode(&stats))
	req.Equal("OK", stats.Status)
	req.Zero(stats.OpenConnections)
}

func Test_Users_Endpoint_Returns_Profiles(t *testing.T) {
	req := require.New(t)
	users := &fakeUserService{profiles: []domain.Profile{
		{ID: "u1", Username: "user1", Status: "online"},
		{ID: "u2", Username: "user2", Status: "online"},
	}}
	server := newTestServer(t, &fakeChatService{}, users)

	resp, err := http.Get(server.URL + "/api/users")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	var got []domain.Profile
	req.NoError(json.NewDecoder(resp.Body).Decode(&got))
	req.Equal(users.profiles, got)
}

func Test_Conversation_Endpoint_Returns_Messages(t *testing.T) {
	req := require.New(t)
	chats := &fakeChatService{messages: []domain.ChatMessage{{
		ID:         "m1",
		Text:       "hello",
		SenderID:   "1",
		ReceiverID: "2",
		Timestamp:  time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		Type:       domain.MessageTypeText,
	}}}
	server := newTestServer(t, chats, &fakeUserService{})

	resp, err := http.Get(server.URL + "/api/messages/1/2")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	var got []domain.ChatMessage
	req.NoError(json.NewDecoder(resp.Body).Decode(&got))
	req.Len(got, 1)
	req.Equal("hello", got[0].Text)
	req.Equal("2026-09-01T12:00:00Z", got[0].Timestamp.Format(time.RFC3339))
}

func Test_Conversation_With_Empty_Participant_Is_Rejected(t *testing.T) {
	req := require.New(t)
	server := NewServer(slog.Default(), &fakeChatService{}, &fakeUserService{}, nil, nil)

	// Routing cannot produce an empty path parameter, so the guard is
	// exercised on the handler directly.
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	c.Params = gin.Params{
		{Key: "userId1", Value: ""},
		{Key: "userId2", Value: "2"},
	}

	server.handleConversation(c)
	req.Equal(http.StatusBadRequest, recorder.Code)

	var body map[string]string
	req.NoError(json.Unmarshal(recorder.Body.Bytes(), &body))
	req.Equal(errors.ErrUnknownParticipant.Error(), body["error"])
}

func Test_Conversation_Failure_Maps_To_500(t *testing.T) {
	req := require.New(t)
	chats := &fakeChatService{err: fmt.Errorf("disk on fire")}
	server := newTestServer(t, chats, &fakeUserService{})

	resp, err := http.Get(server.URL + "/api/messages/1/2")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusInternalServerError, resp.StatusCode)
}
