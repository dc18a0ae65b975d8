package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saati/saati/internal/api"
)

func TestNotificationHub(t *testing.T) {
	hub := api.NewNotificationHub()
	ch, teardown := hub.Subscribe("guest:a")
	t.Run("delivered to matching owner only", func(t *testing.T) {
		hub.Notify("guest:b", "Task Reminder", "someone else's task")
		hub.Notify("guest:a", "Task Reminder", "submit timesheet")
		select {
		case n := <-ch:
			assert.Equal(t, "Task Reminder", n.Title)
			assert.Equal(t, "submit timesheet", n.Body)
		case <-time.After(time.Second):
			t.Fatal("notification not delivered")
		}
		select {
		case n := <-ch:
			t.Fatalf("unexpected notification: %+v", n)
		default:
		}
	})
	t.Run("teardown stops delivery", func(t *testing.T) {
		teardown()
		hub.Notify("guest:a", "Task Reminder", "after teardown")
		select {
		case n := <-ch:
			t.Fatalf("unexpected notification: %+v", n)
		case <-time.After(50 * time.Millisecond):
		}
	})
}

func TestWatchStream(t *testing.T) {
	env := newTestEnv()
	guestID := uuid.NewString()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/watch", nil).WithContext(ctx)
	req.Header.Set("X-Guest-ID", guestID)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		env.server.Handler().ServeHTTP(rec, req)
		close(done)
	}()

	// Give the stream time to subscribe before mutating.
	time.Sleep(50 * time.Millisecond)
	createRec := env.do(t, http.MethodPost, "/api/v1/logs", map[string]any{
		"date": "2024-06-10",
		"type": "vacation",
	}, asGuest(guestID))
	require.Equal(t, http.StatusCreated, createRec.Code)
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch handler did not stop on disconnect")
	}

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "event: snapshot")
	assert.Contains(t, rec.Body.String(), `"collection":"logs"`)
}

func TestWatchStreamWithoutRemote(t *testing.T) {
	env := newTestEnv()
	loginRec := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"name":     username,
		"password": "test_password",
	}, nil)
	require.Equal(t, http.StatusOK, loginRec.Code)
	token, ok := decodeBody(t, loginRec)["token"].(string)
	require.True(t, ok)

	// An authenticated watch has no backend to subscribe to, so it fails
	// up front instead of opening an empty stream.
	rec := env.do(t, http.MethodGet, "/api/v1/watch", nil, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
