// internal/api/api_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/netclass/internal/history"
	"github.com/tamzrod/netclass/internal/netclass"
	"github.com/tamzrod/netclass/internal/watcher"
)

// ---- fakes ----

type fakeSource struct {
	mu       sync.Mutex
	reading  netclass.Reading
	onChange func()
	startErr error
}

func (f *fakeSource) Reading() (netclass.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reading, nil
}

func (f *fakeSource) Start(onChange func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.onChange = onChange
	return nil
}

func (f *fakeSource) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = nil
	return nil
}

func (f *fakeSource) set(r netclass.Reading) {
	f.mu.Lock()
	f.reading = r
	cb := f.onChange
	f.mu.Unlock()
	if cb != nil {
		cb()
	}
}

type fakeHistory struct {
	ts        []history.Transition
	err       error
	lastLimit int
}

func (f *fakeHistory) List(_ context.Context, limit int) ([]history.Transition, error) {
	f.lastLimit = limit
	return f.ts, f.err
}

func newTestWatcher(src *fakeSource) *watcher.Watcher {
	return watcher.New(func() (watcher.Source, error) { return src, nil })
}

// ---- tests ----

func TestStatus(t *testing.T) {
	src := &fakeSource{reading: netclass.Reading{Interface: netclass.KindCellular, RAT: netclass.RATLTE}}
	srv := httptest.NewServer(NewRouter(newTestWatcher(src), nil, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var ev StatusEvent
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ev))
	assert.Equal(t, netclass.Mobile4G, ev.Status)
	assert.Equal(t, uint16(4), ev.Code)
	_, err = time.Parse(time.RFC3339, ev.Time)
	assert.NoError(t, err)
}

func TestWatcherState(t *testing.T) {
	src := &fakeSource{}
	w := newTestWatcher(src)
	srv := httptest.NewServer(NewRouter(w, nil, nil))
	defer srv.Close()

	sub, err := w.Subscribe()
	require.NoError(t, err)
	defer w.Unsubscribe(sub) //nolint:errcheck

	resp, err := http.Get(srv.URL + "/api/v1/watcher")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		State       string `json:"state"`
		Subscribers int    `json:"subscribers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "active", body.State)
	assert.Equal(t, 1, body.Subscribers)
}

func TestHistory(t *testing.T) {
	w := newTestWatcher(&fakeSource{})

	t.Run("disabled", func(t *testing.T) {
		srv := httptest.NewServer(NewRouter(w, nil, nil))
		defer srv.Close()
		resp, err := http.Get(srv.URL + "/api/v1/history")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("list", func(t *testing.T) {
		h := &fakeHistory{ts: []history.Transition{
			{ID: 2, Class: netclass.WiFi, Previous: netclass.Mobile3G, At: time.Unix(1700000000, 0).UTC()},
		}}
		srv := httptest.NewServer(NewRouter(w, h, nil))
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/api/v1/history?limit=5")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 5, h.lastLimit)

		var body struct {
			Transitions []history.Transition `json:"transitions"`
			Count       int                  `json:"count"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 1, body.Count)
		assert.Equal(t, netclass.Mobile3G, body.Transitions[0].Previous)
	})

	t.Run("bad limit", func(t *testing.T) {
		h := &fakeHistory{}
		srv := httptest.NewServer(NewRouter(w, h, nil))
		defer srv.Close()
		for _, q := range []string{"0", "501", "ten"} {
			resp, err := http.Get(srv.URL + "/api/v1/history?limit=" + q)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		}
	})

	t.Run("store error", func(t *testing.T) {
		h := &fakeHistory{err: errors.New("disk full")}
		srv := httptest.NewServer(NewRouter(w, h, nil))
		defer srv.Close()
		resp, err := http.Get(srv.URL + "/api/v1/history")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, 50, h.lastLimit)
	})
}

func TestEvents_StreamsChanges(t *testing.T) {
	src := &fakeSource{reading: netclass.Reading{Interface: netclass.KindWiFi}}
	w := newTestWatcher(src)
	srv := httptest.NewServer(NewRouter(w, nil, nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() StatusEvent {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
		var ev StatusEvent
		require.NoError(t, conn.ReadJSON(&ev))
		return ev
	}

	first := read()
	assert.Equal(t, netclass.WiFi, first.Status)
	assert.Equal(t, watcher.Active, w.State())

	src.set(netclass.Reading{Interface: netclass.KindCellular, RAT: netclass.RATEdge})
	ev := read()
	assert.Equal(t, netclass.Mobile2G, ev.Status)
	assert.Equal(t, uint16(1), ev.Code)

	// disconnect releases the subscription
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return w.Len() == 0 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, watcher.Inactive, w.State())
}

func TestEvents_ActivationFailure(t *testing.T) {
	src := &fakeSource{startErr: errors.New("no netlink")}
	srv := httptest.NewServer(NewRouter(newTestWatcher(src), nil, nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
