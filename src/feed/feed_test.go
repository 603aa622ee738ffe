package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrader/src/model"
	"papertrader/src/pricing"
)

type memorySink struct {
	mu    sync.Mutex
	ticks []model.PriceTick
}

func (s *memorySink) Upsert(_ context.Context, tick *model.PriceTick) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks = append(s.ticks, *tick)
	return nil
}

func (s *memorySink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ticks)
}

// tickServer upgrades the connection, checks the subscribe frame and pushes
// the given payloads.
func tickServer(t *testing.T, payloads []string) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var sub subscribeMessage
		if err := conn.ReadJSON(&sub); err != nil {
			t.Errorf("subscribe read failed: %v", err)
			return
		}
		if sub.Op != "subscribe" || sub.ID == "" {
			t.Errorf("unexpected subscribe frame: %+v", sub)
			return
		}

		for _, payload := range payloads {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				return
			}
		}

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestFeedWritesTicksToSinkAndCache(t *testing.T) {
	server := tickServer(t, []string{
		`{"symbol":"BTC/USDT","price":50000,"volume":1.5,"time":1722500000000}`,
		`{"op":"pong"}`,
		`{"symbol":"ETH/USDT","price":3000,"time":1722500001000}`,
	})
	defer server.Close()

	sink := &memorySink{}
	cache := pricing.NewCacheOracle(0)
	f := NewFeed(Config{
		URL:          wsURL(server),
		Symbols:      []string{"BTC/USDT", "ETH/USDT"},
		ReconnectMin: 10 * time.Millisecond,
		ReconnectMax: 50 * time.Millisecond,
	}, sink, cache)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	deadline := time.Now().Add(3 * time.Second)
	for sink.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	require.NoError(t, <-done)

	require.Equal(t, 2, sink.count())
	assert.Equal(t, "BTC/USDT", sink.ticks[0].Symbol)
	assert.Equal(t, 50000.0, sink.ticks[0].Price)
	assert.Equal(t, "feed", sink.ticks[0].Source)

	price, err := cache.CurrentPrice(context.Background(), "ETH/USDT")
	require.NoError(t, err)
	assert.Equal(t, 3000.0, price)
}

func TestHandleFrameIgnoresHeartbeats(t *testing.T) {
	sink := &memorySink{}
	f := NewFeed(Config{}, sink, nil)

	require.NoError(t, f.handleFrame(context.Background(), []byte(`{"op":"pong"}`)))
	require.Error(t, f.handleFrame(context.Background(), []byte(`garbage`)))
	assert.Equal(t, 0, sink.count())
}
