// Package feed streams live price ticks over a websocket into the price
// store and the in-memory quote cache.
package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"

	"papertrader/src/model"
	"papertrader/src/pricing"
)

// tickSink persists incoming ticks. Satisfied by repository.PriceRepository.
type tickSink interface {
	Upsert(ctx context.Context, tick *model.PriceTick) error
}

// subscribeMessage is sent once per connection to select symbols.
type subscribeMessage struct {
	ID      string   `json:"id"`
	Op      string   `json:"op"`
	Symbols []string `json:"symbols"`
}

// tickMessage is one inbound quote frame.
type tickMessage struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
	Time   int64   `json:"time"` // unix milliseconds
}

// Feed maintains the websocket connection and fans ticks out to the sink
// and the cache. It reconnects with exponential backoff until the context
// is cancelled.
type Feed struct {
	config Config
	sink   tickSink
	cache  *pricing.CacheOracle
}

func NewFeed(config Config, sink tickSink, cache *pricing.CacheOracle) *Feed {
	return &Feed{config: config, sink: sink, cache: cache}
}

// Run dials, subscribes and consumes frames until ctx is cancelled. Every
// connection failure backs off and redials.
func (f *Feed) Run(ctx context.Context) error {
	backoff := f.config.ReconnectMin

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		err := f.consume(ctx)
		if err == nil {
			return nil
		}

		logger.WithError(err).WithField("backoff", backoff).Warn("Feed disconnected, reconnecting")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > f.config.ReconnectMax {
			backoff = f.config.ReconnectMax
		}
	}
}

func (f *Feed) consume(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout:  15 * time.Second,
		EnableCompression: true,
		Proxy:             http.ProxyFromEnvironment,
	}

	conn, _, err := dialer.DialContext(ctx, f.config.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	connID := uuid.NewString()
	sub := subscribeMessage{
		ID:      connID,
		Op:      "subscribe",
		Symbols: f.config.Symbols,
	}
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}

	logger.WithFields(logger.Fields{
		"conn_id": connID,
		"symbols": f.config.Symbols,
	}).Info("Feed subscribed")

	// Close the connection when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := f.handleFrame(ctx, msg); err != nil {
			logger.WithError(err).WithField("conn_id", connID).Warn("Dropping bad feed frame")
		}
	}
}

func (f *Feed) handleFrame(ctx context.Context, msg []byte) error {
	var tick tickMessage
	if err := json.Unmarshal(msg, &tick); err != nil {
		return err
	}
	if tick.Symbol == "" || tick.Price <= 0 {
		// heartbeat or ack frame
		return nil
	}

	at := time.UnixMilli(tick.Time)
	if tick.Time == 0 {
		at = time.Now()
	}

	if f.cache != nil {
		f.cache.Set(tick.Symbol, tick.Price)
	}

	if f.sink != nil {
		return f.sink.Upsert(ctx, &model.PriceTick{
			Symbol: tick.Symbol,
			Price:  tick.Price,
			Volume: tick.Volume,
			Source: "feed",
			Time:   at.UTC(),
		})
	}

	return nil
}
