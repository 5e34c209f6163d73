package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/nats"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/usecases"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/metrics"
)

// wsRequest asks for the markers of one map frame.
type wsRequest struct {
	Filter   domain.FilterState  `json:"filter"`
	Viewport *domain.MapViewport `json:"viewport"`
	ActiveID *int                `json:"active_id"`
	Max      *int                `json:"max"`
	Seq      int64               `json:"seq"`
}

type wsMarkers struct {
	Type string `json:"type"`
	Seq  int64  `json:"seq"`
	MarkersResponse
}

type wsError struct {
	Type  string `json:"type"`
	Seq   int64  `json:"seq"`
	Error string `json:"error"`
}

type wsDatasetLoaded struct {
	Type  string          `json:"type"`
	Event json.RawMessage `json:"event"`
}

// WebSocketHandler streams marker sets to a map client.
// Clients send {"filter":{...},"viewport":{...},"active_id":1,"max":200,"seq":7}
// and get back {"type":"markers","seq":7,...}. A request with a higher seq
// replaces one still waiting, and answers for an older seq are dropped.
// Dataset reloads are pushed as {"type":"dataset_loaded"}.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		logger := slog.Default().With("remote", remoteAddr)
		logger.Info("ws client connected")

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if deps.NATS != nil {
			sub, err := deps.NATS.Subscribe(natsadapter.SubjectDatasetLoaded, func(msg *nats.Msg) {
				_ = writeJSON(wsDatasetLoaded{Type: "dataset_loaded", Event: json.RawMessage(msg.Data)})
			})
			if err != nil {
				logger.Warn("ws dataset subscribe failed", "error", err)
			} else {
				defer func() { _ = sub.Unsubscribe() }()
			}
		}

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// One request waits at most; the reader replaces it when a newer one arrives.
		pending := make(chan wsRequest, 1)
		var latest atomic.Int64
		workerDone := make(chan struct{})
		go func() {
			defer close(workerDone)
			for req := range pending {
				if req.Seq < latest.Load() {
					continue
				}
				resp := deps.answerMarkers(req)
				if req.Seq < latest.Load() {
					continue
				}
				if err := writeJSON(resp); err != nil {
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var req wsRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				_ = writeJSON(wsError{Type: "error", Error: "invalid JSON"})
				continue
			}
			if req.Seq > latest.Load() {
				latest.Store(req.Seq)
			}
			select {
			case <-pending:
			default:
			}
			pending <- req
		}

		close(pending)
		<-workerDone
		close(done)
		logger.Info("ws client disconnected")
	}
}

func (d *Dependencies) answerMarkers(req wsRequest) interface{} {
	if err := validateViewport(req.Viewport); err != nil {
		return wsError{Type: "error", Seq: req.Seq, Error: err.Error()}
	}
	budget := d.defaultMarkers()
	if req.Max != nil {
		budget = *req.Max
	}
	if budget < 0 {
		return wsError{Type: "error", Seq: req.Seq, Error: "max must not be negative"}
	}
	if budget > MarkerCeiling {
		budget = MarkerCeiling
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.requestTimeout())
	defer cancel()
	places, err := d.Places.Markers(ctx, usecases.MarkerQuery{
		Filter:     req.Filter,
		Viewport:   req.Viewport,
		ActiveID:   req.ActiveID,
		MaxMarkers: budget,
	})
	if err != nil {
		return wsError{Type: "error", Seq: req.Seq, Error: err.Error()}
	}
	return wsMarkers{Type: "markers", Seq: req.Seq, MarkersResponse: toMarkers(places, req.ActiveID)}
}
