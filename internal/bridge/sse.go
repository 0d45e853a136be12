package bridge

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/zbridge-io/zbridge/core/logx"
)

// connectionEvent is the first message on every streaming channel, emitted as
// soon as the channel is established. The connection id lets the peer target
// this channel with push-mode dispatch requests.
type connectionEvent struct {
	Type         string `json:"type"`
	Status       string `json:"status"`
	ConnectionID string `json:"connection_id"`
}

const keepAliveInterval = 25 * time.Second

// SSEHandler serves the Server-Sent Events push channel. Each peer gets its
// own connection and queue; messages are written in enqueue order, one
// complete JSON object per event. Peer disconnect tears the connection down
// without touching the shared backend session.
func (b *Broker) SSEHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		c := b.Connect()
		defer b.Disconnect(c)

		first, _ := json.Marshal(connectionEvent{Type: "connection", Status: "established", ConnectionID: c.ID})
		if !writeEvent(w, first) {
			return
		}
		flusher.Flush()

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
					return
				}
				flusher.Flush()
			case data, open := <-c.pending:
				if !open {
					return
				}
				if !writeEvent(w, data) {
					logx.Log.Debug().Str("conn", c.ID).Msg("sse write failed; closing")
					return
				}
				flusher.Flush()
			}
		}
	}
}

// writeEvent frames one complete JSON object as a single SSE event.
func writeEvent(w http.ResponseWriter, data []byte) bool {
	if _, err := w.Write([]byte("data: ")); err != nil {
		return false
	}
	if _, err := w.Write(data); err != nil {
		return false
	}
	_, err := w.Write([]byte("\n\n"))
	return err == nil
}
