package bridge

import (
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/zbridge-io/zbridge/core/logx"
)

// WSHandler serves the WebSocket variant of the push channel. It carries the
// same message stream as the SSE handler: a connection-established event
// first, then queued envelopes in order, one JSON object per text frame.
func (b *Broker) WSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			logx.Log.Debug().Err(err).Msg("websocket accept failed")
			return
		}
		ctx := r.Context()

		c := b.Connect()
		defer b.Disconnect(c)

		if !c.Push(connectionEvent{Type: "connection", Status: "established", ConnectionID: c.ID}) {
			_ = ws.Close(websocket.StatusInternalError, "closing")
			return
		}

		// Reads are drained only to detect peer disconnect; the channel
		// is push-only.
		go func() {
			for {
				if _, _, err := ws.Read(ctx); err != nil {
					b.Disconnect(c)
					return
				}
			}
		}()

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = ws.Close(websocket.StatusNormalClosure, "closing")
				return
			case <-ticker.C:
				if err := ws.Ping(ctx); err != nil {
					return
				}
			case data, open := <-c.pending:
				if !open {
					_ = ws.Close(websocket.StatusNormalClosure, "closing")
					return
				}
				if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
					logx.Log.Debug().Str("conn", c.ID).Err(err).Msg("websocket write failed; closing")
					return
				}
			}
		}
	}
}
