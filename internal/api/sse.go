package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tmaxmax/go-sse"

	"github.com/mdreplay/engine/internal/catalogue"
	"github.com/mdreplay/engine/internal/log"
)

// errStreamingUnsupported is an internal-error condition: the ResponseWriter
// chi hands handlers always implements http.Flusher, so this only fires if a
// non-standard middleware wraps it in something that doesn't.
var errStreamingUnsupported = errors.New("response writer does not support streaming")

// Subscribe handles GET /mktdata/session/subscribe/{id}, streaming the
// session's outbound events as Server-Sent Events until the session
// completes, is evicted, or the client disconnects.
//
// Each session supports exactly one live subscriber; a second concurrent
// attempt fails with ALREADY_SUBSCRIBED rather than displacing the first.
// Disconnecting only releases the subscription slot, it never stops the
// session or rewinds its cursor, so a client reconnecting mid-stream picks
// up wherever the session's scheduler currently is and never receives
// events published before it (re)attached.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.Registry.Get(id)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	events, err := s.Subscribe()
	if err != nil {
		RespondError(w, r, err)
		return
	}
	defer s.Unsubscribe()

	flusher, ok := w.(http.Flusher)
	if !ok {
		RespondError(w, r, errStreamingUnsupported)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case ev, open := <-events:
			if !open {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				log.L().Debug().Err(err).Str("session", id).Msg("sse write failed, client likely gone")
				return
			}
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, ev catalogue.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := &sse.Message{}
	msg.AppendData(string(body))
	_, err = msg.WriteTo(w)
	return err
}
