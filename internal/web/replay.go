package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/peterkuimelis/spiredeck/internal/history"
	"github.com/peterkuimelis/spiredeck/internal/report"
	"github.com/peterkuimelis/spiredeck/internal/runlog"
)

// Replay message types.
const (
	MsgLoad    = "load"
	MsgForward = "forward"
	MsgBack    = "back"
	MsgSeek    = "seek"
	MsgState   = "state"
	MsgError   = "error"
)

// ClientMessage is a browser request on the replay socket.
type ClientMessage struct {
	Type string `json:"type"`

	// For "load"
	Run json.RawMessage `json:"run,omitempty"`

	// For "seek"
	Floor int `json:"floor,omitempty"`
}

// ServerMessage answers every ClientMessage.
type ServerMessage struct {
	Type string `json:"type"`

	Deck *report.DeckView `json:"deck,omitempty"`
	Diff *report.TurnView `json:"diff,omitempty"`

	// Deck events caused by this message.
	Events []report.EventView `json:"events,omitempty"`

	// Only on the answer to "load".
	Report *report.Report `json:"report,omitempty"`

	Error string `json:"error,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer conn.CloseNow()
	// A load message carries a whole run file.
	conn.SetReadLimit(maxRunBytes + 1024)

	ctx := r.Context()
	var rp replay
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && !errors.Is(err, context.Canceled) {
				s.logger.Debug("websocket read", zap.Error(err))
			}
			return
		}

		resp := s.step(&rp, msg)
		if err := wsjson.Write(ctx, conn, resp); err != nil {
			s.logger.Debug("websocket write", zap.Error(err))
			return
		}
	}
}

// replay is the per-connection cursor.
type replay struct {
	tl   *history.Timeline
	seen int // deck events already sent
}

// step applies one client message to rp and returns the reply.
func (s *Server) step(rp *replay, msg ClientMessage) ServerMessage {
	if msg.Type == MsgLoad {
		run, err := runlog.Parse(bytes.NewReader(msg.Run))
		if err != nil {
			return errorMessage(err)
		}
		res := s.reconstruct(run)
		*rp = replay{tl: res.Timeline(s.eventLogger())}
		resp := rp.state(nil)
		resp.Report = report.Build(res, run)
		return resp
	}

	if rp.tl == nil {
		return errorMessage(errors.New("no run loaded"))
	}

	switch msg.Type {
	case MsgForward:
		diff, ok := rp.tl.Forward()
		if !ok {
			return rp.state(nil)
		}
		view := report.NewTurnView(diff)
		return rp.state(&view)
	case MsgBack:
		diff, ok := rp.tl.Back()
		if !ok {
			return rp.state(nil)
		}
		view := report.NewTurnView(diff)
		return rp.state(&view)
	case MsgSeek:
		rp.tl.Seek(msg.Floor)
		return rp.state(nil)
	default:
		return errorMessage(fmt.Errorf("unknown message type %q", msg.Type))
	}
}

// state snapshots the deck along with the events logged since the last reply.
func (rp *replay) state(diff *report.TurnView) ServerMessage {
	d := rp.tl.Deck()
	events := d.Logger().Events()
	fresh := report.NewEventViews(events[rp.seen:])
	rp.seen = len(events)

	view := report.NewDeckView(rp.tl.Floor(), rp.tl.Position(), d)
	return ServerMessage{Type: MsgState, Deck: &view, Diff: diff, Events: fresh}
}

func errorMessage(err error) ServerMessage {
	return ServerMessage{Type: MsgError, Error: err.Error()}
}
