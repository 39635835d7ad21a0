package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/careercoach/internal/events"
	"github.com/yoockh/careercoach/internal/interview"
	"github.com/yoockh/careercoach/internal/speech"
	"github.com/yoockh/careercoach/internal/utils"
)

// WSHandler streams voice answers: binary frames carry LINEAR16 audio, text
// frames carry control messages, and the server pushes transcript and state updates.
type WSHandler struct {
	reg        *interview.Registry
	recognizer speech.Recognizer // nil when speech is disabled
	states     *events.StatePublisher
	speechOpts speech.Options
	log        *logrus.Logger
	upgrader   websocket.Upgrader
}

func NewWSHandler(reg *interview.Registry, rec speech.Recognizer, states *events.StatePublisher, opts speech.Options, origins []string, l *logrus.Logger) *WSHandler {
	if l == nil {
		l = logrus.New()
	}
	return &WSHandler{
		reg:        reg,
		recognizer: rec,
		states:     states,
		speechOpts: opts,
		log:        l,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(origins),
		},
	}
}

func originChecker(origins []string) func(r *http.Request) bool {
	allow := map[string]struct{}{}
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allow[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser client
		}
		_, ok := allow[origin]
		return ok
	}
}

const wsPingEvery = 25 * time.Second

type wsClientMsg struct {
	Type string `json:"type"` // start_listening | stop_listening
}

type wsServerMsg struct {
	Type      string              `json:"type"`
	Text      *string             `json:"text,omitempty"`
	Listening *bool               `json:"listening,omitempty"`
	Error     *APIError           `json:"error,omitempty"`
	State     *interview.Snapshot `json:"state,omitempty"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

func (w *wsConn) writeJSON(m wsServerMsg) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return w.writeText(b)
}

func errorMsg(typ string, err error) wsServerMsg {
	return wsServerMsg{Type: typ, Error: &APIError{Code: utils.CodeOf(err), Message: utils.Message(err)}}
}

func (h *WSHandler) InterviewWS(c *gin.Context) {
	o, ok := requireSession(c, h.reg)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	log := h.log.WithFields(logrus.Fields{"session_id": o.ID(), "user_id": o.UserID()})

	opts := h.speechOpts
	opts.OnTranscript = func(t string) {
		if _, err := o.ApplyTranscript(t); err != nil {
			return
		}
		_ = wc.writeJSON(wsServerMsg{Type: "transcript", Text: &t})
	}
	opts.OnError = func(err error) {
		log.WithError(err).Warn("speech recognition error")
		err = utils.E(utils.CodeUnavailable, "WSHandler.InterviewWS", "speech recognition failed", err)
		o.ReportError(err)
		_ = wc.writeJSON(errorMsg("speech_error", err))
	}
	opts.OnState = func(st speech.State) {
		listening := st == speech.StateListening
		if !listening {
			o.EndListening()
		}
		_ = wc.writeJSON(wsServerMsg{Type: "listening", Listening: &listening})
	}

	capture := speech.NewCapture(h.recognizer, opts)
	defer func() {
		_ = capture.StopListening()
		o.EndListening()
	}()

	// state snapshots: redis fan-out when available, otherwise only the initial one
	snap := o.Snapshot()
	_ = wc.writeJSON(wsServerMsg{Type: "state", State: &snap})

	if h.states != nil {
		pubsub := h.states.Subscribe(ctx, o.ID())
		defer pubsub.Close()

		go func() {
			ch := pubsub.Channel()
			for {
				select {
				case <-ctx.Done():
					return
				case m, ok := <-ch:
					if !ok {
						return
					}
					if werr := wc.writeText([]byte(m.Payload)); werr != nil {
						cancel()
						return
					}
				}
			}
		}()
	}

	go func() {
		t := time.NewTicker(wsPingEvery)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := wc.ping(); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		kind, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		if kind == websocket.BinaryMessage {
			if err := capture.Write(data); err != nil && !utils.IsCode(err, utils.CodeConflict) {
				log.WithError(err).Debug("audio frame dropped")
			}
			continue
		}

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.writeJSON(errorMsg("error", utils.E(utils.CodeInvalidArgument, "WSHandler.InterviewWS", "invalid json", err)))
			continue
		}

		switch msg.Type {
		case "start_listening":
			if _, err := o.BeginListening(); err != nil {
				_ = wc.writeJSON(errorMsg("error", err))
				continue
			}
			if err := capture.StartListening(ctx); err != nil {
				o.EndListening()
				o.ReportError(err)
				_ = wc.writeJSON(errorMsg("speech_error", err))
			}

		case "stop_listening":
			_ = capture.StopListening()
			o.EndListening()

		default:
			_ = wc.writeJSON(errorMsg("error", utils.E(utils.CodeInvalidArgument, "WSHandler.InterviewWS", "unknown message type", nil)))
		}
	}
}
