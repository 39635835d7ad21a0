// Package events fans session snapshots out to WebSocket clients through Redis pub/sub,
// so a client connected to any instance sees every change.
package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/careercoach/internal/interview"
)

func StateChannel(sessionID string) string {
	return "interview:" + sessionID + ":state"
}

type Message struct {
	Type  string              `json:"type"` // state
	State *interview.Snapshot `json:"state,omitempty"`
}

func EncodeState(s interview.Snapshot) ([]byte, error) {
	return json.Marshal(Message{Type: "state", State: &s})
}

type StatePublisher struct {
	rdb redis.UniversalClient
	log *logrus.Logger
}

func NewStatePublisher(rdb redis.UniversalClient, l *logrus.Logger) *StatePublisher {
	if l == nil {
		l = logrus.New()
	}
	return &StatePublisher{rdb: rdb, log: l}
}

func (p *StatePublisher) Publish(ctx context.Context, s interview.Snapshot) error {
	b, err := EncodeState(s)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, StateChannel(s.SessionID), b).Err()
}

// Observer adapts the publisher to interview.Env.OnChange.
func (p *StatePublisher) Observer() func(interview.Snapshot) {
	return func(s interview.Snapshot) {
		if err := p.Publish(context.Background(), s); err != nil {
			p.log.WithError(err).WithField("session_id", s.SessionID).Warn("state publish failed")
		}
	}
}

func (p *StatePublisher) Subscribe(ctx context.Context, sessionID string) *redis.PubSub {
	return p.rdb.Subscribe(ctx, StateChannel(sessionID))
}
