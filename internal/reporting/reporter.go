// Package reporting is the process-wide channel for errors that happen after the
// user-visible outcome is already decided (history writes, resume archiving).
package reporting

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/careercoach/internal/utils"
)

type Reporter interface {
	Report(err error)
}

// Hub logs every reported error and fans it out to subscribers without blocking.
type Hub struct {
	log *logrus.Logger

	mu   sync.RWMutex
	subs map[int]chan error
	next int
}

func NewHub(l *logrus.Logger) *Hub {
	if l == nil {
		l = logrus.New()
	}
	return &Hub{log: l, subs: map[int]chan error{}}
}

func (h *Hub) Report(err error) {
	if err == nil {
		return
	}
	h.log.WithFields(logrus.Fields{
		"code": utils.CodeOf(err),
	}).WithError(err).Error("background failure")

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- err:
		default: // slow subscriber, drop
		}
	}
}

// Subscribe returns a buffered channel of reported errors and a cancel func.
func (h *Hub) Subscribe(buf int) (<-chan error, func()) {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan error, buf)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
	}
}
