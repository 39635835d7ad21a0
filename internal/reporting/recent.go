package reporting

import (
	"context"
	"sync"
	"time"

	"github.com/yoockh/careercoach/internal/utils"
)

type Failure struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
	At      time.Time  `json:"at"`
}

// Recent keeps the last few background failures and a per-code count.
type Recent struct {
	mu     sync.Mutex
	size   int
	items  []Failure
	counts map[utils.Code]int
	now    func() time.Time
}

func NewRecent(size int) *Recent {
	if size <= 0 {
		size = 20
	}
	return &Recent{size: size, counts: map[utils.Code]int{}, now: time.Now}
}

// Follow drains a Hub subscription until ctx is done.
func (r *Recent) Follow(ctx context.Context, h *Hub) {
	ch, cancel := h.Subscribe(64)
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-ch:
				if !ok {
					return
				}
				r.add(err)
			}
		}
	}()
}

func (r *Recent) add(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := utils.CodeOf(err)
	r.counts[code]++
	r.items = append(r.items, Failure{Code: code, Message: err.Error(), At: r.now().UTC()})
	if len(r.items) > r.size {
		r.items = r.items[len(r.items)-r.size:]
	}
}

// Snapshot returns failures newest first plus the totals per code.
func (r *Recent) Snapshot() ([]Failure, map[utils.Code]int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Failure, len(r.items))
	for i, f := range r.items {
		out[len(r.items)-1-i] = f
	}
	counts := make(map[utils.Code]int, len(r.counts))
	for k, v := range r.counts {
		counts[k] = v
	}
	return out, counts
}
