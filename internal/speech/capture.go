package speech

import (
	"context"
	"strings"
	"sync"

	"github.com/yoockh/careercoach/internal/utils"
)

type State string

const (
	StateIdle      State = "idle"
	StateListening State = "listening"
)

type Options struct {
	Language string

	// DiscardOnUnexpectedEnd clears the transcript when the recognizer ends the
	// stream on its own while the caller is still listening.
	DiscardOnUnexpectedEnd bool

	OnTranscript func(transcript string)
	OnError      func(err error)
	OnState      func(s State)
}

// Capture drives one recognizer stream at a time. The transcript is replaced on
// every recognition event with everything finalized so far plus the current guess.
type Capture struct {
	rec  Recognizer
	opts Options

	mu         sync.Mutex
	state      State
	stream     Stream
	gen        uint64
	finalized  strings.Builder
	transcript string
	lastErr    error
}

func NewCapture(rec Recognizer, opts Options) *Capture {
	if opts.Language == "" {
		opts.Language = "en-US"
	}
	return &Capture{rec: rec, opts: opts, state: StateIdle}
}

func (c *Capture) StartListening(ctx context.Context) error {
	const op = "Capture.StartListening"

	if c.rec == nil {
		return utils.E(utils.CodeUnsupportedEnvironment, op, "speech recognition is not available", nil)
	}

	c.mu.Lock()
	if c.state == StateListening {
		c.mu.Unlock()
		return nil
	}
	c.gen++
	gen := c.gen
	c.finalized.Reset()
	c.transcript = ""
	c.lastErr = nil
	c.mu.Unlock()

	c.emitTranscript("")

	stream, err := c.rec.Start(ctx, c.opts.Language)
	if err != nil {
		err = utils.E(utils.CodeUnavailable, op, "could not start speech recognition", err)
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	if c.gen != gen {
		// superseded while the stream was opening
		c.mu.Unlock()
		_ = stream.Stop()
		return nil
	}
	c.stream = stream
	c.state = StateListening
	c.mu.Unlock()

	c.emitState(StateListening)
	go c.consume(gen, stream)
	return nil
}

// StopListening is a no-op when already idle.
func (c *Capture) StopListening() error {
	c.mu.Lock()
	if c.state != StateListening {
		c.mu.Unlock()
		return nil
	}
	stream := c.stream
	c.state = StateIdle
	c.mu.Unlock()

	c.emitState(StateIdle)
	if stream != nil {
		return stream.Stop()
	}
	return nil
}

func (c *Capture) Write(audio []byte) error {
	c.mu.Lock()
	stream, listening := c.stream, c.state == StateListening
	c.mu.Unlock()

	if !listening || stream == nil {
		return utils.E(utils.CodeConflict, "Capture.Write", "not listening", nil)
	}
	return stream.Send(audio)
}

func (c *Capture) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Capture) Listening() bool { return c.State() == StateListening }

func (c *Capture) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript
}

// Err returns the last recognition error; it is cleared by StartListening.
func (c *Capture) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Capture) consume(gen uint64, stream Stream) {
	for ev := range stream.Events() {
		if ev.Err != nil {
			if c.recordError(gen, ev.Err) {
				c.emitError(ev.Err)
			}
			continue
		}
		if t, ok := c.apply(gen, ev.Segments); ok {
			c.emitTranscript(t)
		}
	}
	c.ended(gen)
}

func (c *Capture) apply(gen uint64, segs []Segment) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return "", false
	}

	var interim strings.Builder
	for _, s := range segs {
		if s.Final {
			c.finalized.WriteString(s.Text)
		} else {
			interim.WriteString(s.Text)
		}
	}
	c.transcript = c.finalized.String() + interim.String()
	return c.transcript, true
}

func (c *Capture) recordError(gen uint64, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.lastErr = err
	return true
}

func (c *Capture) ended(gen uint64) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.stream = nil
	if c.state != StateListening {
		// explicit stop already moved us to idle
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	cleared := c.opts.DiscardOnUnexpectedEnd
	if cleared {
		c.finalized.Reset()
		c.transcript = ""
	}
	c.mu.Unlock()

	// observers see the cleared transcript while still listening
	if cleared {
		c.emitTranscript("")
	}
	c.emitState(StateIdle)
}

func (c *Capture) emitTranscript(t string) {
	if c.opts.OnTranscript != nil {
		c.opts.OnTranscript(t)
	}
}

func (c *Capture) emitError(err error) {
	if c.opts.OnError != nil {
		c.opts.OnError(err)
	}
}

func (c *Capture) emitState(s State) {
	if c.opts.OnState != nil {
		c.opts.OnState(s)
	}
}
