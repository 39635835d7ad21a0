// Package speech turns microphone audio into a live transcript.
package speech

import "context"

// Segment is one recognition result; Final segments never change again.
type Segment struct {
	Text  string
	Final bool
}

// Event is a single message from a recognition stream. A closed Events channel
// means the recognizer ended the stream.
type Event struct {
	Segments []Segment
	Err      error
}

type Stream interface {
	// Send forwards a frame of raw audio.
	Send(audio []byte) error
	Events() <-chan Event
	// Stop asks the recognizer to finish; pending results may still arrive.
	Stop() error
}

type Recognizer interface {
	Start(ctx context.Context, language string) (Stream, error)
}
