package stt

import (
	"context"
	"errors"
	"io"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"

	capture "github.com/yoockh/careercoach/internal/speech"
)

type GoogleSpeech struct {
	c *speech.Client

	Encoding     speechpb.RecognitionConfig_AudioEncoding
	SampleRateHz int32
}

func NewGoogleSpeech(ctx context.Context, opts ...option.ClientOption) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GoogleSpeech{
		c:            c,
		Encoding:     speechpb.RecognitionConfig_LINEAR16,
		SampleRateHz: 16000,
	}, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

// Start opens a streaming recognition session with interim results.
// language example: "en-US", "id-ID"
func (g *GoogleSpeech) Start(ctx context.Context, language string) (capture.Stream, error) {
	if language == "" {
		language = "en-US"
	}

	// the stream outlives the request that opened it
	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	rs, err := g.c.StreamingRecognize(sctx)
	if err != nil {
		cancel()
		return nil, err
	}

	err = rs.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:                   g.Encoding,
					SampleRateHertz:            g.SampleRateHz,
					LanguageCode:               language,
					EnableAutomaticPunctuation: true,
				},
				InterimResults: true,
			},
		},
	})
	if err != nil {
		cancel()
		return nil, err
	}

	s := &googleStream{rs: rs, cancel: cancel, events: make(chan capture.Event, 32)}
	go s.recv()
	return s, nil
}

type googleStream struct {
	rs     speechpb.Speech_StreamingRecognizeClient
	cancel context.CancelFunc
	events chan capture.Event

	mu     sync.Mutex
	closed bool
}

func (s *googleStream) Send(audio []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("stream closed")
	}
	return s.rs.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{AudioContent: audio},
	})
}

func (s *googleStream) Events() <-chan capture.Event { return s.events }

func (s *googleStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.rs.CloseSend()
}

func (s *googleStream) recv() {
	defer close(s.events)
	defer s.cancel()

	for {
		resp, err := s.rs.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			s.events <- capture.Event{Err: err}
			return
		}
		if st := resp.GetError(); st != nil && st.GetCode() != 0 {
			s.events <- capture.Event{Err: errors.New(st.GetMessage())}
			continue
		}

		var segs []capture.Segment
		for _, r := range resp.GetResults() {
			alts := r.GetAlternatives()
			if len(alts) == 0 {
				continue
			}
			segs = append(segs, capture.Segment{Text: alts[0].GetTranscript(), Final: r.GetIsFinal()})
		}
		if len(segs) > 0 {
			s.events <- capture.Event{Segments: segs}
		}
	}
}
