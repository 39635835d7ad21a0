// Package stt holds the cloud speech recognizers behind speech.Recognizer.
package stt

import capture "github.com/yoockh/careercoach/internal/speech"

// Provider is a recognizer that owns a client connection.
type Provider interface {
	capture.Recognizer
	Close() error
}

var _ Provider = (*GoogleSpeech)(nil)
