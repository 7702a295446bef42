package tts

import (
	"context"
	"strings"
)

const (
	// Rough MP3 bitrate used to estimate narration length from raw bytes.
	estimateBitrate = 128000.0

	DefaultWordsPerMinute = 150.0
)

type SpeechResult struct {
	Audio    []byte
	Duration float64
}

// Provider turns narration text into audio. Implementations may return an
// empty Audio slice with an estimated Duration when no real synthesis is
// available.
type Provider interface {
	GenerateSpeech(ctx context.Context, text string) (*SpeechResult, error)
}

func EstimateAudioDuration(audio []byte) float64 {
	return float64(len(audio)*8) / estimateBitrate
}

// StubProvider estimates narration timing without producing audio. Used when
// no TTS API key is configured so story generation still works offline.
type StubProvider struct {
	wordsPerMinute float64
}

func NewStubProvider(wordsPerMinute float64) *StubProvider {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	return &StubProvider{wordsPerMinute: wordsPerMinute}
}

func (p *StubProvider) GenerateSpeech(ctx context.Context, text string) (*SpeechResult, error) {
	words := len(strings.Fields(text))
	return &SpeechResult{
		Duration: float64(words) / p.wordsPerMinute * 60.0,
	}, nil
}
