package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

type fakeCaptioner struct {
	caption string
	err     error
	delay   time.Duration
}

func (f *fakeCaptioner) Describe(ctx context.Context, _ string) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.caption, f.err
}

func TestCaptionStageUnconfiguredReturnsSentinel(t *testing.T) {
	stage := NewCaptionStage(CaptionConfig{Confidence: 0.85})

	got := stage.Generate(context.Background(), "/tmp/x.jpg")
	if got != CaptionSentinel {
		t.Errorf("Generate() = %q, want sentinel", got)
	}
	if stage.Confidence() != 0.85 {
		t.Errorf("Confidence() = %v, want 0.85", stage.Confidence())
	}
}

func TestCaptionStageSuccess(t *testing.T) {
	stage := &CaptionStage{
		captioner:  &fakeCaptioner{caption: "a dog running on a beach"},
		timeout:    time.Second,
		confidence: 0.85,
	}

	got := stage.Generate(context.Background(), "/tmp/x.jpg")
	if got != "a dog running on a beach" {
		t.Errorf("Generate() = %q", got)
	}
	if got == CaptionSentinel {
		t.Error("real caption must differ from sentinel")
	}
}

func TestCaptionStageErrorDegrades(t *testing.T) {
	stage := &CaptionStage{
		captioner: &fakeCaptioner{err: errors.New("model offline")},
		timeout:   time.Second,
	}

	if got := stage.Generate(context.Background(), "/tmp/x.jpg"); got != CaptionSentinel {
		t.Errorf("Generate() = %q, want sentinel on backend error", got)
	}
}

func TestCaptionStageEmptyResultDegrades(t *testing.T) {
	stage := &CaptionStage{
		captioner: &fakeCaptioner{caption: ""},
		timeout:   time.Second,
	}

	if got := stage.Generate(context.Background(), "/tmp/x.jpg"); got != CaptionSentinel {
		t.Errorf("Generate() = %q, want sentinel for empty caption", got)
	}
}

func TestCaptionStageTimeout(t *testing.T) {
	stage := &CaptionStage{
		captioner: &fakeCaptioner{caption: "too late", delay: 500 * time.Millisecond},
		timeout:   10 * time.Millisecond,
	}

	start := time.Now()
	got := stage.Generate(context.Background(), "/tmp/x.jpg")
	if got != CaptionSentinel {
		t.Errorf("Generate() = %q, want sentinel on timeout", got)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("Generate() blocked for %v despite timeout", elapsed)
	}
}

func TestCaptionStageTruncatesLongCaptions(t *testing.T) {
	stage := &CaptionStage{
		captioner: &fakeCaptioner{caption: strings.Repeat("x", maxCaptionLen*2)},
		timeout:   time.Second,
	}

	got := stage.Generate(context.Background(), "/tmp/x.jpg")
	if len(got) != maxCaptionLen {
		t.Errorf("caption length = %d, want %d", len(got), maxCaptionLen)
	}
}

func TestCaptionStageTruncatesOnRuneBoundary(t *testing.T) {
	// Three bytes per rune, so the byte limit lands mid-rune.
	stage := &CaptionStage{
		captioner: &fakeCaptioner{caption: strings.Repeat("画", maxCaptionLen)},
		timeout:   time.Second,
	}

	got := stage.Generate(context.Background(), "/tmp/x.jpg")
	if len(got) > maxCaptionLen {
		t.Errorf("caption length = %d, want at most %d", len(got), maxCaptionLen)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncated caption is not valid UTF-8: %q", got)
	}
}
