package worker

import (
	"context"
	"sync"
	"time"

	"vault-analyzer/internal/analysis"
	"vault-analyzer/internal/catalog"
	"vault-analyzer/internal/decision"
	"vault-analyzer/internal/logging"
	"vault-analyzer/internal/mediatypes"
	"vault-analyzer/internal/metrics"
	"vault-analyzer/internal/safety"
)

// state values exported through the worker state gauge.
type state int

const (
	stateIdle state = iota
	stateFetching
	stateDraining
	stateBackoff
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateFetching:
		return "fetching"
	case stateDraining:
		return "draining"
	case stateBackoff:
		return "backoff"
	}
	return "unknown"
}

// Catalog is the slice of the catalog API the worker drives.
type Catalog interface {
	ListPending(ctx context.Context) ([]catalog.MediaItem, error)
	UpdateItem(ctx context.Context, id string, decision catalog.ModerationDecision) error
}

// SafetyClassifier scores an image, degrading to a documented fallback
// verdict when the classifier service is unreachable.
type SafetyClassifier interface {
	ClassifyOrDegrade(ctx context.Context, imagePath string) safety.Verdict
}

// CaptionGenerator produces a natural-language description for an image.
type CaptionGenerator interface {
	Generate(ctx context.Context, path string) string
	Confidence() float64
}

// Thumbnailer renders the preview written alongside the decision.
type Thumbnailer interface {
	Render(path, id string) (string, error)
}

// Config carries the worker's pacing knobs.
type Config struct {
	// PollInterval is how long to idle when the catalog has nothing pending.
	PollInterval time.Duration
	// ItemDelay spaces out consecutive items within one cycle.
	ItemDelay time.Duration
	// BackoffInterval is the pause after a failed catalog poll.
	BackoffInterval time.Duration
}

// Worker runs the analysis pipeline: poll the catalog for pending items,
// analyze each one, and write the moderation decision back. A failure on one
// item never stops the cycle; a failure to poll backs the worker off.
type Worker struct {
	catalog    Catalog
	classifier SafetyClassifier
	captions   CaptionGenerator
	thumbs     Thumbnailer
	cfg        Config

	clock Clock
	// nudge cuts an idle wait short, e.g. when the filesystem watcher sees a
	// new file land in the processing directory.
	nudge chan struct{}

	extractMetadata func(path string) map[string]interface{}
}

// New constructs a worker with real wall-clock pacing.
func New(cat Catalog, classifier SafetyClassifier, captions CaptionGenerator, thumbs Thumbnailer, cfg Config) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.BackoffInterval <= 0 {
		cfg.BackoffInterval = 30 * time.Second
	}

	return &Worker{
		catalog:         cat,
		classifier:      classifier,
		captions:        captions,
		thumbs:          thumbs,
		cfg:             cfg,
		clock:           realClock{},
		nudge:           make(chan struct{}, 1),
		extractMetadata: analysis.ExtractMetadata,
	}
}

// Nudge wakes the worker from an idle wait. Safe to call from any goroutine;
// extra nudges while one is already pending are dropped.
func (w *Worker) Nudge() {
	select {
	case w.nudge <- struct{}{}:
	default:
	}
}

// Run drives the poll loop until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	logging.Info("Worker started (poll %s, item delay %s, backoff %s)",
		w.cfg.PollInterval, w.cfg.ItemDelay, w.cfg.BackoffInterval)

	for {
		if ctx.Err() != nil {
			logging.Info("Worker stopping: %v", ctx.Err())
			return
		}

		w.setState(stateFetching)
		items, err := w.catalog.ListPending(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logging.Info("Worker stopping: %v", ctx.Err())
				return
			}
			logging.Error("Failed to fetch pending items: %v", err)
			metrics.WorkerCyclesTotal.WithLabelValues("backoff").Inc()
			w.setState(stateBackoff)
			if !w.sleep(ctx, w.cfg.BackoffInterval) {
				return
			}
			continue
		}

		if len(items) == 0 {
			metrics.WorkerCyclesTotal.WithLabelValues("empty").Inc()
			metrics.WorkerLastCycleTimestamp.SetToCurrentTime()
			w.setState(stateIdle)
			if !w.idle(ctx) {
				return
			}
			continue
		}

		logging.Info("Processing %d pending item(s)", len(items))
		w.setState(stateDraining)
		for _, item := range items {
			if ctx.Err() != nil {
				logging.Info("Worker stopping: %v", ctx.Err())
				return
			}
			w.processItem(ctx, item)
			if !w.sleep(ctx, w.cfg.ItemDelay) {
				return
			}
		}
		metrics.WorkerCyclesTotal.WithLabelValues("drained").Inc()
		metrics.WorkerLastCycleTimestamp.SetToCurrentTime()
	}
}

// processItem runs the analysis stages for one item and commits the decision.
// Stage failures degrade rather than abort: the item always gets a decision,
// and only a failed catalog write leaves it pending for a later cycle.
func (w *Worker) processItem(ctx context.Context, item catalog.MediaItem) {
	start := w.clock.Now()
	logging.Info("Analyzing item %s (%s)", item.ID, item.FilePath)

	result := w.analyze(ctx, item)
	dec := decision.Aggregate(result, w.clock.Now())

	if err := w.catalog.UpdateItem(ctx, item.ID, dec); err != nil {
		if catalog.IsPermanent(err) {
			// Retrying cannot fix a permanent rejection; drop the item and
			// let an operator investigate.
			logging.Error("Item %s permanently rejected by catalog, not retrying: %v", item.ID, err)
			metrics.WorkerItemsTotal.WithLabelValues("failed").Inc()
		} else {
			logging.Warn("Failed to update item %s, will retry next cycle: %v", item.ID, err)
			metrics.WorkerItemsTotal.WithLabelValues("retry").Inc()
		}
		return
	}

	metrics.WorkerItemsTotal.WithLabelValues(dec.ModerationStatus).Inc()
	metrics.WorkerItemDuration.Observe(w.clock.Now().Sub(start).Seconds())
	logging.Info("Item %s -> %s (caption %q, confidence %.2f)",
		item.ID, dec.ModerationStatus, dec.AIDescription, dec.AIConfidence)
}

// analyze runs the independent stages concurrently, then the safety check.
// Non-image files skip the stages entirely: the image pipeline has no signal
// to offer, so they go to human review with fully degraded values.
func (w *Worker) analyze(ctx context.Context, item catalog.MediaItem) decision.AnalysisResult {
	if mediatypes.TypeForPath(item.FilePath) != mediatypes.FileTypeImage {
		logging.Warn("Item %s is not an image (%s), flagging for review", item.ID, item.FilePath)
		return decision.AnalysisResult{
			Caption:           analysis.CaptionSentinel,
			CaptionConfidence: w.captions.Confidence(),
			Metadata:          map[string]interface{}{},
			Safety:            safety.MockVerdict(),
		}
	}

	var result decision.AnalysisResult

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		result.Metadata = w.extractMetadata(item.FilePath)
	}()

	go func() {
		defer wg.Done()
		path, err := w.thumbs.Render(item.FilePath, item.ID)
		if err != nil {
			logging.Warn("Thumbnail failed for item %s: %v", item.ID, err)
			return
		}
		result.ThumbnailPath = path
	}()

	go func() {
		defer wg.Done()
		result.Caption = w.captions.Generate(ctx, item.FilePath)
		result.CaptionConfidence = w.captions.Confidence()
	}()

	wg.Wait()

	result.Safety = w.classifier.ClassifyOrDegrade(ctx, item.FilePath)

	return result
}

func (w *Worker) setState(s state) {
	metrics.WorkerState.Set(float64(s))
	logging.Debug("Worker state: %s", s)
}

// sleep waits for d, returning false when ctx was cancelled first.
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-w.clock.After(d):
		return true
	}
}

// idle waits out the poll interval, waking early on a nudge.
func (w *Worker) idle(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-w.clock.After(w.cfg.PollInterval):
		return true
	case <-w.nudge:
		logging.Debug("Idle wait cut short by filesystem activity")
		return true
	}
}
