// Package monitor drives the poll-extract-act cycle. It owns the dedup
// store and guarantees at-most-once delivery of each candidate to the
// acquisition callback within a run.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"timesniper/internal/dedup"
	"timesniper/internal/extract"
	"timesniper/internal/feed"
	"timesniper/lib/textutil"
)

var tracer = otel.Tracer("timesniper.monitor")

const defaultInterval = 60 * time.Second

// Callback acts on one candidate. The loop records the outcome but does
// not retry: whatever happens, the candidate is marked processed.
type Callback func(ctx context.Context, candidate extract.Candidate) error

// Loop polls a feed source and hands every newly promoted candidate to
// the callback exactly once.
type Loop struct {
	Source    feed.Source
	Store     *dedup.Store
	Extractor extract.Extractor
	Callback  Callback

	// zero means the 60s default
	Interval time.Duration
	// single pass instead of running until ctx is done
	Once bool
}

// Run executes the cycle until the context is cancelled (or once, in
// single-pass mode). Poll and callback failures are contained to their
// iteration; only context cancellation ends the loop.
func (l *Loop) Run(ctx context.Context) error {
	interval := l.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.iterate(ctx)
		if l.Once {
			return nil
		}
		if err := sleep(ctx, interval); err != nil {
			return err
		}
	}
}

func (l *Loop) iterate(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "monitor.iterate")
	defer span.End()

	events, err := l.Source.Poll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "poll feed")
		slog.WarnContext(ctx, "feed poll failed", "err", err)
		return
	}
	span.SetAttributes(attribute.Int("events", len(events)))

	for _, ev := range events {
		if l.Store.SeenEvent(ev.ID) {
			continue
		}
		l.Store.MarkEvent(ev.ID)
		if !ev.IsRepost {
			continue
		}
		l.handleEvent(ctx, ev)
	}
}

func (l *Loop) handleEvent(ctx context.Context, ev feed.Event) {
	ctx, span := tracer.Start(ctx, "monitor.handleEvent", trace.WithAttributes(
		attribute.String("event.id", ev.ID),
	))
	defer span.End()

	for _, candidate := range l.candidates(ev) {
		if l.Store.SeenCandidate(candidate.Identifier) {
			slog.DebugContext(ctx, "candidate already processed",
				"candidate", candidate.Identifier)
			continue
		}
		// marked before the outcome is known: a failed acquisition does
		// not earn a second pass on a later poll
		l.Store.MarkCandidate(candidate.Identifier)

		slog.InfoContext(ctx, "new candidate",
			"candidate", candidate.Identifier, "event", ev.ID)
		if err := l.Callback(ctx, candidate); err != nil {
			span.RecordError(err)
			slog.ErrorContext(ctx, "candidate processing failed",
				"candidate", candidate.Identifier, "err", err)
		}
	}
}

// candidates prefers the repost metadata's original author and falls
// back to mention extraction over the event text.
func (l *Loop) candidates(ev feed.Event) []extract.Candidate {
	if ev.RepostOf != "" {
		handle := textutil.NormalizeHandle(ev.RepostOf)
		if handle == "" || textutil.MatchHandle(handle, l.Extractor.Exclude) {
			return nil
		}
		return []extract.Candidate{{Identifier: handle}}
	}
	return l.Extractor.Handles(ev.Text)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	return nil
}
