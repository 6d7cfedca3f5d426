package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"timesniper/internal/dedup"
	"timesniper/internal/extract"
	"timesniper/internal/feed"
)

type scriptedSource struct {
	batches [][]feed.Event
	calls   int
}

func (s *scriptedSource) Poll(ctx context.Context) ([]feed.Event, error) {
	batch := s.batches[s.calls%len(s.batches)]
	s.calls++
	return batch, nil
}

type recordingCallback struct {
	candidates []string
	err        error
}

func (r *recordingCallback) call(ctx context.Context, c extract.Candidate) error {
	r.candidates = append(r.candidates, c.Identifier)
	return r.err
}

func repostEvent(id, original string) feed.Event {
	return feed.Event{
		ID:         id,
		Author:     "timedotfun",
		Text:       "RT @" + original + ": now live",
		ObservedAt: time.Now(),
		IsRepost:   true,
		RepostOf:   original,
	}
}

func runOnce(t *testing.T, loop *Loop) {
	t.Helper()
	loop.Once = true
	require.NoError(t, loop.Run(context.Background()))
}

func TestCandidateDeliveredOnce(t *testing.T) {
	src := &scriptedSource{batches: [][]feed.Event{
		{repostEvent("1001", "alice")},
	}}
	cb := &recordingCallback{}
	loop := &Loop{
		Source:   src,
		Store:    dedup.NewStore(),
		Callback: cb.call,
	}

	// the same event re-lists on every poll
	runOnce(t, loop)
	runOnce(t, loop)
	runOnce(t, loop)

	require.Equal(t, []string{"alice"}, cb.candidates)
	require.True(t, loop.Store.SeenCandidate("alice"))
}

func TestFailedCallbackIsNotRetried(t *testing.T) {
	src := &scriptedSource{batches: [][]feed.Event{
		{repostEvent("2001", "bob")},
		{repostEvent("2002", "bob")},
	}}
	cb := &recordingCallback{err: errors.New("acquisition failed")}
	loop := &Loop{
		Source:   src,
		Store:    dedup.NewStore(),
		Callback: cb.call,
	}

	runOnce(t, loop)
	runOnce(t, loop)

	// a second event promoting the same candidate spends no attempt
	require.Equal(t, []string{"bob"}, cb.candidates)
}

func TestRepostMetadataBeatsTextExtraction(t *testing.T) {
	ev := repostEvent("3001", "carol")
	ev.Text = "RT @carol: thanks @timedotfun and @dave"
	src := &scriptedSource{batches: [][]feed.Event{{ev}}}
	cb := &recordingCallback{}
	loop := &Loop{
		Source:    src,
		Store:     dedup.NewStore(),
		Extractor: extract.Extractor{Exclude: []string{"timedotfun"}},
		Callback:  cb.call,
	}

	runOnce(t, loop)

	require.Equal(t, []string{"carol"}, cb.candidates)
}

func TestTextExtractionWhenMetadataMissing(t *testing.T) {
	ev := repostEvent("4001", "")
	ev.Text = "RT @erin: join @erin and @frank today"
	src := &scriptedSource{batches: [][]feed.Event{{ev}}}
	cb := &recordingCallback{}
	loop := &Loop{
		Source:    src,
		Store:     dedup.NewStore(),
		Extractor: extract.Extractor{Exclude: []string{"timedotfun"}},
		Callback:  cb.call,
	}

	runOnce(t, loop)

	require.Equal(t, []string{"erin", "frank"}, cb.candidates)
}

func TestExcludedOriginalAuthorIsSkipped(t *testing.T) {
	src := &scriptedSource{batches: [][]feed.Event{
		{repostEvent("5001", "timedotfun")},
	}}
	cb := &recordingCallback{}
	loop := &Loop{
		Source:    src,
		Store:     dedup.NewStore(),
		Extractor: extract.Extractor{Exclude: []string{"timedotfun"}},
		Callback:  cb.call,
	}

	runOnce(t, loop)

	require.Empty(t, cb.candidates)
}

func TestNonRepostEventsAreIgnored(t *testing.T) {
	src := &scriptedSource{batches: [][]feed.Event{{
		{ID: "6001", Author: "timedotfun", Text: "gm @grace", IsRepost: false},
	}}}
	cb := &recordingCallback{}
	loop := &Loop{
		Source:   src,
		Store:    dedup.NewStore(),
		Callback: cb.call,
	}

	runOnce(t, loop)

	require.Empty(t, cb.candidates)
	require.True(t, loop.Store.SeenEvent("6001"))
}

func TestPollErrorIsContained(t *testing.T) {
	loop := &Loop{
		Source:   failingSource{},
		Store:    dedup.NewStore(),
		Callback: (&recordingCallback{}).call,
		Once:     true,
	}
	require.NoError(t, loop.Run(context.Background()))
}

type failingSource struct{}

func (failingSource) Poll(ctx context.Context) ([]feed.Event, error) {
	return nil, errors.New("feed unreachable")
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loop := &Loop{
		Source:   &scriptedSource{batches: [][]feed.Event{{}}},
		Store:    dedup.NewStore(),
		Callback: (&recordingCallback{}).call,
	}
	require.ErrorIs(t, loop.Run(ctx), context.Canceled)
}
