package api

import (
	"testing"
	"time"
	"timesniper/internal/feed"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRepostAuthor(t *testing.T) {
	inc := includes{
		Tweets: []post{
			{ID: "900", AuthorID: "u1", Text: "Just set up my profile"},
		},
		Users: []user{
			{ID: "u1", Username: "alice"},
		},
	}

	author, isRepost := repostAuthor(post{
		ID:               "1",
		ReferencedTweets: []reference{{Type: "retweeted", ID: "900"}},
	}, inc)
	require.True(t, isRepost)
	require.Equal(t, "alice", author)

	// quote tweets and replies are not reposts
	_, isRepost = repostAuthor(post{
		ID:               "2",
		ReferencedTweets: []reference{{Type: "quoted", ID: "900"}},
	}, inc)
	require.False(t, isRepost)

	// repost whose expansion objects are missing still classifies as a
	// repost, author resolution falls back to text extraction
	author, isRepost = repostAuthor(post{
		ID:               "3",
		ReferencedTweets: []reference{{Type: "retweeted", ID: "999"}},
	}, inc)
	require.True(t, isRepost)
	require.Equal(t, "", author)
}

func TestEventsFromTimeline(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tl := timeline{
		Data: []post{
			{ID: "1", Text: "RT @alice: Just set up my profile", CreatedAt: at,
				ReferencedTweets: []reference{{Type: "retweeted", ID: "900"}}},
			{ID: "2", Text: "gm everyone", CreatedAt: at},
		},
		Includes: includes{
			Tweets: []post{{ID: "900", AuthorID: "u1"}},
			Users:  []user{{ID: "u1", Username: "alice"}},
		},
	}

	got := eventsFromTimeline("timedotfun", tl)
	want := []feed.Event{
		{
			ID:         "1",
			Author:     "timedotfun",
			Text:       "RT @alice: Just set up my profile",
			ObservedAt: at,
			IsRepost:   true,
			RepostOf:   "alice",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}
}
