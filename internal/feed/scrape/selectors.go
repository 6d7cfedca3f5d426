package scrape

// X.com DOM selectors. Isolated here because the feed changes its DOM
// frequently; update these when scraping breaks.
const (
	postArticle   = `article[data-testid="tweet"]`
	postText      = `[data-testid="tweetText"]`
	postAuthor    = `[data-testid="User-Name"]`
	postTimestamp = `time`

	// present only on reposts
	repostContext = `[data-testid="socialContext"]`
)
