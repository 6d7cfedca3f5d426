package buyer

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"timesniper/lib/browser"
	"timesniper/lib/htmlutil"
	"timesniper/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

const profileSettle = 2 * time.Second

// Verifier determines whether a candidate has a profile on the
// platform. Its only side effect is one navigation; it never mutates
// session state.
type Verifier struct {
	session     *browser.Session
	platformURL string
}

func NewVerifier(b *browser.Session, platformURL string) *Verifier {
	if platformURL == "" {
		platformURL = "https://time.fun"
	}
	return &Verifier{session: b, platformURL: platformURL}
}

// Exists navigates to the candidate's profile location and classifies
// where the platform lands us.
func (v *Verifier) Exists(ctx context.Context, handle string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Exists")
	defer span.End()

	target := fmt.Sprintf("%s/%s", v.platformURL, url.PathEscape(handle))
	if err := v.session.Navigate(target, profileSettle); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "profile navigation failed")
		return false, err
	}

	final, err := v.session.URL()
	if err != nil {
		return false, err
	}
	html, err := v.session.HTML()
	if err != nil {
		html = ""
	}
	return ClassifyProfile(handle, final, html), nil
}

// generic locations the platform redirects to when a profile does not
// exist
var discoveryRoutes = []string{"/home", "/discover", "/explore", "/login"}

// ClassifyProfile decides whether the landed-on page is the candidate's
// own profile. Unknown outcomes classify as not-existing: a purchase
// attempt is never spent on an unverifiable candidate.
func ClassifyProfile(handle, finalURL, html string) bool {
	normalized := textutil.NormalizeHandle(handle)
	if normalized == "" {
		return false
	}
	parsed, err := url.Parse(finalURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(strings.TrimSuffix(parsed.Path, "/"))

	// an empty path means we bounced back to the landing page
	if path == "" {
		return false
	}
	for _, route := range discoveryRoutes {
		if strings.HasSuffix(path, route) {
			return false
		}
	}

	if strings.Contains(path, normalized) {
		return true
	}

	if html != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err == nil && htmlutil.HasSelector(doc, profileMarkers...) {
			return true
		}
	}
	return false
}
