package youtube

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_anymark/internal/platforms"
)

// ErrInvalidVideoID reports input that does not resolve to an 11-character
// video identifier by any extraction method.
var ErrInvalidVideoID = &platforms.StatusError{
	Status:  http.StatusBadRequest,
	Message: "invalid YouTube ID or URL",
}

// VideoIdentity is a validated video reference. Created once per request
// and passed by value to all downstream stages.
type VideoIdentity struct {
	ID  string // 11-char identifier
	URL string // canonical watch URL
}

var (
	videoIDRe    = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	embeddedIDRe = regexp.MustCompile(`(?:youtu\.be/|v=)([A-Za-z0-9_-]{11})`)
)

func identityFor(id string) VideoIdentity {
	return VideoIdentity{ID: id, URL: "https://www.youtube.com/watch?v=" + id}
}

// normalizeInput parses heterogeneous user input (raw ID, watch URL, short
// URL, percent-encoded variants) into a canonical VideoIdentity.
// Deterministic, no I/O.
func normalizeInput(input string) (VideoIdentity, error) {
	raw := strings.TrimSpace(input)
	if dec, err := url.QueryUnescape(raw); err == nil {
		raw = dec
	}
	if raw == "" {
		return VideoIdentity{}, ErrInvalidVideoID
	}

	if u, err := url.Parse(raw); err == nil {
		host := u.Hostname()
		if strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be") {
			if v := u.Query().Get("v"); videoIDRe.MatchString(v) {
				return identityFor(v), nil
			}
			segs := strings.Split(strings.Trim(u.Path, "/"), "/")
			if last := segs[len(segs)-1]; videoIDRe.MatchString(last) {
				return identityFor(last), nil
			}
		}
	}

	if videoIDRe.MatchString(raw) {
		return identityFor(raw), nil
	}
	if m := embeddedIDRe.FindStringSubmatch(raw); m != nil {
		return identityFor(m[1]), nil
	}
	return VideoIdentity{}, ErrInvalidVideoID
}
