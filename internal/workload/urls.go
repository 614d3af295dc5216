package workload

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/studiowebux/liftload/internal/config"
	"github.com/studiowebux/liftload/internal/types"
)

// URLBuilder renders target URLs for one workload
type URLBuilder struct {
	base    string
	apiPath string
	prefix  string
	resort  string
	day     int
}

// NewURLBuilder captures the URL-relevant fields of w
func NewURLBuilder(w config.Workload) URLBuilder {
	apiPath := w.APIPath
	if !strings.HasPrefix(apiPath, "/") {
		apiPath = "/" + apiPath
	}
	return URLBuilder{
		base:    w.BaseURL(),
		apiPath: apiPath,
		prefix:  strings.Trim(w.ReadPrefix, "/"),
		resort:  w.ResortName,
		day:     w.SkiDay,
	}
}

// Write returns the lift-ride POST endpoint
func (u URLBuilder) Write() string {
	return u.base + u.apiPath
}

// SkierDay returns <base>/<prefix>/<resort>/days/<day>/skiers/<skierID>
func (u URLBuilder) SkierDay(skierID int) string {
	return fmt.Sprintf("%s/%s/%s/days/%d/skiers/%d", u.base, u.prefix, url.PathEscape(u.resort), u.day, skierID)
}

// SkierVertical returns <base>/<prefix>/<skierID>/vertical?resort=<resort>.
// Spaces in the resort name are sent as %20.
func (u URLBuilder) SkierVertical(skierID int) string {
	resort := strings.ReplaceAll(url.QueryEscape(u.resort), "+", "%20")
	return fmt.Sprintf("%s/%s/%d/vertical?resort=%s", u.base, u.prefix, skierID, resort)
}

// ClassifyRead tags a read URL with the endpoint it targets. Only the last
// path segment is inspected, so a resort named "vertical" stays a day read.
func ClassifyRead(rawURL string) types.RequestType {
	p := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		p = parsed.Path
	} else if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if path.Base(p) == "vertical" {
		return types.RequestTypeSkierResortTotals
	}
	return types.RequestTypeSkierDayVertical
}
