package scrape

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"k8s.io/klog"

	"github.com/squeed/tgcomments/pkg/fetch"
)

const (
	inlineButtonSelector = ".tgme_widget_message_inline_button"
	commentAnchorXPath   = "//a[contains(@href, '?comment=')]"
)

var telegramPostAttr = regexp.MustCompile(`(?i)data-telegram-post=["']([^"']+)["']`)

var errNoMatch = errors.New("no match")

// post is a parsed post embed page, shared by every resolver.
type post struct {
	host string
	doc  *goquery.Document
}

func (p *post) root() *html.Node {
	if len(p.doc.Nodes) == 0 {
		return nil
	}
	return p.doc.Nodes[0]
}

// A resolver returns the discussion path for a post, or an error if it
// could not find one.
type resolver func(ctx context.Context, f fetch.Fetcher, p *post) (string, error)

// resolvers are tried in order; the first path found wins.
var resolvers = []struct {
	name string
	fn   resolver
}{
	{"inline button", inlineButtonPath},
	{"comment anchor", commentAnchorPath},
}

// LocateDiscussion finds the path (and query, if any) of the discussion
// thread linked from a post embed page. It returns "" if none is found.
func LocateDiscussion(ctx context.Context, f fetch.Fetcher, host, postHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(postHTML))
	if err != nil {
		klog.V(2).Infof("failed to parse post page: %v", err)
		return ""
	}
	p := &post{host: host, doc: doc}

	for _, r := range resolvers {
		path, err := r.fn(ctx, f, p)
		if err != nil {
			klog.V(2).Infof("%s: %v", r.name, err)
			continue
		}
		if path != "" {
			klog.V(2).Infof("discussion found via %s: %s", r.name, path)
			return path
		}
	}
	return ""
}

func (p *post) resolve(href string) (*url.URL, error) {
	base, err := url.Parse("https://" + p.host)
	if err != nil {
		return nil, errors.Wrapf(err, "bad host %q", p.host)
	}
	u, err := base.Parse(href)
	if err != nil {
		return nil, errors.Wrapf(err, "bad href %q", href)
	}
	return u, nil
}

// inlineButtonPath accepts the first inline button link with at least two
// path segments. Single-segment links are bots or sticker sets.
func inlineButtonPath(_ context.Context, _ fetch.Fetcher, p *post) (string, error) {
	var found string
	p.doc.Find(inlineButtonSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return true
		}
		u, err := p.resolve(href)
		if err != nil {
			klog.V(3).Infof("skipping inline button: %v", err)
			return true
		}
		if segmentCount(u.EscapedPath()) < 2 {
			return true
		}
		found = pathAndQuery(u)
		return false
	})

	if found == "" {
		return "", errNoMatch
	}
	return found, nil
}

// commentAnchorPath probes the embed page of a ?comment= link and reads the
// discussion post it points at.
func commentAnchorPath(ctx context.Context, f fetch.Fetcher, p *post) (string, error) {
	root := p.root()
	if root == nil {
		return "", errNoMatch
	}
	a, err := htmlquery.Query(root, commentAnchorXPath)
	if err != nil {
		return "", errors.Wrap(err, "bad comment anchor query")
	}
	if a == nil {
		return "", errNoMatch
	}
	href := htmlquery.SelectAttr(a, "href")

	u, err := p.resolve(href)
	if err != nil {
		return "", err
	}
	probe := u.Scheme + "://" + u.Host + u.EscapedPath()
	if u.RawQuery != "" {
		probe += "?" + u.RawQuery
	}
	probe = withEmbed(probe)

	body, err := f.Fetch(ctx, probe)
	if err != nil {
		return "", errors.Wrap(err, "comment probe failed")
	}

	m := telegramPostAttr.FindStringSubmatch(body)
	if m == nil || !strings.Contains(m[1], "/") {
		return "", errNoMatch
	}
	return "/" + m[1], nil
}

// DiscussionURL builds the embed URL of a discussion thread.
func DiscussionURL(host, path string) string {
	return withEmbed("https://" + host + path)
}

func withEmbed(u string) string {
	if strings.Contains(u, "?") {
		return u + "&embed=1"
	}
	return u + "?embed=1"
}

func segmentCount(path string) int {
	n := 0
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			n++
		}
	}
	return n
}

func pathAndQuery(u *url.URL) string {
	if u.RawQuery == "" {
		return u.EscapedPath()
	}
	return u.EscapedPath() + "?" + u.RawQuery
}
