// Package comments collects the media posted in the discussion thread of a
// channel post.
package comments

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"k8s.io/klog"

	"github.com/squeed/tgcomments/pkg/config"
	"github.com/squeed/tgcomments/pkg/fetch"
	"github.com/squeed/tgcomments/pkg/scrape"
)

var (
	errNoID         = errors.New("no post id")
	errNoChannel    = errors.New("channel not configured")
	errNoDiscussion = errors.New("no discussion thread found")
)

type Request struct {
	ID string
	// Limit caps the number of thread messages inspected. Zero or a
	// negative value means scrape.DefaultLimit.
	Limit int
}

type Scraper struct {
	Env     config.Env
	Fetcher fetch.Fetcher
}

func New(env config.Env, f fetch.Fetcher) *Scraper {
	if f == nil {
		f = fetch.New()
	}
	return &Scraper{Env: env, Fetcher: f}
}

// GetComments is a shorthand for New(env, nil).GetComments.
func GetComments(ctx context.Context, env config.Env, req Request) scrape.Media {
	return New(env, nil).GetComments(ctx, req)
}

// GetComments never fails: every problem along the way yields the empty
// result. A nil ctx is treated as context.Background().
func (s *Scraper) GetComments(ctx context.Context, req Request) scrape.Media {
	if ctx == nil {
		ctx = context.Background()
	}
	m, err := s.run(ctx, req)
	if err != nil {
		klog.V(2).Infof("comments for post %q: %v", req.ID, err)
		return scrape.Empty()
	}
	return m
}

func (s *Scraper) run(ctx context.Context, req Request) (scrape.Media, error) {
	if req.ID == "" {
		return scrape.Empty(), errNoID
	}

	conf := config.Resolve(ctx, s.Env)
	if conf.Channel == "" {
		return scrape.Empty(), errNoChannel
	}

	postURL := embedPostURL(conf.Host, conf.Channel, req.ID)
	klog.V(2).Infof("fetching post %s", postURL)
	postHTML, err := s.Fetcher.Fetch(ctx, postURL)
	if err != nil {
		return scrape.Empty(), errors.Wrap(err, "failed to fetch post")
	}

	path := scrape.LocateDiscussion(ctx, s.Fetcher, conf.Host, postHTML)
	if path == "" {
		return scrape.Empty(), errNoDiscussion
	}

	threadURL := scrape.DiscussionURL(conf.Host, path)
	klog.V(2).Infof("fetching discussion %s", threadURL)
	threadHTML, err := s.Fetcher.Fetch(ctx, threadURL)
	if err != nil {
		return scrape.Empty(), errors.Wrap(err, "failed to fetch discussion")
	}

	return scrape.ExtractMedia(threadHTML, req.Limit, conf.StaticProxy)
}

func embedPostURL(host, channel, id string) string {
	return "https://" + host + "/" + channel + "/" + url.PathEscape(id) + "?embed=1&mode=tme"
}
