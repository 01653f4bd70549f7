package scrape

import (
	"context"
	"errors"
)

// fakeFetcher serves canned pages and records every requested URL.
type fakeFetcher struct {
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	if !ok {
		return "", errors.New("not found: " + url)
	}
	return body, nil
}
