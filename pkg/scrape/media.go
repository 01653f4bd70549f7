package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

const DefaultLimit = 50

const (
	messageSelector    = ".tgme_widget_message_wrap .tgme_widget_message"
	photoSelector      = ".tgme_widget_message_photo_wrap"
	videoSelector      = ".tgme_widget_message_video_wrap video"
	roundVideoSelector = ".tgme_widget_message_roundvideo_wrap video"
)

var styleURL = regexp.MustCompile(`url\(["'](.*?)["']\)`)

// Media holds the proxied media URLs found in a discussion thread, in
// document order.
type Media struct {
	Images []string `json:"images"`
	Videos []string `json:"videos"`
}

func Empty() Media {
	return Media{Images: []string{}, Videos: []string{}}
}

// ExtractMedia scans the first limit messages of a discussion embed page
// for photos and videos. Each URL is returned prefixed with staticProxy.
// limit caps the messages inspected, not the number of URLs returned; zero
// or a negative value means DefaultLimit.
func ExtractMedia(text string, limit int, staticProxy string) (Media, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return Empty(), errors.Wrap(err, "failed to parse discussion page")
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	msgs := doc.Find(messageSelector)
	if msgs.Length() > limit {
		msgs = msgs.Slice(0, limit)
	}

	out := Empty()
	msgs.Each(func(_ int, msg *goquery.Selection) {
		if style, ok := msg.Find(photoSelector).Attr("style"); ok {
			if u := backgroundURL(style); u != "" {
				out.Images = append(out.Images, staticProxy+u)
			}
		}

		// stickers use their own wrapper class and are not matched here
		if src, ok := msg.Find(videoSelector).Attr("src"); ok && src != "" {
			out.Videos = append(out.Videos, staticProxy+src)
		}
		if src, ok := msg.Find(roundVideoSelector).Attr("src"); ok && src != "" {
			out.Videos = append(out.Videos, staticProxy+src)
		}
	})

	return out, nil
}

func backgroundURL(style string) string {
	m := styleURL.FindStringSubmatch(style)
	if m == nil {
		return ""
	}
	return m[1]
}
