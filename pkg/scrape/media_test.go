package scrape

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func message(inner string) string {
	return `<div class="tgme_widget_message_wrap"><div class="tgme_widget_message">` + inner + `</div></div>`
}

func photo(url string) string {
	return `<a class="tgme_widget_message_photo_wrap" style="width:100px;background-image:url('` + url + `')"></a>`
}

func video(src string) string {
	return `<div class="tgme_widget_message_video_wrap"><video src="` + src + `"></video></div>`
}

func roundVideo(src string) string {
	return `<div class="tgme_widget_message_roundvideo_wrap"><video src="` + src + `"></video></div>`
}

func TestExtractMedia(t *testing.T) {
	testCases := []struct {
		name   string
		html   string
		limit  int
		proxy  string
		images []string
		videos []string
	}{
		{
			name:   "photo then video",
			html:   message(photo("img1.jpg")) + message(video("vid2.mp4")),
			limit:  50,
			proxy:  "/static/",
			images: []string{"/static/img1.jpg"},
			videos: []string{"/static/vid2.mp4"},
		},
		{
			name:   "standard and round video in one message",
			html:   message(video("a.mp4")+roundVideo("b.mp4")) + message(roundVideo("c.mp4")),
			proxy:  "/p/",
			images: []string{},
			videos: []string{"/p/a.mp4", "/p/b.mp4", "/p/c.mp4"},
		},
		{
			name: "double quotes kept, unquoted url skipped",
			html: message(`<a class="tgme_widget_message_photo_wrap" style='background-image:url("https://cdn/x.jpg")'></a>`) +
				message(`<a class="tgme_widget_message_photo_wrap" style="background-image:url(https://cdn/y.jpg)"></a>`),
			proxy:  "/static/",
			images: []string{"/static/https://cdn/x.jpg"},
			videos: []string{},
		},
		{
			name:   "parentheses inside a quoted url",
			html:   message(photo("https://cdn4.telesco.pe/file/a(1).jpg")),
			proxy:  "/static/",
			images: []string{"/static/https://cdn4.telesco.pe/file/a(1).jpg"},
			videos: []string{},
		},
		{
			name:   "stickers and missing attributes contribute nothing",
			html:   message(`<div class="tgme_widget_message_sticker_wrap"><video src="s.webm"></video></div>`) + message(`<a class="tgme_widget_message_photo_wrap"></a><div class="tgme_widget_message_video_wrap"><video></video></div>`),
			proxy:  "/static/",
			images: []string{},
			videos: []string{},
		},
		{
			name:   "messages outside a wrap are ignored",
			html:   `<div class="tgme_widget_message">` + photo("loose.jpg") + `</div>` + message(photo("in.jpg")),
			proxy:  "/static/",
			images: []string{"/static/in.jpg"},
			videos: []string{},
		},
		{
			name:   "limit counts messages not media",
			html:   message(photo("1.jpg")+video("1.mp4")) + message(photo("2.jpg")),
			limit:  1,
			proxy:  "/static/",
			images: []string{"/static/1.jpg"},
			videos: []string{"/static/1.mp4"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractMedia(tc.html, tc.limit, tc.proxy)
			if err != nil {
				t.Fatalf("ExtractMedia: %v", err)
			}
			if !reflect.DeepEqual(got.Images, tc.images) {
				t.Errorf("images = %v, want %v", got.Images, tc.images)
			}
			if !reflect.DeepEqual(got.Videos, tc.videos) {
				t.Errorf("videos = %v, want %v", got.Videos, tc.videos)
			}
		})
	}
}

func TestExtractMediaLimitOfFiveMessages(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 5; i++ {
		b.WriteString(message(photo(fmt.Sprintf("%d.jpg", i))))
	}

	got, err := ExtractMedia(b.String(), 1, "/static/")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Images, []string{"/static/1.jpg"}) {
		t.Errorf("images = %v", got.Images)
	}

	got, err = ExtractMedia(b.String(), 0, "/static/")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Images) != 5 {
		t.Errorf("default limit: got %d images, want 5", len(got.Images))
	}

	got, err = ExtractMedia(b.String(), -1, "/static/")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Images) != 5 {
		t.Errorf("negative limit: got %d images, want 5", len(got.Images))
	}
}
