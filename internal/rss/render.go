package rss

import (
	"bytes"
	"strconv"

	"podlocalsync/internal/models"
)

// ITunesNS is the Apple podcast namespace bound to the "itunes" prefix.
const ITunesNS = "http://www.itunes.com/dtds/podcast-1.0.dtd"

const (
	channelDescription = "---"
	channelLanguage    = "en-US"
	explicit           = "yes"
)

// Build projects the feed into an RSS 2.0 element tree. Relative filenames are
// joined onto baseURL verbatim. The feed is only read.
func Build(feed *models.Feed, baseURL string) *Element {
	if feed == nil {
		feed = &models.Feed{}
	}

	channel := E("channel",
		T("title", feed.Title),
		T("description", channelDescription),
		E("itunes:image").Attr("href", assetURL(baseURL, feed.Image)),
		T("language", channelLanguage),
		T("itunes:explicit", explicit),
		T("link", baseURL),
	)

	for i, ep := range feed.Episodes {
		channel.Append(E("item",
			T("itunes:episode", strconv.Itoa(i+1)),
			T("title", ep.Title),
			E("enclosure").
				Attr("url", assetURL(baseURL, ep.Audio)).
				Attr("length", ep.Length).
				Attr("type", ep.Type),
			T("guid", ep.GUID).Attr("isPermaLink", "false"),
			T("pubDate", ep.PubDate),
			T("itunes:explicit", explicit),
		))
	}

	return E("rss", channel).
		Attr("xmlns:itunes", ITunesNS).
		Attr("version", "2.0")
}

// Render returns the complete RSS document for feed served under baseURL.
func Render(feed *models.Feed, baseURL string) []byte {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_ = Encode(&buf, Build(feed, baseURL))
	return buf.Bytes()
}

func assetURL(baseURL, name string) string {
	return baseURL + "/" + name
}
