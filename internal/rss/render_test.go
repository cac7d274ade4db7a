package rss

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podlocalsync/internal/models"
)

const baseURL = "http://localhost:8000"

type parsedFeed struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel struct {
		Title       string `xml:"title"`
		Description string `xml:"description"`
		Image       struct {
			Href string `xml:"href,attr"`
		} `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd image"`
		Language string `xml:"language"`
		Explicit string `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd explicit"`
		Link     string `xml:"link"`
		Items    []struct {
			Episode   string `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd episode"`
			Title     string `xml:"title"`
			Enclosure struct {
				URL    string `xml:"url,attr"`
				Length string `xml:"length,attr"`
				Type   string `xml:"type,attr"`
			} `xml:"enclosure"`
			GUID struct {
				IsPermaLink string `xml:"isPermaLink,attr"`
				Value       string `xml:",chardata"`
			} `xml:"guid"`
			PubDate  string `xml:"pubDate"`
			Explicit string `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd explicit"`
		} `xml:"item"`
	} `xml:"channel"`
}

func scenarioFeed() *models.Feed {
	return &models.Feed{
		Title: "My Show",
		Image: "cover.png",
		Episodes: []models.Episode{{
			Title:   "Ep1",
			Audio:   "ep1.mp3",
			Length:  "1000",
			Type:    "audio/mpeg",
			GUID:    "G1",
			PubDate: "Mon, 01 Jan 2024 00:00:00 +0000",
		}},
	}
}

func parse(t *testing.T, data []byte) parsedFeed {
	t.Helper()
	var feed parsedFeed
	require.NoError(t, xml.Unmarshal(data, &feed))
	return feed
}

func TestRenderScenario(t *testing.T) {
	out := string(Render(scenarioFeed(), baseURL))

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `<rss xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd" version="2.0">`)
	assert.Contains(t, out, `<itunes:image href="http://localhost:8000/cover.png"/>`)
	assert.Contains(t, out, `<enclosure url="http://localhost:8000/ep1.mp3" length="1000" type="audio/mpeg"/>`)
	assert.Contains(t, out, `<itunes:episode>1</itunes:episode>`)
	assert.Contains(t, out, `<guid isPermaLink="false">G1</guid>`)

	feed := parse(t, []byte(out))
	assert.Equal(t, "2.0", feed.Version)
	assert.Equal(t, "My Show", feed.Channel.Title)
	assert.Equal(t, "---", feed.Channel.Description)
	assert.Equal(t, "en-US", feed.Channel.Language)
	assert.Equal(t, "yes", feed.Channel.Explicit)
	assert.Equal(t, baseURL, feed.Channel.Link)
	require.Len(t, feed.Channel.Items, 1)

	item := feed.Channel.Items[0]
	assert.Equal(t, "Ep1", item.Title)
	assert.Equal(t, "Mon, 01 Jan 2024 00:00:00 +0000", item.PubDate)
	assert.Equal(t, "yes", item.Explicit)
	assert.Equal(t, "false", item.GUID.IsPermaLink)
}

func TestRenderChannelElementOrder(t *testing.T) {
	root := Build(scenarioFeed(), baseURL)
	require.Len(t, root.Children, 1)

	var names []string
	for _, child := range root.Children[0].Children {
		names = append(names, child.Name)
	}
	assert.Equal(t, []string{"title", "description", "itunes:image", "language", "itunes:explicit", "link", "item"}, names)

	items := root.Children[0].Children
	names = names[:0]
	for _, child := range items[len(items)-1].Children {
		names = append(names, child.Name)
	}
	assert.Equal(t, []string{"itunes:episode", "title", "enclosure", "guid", "pubDate", "itunes:explicit"}, names)
}

func TestRenderItemsFollowEpisodeOrder(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7} {
		t.Run(fmt.Sprintf("%d episodes", n), func(t *testing.T) {
			feed := &models.Feed{Title: "Show", Image: "cover.jpg"}
			for i := 0; i < n; i++ {
				// Audio names deliberately sort opposite to insertion order.
				feed.Episodes = append(feed.Episodes, models.Episode{
					Title:   fmt.Sprintf("Episode %d", i),
					Audio:   fmt.Sprintf("%02d.m4a", 99-i),
					GUID:    fmt.Sprintf("guid-%d", i),
					Length:  "1",
					Type:    "audio/x-m4a",
					PubDate: "Mon, 01 Jan 2024 00:00:00 +0000",
				})
			}

			parsed := parse(t, Render(feed, baseURL))
			require.Len(t, parsed.Channel.Items, n)
			for i, item := range parsed.Channel.Items {
				assert.Equal(t, strconv.Itoa(i+1), item.Episode)
				assert.Equal(t, feed.Episodes[i].Title, item.Title)
				assert.Equal(t, baseURL+"/"+feed.Episodes[i].Audio, item.Enclosure.URL)
			}
		})
	}
}

func TestRenderEmptyFeedHasNoItems(t *testing.T) {
	out := Render(&models.Feed{Title: "Empty", Image: "cover.png"}, baseURL)

	assert.NotContains(t, string(out), "<item>")
	parsed := parse(t, out)
	assert.Equal(t, "Empty", parsed.Channel.Title)
	assert.Empty(t, parsed.Channel.Items)
}

func TestRenderEmptyBaseURLAndImageStillWellFormed(t *testing.T) {
	out := Render(&models.Feed{Title: "Show"}, "")

	parsed := parse(t, out)
	assert.Equal(t, "/", parsed.Channel.Image.Href)
	assert.Equal(t, "", parsed.Channel.Link)
}

func TestRenderDoesNotMutateFeed(t *testing.T) {
	feed := scenarioFeed()
	before := *feed
	before.Episodes = append([]models.Episode(nil), feed.Episodes...)

	Render(feed, baseURL)

	assert.Equal(t, before, *feed)
}
