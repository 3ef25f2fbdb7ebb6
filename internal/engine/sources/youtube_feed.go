package sources

import (
	"encoding/xml"
	"strings"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

// Channel Atom feed (/feeds/videos.xml). Upstream returns at most 15 of
// the most recent uploads.

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Author  atomAuthor  `xml:"author"`
	Entries []atomEntry `xml:"entry"`
}

type atomAuthor struct {
	Name string `xml:"name"`
	URI  string `xml:"uri"`
}

type atomEntry struct {
	VideoID     string        `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	ChannelID   string        `xml:"http://www.youtube.com/xml/schemas/2015 channelId"`
	Title       string        `xml:"title"`
	Published   string        `xml:"published"`
	Author      atomAuthor    `xml:"author"`
	Description string        `xml:"group>description"`
	Thumbnail   atomThumbnail `xml:"group>thumbnail"`
	Community   atomCommunity `xml:"group>community"`
}

type atomThumbnail struct {
	URL string `xml:"url,attr"`
}

type atomCommunity struct {
	Views atomViews `xml:"http://search.yahoo.com/mrss/ statistics"`
}

type atomViews struct {
	Views string `xml:"views,attr"`
}

// parseFeed decodes a channel feed into videos. Entries without a video id
// are skipped.
func parseFeed(body string) ([]engine.Video, error) {
	var feed atomFeed
	if err := xml.Unmarshal([]byte(body), &feed); err != nil {
		return nil, engine.WrapError(engine.KindParsing, err, "decode channel feed")
	}

	videos := make([]engine.Video, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		id := strings.TrimSpace(e.VideoID)
		if id == "" {
			continue
		}
		v := engine.Video{
			VideoID:      id,
			Title:        engine.DecodeEntities(strings.TrimSpace(e.Title)),
			Description:  strings.TrimSpace(e.Description),
			PublishedAt:  strings.TrimSpace(e.Published),
			ChannelID:    strings.TrimSpace(e.ChannelID),
			ChannelTitle: strings.TrimSpace(orDefault(e.Author.Name, feed.Author.Name)),
			Thumbnails:   videoThumbnails(id),
			URL:          watchURL(engine.DefaultBaseURL, id),
		}
		if e.Thumbnail.URL != "" {
			v.Thumbnails.High = e.Thumbnail.URL
		}
		if n, ok := engine.ParseCount(e.Community.Views.Views); ok {
			v.ViewCount = engine.Int64Ptr(n)
		}
		videos = append(videos, v)
	}
	return videos, nil
}
