package sources

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

func TestParseFeed(t *testing.T) {
	videos, err := parseFeed(feedXML(2))
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "feed0000001", videos[1].VideoID)
	assert.Equal(t, "Test Channel", videos[1].ChannelTitle)
	assert.Equal(t, "desc", videos[1].Description)
	require.NotNil(t, videos[1].Thumbnails)
	assert.Equal(t, "https://i.ytimg.com/vi/x/hq.jpg", videos[1].Thumbnails.High)
}

func TestParseFeedSkipsEntriesWithoutID(t *testing.T) {
	body := `<feed xmlns="http://www.w3.org/2005/Atom"><entry><title>orphan</title></entry></feed>`
	videos, err := parseFeed(body)
	require.NoError(t, err)
	assert.Empty(t, videos)
}

func TestParseFeedMalformed(t *testing.T) {
	_, err := parseFeed("<feed><entry>")
	assert.True(t, errors.Is(err, engine.ErrParsing))
}
