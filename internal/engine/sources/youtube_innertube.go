package sources

import (
	"context"
	"net/url"

	"github.com/anatolykoptev/go_youtube/internal/engine"
)

// YouTube Innertube API: endpoint paths, client contexts and POST helpers.

const (
	ytBrowsePath = "/youtubei/v1/browse"
	ytPlayerPath = "/youtubei/v1/player"

	ytWebVersion     = "2.20240101.00.00"
	ytAndroidVersion = "20.10.38"
	ytAndroidUA      = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
)

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type browseReq struct {
	Context      innertubeCtx `json:"context"`
	Continuation string       `json:"continuation"`
}

type playerReq struct {
	Context        innertubeCtx `json:"context"`
	VideoID        string       `json:"videoId"`
	RacyCheckOk    bool         `json:"racyCheckOk,omitempty"`
	ContentCheckOk bool         `json:"contentCheckOk,omitempty"`
}

// webContext is the minimal WEB identity accepted by browse.
func webContext(version string) innertubeCtx {
	if version == "" {
		version = ytWebVersion
	}
	return innertubeCtx{Client: innertubeClient{
		ClientName:    "WEB",
		ClientVersion: version,
		Hl:            "en",
		Gl:            "US",
	}}
}

// androidContext is the identity used for the player endpoint; it returns
// caption tracks without a proof-of-origin token.
func androidContext() innertubeCtx {
	return innertubeCtx{Client: innertubeClient{
		ClientName:        "ANDROID",
		ClientVersion:     ytAndroidVersion,
		AndroidSdkVersion: 30,
		Hl:                "en",
		Gl:                "US",
	}}
}

// innertubeURL builds an endpoint URL with the session key, if any.
func (c *Client) innertubeURL(path, apiKey string) string {
	q := url.Values{"prettyPrint": {"false"}}
	if apiKey != "" {
		q.Set("key", apiKey)
	}
	return c.base + path + "?" + q.Encode()
}

// postBrowse issues exactly one browse request for a continuation token.
// No retries: the walker treats any failure as end of results.
func (c *Client) postBrowse(ctx context.Context, sess sessionContext, token string) (map[string]any, error) {
	body, err := c.fetch.PostJSON(ctx, c.innertubeURL(ytBrowsePath, sess.APIKey), browseReq{
		Context:      webContext(sess.ClientVersion),
		Continuation: token,
	},
		engine.Retries(0),
		engine.Headers(map[string]string{
			"X-Youtube-Client-Name":    "1",
			"X-Youtube-Client-Version": orDefault(sess.ClientVersion, ytWebVersion),
			"Origin":                   c.base,
		}),
	)
	if err != nil {
		return nil, err
	}
	root, err := decodeTree(body)
	if err != nil {
		return nil, engine.WrapError(engine.KindParsing, err, "decode browse response")
	}
	return root, nil
}

// postPlayer fetches the player response for a video.
func (c *Client) postPlayer(ctx context.Context, apiKey, videoID string) (map[string]any, error) {
	body, err := c.fetch.PostJSON(ctx, c.innertubeURL(ytPlayerPath, apiKey), playerReq{
		Context:        androidContext(),
		VideoID:        videoID,
		RacyCheckOk:    true,
		ContentCheckOk: true,
	}, engine.Headers(map[string]string{
		"User-Agent":            ytAndroidUA,
		"X-Youtube-Client-Name": "3",
		"Origin":                c.base,
	}))
	if err != nil {
		return nil, err
	}
	root, err := decodeTree(body)
	if err != nil {
		return nil, engine.WrapError(engine.KindParsing, err, "decode player response")
	}
	return root, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
