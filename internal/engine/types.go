package engine

// --- YouTube domain records ---
//
// Every field except the primary key is optional. Counts and durations are
// pointers so that "absent" and "zero" stay distinguishable.

// Thumbnails holds the standard thumbnail renditions for a video or channel.
type Thumbnails struct {
	Default string `json:"default,omitempty"`
	Medium  string `json:"medium,omitempty"`
	High    string `json:"high,omitempty"`
	Maxres  string `json:"maxres,omitempty"`
}

// Video is a best-effort record for one video.
type Video struct {
	VideoID         string      `json:"videoId"`
	Title           string      `json:"title,omitempty"`
	Description     string      `json:"description,omitempty"`
	PublishedAt     string      `json:"publishedAt,omitempty"`
	Duration        string      `json:"duration,omitempty"`
	DurationSeconds *int        `json:"durationSeconds,omitempty"`
	ViewCount       *int64      `json:"viewCount,omitempty"`
	LikeCount       *int64      `json:"likeCount,omitempty"`
	CommentCount    *int64      `json:"commentCount,omitempty"`
	ChannelID       string      `json:"channelId,omitempty"`
	ChannelTitle    string      `json:"channelTitle,omitempty"`
	Thumbnails      *Thumbnails `json:"thumbnails,omitempty"`
	URL             string      `json:"url,omitempty"`
	Tags            []string    `json:"tags,omitempty"`
	Category        string      `json:"category,omitempty"`
	IsLive          bool        `json:"isLive,omitempty"`
	IsUpcoming      bool        `json:"isUpcoming,omitempty"`
	Chapters        []Chapter   `json:"chapters,omitempty"`
}

// Chapter is one named section of a video, in seconds.
type Chapter struct {
	Title     string `json:"title"`
	StartTime int    `json:"startTime"`
	EndTime   *int   `json:"endTime,omitempty"`
}

// Channel is a best-effort record for one channel.
type Channel struct {
	ChannelID       string      `json:"channelId"`
	Title           string      `json:"title,omitempty"`
	Description     string      `json:"description,omitempty"`
	CustomURL       string      `json:"customUrl,omitempty"`
	SubscriberCount *int64      `json:"subscriberCount,omitempty"`
	VideoCount      *int64      `json:"videoCount,omitempty"`
	Thumbnails      *Thumbnails `json:"thumbnails,omitempty"`
	URL             string      `json:"url,omitempty"`
	Keywords        string      `json:"keywords,omitempty"`
}

// TranscriptTrack is one available caption language or variant.
type TranscriptTrack struct {
	LanguageCode   string `json:"languageCode"`
	Language       string `json:"language"`
	BaseURL        string `json:"baseUrl"`
	IsGenerated    bool   `json:"isGenerated"`
	IsTranslatable bool   `json:"isTranslatable"`
}

// TranscriptSegment is one caption cue. Segments keep playback order.
type TranscriptSegment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// IntPtr and Int64Ptr build optional numeric fields.
func IntPtr(v int) *int       { return &v }
func Int64Ptr(v int64) *int64 { return &v }
