package engine

// --- MCP tool inputs and outputs ---

// TranscriptInput is the input for get_youtube_transcript.
type TranscriptInput struct {
	VideoID         string   `json:"video_id" jsonschema:"YouTube video ID or URL (watch, youtu.be, embed, shorts, live)"`
	Language        string   `json:"language,omitempty" jsonschema:"Preferred language code, e.g. en, ru, es (default: en)"`
	Languages       []string `json:"languages,omitempty" jsonschema:"Ordered language preference list; overrides language when set"`
	PreferGenerated bool     `json:"prefer_generated,omitempty" jsonschema:"Prefer auto-generated captions over manual ones"`
	Format          string   `json:"format,omitempty" jsonschema:"Output format: json (segments, default), text, srt, vtt"`
}

// TranscriptOutput is the structured output for get_youtube_transcript.
type TranscriptOutput struct {
	VideoID  string              `json:"video_id"`
	Track    *TranscriptTrack    `json:"track,omitempty"`
	Format   string              `json:"format"`
	Segments []TranscriptSegment `json:"segments,omitempty"`
	Text     string              `json:"text,omitempty"`
}

// TranscriptTextInput is the input for get_youtube_transcript_text.
type TranscriptTextInput struct {
	VideoID  string `json:"video_id" jsonschema:"YouTube video ID or URL"`
	Language string `json:"language,omitempty" jsonschema:"Preferred language code (default: en)"`
}

// TranscriptTextOutput is the structured output for get_youtube_transcript_text.
type TranscriptTextOutput struct {
	VideoID string `json:"video_id"`
	Text    string `json:"text"`
}

// ListTranscriptsInput is the input for list_youtube_transcripts.
type ListTranscriptsInput struct {
	VideoID string `json:"video_id" jsonschema:"YouTube video ID or URL"`
}

// ListTranscriptsOutput is the structured output for list_youtube_transcripts.
type ListTranscriptsOutput struct {
	VideoID string            `json:"video_id"`
	Tracks  []TranscriptTrack `json:"tracks"`
}

// VideoInfoInput is the input for get_youtube_video_info.
type VideoInfoInput struct {
	VideoID string `json:"video_id" jsonschema:"YouTube video ID or URL"`
	Basic   bool   `json:"basic,omitempty" jsonschema:"Fetch only title, channel and thumbnail via oEmbed (faster)"`
}

// ChannelVideosInput is the input for get_youtube_channel_videos.
type ChannelVideosInput struct {
	Channel     string `json:"channel" jsonschema:"Channel ID (UC...), @handle, custom name, or channel URL"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Max videos to return (default: 15, max: 500)"`
	SortBy      string `json:"sort_by,omitempty" jsonschema:"Sort order: newest (default), popular, oldest"`
	ContentType string `json:"content_type,omitempty" jsonschema:"Content type: videos (default), shorts, streams"`
}

// ChannelVideosOutput is the structured output for get_youtube_channel_videos.
type ChannelVideosOutput struct {
	Channel string  `json:"channel"`
	Count   int     `json:"count"`
	Videos  []Video `json:"videos"`
}

// ChannelInfoInput is the input for get_youtube_channel_info.
type ChannelInfoInput struct {
	Channel string `json:"channel" jsonschema:"Channel ID (UC...), @handle, custom name, or channel URL"`
}

// SearchInput is the input for search_youtube_videos.
type SearchInput struct {
	Query  string `json:"query" jsonschema:"Search query"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max results (default: 10, max: 50)"`
	SortBy string `json:"sort_by,omitempty" jsonschema:"Sort order: relevance (default), date, viewCount, rating"`
}

// SearchOutput is the structured output for search_youtube_videos.
type SearchOutput struct {
	Query  string  `json:"query"`
	Count  int     `json:"count"`
	Videos []Video `json:"videos"`
}

// SummaryInput is the input for summarize_youtube_video.
type SummaryInput struct {
	VideoID  string `json:"video_id" jsonschema:"YouTube video ID or URL"`
	Language string `json:"language,omitempty" jsonschema:"Transcript language code (default: en)"`
}

// SummaryOutput is the structured output for summarize_youtube_video.
type SummaryOutput struct {
	VideoID   string `json:"video_id"`
	Title     string `json:"title,omitempty"`
	Language  string `json:"language,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
	Summary   string `json:"summary"`
}

// ClearCacheInput is the (empty) input for clear_youtube_cache.
type ClearCacheInput struct{}

// ClearCacheOutput reports how many cached pages were dropped.
type ClearCacheOutput struct {
	Cleared int `json:"cleared"`
}
