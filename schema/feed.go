package schema

import "time"

// VideoStats holds platform counters as returned by the feed collaborator.
type VideoStats struct {
	PlayCount    int64 `json:"playCount"`
	DiggCount    int64 `json:"diggCount"`
	CommentCount int64 `json:"commentCount"`
}

// VideoAuthor identifies the uploader of a feed video.
type VideoAuthor struct {
	Username string `json:"username"`
}

// FeedVideo is a video descriptor returned by the feed collaborator.
type FeedVideo struct {
	ID       string      `json:"id"`
	Duration float64     `json:"duration"`
	Stats    VideoStats  `json:"stats"`
	Author   VideoAuthor `json:"author"`
}

// TranscriptionResult is returned by the transcription collaborator.
type TranscriptionResult struct {
	Success    bool   `json:"success"`
	Transcript string `json:"transcript,omitempty"`
	Error      string `json:"error,omitempty"`
}

// VideoFailure records why a video was dropped from analysis.
type VideoFailure struct {
	VideoID string `json:"videoId"`
	URL     string `json:"url"`
	Reason  string `json:"reason"`
}

// UserFeedAnalysis is the result of processing a creator's feed.
type UserFeedAnalysis struct {
	UserIdentifier  UserIdentifier      `json:"userIdentifier"`
	TotalVideos     int                 `json:"totalVideos"`
	ProcessedVideos int                 `json:"processedVideos"`
	FailedVideos    int                 `json:"failedVideos"`
	Videos          []VideoAnalysisData `json:"videos"`
	Failures        []VideoFailure      `json:"failures"`
	Status          FeedStatus          `json:"status"`
	AnalyzedAt      time.Time           `json:"analyzedAt"`
}
