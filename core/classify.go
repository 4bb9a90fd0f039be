package core

import (
	"strings"

	"github.com/huangsam/voicepersona/schema"
)

// ClassifyError maps an analysis failure to an error code by matching its message.
// This is a best-effort heuristic: anything it does not recognize, including
// cancellations and deadlines, falls back to AnalysisTimeout.
func ClassifyError(err error) schema.ErrorCode {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found"):
		return schema.UserNotFound
	case strings.Contains(msg, "insufficient"):
		return schema.InsufficientContent
	case strings.Contains(msg, "transcri"):
		return schema.TranscriptionFailed
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "429"):
		return schema.RateLimitExceeded
	case strings.Contains(msg, "platform"):
		return schema.InvalidPlatform
	default:
		return schema.AnalysisTimeout
	}
}
