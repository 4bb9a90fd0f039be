package contract

import (
	"context"

	"github.com/huangsam/voicepersona/schema"
	"github.com/stretchr/testify/mock"
)

// MockTranscriber is a mock implementation of Transcriber for testing.
type MockTranscriber struct {
	mock.Mock
}

var _ Transcriber = &MockTranscriber{} // Compile-time check

// Transcribe implements the Transcriber interface.
func (m *MockTranscriber) Transcribe(ctx context.Context, videoURL string) (schema.TranscriptionResult, error) {
	args := m.Called(ctx, videoURL)
	return args.Get(0).(schema.TranscriptionResult), args.Error(1)
}

// MockFeedClient is a mock implementation of FeedClient for testing.
type MockFeedClient struct {
	mock.Mock
}

var _ FeedClient = &MockFeedClient{} // Compile-time check

// FetchUserVideos implements the FeedClient interface.
func (m *MockFeedClient) FetchUserVideos(ctx context.Context, handle string, count int) ([]schema.FeedVideo, error) {
	args := m.Called(ctx, handle, count)
	videos, _ := args.Get(0).([]schema.FeedVideo)
	return videos, args.Error(1)
}
