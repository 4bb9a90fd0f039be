// Package feed retrieves a creator's recent videos and turns them into transcribed analysis input.
package feed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/schema"
)

// ErrUnsupportedPlatform is returned for platforms without a feed implementation.
var ErrUnsupportedPlatform = errors.New("platform not supported")

// transcriptCacheVersion is bumped whenever the cached transcript format changes.
const transcriptCacheVersion = 1

// Sleeper pauses between batches. It returns early with the context error on cancellation.
type Sleeper func(ctx context.Context, d time.Duration) error

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithSleeper overrides how inter-batch delays are performed.
func WithSleeper(s Sleeper) Option {
	return func(o *Orchestrator) { o.sleep = s }
}

// WithLogger sets the progress logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock sets the clock used for capture timestamps and cache expiry.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithTranscriptCache caches transcripts by video ID for the configured TTL.
func WithTranscriptCache(store contract.CacheStore) Option {
	return func(o *Orchestrator) { o.cache = store }
}

// Orchestrator fetches a feed and transcribes its videos in rate-limited batches.
type Orchestrator struct {
	cfg         schema.PersonaAnalysisConfig
	feed        contract.FeedClient
	transcriber contract.Transcriber
	cache       contract.CacheStore
	sleep       Sleeper
	logger      *slog.Logger
	now         func() time.Time
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(cfg schema.PersonaAnalysisConfig, feed contract.FeedClient, transcriber contract.Transcriber, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:         cfg,
		feed:        feed,
		transcriber: transcriber,
		sleep:       SleepContext,
		logger:      slog.New(slog.DiscardHandler),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// VideoURL is the canonical public URL of a TikTok video.
func VideoURL(username, videoID string) string {
	return fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", username, videoID)
}

// outcome is the result of processing one video.
type outcome struct {
	video   schema.VideoAnalysisData
	failure *schema.VideoFailure
}

// AnalyzeFeed fetches up to MaxVideos videos of a creator and transcribes them. Individual
// video failures are recorded in the result; the status is completed when at least one
// video was transcribed. Errors are returned for unsupported platforms, feed failures and
// cancellation.
func (o *Orchestrator) AnalyzeFeed(ctx context.Context, id schema.UserIdentifier) (schema.UserFeedAnalysis, error) {
	if id.Platform != schema.TikTokPlatform {
		return schema.UserFeedAnalysis{}, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, id.Platform)
	}

	videos, err := o.feed.FetchUserVideos(ctx, id.Handle, o.cfg.MaxVideos)
	if err != nil {
		return schema.UserFeedAnalysis{}, fmt.Errorf("fetch videos for %s: %w", id, err)
	}
	if o.cfg.MaxVideos > 0 && len(videos) > o.cfg.MaxVideos {
		videos = videos[:o.cfg.MaxVideos]
	}
	o.logger.Info("feed fetched", "user", id.String(), "videos", len(videos))

	res := schema.UserFeedAnalysis{
		UserIdentifier: id,
		TotalVideos:    len(videos),
		Videos:         []schema.VideoAnalysisData{},
		Failures:       []schema.VideoFailure{},
	}

	batch := o.cfg.EffectiveBatchSize()
	for start := 0; start < len(videos); start += batch {
		if start > 0 {
			if err := o.sleep(ctx, o.cfg.BatchDelay(batch)); err != nil {
				return schema.UserFeedAnalysis{}, fmt.Errorf("feed analysis interrupted: %w", err)
			}
		}
		end := min(start+batch, len(videos))
		for _, out := range o.processBatch(ctx, id, videos[start:end]) {
			if out.failure != nil {
				res.Failures = append(res.Failures, *out.failure)
				continue
			}
			res.Videos = append(res.Videos, out.video)
		}
		o.logger.Debug("batch done", "user", id.String(), "from", start, "to", end)
	}

	res.ProcessedVideos = len(res.Videos)
	res.FailedVideos = len(res.Failures)
	res.Status = schema.FailedStatus
	if res.ProcessedVideos > 0 {
		res.Status = schema.CompletedStatus
	}
	res.AnalyzedAt = o.now()
	o.logger.Info("feed analyzed", "user", id.String(), "processed", res.ProcessedVideos, "failed", res.FailedVideos)
	return res, nil
}

// processBatch transcribes a batch concurrently. Results keep the order of the batch.
func (o *Orchestrator) processBatch(ctx context.Context, id schema.UserIdentifier, videos []schema.FeedVideo) []outcome {
	results := make([]outcome, len(videos))
	var wg sync.WaitGroup
	for i, v := range videos {
		wg.Go(func() {
			results[i] = o.processVideo(ctx, id, v)
		})
	}
	wg.Wait()
	return results
}

func (o *Orchestrator) processVideo(ctx context.Context, id schema.UserIdentifier, v schema.FeedVideo) outcome {
	username := v.Author.Username
	if username == "" {
		username = id.Handle
	}
	url := VideoURL(username, v.ID)
	fail := func(reason string) outcome {
		o.logger.Warn("video skipped", "video", v.ID, "reason", reason)
		return outcome{failure: &schema.VideoFailure{VideoID: v.ID, URL: url, Reason: reason}}
	}

	transcript, err := o.transcript(ctx, v.ID, url)
	if err != nil {
		return fail(err.Error())
	}
	if n := len([]rune(strings.TrimSpace(transcript))); n < o.cfg.Analysis.MinTranscriptLength {
		return fail(fmt.Sprintf("transcript too short: %d characters (minimum %d)", n, o.cfg.Analysis.MinTranscriptLength))
	}

	return outcome{video: schema.VideoAnalysisData{
		VideoID:    v.ID,
		URL:        url,
		Transcript: transcript,
		Duration:   v.Duration,
		Engagement: schema.Engagement{
			Views:    v.Stats.PlayCount,
			Likes:    v.Stats.DiggCount,
			Comments: v.Stats.CommentCount,
		},
		Metadata: schema.VideoMetadata{CapturedAt: o.now(), Platform: id.Platform},
	}}
}

// transcript returns a cached transcript when fresh, otherwise calls the transcriber.
func (o *Orchestrator) transcript(ctx context.Context, videoID, url string) (string, error) {
	key := "transcript:" + videoID
	if o.cache != nil {
		value, version, ts, err := o.cache.Get(key)
		switch {
		case err == nil && version == transcriptCacheVersion && o.now().Sub(time.Unix(ts, 0)) < o.cfg.CacheTTL:
			o.logger.Debug("transcript cache hit", "video", videoID)
			return string(value), nil
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			o.logger.Debug("transcript cache read failed", "video", videoID, "error", err)
		}
	}

	res, err := o.transcriber.Transcribe(ctx, url)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	if !res.Success {
		reason := res.Error
		if reason == "" {
			reason = "no transcript returned"
		}
		return "", fmt.Errorf("transcription failed: %s", reason)
	}

	if o.cache != nil {
		if err := o.cache.Set(key, []byte(res.Transcript), transcriptCacheVersion, o.now().Unix()); err != nil {
			o.logger.Debug("transcript cache write failed", "video", videoID, "error", err)
		}
	}
	return res.Transcript, nil
}

// SleepContext waits for d or until ctx is done, whichever comes first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
