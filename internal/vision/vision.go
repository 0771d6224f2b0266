package vision

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/transcripta/capsearch/internal/storage"
)

// thumbnailPrompt asks for searchable text, not prose about the image
const thumbnailPrompt = "Describe this video thumbnail in one or two short sentences. " +
	"Transcribe any visible text exactly, then name the main visual subject. " +
	"Do not speculate beyond what is shown."

// Config contains configuration for the thumbnail describer
type Config struct {
	Model   string // Chat model to use (default: gpt-4o)
	BaseURL string // Override for OpenAI-compatible services, including /v1
}

// Statistics summarizes a DescribeMissing run
type Statistics struct {
	Described int
	Skipped   int
	Failed    int
}

// Describer extracts searchable text from video thumbnails with a vision
// chat model and patches it onto the stored videos. Without an API key it
// is disabled and every operation degrades to a logged skip.
type Describer struct {
	client *openai.Client
	store  storage.Store
	model  string
	logger *log.Logger
}

// New creates a Describer. An empty apiKey yields a disabled instance.
func New(store storage.Store, apiKey string, config Config) *Describer {
	d := &Describer{
		store:  store,
		model:  config.Model,
		logger: log.New(log.Writer(), "[vision] ", log.LstdFlags),
	}
	if d.model == "" {
		d.model = openai.GPT4o
	}
	if apiKey == "" {
		return d
	}

	if config.BaseURL != "" {
		clientConfig := openai.DefaultConfig(apiKey)
		clientConfig.BaseURL = config.BaseURL
		d.client = openai.NewClientWithConfig(clientConfig)
	} else {
		d.client = openai.NewClient(apiKey)
	}
	return d
}

// Enabled reports whether an API key was configured
func (d *Describer) Enabled() bool {
	return d.client != nil
}

// ThumbnailURL returns the platform's standard thumbnail location for a video
func ThumbnailURL(videoID string) string {
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID)
}

// Describe asks the vision model for a short description of the image URL
func (d *Describer) Describe(ctx context.Context, imageURL string) (string, error) {
	if d.client == nil {
		return "", fmt.Errorf("vision is disabled, no API key configured")
	}

	req := openai.ChatCompletionRequest{
		Model:     d.model,
		MaxTokens: 150,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: thumbnailPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
	}

	resp, err := d.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from vision model")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// DescribeVideo describes one video's thumbnail and stores the result
func (d *Describer) DescribeVideo(ctx context.Context, videoID, imageURL string) error {
	text, err := d.Describe(ctx, imageURL)
	if err != nil {
		return err
	}
	if err := d.store.UpdateThumbnailText(ctx, videoID, text); err != nil {
		return fmt.Errorf("failed to store thumbnail text for %s: %w", videoID, err)
	}
	return nil
}

// DescribeMissing walks every stored video without thumbnail text and fills
// it in. Per-video failures are logged and counted, not fatal; a disabled
// describer skips everything.
func (d *Describer) DescribeMissing(ctx context.Context) (*Statistics, error) {
	videos, err := d.store.ListVideos(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	stats := &Statistics{}
	for _, video := range videos {
		if video.ThumbnailText != "" {
			stats.Skipped++
			continue
		}
		if !d.Enabled() {
			d.logger.Printf("no API key, skipping thumbnail for %s", video.VideoID)
			stats.Skipped++
			continue
		}

		if err := d.DescribeVideo(ctx, video.VideoID, ThumbnailURL(video.VideoID)); err != nil {
			d.logger.Printf("thumbnail description failed for %s: %v", video.VideoID, err)
			stats.Failed++
			continue
		}
		stats.Described++
	}
	return stats, nil
}
