package engine

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/lecture-scribe/internal/config"
	"github.com/nguyentantai21042004/lecture-scribe/internal/logger"
	openai "github.com/sashabaranov/go-openai"
)

// openAIEngine transcribes through an OpenAI-compatible /audio/transcriptions
// endpoint, including a local whisper.cpp server reached through base_url.
type openAIEngine struct {
	cfg    config.OpenAIConfig
	logger logger.Logger
}

func (e *openAIEngine) Name() string { return "openai" }

func (e *openAIEngine) Load(ctx context.Context) (Session, error) {
	if e.cfg.APIKey == "" && e.cfg.BaseURL == "" {
		return nil, fmt.Errorf("openai.api_key is required (or set OPENAI_API_KEY)")
	}

	clientCfg := openai.DefaultConfig(e.cfg.APIKey)
	if e.cfg.BaseURL != "" {
		clientCfg.BaseURL = e.cfg.BaseURL
	}

	model := e.cfg.Model
	if model == "" {
		model = openai.Whisper1
	}

	e.logger.Debug(ctx, "OpenAI transcription endpoint: %s (model %s)", clientCfg.BaseURL, model)
	return &openAISession{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: e.logger,
	}, nil
}

type openAISession struct {
	client *openai.Client
	model  string
	logger logger.Logger
}

// Transcribe uploads the whole file. Beam width and the voice-activity filter
// are decided server side, so opts only shows up in the debug log.
func (s *openAISession) Transcribe(ctx context.Context, path string, opts Options) (Info, SegmentStream, error) {
	s.logger.Debug(ctx, "Remote transcription ignores beam_size=%d vad_filter=%t", opts.BeamSize, opts.VADFilter)

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.model,
		FilePath: path,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return Info{}, nil, fmt.Errorf("openai transcription: %w", err)
	}

	segments := make([]Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		segments = append(segments, Segment{Start: seg.Start, End: seg.End, Text: seg.Text})
	}

	return Info{Language: resp.Language, Duration: resp.Duration}, NewSliceStream(segments), nil
}

func (s *openAISession) Err() error { return nil }

func (s *openAISession) Close() error { return nil }
