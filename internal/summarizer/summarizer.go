package summarizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/genai"
)

// SummaryExt replaces the transcript's ".txt" extension.
const SummaryExt = ".summary.md"

const summaryPrompt = `You are an expert at analysing recorded lectures. Using the transcript below, write a DETAILED summary in the language of the lecture.

Requirements:
- Start with a one-sentence overview of the lecture topic
- List ALL main points in the order they appear
- Explain each point, including caveats, tips and warnings the speaker gives
- Keep technical terms as spoken
- Use markdown: headings, bullet points, bold for key terms
- Finish with a "Key takeaways" section if anything deserves emphasis

Transcript:
---
%s
---`

type generateFunc func(ctx context.Context, apiKey, model, prompt string) (string, error)

// Summarize reads the transcript, calls Gemini, and writes <name>.summary.md beside it.
func (s *implSummarizer) Summarize(ctx context.Context, title, transcriptPath string) (string, error) {
	content, err := os.ReadFile(transcriptPath)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return "", fmt.Errorf("transcript %s is empty", transcriptPath)
	}

	summary, err := s.callGemini(ctx, string(content))
	if err != nil {
		return "", fmt.Errorf("summarize %s: %w", title, err)
	}

	md := fmt.Sprintf("# %s\n\n_%s_\n\n%s\n",
		title,
		time.Now().Format("2006-01-02 15:04"),
		strings.TrimSpace(summary),
	)

	mdPath := strings.TrimSuffix(transcriptPath, filepath.Ext(transcriptPath)) + SummaryExt
	if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}

	s.logger.Debug(ctx, "Summary written: %s", mdPath)
	return mdPath, nil
}

// callGemini sends the transcript to Gemini and returns the summary text.
// Rotates API keys on 429 / quota errors.
func (s *implSummarizer) callGemini(ctx context.Context, transcript string) (string, error) {
	if len(s.apiKeys) == 0 {
		return "", errors.New("no Gemini API keys configured")
	}

	prompt := fmt.Sprintf(summaryPrompt, transcript)

	attempts := len(s.apiKeys)
	var lastErr error

	for range attempts {
		key := s.apiKeys[s.currentKey]

		text, err := s.generate(ctx, key, s.model, prompt)
		if err != nil {
			if isRateLimited(err) {
				s.logger.Warn(ctx, "Key %d rate limited, rotating...", s.currentKey+1)
				s.rotateKey()
				lastErr = err
				continue
			}
			return "", err
		}
		return text, nil
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (s *implSummarizer) rotateKey() {
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func geminiGenerate(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		return text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}
