// Package speech turns agent replies into audio through an OpenAI-compatible speech endpoint.
package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"

	openrouterx "github.com/tanpawarit/Chative-Voice-Agents/pkg/openrouter"
)

var (
	ErrDisabled  = errors.New("speech synthesis is not configured")
	ErrEmptyText = errors.New("text to synthesise is empty")
)

type Config struct {
	BaseURL      string        `split_words:"true" default:"https://api.openai.com/v1"`
	APIKey       string        `split_words:"true"`
	Model        string        `split_words:"true" default:"tts-1"`
	DefaultVoice string        `split_words:"true" default:"alloy"`
	OutputDir    string        `split_words:"true" default:"speech-out"`
	Timeout      time.Duration `split_words:"true" default:"30s"`
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

type Synthesizer struct {
	client       *openaisdk.Client
	model        string
	defaultVoice string
	outputDir    string
}

func New(cfg Config) (*Synthesizer, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	client := openrouterx.NewClient(openrouterx.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	})
	if client == nil {
		return nil, ErrDisabled
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "tts-1"
	}
	voice := strings.TrimSpace(cfg.DefaultVoice)
	if voice == "" {
		voice = "alloy"
	}
	return &Synthesizer{
		client:       client,
		model:        model,
		defaultVoice: voice,
		outputDir:    strings.TrimSpace(cfg.OutputDir),
	}, nil
}

// Synthesize streams mp3 audio for text into w. An empty voice uses the configured default.
func (s *Synthesizer) Synthesize(ctx context.Context, w io.Writer, text, voice string) error {
	if s == nil {
		return ErrDisabled
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	if strings.TrimSpace(voice) == "" {
		voice = s.defaultVoice
	}

	resp, err := s.client.Audio.Speech.New(ctx, openaisdk.AudioSpeechNewParams{
		Input:          text,
		Model:          openaisdk.SpeechModel(s.model),
		Voice:          openaisdk.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: openaisdk.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read speech audio: %w", err)
	}
	return nil
}

// SynthesizeToFile writes <outputDir>/<name>.mp3 and returns its path.
func (s *Synthesizer) SynthesizeToFile(ctx context.Context, name, text, voice string) (string, error) {
	if s == nil {
		return "", ErrDisabled
	}
	dir := s.outputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create speech dir: %w", err)
	}

	path := filepath.Join(dir, name+".mp3")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create speech file: %w", err)
	}
	if err := s.Synthesize(ctx, f, text, voice); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close speech file: %w", err)
	}
	return path, nil
}
