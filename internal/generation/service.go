// Package generation runs the paid content generation flow: balance check,
// model call, then debit and persistence in one transaction.
package generation

import (
	"context"
	"strings"
	"time"

	"threadcraft-api/internal/domain/content"
	apperr "threadcraft-api/internal/errors"
	"threadcraft-api/internal/infra/genai"
	"threadcraft-api/internal/infra/metrics"
	"threadcraft-api/internal/logging"
	"threadcraft-api/internal/store"
)

const (
	DefaultCost          = 5
	DefaultTimeout       = 60 * time.Second
	DefaultMaxImageBytes = 4 << 20
)

type Generator interface {
	Generate(ctx context.Context, req genai.Request) (string, error)
}

type Config struct {
	Cost          int
	Timeout       time.Duration
	MaxImageBytes int
}

type Input struct {
	ExternalID  string
	ContentType string
	Prompt      string
	Image       *genai.Image
}

type Result struct {
	Segments []string
	Content  content.GeneratedContent
	Balance  int
}

type Service struct {
	store     *store.Store
	generator Generator
	cfg       Config
}

func NewService(st *store.Store, gen Generator, cfg Config) *Service {
	if cfg.Cost <= 0 {
		cfg.Cost = DefaultCost
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}
	return &Service{store: st, generator: gen, cfg: cfg}
}

func (s *Service) Cost() int { return s.cfg.Cost }

// Generate charges the caller and stores the result. No points move unless the
// content row is written in the same transaction.
func (s *Service) Generate(ctx context.Context, in Input) (*Result, error) {
	const op = "generation.generate"

	ct, prompt, image, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	outcome := "error"
	defer func() { metrics.GenerationsTotal.WithLabelValues(string(ct), outcome).Inc() }()

	balance, err := s.store.Balance(ctx, in.ExternalID)
	if err != nil {
		return nil, err
	}
	if balance < s.cfg.Cost {
		outcome = "insufficient_points"
		return nil, apperr.InsufficientPoints(op, balance, s.cfg.Cost)
	}

	text, err := s.callModel(ctx, genai.Request{
		Prompt: BuildPrompt(ct, prompt, image != nil),
		Image:  image,
	})
	if err != nil {
		outcome = "upstream_error"
		return nil, err
	}

	segments := content.Segments(ct, text)
	var res Result
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		u, err := tx.UserByExternalID(ctx, in.ExternalID)
		if err != nil {
			return err
		}
		res.Balance, err = tx.Debit(ctx, in.ExternalID, s.cfg.Cost)
		if err != nil {
			return err
		}
		res.Content = content.GeneratedContent{
			UserID:      u.ID,
			Content:     content.JoinSegments(segments),
			Prompt:      prompt,
			ContentType: ct,
		}
		return tx.SaveContent(ctx, &res.Content)
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInsufficientPoints {
			outcome = "insufficient_points"
		}
		return nil, err
	}

	res.Segments = segments
	outcome = "ok"
	logging.FromContext(ctx).Info().
		Str("external_id", in.ExternalID).
		Str("content_type", string(ct)).
		Int("segments", len(segments)).
		Int("balance", res.Balance).
		Msg("Content generated")
	return &res, nil
}

// History returns the caller's stored generations, newest first.
func (s *Service) History(ctx context.Context, externalID string, limit int) ([]content.GeneratedContent, error) {
	return s.store.History(ctx, externalID, limit)
}

func (s *Service) validate(in Input) (content.ContentType, string, *genai.Image, error) {
	const op = "generation.validate"
	if strings.TrimSpace(in.ExternalID) == "" {
		return "", "", nil, apperr.Authentication(op, errMissingCaller)
	}
	ct, ok := content.ParseContentType(in.ContentType)
	if !ok {
		return "", "", nil, apperr.Validation(op, "unknown content type %q", in.ContentType)
	}
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return "", "", nil, apperr.Validation(op, "prompt is required")
	}

	// Images only feed instagram captions; other types ignore them.
	if in.Image == nil || ct != content.Instagram {
		return ct, prompt, nil, nil
	}
	if !strings.HasPrefix(in.Image.MimeType, "image/") {
		return "", "", nil, apperr.Validation(op, "unsupported image type %q", in.Image.MimeType)
	}
	if len(in.Image.Data) == 0 {
		return "", "", nil, apperr.Validation(op, "image is empty")
	}
	if len(in.Image.Data) > s.cfg.MaxImageBytes {
		return "", "", nil, apperr.Validation(op, "image exceeds %d bytes", s.cfg.MaxImageBytes)
	}
	return ct, prompt, in.Image, nil
}

func (s *Service) callModel(ctx context.Context, req genai.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	text, err := s.generator.Generate(ctx, req)
	metrics.ModelLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		if apperr.KindOf(err) == "" {
			err = apperr.Upstream("generation.model", err, ctx.Err() != nil)
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", apperr.Upstream("generation.model", errEmptyResponse, false)
	}
	return text, nil
}
