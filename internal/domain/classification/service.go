package classification

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civicsafe/civicsafe-api/internal/pkg/errorhandler"
	"github.com/civicsafe/civicsafe-api/internal/pkg/logger"
)

const (
	defaultTimeout  = 5 * time.Second
	defaultCacheTTL = 24 * time.Hour
	cachePrefix     = "classify:"
	labelMaxTokens  = 20
)

// Service classifies report text and drafts reports from images.
// It never returns an error: every failure becomes a fallback result.
type Service struct {
	upstream Upstream
	cache    *redis.Client
	timeout  time.Duration
	cacheTTL time.Duration
}

// NewService creates the collaborator. upstream and cache may be nil.
func NewService(upstream Upstream, cache *redis.Client, timeout, cacheTTL time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &Service{
		upstream: upstream,
		cache:    cache,
		timeout:  timeout,
		cacheTTL: cacheTTL,
	}
}

// Classify maps free text to one of Departments
func (s *Service) Classify(ctx context.Context, text string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Fallback("Missing description")
	}

	key := cacheKey(text)
	if dept, ok := s.cached(ctx, key); ok {
		return Ok(dept)
	}

	if s.upstream == nil {
		return s.fallback(ctx, "none", ErrNotConfigured)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.upstream.Complete(callCtx, classifyPrompt(text), labelMaxTokens)
	if err != nil {
		return s.fallback(ctx, s.upstream.Name(), err)
	}

	dept := MatchDepartment(raw)
	s.store(ctx, key, dept)
	return Ok(dept)
}

// AnalyzeImage asks the model for a draft title, type and description
func (s *Service) AnalyzeImage(ctx context.Context, image []byte) ImageAnalysis {
	if len(image) == 0 {
		return FallbackAnalysis("No image provided")
	}
	if s.upstream == nil {
		s.logFailure(ctx, "none", ErrNotConfigured)
		return FallbackAnalysis(reason(ErrNotConfigured))
	}

	mimeType := http.DetectContentType(image)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.upstream.Describe(callCtx, imagePrompt, image, mimeType)
	if err != nil {
		s.logFailure(ctx, s.upstream.Name(), err)
		return FallbackAnalysis(reason(err))
	}
	return ParseImageAnalysis(text)
}

func (s *Service) fallback(ctx context.Context, service string, err error) Result {
	s.logFailure(ctx, service, err)
	return Fallback(reason(err))
}

func (s *Service) logFailure(ctx context.Context, service string, err error) {
	status := 0
	body := ""
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.StatusCode
		body = httpErr.Body
	}
	errorhandler.LogExternalServiceError(ctx, service, "generate", status, err, body)
}

func (s *Service) cached(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	val, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.LogWarn(ctx, "Classification cache read failed", "error", err.Error())
		}
		return "", false
	}
	dept := MatchDepartment(val)
	return dept, dept == val
}

func (s *Service) store(ctx context.Context, key, dept string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, dept, s.cacheTTL).Err(); err != nil {
		logger.LogWarn(ctx, "Classification cache write failed", "error", err.Error())
	}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return cachePrefix + hex.EncodeToString(sum[:])
}
