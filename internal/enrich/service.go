package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/awickham/feedforge/internal/completion"
	"github.com/awickham/feedforge/internal/domain"
	"github.com/awickham/feedforge/internal/monitoring"
	"github.com/awickham/feedforge/internal/prompt"
	"github.com/awickham/feedforge/internal/repository"
	"github.com/awickham/feedforge/internal/textconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrProfileMissing is returned when the account has no processing
// profile.
var ErrProfileMissing = errors.New("no processing profile for account")

// Completer performs one completion call.
type Completer interface {
	Complete(ctx context.Context, req completion.Request) (string, error)
}

// MediaNormalizer turns an image URL into an inline data URI.
type MediaNormalizer interface {
	Normalize(ctx context.Context, url string) (string, error)
}

// TemplateLoader resolves prompt templates by name.
type TemplateLoader interface {
	Load(name string) (domain.PromptTemplate, error)
}

// Service runs pending rows through the enrichment pipeline.
type Service struct {
	productRepo repository.ProductRepository
	profileRepo repository.ProfileRepository
	logRepo     repository.ProcessingLogRepository
	templates   TemplateLoader
	media       MediaNormalizer
	completer   Completer
	metrics     *monitoring.Metrics
	logger      *zap.Logger
	concurrency int
	target      string
}

// NewService creates a new enrichment service.
func NewService(
	productRepo repository.ProductRepository,
	profileRepo repository.ProfileRepository,
	logRepo repository.ProcessingLogRepository,
	templates TemplateLoader,
	media MediaNormalizer,
	completer Completer,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
	concurrency int,
) *Service {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		productRepo: productRepo,
		profileRepo: profileRepo,
		logRepo:     logRepo,
		templates:   templates,
		media:       media,
		completer:   completer,
		metrics:     metrics,
		logger:      logger,
		concurrency: concurrency,
		target:      prompt.TargetOpenAI,
	}
}

// Summary reports one processing run.
type Summary struct {
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Remaining int `json:"remaining"`
}

// Process enriches every pending row for the account. Each row is its own
// unit of work: a failing row never aborts the batch, and a cancelled
// context stops new rows while in-flight ones drain.
func (s *Service) Process(ctx context.Context, accountID uuid.UUID) (Summary, error) {
	profile, err := s.profileRepo.GetByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Summary{}, ErrProfileMissing
		}
		return Summary{}, fmt.Errorf("failed to load processing profile: %w", err)
	}

	template, err := s.templates.Load(profile.PromptName)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load prompt template: %w", err)
	}

	rows, err := s.productRepo.ListPending(ctx, accountID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list pending rows: %w", err)
	}

	var completed, failed int64

	group := &errgroup.Group{}
	group.SetLimit(s.concurrency)
	for _, row := range rows {
		if ctx.Err() != nil {
			break
		}
		row := row
		group.Go(func() error {
			// A row queued behind the limit may only get its slot after
			// cancellation; it stays Pending instead of starting work.
			if ctx.Err() != nil {
				s.metrics.RowsProcessed.WithLabelValues("skipped").Inc()
				return nil
			}
			switch s.processRow(ctx, profile, template, row) {
			case outcomeCompleted:
				atomic.AddInt64(&completed, 1)
				s.metrics.RowsProcessed.WithLabelValues("completed").Inc()
			case outcomeFailed:
				atomic.AddInt64(&failed, 1)
				s.metrics.RowsProcessed.WithLabelValues("failed").Inc()
			default:
				s.metrics.RowsProcessed.WithLabelValues("skipped").Inc()
			}
			return nil
		})
	}
	_ = group.Wait()

	summary := Summary{
		Completed: int(completed),
		Failed:    int(failed),
		Remaining: len(rows) - int(completed) - int(failed),
	}

	s.logger.Info("processing run finished",
		zap.String("accountId", accountID.String()),
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
		zap.Int("remaining", summary.Remaining))

	return summary, nil
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeCompleted
	outcomeFailed
)

// processRow runs one row through media, prompt, completion and
// transcoding. Transient failures leave the row Pending for a later run,
// permanent ones mark it Failed.
func (s *Service) processRow(ctx context.Context, profile domain.ProcessingProfile, template domain.PromptTemplate, row domain.Product) outcome {
	imageURI := ""
	if profile.UseInlineImages && row.Input.ImageURL != "" {
		uri, err := s.media.Normalize(ctx, row.Input.ImageURL)
		if err != nil {
			s.recordFailure(ctx, row, "media", err)
			return outcomeSkipped
		}
		imageURI = uri
	}

	composed, err := prompt.Compose(prompt.Request{
		Template:         template,
		Target:           s.target,
		Title:            row.Input.Title,
		Description:      textconv.HTMLToPlain(row.Input.Body),
		ImageDataURI:     imageURI,
		StructuredOutput: true,
	})
	if err != nil {
		// An unsupported target can never succeed on retry.
		s.recordFailure(ctx, row, "prompt", err)
		return s.markFailed(ctx, row, err)
	}

	start := time.Now()
	content, err := s.completer.Complete(ctx, completion.Request{
		Model:        profile.Model,
		Temperature:  profile.Temperature,
		MaxTokens:    profile.MaxTokens,
		Text:         composed.Text,
		ImageDataURI: composed.ImageDataURI,
		ImageDetail:  composed.ImageDetail,
		Structured:   true,
	})
	s.metrics.CompletionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.recordFailure(ctx, row, "completion", err)
		return outcomeSkipped
	}

	output := s.transcode(profile, row, completion.ParseFields(content))

	if err := s.productRepo.MarkCompleted(ctx, row.ID, output); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			s.logger.Warn("row no longer pending, skipping",
				zap.String("productId", row.ID.String()))
			return outcomeSkipped
		}
		s.recordFailure(ctx, row, "persist", err)
		return outcomeSkipped
	}
	return outcomeCompleted
}

// transcode normalizes the model output into export ready fields: HTML
// for the body, plain text for the SEO fields. Blank outputs fall back to
// the row's input so a completion never erases data.
func (s *Service) transcode(profile domain.ProcessingProfile, row domain.Product, parsed domain.ProductFields) domain.ProductFields {
	body := parsed.Body
	if body != "" && !strings.Contains(body, "<") {
		if rendered, err := textconv.MarkdownToHTML(body); err == nil {
			body = rendered
		}
	}
	if body == "" {
		body = row.Input.Body
	}

	seoTitle := textconv.MarkdownToPlain(textconv.HTMLToPlain(parsed.SEOTitle))
	if seoTitle == "" {
		seoTitle = row.Input.SEOTitle
	}

	seoDescription := textconv.MarkdownToPlain(textconv.HTMLToPlain(parsed.SEODescription))
	if seoDescription == "" {
		seoDescription = row.Input.SEODescription
	}
	seoDescription = textconv.TruncateRunes(seoDescription, profile.SEODescriptionLimit)

	return domain.ProductFields{
		Title:          row.Input.Title,
		ImageURL:       row.Input.ImageURL,
		Body:           body,
		SEOTitle:       seoTitle,
		SEODescription: seoDescription,
	}
}

func (s *Service) markFailed(ctx context.Context, row domain.Product, cause error) outcome {
	if err := s.productRepo.MarkFailed(ctx, row.ID, completion.Truncate(cause.Error(), 512)); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return outcomeSkipped
		}
		s.logger.Error("failed to mark row failed",
			zap.String("productId", row.ID.String()),
			zap.Error(err))
		return outcomeSkipped
	}
	return outcomeFailed
}

func (s *Service) recordFailure(ctx context.Context, row domain.Product, stage string, cause error) {
	s.logger.Warn("row processing failed",
		zap.String("productId", row.ID.String()),
		zap.String("stage", stage),
		zap.String("error", completion.Truncate(cause.Error(), 512)))

	productID := row.ID
	entry := domain.ProcessingLogEntry{
		AccountID:    row.AccountID,
		ProductID:    &productID,
		Stage:        stage,
		ErrorMessage: completion.Truncate(cause.Error(), 512),
	}
	if err := s.logRepo.Record(ctx, entry); err != nil {
		s.logger.Error("failed to record processing log", zap.Error(err))
	}
}
