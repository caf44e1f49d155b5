package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/awickham/feedforge/internal/domain"
	"github.com/awickham/feedforge/internal/monitoring"
	"github.com/awickham/feedforge/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RawStore retains original upload bytes for export reconciliation.
type RawStore interface {
	Save(key string, data []byte) error
}

// Service ingests product feeds into row records.
type Service struct {
	fileRepo    repository.SourceFileRepository
	productRepo repository.ProductRepository
	rawStore    RawStore
	metrics     *monitoring.Metrics
	logger      *zap.Logger
}

// NewService creates a new ingest service.
func NewService(
	fileRepo repository.SourceFileRepository,
	productRepo repository.ProductRepository,
	rawStore RawStore,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		fileRepo:    fileRepo,
		productRepo: productRepo,
		rawStore:    rawStore,
		metrics:     metrics,
		logger:      logger,
	}
}

// Request describes the ingest input.
type Request struct {
	AccountID uuid.UUID
	FileName  string
	Data      io.Reader
}

// Summary reports the outcome of an ingest back to clients.
type Summary struct {
	SourceFileID uuid.UUID `json:"sourceFileId"`
	FileName     string    `json:"fileName"`
	Products     int       `json:"products"`
	Variants     int       `json:"variants"`
}

// Ingest parses the feed, persists one product row per non-variant line
// and retains the raw upload for later export.
func (s *Service) Ingest(ctx context.Context, req Request) (Summary, error) {
	raw, err := io.ReadAll(req.Data)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read upload: %w", err)
	}

	feed, err := ParseFeed(req.FileName, bytes.NewReader(raw))
	if err != nil {
		return Summary{}, err
	}

	file, err := s.fileRepo.Create(ctx, domain.NewSourceFile(req.AccountID, req.FileName))
	if err != nil {
		return Summary{}, fmt.Errorf("failed to create source file: %w", err)
	}

	productRows := feed.Products()
	products := make([]domain.Product, 0, len(productRows))
	for _, row := range productRows {
		products = append(products, domain.NewProduct(req.AccountID, file.ID, row.Handle, row.Index, row.Fields))
	}

	if _, err := s.productRepo.CreateBatch(ctx, products); err != nil {
		return Summary{}, fmt.Errorf("failed to persist product rows: %w", err)
	}

	// A failed retention is not fatal, export falls back to rebuilding the
	// feed from stored row fields.
	if err := s.rawStore.Save(file.RawKey(), raw); err != nil {
		s.logger.Warn("failed to retain raw upload",
			zap.String("sourceFileId", file.ID.String()),
			zap.Error(err))
	}

	if err := s.fileRepo.MarkReady(ctx, file.ID); err != nil {
		return Summary{}, fmt.Errorf("failed to mark source file ready: %w", err)
	}

	s.metrics.FeedsIngested.Inc()
	s.metrics.RowsIngested.WithLabelValues("product").Add(float64(len(products)))
	s.metrics.RowsIngested.WithLabelValues("variant").Add(float64(feed.VariantCount()))

	s.logger.Info("feed ingested",
		zap.String("sourceFileId", file.ID.String()),
		zap.String("fileName", req.FileName),
		zap.Int("products", len(products)),
		zap.Int("variants", feed.VariantCount()))

	return Summary{
		SourceFileID: file.ID,
		FileName:     req.FileName,
		Products:     len(products),
		Variants:     feed.VariantCount(),
	}, nil
}
