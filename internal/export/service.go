package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/awickham/feedforge/internal/domain"
	"github.com/awickham/feedforge/internal/filestore"
	"github.com/awickham/feedforge/internal/ingest"
	"github.com/awickham/feedforge/internal/monitoring"
	"github.com/awickham/feedforge/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when the source file does not exist for the
	// account.
	ErrNotFound = errors.New("source file not found")

	// ErrNothingProcessed is returned when the file has no completed rows
	// to export.
	ErrNothingProcessed = errors.New("no completed rows to export")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// RawStore loads retained upload bytes.
type RawStore interface {
	Load(key string) ([]byte, error)
}

// Service reconciles completed rows back into the original feed layout.
type Service struct {
	fileRepo    repository.SourceFileRepository
	productRepo repository.ProductRepository
	rawStore    RawStore
	metrics     *monitoring.Metrics
	logger      *zap.Logger
}

// NewService creates a new export service.
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

// Result is a generated export file.
type Result struct {
	FileName string
	Data     []byte
}

// Export rebuilds the feed with enriched values overlaid onto the
// original rows. The retained upload is preferred so variant lines and
// unknown columns survive verbatim; a rebuild from stored row fields is
// the fallback when the raw file is gone.
func (s *Service) Export(ctx context.Context, accountID, sourceFileID uuid.UUID) (Result, error) {
	file, err := s.fileRepo.GetByID(ctx, accountID, sourceFileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{}, ErrNotFound
		}
		return Result{}, fmt.Errorf("failed to load source file: %w", err)
	}

	completed, err := s.productRepo.ListCompletedBySourceFile(ctx, sourceFileID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list completed rows: %w", err)
	}
	if len(completed) == 0 {
		return Result{}, ErrNothingProcessed
	}

	byIndex := make(map[int]domain.Product, len(completed))
	for _, p := range completed {
		byIndex[p.RowIndex] = p
	}

	header, records, err := s.sourceRecords(ctx, file)
	if err != nil {
		return Result{}, err
	}

	cols, err := ingest.ResolveColumns(header)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve feed columns: %w", err)
	}

	for i := range records {
		if records[i] == nil {
			continue
		}
		product, ok := byIndex[i]
		if !ok {
			continue
		}
		// Variant lines are never overlaid, and a handle mismatch means
		// the retained file no longer lines up with the stored rows.
		if strings.TrimSpace(records[i][cols.Title]) == "" {
			continue
		}
		if strings.TrimSpace(records[i][cols.Handle]) != product.Handle {
			continue
		}
		records[i][cols.Body] = product.Output.Body
		records[i][cols.SEOTitle] = product.Output.SEOTitle
		records[i][cols.SEODescription] = product.Output.SEODescription
	}

	data, err := writeCSV(header, records)
	if err != nil {
		return Result{}, err
	}

	s.metrics.ExportsGenerated.Inc()

	result := Result{
		FileName: fmt.Sprintf("products_output_%s.csv", time.Now().Format("20060102_150405")),
		Data:     data,
	}

	s.logger.Info("export generated",
		zap.String("sourceFileId", sourceFileID.String()),
		zap.String("fileName", result.FileName),
		zap.Int("rows", len(records)),
		zap.Int("enriched", len(completed)))

	return result, nil
}

// sourceRecords returns the header and data rows of the feed, padded to
// header width, from the retained upload when available.
func (s *Service) sourceRecords(ctx context.Context, file domain.SourceFile) ([]string, [][]string, error) {
	raw, err := s.rawStore.Load(file.RawKey())
	if err == nil {
		feed, parseErr := ingest.ParseFeed(file.FileName, bytes.NewReader(raw))
		if parseErr == nil {
			records := make([][]string, len(feed.Rows))
			for i, row := range feed.Rows {
				records[i] = row.Values
			}
			return feed.Header, records, nil
		}
		s.logger.Warn("retained upload unreadable, rebuilding from rows",
			zap.String("sourceFileId", file.ID.String()),
			zap.Error(parseErr))
	} else if !errors.Is(err, filestore.ErrKeyNotFound) {
		return nil, nil, fmt.Errorf("failed to load retained upload: %w", err)
	}

	return s.rebuildRecords(ctx, file)
}

// rebuildRecords reconstructs the feed from stored input fields, keyed by
// the original row index so the overlay still lines up. Variant lines were
// never persisted as rows, so they leave nil gaps that are dropped on
// write.
func (s *Service) rebuildRecords(ctx context.Context, file domain.SourceFile) ([]string, [][]string, error) {
	products, err := s.productRepo.ListBySourceFile(ctx, file.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list rows for rebuild: %w", err)
	}

	header := []string{"Handle", "Title", "Body (HTML)", "Image Src", "SEO Title", "SEO Description"}

	maxIndex := -1
	for _, p := range products {
		if p.RowIndex > maxIndex {
			maxIndex = p.RowIndex
		}
	}

	records := make([][]string, maxIndex+1)
	for _, p := range products {
		records[p.RowIndex] = []string{
			p.Handle,
			p.Input.Title,
			p.Input.Body,
			p.Input.ImageURL,
			p.Input.SEOTitle,
			p.Input.SEODescription,
		}
	}
	return header, records, nil
}

func writeCSV(header []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(byteOrderMark)

	writer := csv.NewWriter(&buf)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, record := range records {
		if record == nil {
			continue
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
