package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/report-service/internal/cache"
	"github.com/spec-kit/report-service/internal/config"
	"github.com/spec-kit/report-service/internal/domain"
	"github.com/spec-kit/report-service/internal/extract"
	"github.com/spec-kit/report-service/internal/repository"
	"github.com/spec-kit/report-service/internal/storage"
	apperrors "github.com/spec-kit/report-service/pkg/util"
)

// DefaultTextTitle names reports ingested from pasted text without a title.
const DefaultTextTitle = "Pasted Report"

// ReportService runs the ingestion pipeline: validate an upload, extract
// plaintext, split it into ordered paragraph blocks and persist everything,
// keeping the original bytes in object storage.
type ReportService struct {
	reports repository.ReportRepository
	objects storage.ObjectStore
	cache   cache.ReportCache
	upload  config.UploadConfig
	logger  *zap.Logger
}

// NewReportService builds the service.
func NewReportService(reports repository.ReportRepository, objects storage.ObjectStore, reportCache cache.ReportCache, upload config.UploadConfig, logger *zap.Logger) *ReportService {
	return &ReportService{
		reports: reports,
		objects: objects,
		cache:   reportCache,
		upload:  upload,
		logger:  logger,
	}
}

// IngestFile processes an uploaded document into a stored report.
func (s *ReportService) IngestFile(ctx context.Context, user *domain.User, filename string, content []byte) (*domain.ReportDocument, error) {
	if int64(len(content)) > s.upload.MaxFileSizeBytes {
		return nil, apperrors.NewValidationError("invalid file. Please upload a PDF or DOCX file under the size limit.", nil)
	}

	fileType := extract.FileType(filename)
	if fileType == "" {
		return nil, apperrors.NewValidationError("invalid file. Please upload a PDF or DOCX file under the size limit.", nil)
	}

	text, err := extract.Text(content, fileType)
	if err != nil {
		return nil, apperrors.NewValidationError("error extracting text from file", map[string]any{"reason": err.Error()})
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("no text could be extracted from the file", nil)
	}

	reportID := uuid.NewString()
	objectKey := reportID + strings.ToLower(filepath.Ext(filename))
	if err := s.objects.Upload(ctx, objectKey, content, fileType); err != nil {
		return nil, err
	}

	title := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	report := s.buildReport(reportID, user.ID, title, text)
	report.FilePath = objectKey
	report.FileSize = int64(len(content))
	report.FileType = fileType

	if err := s.reports.Create(ctx, report); err != nil {
		// The report row is the source of truth; an orphaned object is
		// acceptable, a report without its file is not.
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, user.ID)
	s.logger.Info("report ingested",
		zap.String("report_id", report.ID),
		zap.String("user_id", user.ID),
		zap.Int("blocks", len(report.Blocks)),
	)
	return report, nil
}

// IngestText processes pasted text into a stored report.
func (s *ReportService) IngestText(ctx context.Context, user *domain.User, title, text string) (*domain.ReportDocument, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("text content cannot be empty", nil)
	}
	if title == "" {
		title = DefaultTextTitle
	}

	report := s.buildReport(uuid.NewString(), user.ID, title, text)
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, user.ID)
	s.logger.Info("text report ingested",
		zap.String("report_id", report.ID),
		zap.String("user_id", user.ID),
		zap.Int("blocks", len(report.Blocks)),
	)
	return report, nil
}

func (s *ReportService) buildReport(id, userID, title, text string) *domain.ReportDocument {
	paragraphs := extract.SplitParagraphs(text)
	blocks := make([]domain.ReportBlock, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		blocks = append(blocks, domain.ReportBlock{
			ID:      uuid.NewString(),
			Content: paragraph,
			Type:    domain.BlockTypeParagraph,
			Tags:    []string{},
		})
	}
	return &domain.ReportDocument{
		ID:     id,
		UserID: userID,
		Title:  title,
		Blocks: blocks,
	}
}

// ListReports returns the user's reports newest first, serving from the
// cache when fresh.
func (s *ReportService) ListReports(ctx context.Context, user *domain.User) ([]*domain.ReportDocument, error) {
	if cached, err := s.cache.GetReports(ctx, user.ID); err == nil {
		return cached, nil
	}

	reports, err := s.reports.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []*domain.ReportDocument{}
	}

	_ = s.cache.SetReports(ctx, user.ID, reports)
	return reports, nil
}

// GetReport returns one of the user's reports.
func (s *ReportService) GetReport(ctx context.Context, user *domain.User, reportID string) (*domain.ReportDocument, error) {
	report, err := s.reports.GetByID(ctx, user.ID, reportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("report")
		}
		return nil, err
	}
	return report, nil
}

// DeleteReport removes a report's rows and its stored object.
func (s *ReportService) DeleteReport(ctx context.Context, user *domain.User, reportID string) error {
	objectKey, err := s.reports.Delete(ctx, user.ID, reportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("report")
		}
		return err
	}

	if objectKey != "" {
		if err := s.objects.Delete(ctx, objectKey); err != nil {
			s.logger.Warn("failed to delete stored object",
				zap.String("report_id", reportID),
				zap.Error(err),
			)
		}
	}

	_ = s.cache.Invalidate(ctx, user.ID)
	return nil
}
