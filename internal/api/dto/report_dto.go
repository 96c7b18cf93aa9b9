package dto

import (
	"time"

	"github.com/spec-kit/report-service/internal/domain"
)

// TextUploadRequest payload for pasted-text ingestion.
type TextUploadRequest struct {
	Text  string `json:"text"`
	Title string `json:"title"`
}

// ReportBlockResponse is one ordered block of a report.
type ReportBlockResponse struct {
	ID      string   `json:"id"`
	Content string   `json:"content"`
	Type    string   `json:"type"`
	Tags    []string `json:"tags"`
}

// ReportResponse is the public shape of a stored report.
type ReportResponse struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Blocks    []ReportBlockResponse `json:"blocks"`
	FilePath  string                `json:"file_path,omitempty"`
	FileSize  int64                 `json:"file_size,omitempty"`
	FileType  string                `json:"file_type,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// NewReportResponse maps a domain report to its public shape.
func NewReportResponse(report *domain.ReportDocument) ReportResponse {
	blocks := make([]ReportBlockResponse, 0, len(report.Blocks))
	for _, block := range report.Blocks {
		tags := block.Tags
		if tags == nil {
			tags = []string{}
		}
		blocks = append(blocks, ReportBlockResponse{
			ID:      block.ID,
			Content: block.Content,
			Type:    block.Type,
			Tags:    tags,
		})
	}
	return ReportResponse{
		ID:        report.ID,
		Title:     report.Title,
		Blocks:    blocks,
		FilePath:  report.FilePath,
		FileSize:  report.FileSize,
		FileType:  report.FileType,
		CreatedAt: report.CreatedAt,
		UpdatedAt: report.UpdatedAt,
	}
}

// NewReportListResponse maps a slice of reports.
func NewReportListResponse(reports []*domain.ReportDocument) []ReportResponse {
	out := make([]ReportResponse, 0, len(reports))
	for _, report := range reports {
		out = append(out, NewReportResponse(report))
	}
	return out
}
