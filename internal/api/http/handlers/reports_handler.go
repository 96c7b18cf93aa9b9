package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/report-service/internal/api/dto"
	"github.com/spec-kit/report-service/internal/auth"
	"github.com/spec-kit/report-service/internal/service"
	apperrors "github.com/spec-kit/report-service/pkg/util"
)

// ReportsHandler exposes the ingestion and report CRUD endpoints.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reportService}
}

// Upload handles POST /api/files/upload (multipart).
func (h *ReportsHandler) Upload(c *fiber.Ctx) error {
	user, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file required", nil)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("could not read uploaded file", nil)
	}
	defer f.Close() //nolint:errcheck

	content, err := io.ReadAll(f)
	if err != nil {
		return apperrors.NewValidationError("could not read uploaded file", nil)
	}

	report, err := h.reports.IngestFile(c.UserContext(), user, fileHeader.Filename, content)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewReportResponse(report))
}

// UploadText handles POST /api/files/upload-text.
func (h *ReportsHandler) UploadText(c *fiber.Ctx) error {
	user, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.TextUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	report, err := h.reports.IngestText(c.UserContext(), user, req.Title, req.Text)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewReportResponse(report))
}

// List handles GET /api/files/reports.
func (h *ReportsHandler) List(c *fiber.Ctx) error {
	user, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	reports, err := h.reports.ListReports(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewReportListResponse(reports))
}

// Get handles GET /api/files/reports/:id.
func (h *ReportsHandler) Get(c *fiber.Ctx) error {
	user, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	report, err := h.reports.GetReport(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewReportResponse(report))
}

// Delete handles DELETE /api/files/reports/:id.
func (h *ReportsHandler) Delete(c *fiber.Ctx) error {
	user, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.reports.DeleteReport(c.UserContext(), user, c.Params("id")); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Report deleted successfully"})
}
