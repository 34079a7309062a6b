package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ZaspDragon/timeclock-api/internal/api/metrics"
	"github.com/ZaspDragon/timeclock-api/internal/core/domain"
	"github.com/ZaspDragon/timeclock-api/internal/core/ports"
	"github.com/ZaspDragon/timeclock-api/internal/export"
)

// ReportHandler handles the manager's cross-person range reports.
type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

func reportInput(c echo.Context, role string) ports.ReportInput {
	return ports.ReportInput{
		Role:    role,
		From:    c.QueryParam("from"),
		To:      c.QueryParam("to"),
		Name:    c.QueryParam("name"),
		Company: c.QueryParam("company"),
	}
}

// Run handles GET /v1/reports?from&to&name&company.
//
// @Summary      Run a cross-person range report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        from     query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to       query     string  false  "End date (YYYY-MM-DD)"
// @Param        name     query     string  false  "Name substring filter"
// @Param        company  query     string  false  "Company substring filter"
// @Success      200      {object}  reportResponse
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Router       /v1/reports [get]
func (h *ReportHandler) Run(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	result, err := h.service.Run(c.Request().Context(), reportInput(c, id.Role))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
		case errors.Is(err, domain.ErrInvalidDateRange):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, toReportResponse(result))
}

// Export handles GET /v1/reports/export. The XLSX variant carries a
// per-person summary sheet next to the detail table; CSV is detail only.
//
// @Summary      Export the cross-person report as CSV or XLSX
// @Tags         reports
// @Produce      text/csv
// @Security     BearerAuth
// @Param        from     query  string  false  "Start date (YYYY-MM-DD)"
// @Param        to       query  string  false  "End date (YYYY-MM-DD)"
// @Param        name     query  string  false  "Name substring filter"
// @Param        company  query  string  false  "Company substring filter"
// @Param        format   query  string  false  "csv (default) or xlsx"
// @Success      200  {file}    file
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /v1/reports/export [get]
func (h *ReportHandler) Export(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	format := c.QueryParam("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "format must be csv or xlsx"})
	}

	input := reportInput(c, id.Role)
	result, err := h.service.Run(c.Request().Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
		case errors.Is(err, domain.ErrInvalidDateRange):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	var summary []ports.PersonSummary
	if format == "xlsx" {
		summary = result.Summary
	}
	buf, contentType, err := renderTable(result.Detail, summary, format)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": domain.ErrExportUnavailable.Error()})
	}

	from, to := input.From, input.To
	if from == "" || to == "" {
		from, to = rangeBounds(result.Detail, from, to)
	}
	metrics.ExportsGeneratedTotal.WithLabelValues(format).Inc()
	filename := export.MasterFilename(from, to, format)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

// rangeBounds fills missing filename bounds from the detail rows, which are
// sorted newest first.
func rangeBounds(detail []ports.TimeLogView, from, to string) (string, string) {
	if len(detail) == 0 {
		return from, to
	}
	if to == "" {
		to = detail[0].Date
	}
	if from == "" {
		from = detail[len(detail)-1].Date
	}
	return from, to
}
