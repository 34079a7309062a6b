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

const (
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// TimeLogHandler handles HTTP requests for the day-record lifecycle.
type TimeLogHandler struct {
	service ports.TimeLogService
	clock   domain.Clock
}

func NewTimeLogHandler(service ports.TimeLogService, clock domain.Clock) *TimeLogHandler {
	return &TimeLogHandler{service: service, clock: clock}
}

// Today handles GET /v1/timelogs/today. The record is created lazily on
// first access, so this never 404s for an authenticated caller.
//
// @Summary      Get today's time log
// @Tags         timelogs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  timeLogResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /v1/timelogs/today [get]
func (h *TimeLogHandler) Today(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	view, err := h.service.GetToday(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, toTimeLogResponse(view))
}

// Stamp handles POST /v1/timelogs/stamp. A field that was already stamped
// today is left untouched and the current record is returned unchanged.
//
// @Summary      Record a stamp on today's log
// @Tags         timelogs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      stampRequest  true  "Stamp field"
// @Success      200   {object}  timeLogResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/timelogs/stamp [post]
func (h *TimeLogHandler) Stamp(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req stampRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	view, err := h.service.Stamp(c.Request().Context(), id, req.Field)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStampField) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, toTimeLogResponse(view))
}

// UpdateNotes handles PATCH /v1/timelogs/:date/notes.
//
// @Summary      Update the notes on one day's log
// @Tags         timelogs
// @Accept       json
// @Security     BearerAuth
// @Param        date  path  string        true  "Date (YYYY-MM-DD)"
// @Param        body  body  notesRequest  true  "Notes text"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/timelogs/{date}/notes [patch]
func (h *TimeLogHandler) UpdateNotes(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	date := c.Param("date")
	if !domain.ValidDate(date) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
	}

	var req notesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	if err := h.service.UpdateNotes(c.Request().Context(), id, date, req.Notes); err != nil {
		if errors.Is(err, domain.ErrTimeLogNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "time log not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.NoContent(http.StatusNoContent)
}

// Range handles GET /v1/timelogs?from&to. Both bounds optional; defaults to
// the current Monday-start week.
//
// @Summary      List own time logs over a date range
// @Tags         timelogs
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to    query     string  false  "End date (YYYY-MM-DD)"
// @Success      200   {object}  rangeResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /v1/timelogs [get]
func (h *TimeLogHandler) Range(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	result, err := h.service.GetRange(c.Request().Context(), id, c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDateRange) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, rangeResponse{
		Data:       toTimeLogResponses(result.Rows),
		TotalHours: result.TotalHours,
		Count:      len(result.Rows),
	})
}

// Export handles GET /v1/timelogs/export?from&to&format. Streams the
// caller's own range as a CSV or XLSX attachment.
//
// @Summary      Export own time logs as CSV or XLSX
// @Tags         timelogs
// @Produce      text/csv
// @Security     BearerAuth
// @Param        from    query  string  false  "Start date (YYYY-MM-DD)"
// @Param        to      query  string  false  "End date (YYYY-MM-DD)"
// @Param        format  query  string  false  "csv (default) or xlsx"
// @Success      200  {file}    file
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /v1/timelogs/export [get]
func (h *TimeLogHandler) Export(c echo.Context) error {
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

	result, err := h.service.GetRange(c.Request().Context(), id, c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDateRange) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	filename := export.EmployeeFilename(id.Name, h.clock.Today(), format)
	buf, contentType, err := renderTable(result.Rows, nil, format)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": domain.ErrExportUnavailable.Error()})
	}

	metrics.ExportsGeneratedTotal.WithLabelValues(format).Inc()
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

// Wipe handles DELETE /v1/timelogs. Manager only; removes every record in
// the store. There is no undo.
//
// @Summary      Wipe all time log records
// @Tags         timelogs
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /v1/timelogs [delete]
func (h *TimeLogHandler) Wipe(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.WipeAll(c.Request().Context(), id); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.NoContent(http.StatusNoContent)
}
