package analytics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinix/clinix/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "professional", "receptionist"))
	g.GET("/analytics/dashboard", h.GetDashboard)
	g.GET("/reports/:type/export", h.ExportReport)
}

// GetDashboard computes and returns the full snapshot for the requested
// period. Query params: period (today|week|month|quarter|year|custom,
// default month) and, for custom, start and end as RFC 3339 instants.
func (h *Handler) GetDashboard(c echo.Context) error {
	snapshot, err := h.compute(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot)
}

// ExportReport computes the snapshot and streams one report type as CSV.
func (h *Handler) ExportReport(c echo.Context) error {
	report := c.Param("type")
	snapshot, err := h.compute(c)
	if err != nil {
		return err
	}

	data, err := ExportCSV(snapshot, report)
	if err != nil {
		if errors.Is(err, ErrUnknownReport) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "export failed")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s.csv"`, report))
	return c.Blob(http.StatusOK, "text/csv", data)
}

func (h *Handler) compute(c echo.Context) (*Snapshot, error) {
	tenant, _ := c.Get("tenant_id").(string)

	period := Period(c.QueryParam("period"))
	if period == "" {
		period = PeriodMonth
	}

	custom, err := parseCustomRange(c)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	snapshot, err := h.svc.Compute(c.Request().Context(), tenant, period, custom)
	switch {
	case err == nil:
		return snapshot, nil
	case errors.Is(err, ErrInvalidWindow):
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNoTenant):
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return nil, echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("dashboard computation failed: %v", err))
	}
}

// parseCustomRange reads the optional start/end params. Bound presence is
// validated by the window resolver; this only rejects unparseable instants.
func parseCustomRange(c echo.Context) (*Window, error) {
	startParam := c.QueryParam("start")
	endParam := c.QueryParam("end")
	if startParam == "" && endParam == "" {
		return nil, nil
	}

	var w Window
	if startParam != "" {
		start, err := time.Parse(time.RFC3339, startParam)
		if err != nil {
			return nil, fmt.Errorf("invalid start instant: %v", err)
		}
		w.Start = start
	}
	if endParam != "" {
		end, err := time.Parse(time.RFC3339, endParam)
		if err != nil {
			return nil, fmt.Errorf("invalid end instant: %v", err)
		}
		w.End = end
	}
	return &w, nil
}
