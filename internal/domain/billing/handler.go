package billing

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/omarmosa2/dental-clinic-sub005/internal/domain/treatment"
	"github.com/omarmosa2/dental-clinic-sub005/internal/platform/auth"
)

type Handler struct {
	reconciler *Reconciler
	plan       *treatment.PlanService
}

func NewHandler(reconciler *Reconciler, plan *treatment.PlanService) *Handler {
	return &Handler{reconciler: reconciler, plan: plan}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "dentist", "assistant", "reception"))
	read.GET("/treatments/:id/billing", h.BillingSummary)
	read.GET("/treatments/:id/billing/entries", h.BillingEntries)

	write := api.Group("", auth.RequireRole("admin", "dentist", "reception"))
	write.POST("/billing/:id/payments", h.RecordPayment)
}

func (h *Handler) BillingSummary(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.plan.GetTreatment(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "treatment not found")
	}
	summary, err := h.reconciler.Summary(c.Request().Context(), id, t.Cost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) BillingEntries(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	entries, err := h.reconciler.EntriesForTreatment(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}

type paymentRequest struct {
	Amount float64 `json:"amount"`
	Notes  *string `json:"notes,omitempty"`
}

func (h *Handler) RecordPayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.reconciler.RecordPayment(c.Request().Context(), id, req.Amount, req.Notes)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, entry)
}
