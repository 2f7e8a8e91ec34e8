package coordinator

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/omarmosa2/dental-clinic-sub005/internal/platform/auth"
)

type Handler struct {
	coord *Coordinator
}

func NewHandler(coord *Coordinator) *Handler {
	return &Handler{coord: coord}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	write := api.Group("", auth.RequireRole("admin", "dentist", "assistant"))
	write.POST("/treatments", h.CreateTreatment)
	write.PUT("/treatments/:id", h.EditTreatment)
	write.DELETE("/treatments/:id", h.DeleteTreatment)
	write.POST("/treatments/reorder", h.Reorder)
	write.POST("/treatments/:id/move", h.Move)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.POST("/lab-orders/sweep", h.Sweep)
}

func httpError(err error) *echo.HTTPError {
	var v *ValidationError
	if errors.As(err, &v) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) CreateTreatment(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	report, err := h.coord.CreateTreatment(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, report)
}

func (h *Handler) EditTreatment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in EditInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	report, err := h.coord.EditTreatment(c.Request().Context(), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) DeleteTreatment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	report, err := h.coord.DeleteTreatment(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}

type reorderRequest struct {
	PatientID   uuid.UUID   `json:"patient_id"`
	ToothNumber int         `json:"tooth_number"`
	OrderedIDs  []uuid.UUID `json:"ordered_ids"`
}

func (h *Handler) Reorder(c echo.Context) error {
	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.coord.Reorder(c.Request().Context(), req.PatientID, req.ToothNumber, req.OrderedIDs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type moveRequest struct {
	PatientID   uuid.UUID `json:"patient_id"`
	ToothNumber int       `json:"tooth_number"`
	Index       int       `json:"index"`
	Direction   string    `json:"direction"`
}

func (h *Handler) Move(c echo.Context) error {
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.coord.Move(c.Request().Context(), req.PatientID, req.ToothNumber, req.Index, req.Direction); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Sweep(c echo.Context) error {
	report, err := h.coord.Sweep(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}
