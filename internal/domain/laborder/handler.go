package laborder

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/omarmosa2/dental-clinic-sub005/internal/platform/auth"
)

type Handler struct {
	sync *Synchronizer
}

func NewHandler(sync *Synchronizer) *Handler {
	return &Handler{sync: sync}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "dentist", "assistant", "reception"))
	read.GET("/treatments/:id/lab-order", h.LinkedOrder)
	read.GET("/patients/:id/lab-orders", h.OrdersForPatient)
}

func (h *Handler) LinkedOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := h.sync.FindLinkedOrder(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if o == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no lab order linked to treatment")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) OrdersForPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	orders, err := h.sync.OrdersForPatient(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, orders)
}
