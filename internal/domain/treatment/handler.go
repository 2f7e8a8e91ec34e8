package treatment

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/omarmosa2/dental-clinic-sub005/internal/platform/auth"
)

type Handler struct {
	plan *PlanService
}

func NewHandler(plan *PlanService) *Handler {
	return &Handler{plan: plan}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "dentist", "assistant", "reception"))
	read.GET("/patients/:id/chart/:tooth", h.PlanForTooth)
	read.GET("/patients/:id/treatments", h.TreatmentsForPatient)
	read.GET("/treatments/:id", h.GetTreatment)
	read.GET("/treatments/:id/sessions", h.ListSessions)

	write := api.Group("", auth.RequireRole("admin", "dentist", "assistant"))
	write.POST("/treatments/:id/sessions", h.CreateSession)
	write.PUT("/treatments/:id/sessions/:sessionId", h.UpdateSession)
	write.DELETE("/treatments/:id/sessions/:sessionId", h.DeleteSession)
}

func (h *Handler) PlanForTooth(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	tooth, err := strconv.Atoi(c.Param("tooth"))
	if err != nil || tooth <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tooth number")
	}
	plan, err := h.plan.PlanForTooth(c.Request().Context(), patientID, tooth)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) TreatmentsForPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	treatments, err := h.plan.TreatmentsForPatient(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, treatments)
}

func (h *Handler) GetTreatment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.plan.GetTreatment(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "treatment not found")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ListSessions(c echo.Context) error {
	treatmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sessions, err := h.plan.SessionsForTreatment(c.Request().Context(), treatmentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sessions)
}

func (h *Handler) CreateSession(c echo.Context) error {
	treatmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var s Session
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.TreatmentID = treatmentID
	if err := h.plan.AddSession(c.Request().Context(), &s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) UpdateSession(c echo.Context) error {
	treatmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	var in SessionUpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s, err := h.plan.UpdateSession(c.Request().Context(), treatmentID, sessionID, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) DeleteSession(c echo.Context) error {
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	if err := h.plan.DeleteSession(c.Request().Context(), sessionID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
