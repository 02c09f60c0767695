package observation

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vitalink/vitalink/pkg/envelope"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients/:id/vitals", h.AddVitalSigns)
	api.GET("/patients/:id/vitals", h.ListVitalSigns)
	api.POST("/patients/:id/labs", h.AddLabResult)
	api.GET("/patients/:id/labs", h.ListLabResults)
	api.GET("/patients/:id/scans", h.ListHealthScans)
	api.GET("/patients/:id/analytics", h.Analytics)
}

func patientID(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	return id, err == nil
}

func listLimit(c echo.Context) int {
	n, _ := strconv.Atoi(c.QueryParam("limit"))
	if n < 0 {
		return 0
	}
	return n
}

func (h *Handler) AddVitalSigns(c echo.Context) error {
	id, ok := patientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	var v VitalSignRecord
	if err := c.Bind(&v); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	v.PatientID = id
	if err := h.svc.AddVitalSigns(c.Request().Context(), &v); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusCreated, envelope.OK(v))
}

func (h *Handler) ListVitalSigns(c echo.Context) error {
	id, ok := patientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	items, err := h.svc.VitalSigns(c.Request().Context(), id, listLimit(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(items))
}

func (h *Handler) AddLabResult(c echo.Context) error {
	id, ok := patientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	var l LabResult
	if err := c.Bind(&l); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	l.PatientID = id
	if err := h.svc.AddLabResult(c.Request().Context(), &l); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusCreated, envelope.OK(l))
}

func (h *Handler) ListLabResults(c echo.Context) error {
	id, ok := patientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	items, err := h.svc.LabResults(c.Request().Context(), id, listLimit(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(items))
}

func (h *Handler) ListHealthScans(c echo.Context) error {
	id, ok := patientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	items, err := h.svc.HealthScans(c.Request().Context(), id, listLimit(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(items))
}

func (h *Handler) Analytics(c echo.Context) error {
	id, ok := patientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	a, err := h.svc.Analytics(c.Request().Context(), id, c.QueryParam("timeframe"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(a))
}
