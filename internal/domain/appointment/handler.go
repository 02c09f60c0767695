package appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vitalink/vitalink/pkg/envelope"
	"github.com/vitalink/vitalink/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/appointments", h.Create)
	api.GET("/appointments", h.List)
	api.GET("/appointments/:id", h.Get)
	api.PATCH("/appointments/:id/status", h.UpdateStatus)
	api.PATCH("/appointments/:id/outcome", h.UpdateOutcome)
}

func (h *Handler) Create(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	if err := h.svc.Create(c.Request().Context(), &a); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusCreated, envelope.OK(a))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, envelope.Err("appointment not found"))
	}
	return c.JSON(http.StatusOK, envelope.OK(a))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	if v := c.QueryParam("patientId"); v != "" {
		pid, err := uuid.Parse(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, envelope.Err("invalid patientId"))
		}
		items, total, err := h.svc.ListByPatient(ctx, pid, pg.Limit, pg.Offset)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, envelope.Err(err.Error()))
		}
		return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, pg.Limit, pg.Offset)))
	}
	if v := c.QueryParam("providerId"); v != "" {
		pid, err := uuid.Parse(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, envelope.Err("invalid providerId"))
		}
		items, total, err := h.svc.ListByProvider(ctx, pid, pg.Limit, pg.Offset)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, envelope.Err(err.Error()))
		}
		return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, pg.Limit, pg.Offset)))
	}

	items, total, err := h.svc.List(ctx, pg.Limit, pg.Offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, pg.Limit, pg.Offset)))
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	a, err := h.svc.UpdateStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Err("appointment not found"))
		}
		return c.JSON(http.StatusConflict, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(a))
}

func (h *Handler) UpdateOutcome(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	var body struct {
		Diagnosis        string     `json:"diagnosis"`
		Treatment        string     `json:"treatment"`
		Notes            string     `json:"notes"`
		FollowUpRequired bool       `json:"followUpRequired"`
		FollowUpDate     *time.Time `json:"followUpDate"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	a, err := h.svc.UpdateOutcome(c.Request().Context(), id, body.Diagnosis, body.Treatment, body.Notes, body.FollowUpRequired, body.FollowUpDate)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Err("appointment not found"))
		}
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(a))
}
