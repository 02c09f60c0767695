package patient

import (
	"context"
	"errors"
	"net/http"

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
	api.POST("/patients", h.Create)
	api.GET("/patients", h.List)
	api.GET("/patients/:id", h.Get)
	api.PATCH("/patients/:id", h.Update)
	api.POST("/patients/:id/medications", h.AddMedication)
	api.POST("/patients/:id/medications/:medicationId/dose", h.TakeDose)
	api.POST("/patients/:id/medications/:medicationId/missed", h.RecordMissedDose)
	api.POST("/patients/:id/medications/:medicationId/restock", h.Restock)
}

func (h *Handler) Create(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	if err := h.svc.Create(c.Request().Context(), &p); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusCreated, envelope.OK(p))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, envelope.Err("patient not found"))
	}
	return c.JSON(http.StatusOK, envelope.OK(p))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, pg.Limit, pg.Offset)))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	p, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Err("patient not found"))
		}
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(p))
}

func (h *Handler) AddMedication(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	var med Medication
	if err := c.Bind(&med); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	p, err := h.svc.AddMedication(c.Request().Context(), id, med)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Err("patient not found"))
		}
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusCreated, envelope.OK(p))
}

func (h *Handler) TakeDose(c echo.Context) error {
	return h.medicationAction(c, h.svc.TakeDose)
}

func (h *Handler) RecordMissedDose(c echo.Context) error {
	return h.medicationAction(c, h.svc.RecordMissedDose)
}

func (h *Handler) Restock(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	medID, err := uuid.Parse(c.Param("medicationId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid medication id"))
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	med, err := h.svc.Restock(c.Request().Context(), id, medID, body.Count)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Err("patient not found"))
		}
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(med))
}

func (h *Handler) medicationAction(c echo.Context, op func(ctx context.Context, patientID, medicationID uuid.UUID) (*Medication, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	medID, err := uuid.Parse(c.Param("medicationId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid medication id"))
	}
	med, err := op(c.Request().Context(), id, medID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Err("patient not found"))
		}
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(med))
}
