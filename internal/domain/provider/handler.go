package provider

import (
	"errors"
	"net/http"
	"strconv"
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
	api.POST("/providers", h.Create)
	api.GET("/providers", h.List)
	api.GET("/providers/available", h.Available)
	api.GET("/providers/:id", h.Get)
	api.GET("/providers/:id/availability", h.Availability)
}

func (h *Handler) Create(c echo.Context) error {
	var p Provider
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
		return c.JSON(http.StatusNotFound, envelope.Err("provider not found"))
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

func (h *Handler) Available(c echo.Context) error {
	f := Filters{
		Specialty:        c.QueryParam("specialty"),
		ConsultationType: c.QueryParam("consultationType"),
	}
	if v := c.QueryParam("rating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, envelope.Err("invalid rating"))
		}
		f.MinRating = r
	}
	if v := c.QueryParam("experience"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, envelope.Err("invalid experience"))
		}
		f.MinExperience = n
	}
	if c.QueryParam("emergency") == "true" {
		f.EmergencyOnly = true
	}

	items, err := h.svc.Available(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(items))
}

func (h *Handler) Availability(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}

	date := time.Now().UTC()
	if v := c.QueryParam("date"); v != "" {
		date, err = time.Parse("2006-01-02", v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, envelope.Err("invalid date, want YYYY-MM-DD"))
		}
	}

	slots, err := h.svc.Availability(c.Request().Context(), id, date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Err("provider not found"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(slots))
}
