package consultation

import (
	"errors"
	"net/http"
	"strings"

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
	api.POST("/consultations", h.Schedule)
	api.GET("/consultations", h.List)
	api.GET("/consultations/:id", h.Get)
	api.PATCH("/consultations/:id/status", h.UpdateStatus)
	api.POST("/consultations/:id/start", h.Start)
	api.POST("/consultations/:id/end", h.End)
	api.POST("/consultations/:id/cancel", h.Cancel)
	api.PATCH("/consultations/:id/payment", h.UpdatePayment)
	api.POST("/consultations/:id/review", h.SubmitReview)
	api.GET("/providers/:id/reviews", h.ListReviews)
	api.POST("/emergency/consultations", h.RequestEmergency)
	api.POST("/emergency/alerts", h.TriggerAlert)
}

func sessionID(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	return id, err == nil
}

func (h *Handler) Schedule(c echo.Context) error {
	var in ScheduleInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	session, err := h.svc.Schedule(c.Request().Context(), in)
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusCreated, envelope.OK(session))
}

func (h *Handler) Get(c echo.Context) error {
	id, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	session, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, envelope.Err("consultation not found"))
	}
	return c.JSON(http.StatusOK, envelope.OK(session))
}

// List returns sessions for a patient or a provider, whichever query
// parameter is present.
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	if p := c.QueryParam("patientId"); p != "" {
		id, err := uuid.Parse(p)
		if err != nil {
			return c.JSON(http.StatusBadRequest, envelope.Err("invalid patientId"))
		}
		items, err := h.svc.ListByPatient(ctx, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, envelope.Err(err.Error()))
		}
		return c.JSON(http.StatusOK, envelope.OK(items))
	}
	if p := c.QueryParam("providerId"); p != "" {
		id, err := uuid.Parse(p)
		if err != nil {
			return c.JSON(http.StatusBadRequest, envelope.Err("invalid providerId"))
		}
		items, err := h.svc.ListByProvider(ctx, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, envelope.Err(err.Error()))
		}
		return c.JSON(http.StatusOK, envelope.OK(items))
	}
	return c.JSON(http.StatusBadRequest, envelope.Err("patientId or providerId is required"))
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	session, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(http.StatusOK, envelope.OK(session))
}

func (h *Handler) Start(c echo.Context) error {
	id, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	result, err := h.svc.Start(c.Request().Context(), id)
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(http.StatusOK, envelope.OK(result))
}

func (h *Handler) End(c echo.Context) error {
	id, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	var in EndInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	session, err := h.svc.End(c.Request().Context(), id, in)
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(http.StatusOK, envelope.OK(session))
}

func (h *Handler) Cancel(c echo.Context) error {
	id, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	session, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(http.StatusOK, envelope.OK(session))
}

func (h *Handler) UpdatePayment(c echo.Context) error {
	id, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	session, err := h.svc.UpdatePayment(c.Request().Context(), id, req.Status)
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(http.StatusOK, envelope.OK(session))
}

func (h *Handler) SubmitReview(c echo.Context) error {
	id, ok := sessionID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	var in ReviewInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	review, err := h.svc.SubmitReview(c.Request().Context(), id, in)
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(http.StatusCreated, envelope.OK(review))
}

func (h *Handler) ListReviews(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid id"))
	}
	reviews, err := h.svc.Reviews(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(reviews))
}

func (h *Handler) RequestEmergency(c echo.Context) error {
	var req EmergencyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	resp, err := h.svc.RequestEmergency(c.Request().Context(), req)
	if err != nil {
		if strings.Contains(err.Error(), "no emergency providers") {
			return c.JSON(http.StatusServiceUnavailable, envelope.Err(err.Error()))
		}
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusCreated, envelope.OK(resp))
}

func (h *Handler) TriggerAlert(c echo.Context) error {
	var in AlertInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	result, err := h.svc.TriggerAlert(c.Request().Context(), in)
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusCreated, envelope.OK(result))
}

// sessionError maps not-found to 404, illegal transitions to 409 and
// everything else to 400.
func (h *Handler) sessionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, envelope.Err("consultation not found"))
	case strings.Contains(err.Error(), "cannot"):
		return c.JSON(http.StatusConflict, envelope.Err(err.Error()))
	default:
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
}
