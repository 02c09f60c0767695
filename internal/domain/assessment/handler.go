package assessment

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vitalink/vitalink/internal/platform/ai"
	"github.com/vitalink/vitalink/pkg/envelope"
)

type Handler struct {
	svc *Service
	ai  ai.Client
}

// NewHandler wires the assessment service and an optional generative AI
// client. A nil client disables the narrative endpoints.
func NewHandler(svc *Service, aiClient ai.Client) *Handler {
	return &Handler{svc: svc, ai: aiClient}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/assessments/scan", h.ProcessHealthScan)
	api.POST("/assessments/symptoms", h.AnalyzeSymptoms)
	api.POST("/assessments/interactions", h.CheckDrugInteractions)
	api.POST("/assessments/risks", h.PredictHealthRisks)
	api.GET("/assessments/labs/:testId", h.InterpretLabResult)

	api.POST("/ai/analyze", h.AIAnalyze)
	api.POST("/ai/chat", h.AIChat)
	api.POST("/ai/health-plan", h.AIHealthPlan)
}

type scanRequest struct {
	PatientID string   `json:"patientId"`
	ScanType  string   `json:"scanType"`
	ScanData  ScanData `json:"scanData"`
}

func (h *Handler) ProcessHealthScan(c echo.Context) error {
	var req scanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid patientId"))
	}
	scan, err := h.svc.ProcessHealthScan(c.Request().Context(), patientID, req.ScanType, req.ScanData)
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusCreated, envelope.OK(scan))
}

func (h *Handler) AnalyzeSymptoms(c echo.Context) error {
	var req struct {
		Symptoms []string `json:"symptoms"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	report, err := h.svc.AnalyzeSymptoms(req.Symptoms)
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(report))
}

func (h *Handler) CheckDrugInteractions(c echo.Context) error {
	var req struct {
		Medications []string `json:"medications"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	report, err := h.svc.CheckDrugInteractions(req.Medications)
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(report))
}

func (h *Handler) PredictHealthRisks(c echo.Context) error {
	var profile RiskProfile
	if err := c.Bind(&profile); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	if profile.Age <= 0 {
		return c.JSON(http.StatusBadRequest, envelope.Err("age is required"))
	}
	return c.JSON(http.StatusOK, envelope.OK(h.svc.PredictHealthRisks(profile)))
}

func (h *Handler) InterpretLabResult(c echo.Context) error {
	value, err := strconv.ParseFloat(c.QueryParam("value"), 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err("invalid value"))
	}
	out, err := h.svc.InterpretLabResult(c.Param("testId"), value)
	if err != nil {
		return c.JSON(http.StatusNotFound, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(out))
}

func (h *Handler) AIAnalyze(c echo.Context) error {
	if h.ai == nil {
		return c.JSON(http.StatusServiceUnavailable, envelope.Err("ai analysis is not configured"))
	}
	var req struct {
		HealthData map[string]interface{} `json:"healthData"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	result, err := h.ai.AnalyzeHealthData(c.Request().Context(), req.HealthData)
	if err != nil {
		return c.JSON(http.StatusBadGateway, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(result))
}

func (h *Handler) AIChat(c echo.Context) error {
	if h.ai == nil {
		return c.JSON(http.StatusServiceUnavailable, envelope.Err("ai chat is not configured"))
	}
	var req struct {
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, envelope.Err("message is required"))
	}
	reply, err := h.ai.Chat(c.Request().Context(), req.Message, req.Context)
	if err != nil {
		return c.JSON(http.StatusBadGateway, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(map[string]string{"reply": reply}))
}

func (h *Handler) AIHealthPlan(c echo.Context) error {
	if h.ai == nil {
		return c.JSON(http.StatusServiceUnavailable, envelope.Err("ai health plans are not configured"))
	}
	var req struct {
		Profile map[string]interface{} `json:"profile"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Err(err.Error()))
	}
	plan, err := h.ai.GenerateHealthPlan(c.Request().Context(), req.Profile)
	if err != nil {
		return c.JSON(http.StatusBadGateway, envelope.Err(err.Error()))
	}
	return c.JSON(http.StatusOK, envelope.OK(plan))
}
