package consultation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vitalink/vitalink/internal/domain/provider"
)

// ProviderDirectory is the slice of the provider service the
// consultation flow needs.
type ProviderDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*provider.Provider, error)
	Available(ctx context.Context, f provider.Filters) ([]*provider.Provider, error)
	SetRatings(ctx context.Context, id uuid.UUID, averageRating float64, totalReviews int) error
}

type Service struct {
	sessions   Repository
	providers  ProviderDirectory
	signingKey []byte
	log        zerolog.Logger
}

func NewService(sessions Repository, providers ProviderDirectory, signingKey []byte, log zerolog.Logger) *Service {
	return &Service{sessions: sessions, providers: providers, signingKey: signingKey, log: log}
}

var validPaymentStatuses = map[string]bool{
	"pending": true, "paid": true, "refunded": true,
}

type ScheduleInput struct {
	PatientID     uuid.UUID `json:"patientId"`
	ProviderID    uuid.UUID `json:"providerId"`
	Type          string    `json:"type"`
	ScheduledTime time.Time `json:"scheduledTime"`
	Intake        Intake    `json:"intake"`
}

// Schedule books a consultation, copying duration and fee from the
// provider's current terms.
func (s *Service) Schedule(ctx context.Context, in ScheduleInput) (*Session, error) {
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patientId is required")
	}
	if in.ProviderID == uuid.Nil {
		return nil, fmt.Errorf("providerId is required")
	}
	if in.ScheduledTime.IsZero() {
		return nil, fmt.Errorf("scheduledTime is required")
	}
	if in.Type == "" {
		in.Type = TypeVideo
	}
	if !ValidType(in.Type) {
		return nil, fmt.Errorf("invalid consultation type: %s", in.Type)
	}

	prov, err := s.providers.Get(ctx, in.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("provider not found")
	}
	if !prov.Active() {
		return nil, fmt.Errorf("provider is not accepting consultations")
	}

	booked, err := s.sessions.IsBooked(ctx, in.ProviderID, in.ScheduledTime)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, fmt.Errorf("provider is already booked at this time")
	}

	now := time.Now().UTC()
	session := &Session{
		ID:            uuid.New(),
		PatientID:     in.PatientID,
		ProviderID:    in.ProviderID,
		Type:          in.Type,
		Status:        StatusScheduled,
		ScheduledTime: in.ScheduledTime,
		Duration:      prov.Consultation.Duration,
		Fee:           prov.Consultation.Fee,
		PaymentStatus: "pending",
		Intake:        in.Intake,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.sessions.GetSession(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Session, error) {
	return s.sessions.ListByPatient(ctx, patientID)
}

func (s *Service) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*Session, error) {
	return s.sessions.ListByProvider(ctx, providerID)
}

// UpdateStatus applies a lifecycle transition without side effects, used
// for moving a session into the waiting room or cancelling it.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Session, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Transition(status) {
		return nil, fmt.Errorf("cannot transition consultation from %s to %s", session.Status, status)
	}
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Start activates the session and issues the signed tokens a client
// needs to join the room.
func (s *Service) Start(ctx context.Context, id uuid.UUID) (*StartResult, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Transition(StatusActive) {
		return nil, fmt.Errorf("cannot start consultation in status %s", session.Status)
	}

	now := time.Now().UTC()
	session.ActualStartTime = &now
	session.UpdatedAt = now
	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return nil, err
	}

	roomID := "room_" + session.ID.String()
	sessionToken, err := s.signToken(session, roomID, "patient", session.PatientID)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	accessToken, err := s.signToken(session, roomID, "provider", session.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &StartResult{
		Session:      session,
		SessionToken: sessionToken,
		RoomID:       roomID,
		AccessToken:  accessToken,
	}, nil
}

// signToken mints an HS256 token scoped to the session room, valid for
// the booked duration plus a grace period.
func (s *Service) signToken(session *Session, roomID, role string, subject uuid.UUID) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sid":  session.ID.String(),
		"sub":  subject.String(),
		"role": role,
		"room": roomID,
		"iat":  now.Unix(),
		"exp":  now.Add(time.Duration(session.Duration)*time.Minute + 15*time.Minute).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// ParseToken validates a session token and returns its claims.
func (s *Service) ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

type EndInput struct {
	Diagnosis   *Diagnosis `json:"diagnosis,omitempty"`
	Treatment   *Treatment `json:"treatment,omitempty"`
	DoctorNotes string     `json:"doctorNotes,omitempty"`
}

// End completes an active session and records the clinical outcome. The
// end time never precedes the start time.
func (s *Service) End(ctx context.Context, id uuid.UUID, in EndInput) (*Session, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != StatusActive {
		return nil, fmt.Errorf("cannot end consultation in status %s", session.Status)
	}
	session.Status = StatusCompleted

	now := time.Now().UTC()
	if session.ActualStartTime != nil && now.Before(*session.ActualStartTime) {
		now = *session.ActualStartTime
	}
	session.ActualEndTime = &now
	session.Diagnosis = in.Diagnosis
	session.Treatment = in.Treatment
	if in.DoctorNotes != "" {
		session.Notes.DoctorNotes = in.DoctorNotes
	}
	session.UpdatedAt = time.Now().UTC()

	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Cancel aborts a session that has not completed. Paid sessions are
// marked for refund.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Session, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Transition(StatusCancelled) {
		return nil, fmt.Errorf("cannot cancel consultation in status %s", session.Status)
	}
	if session.PaymentStatus == "paid" {
		session.PaymentStatus = "refunded"
	}
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) UpdatePayment(ctx context.Context, id uuid.UUID, status string) (*Session, error) {
	if !validPaymentStatuses[status] {
		return nil, fmt.Errorf("invalid payment status: %s", status)
	}
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	session.PaymentStatus = status
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

type ReviewInput struct {
	Rating     int              `json:"rating"`
	Comment    string           `json:"comment"`
	Categories ReviewCategories `json:"categories"`
}

// SubmitReview records a rating for a completed session and refreshes
// the provider's aggregate, rounded to one decimal.
func (s *Service) SubmitReview(ctx context.Context, sessionID uuid.UUID, in ReviewInput) (*Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != StatusCompleted {
		return nil, fmt.Errorf("can only review a completed consultation")
	}

	review := &Review{
		ID:         uuid.New(),
		SessionID:  session.ID,
		PatientID:  session.PatientID,
		ProviderID: session.ProviderID,
		Rating:     in.Rating,
		Comment:    in.Comment,
		Categories: in.Categories,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.sessions.AddReview(ctx, review); err != nil {
		return nil, err
	}

	reviews, err := s.sessions.ListReviews(ctx, session.ProviderID)
	if err != nil {
		return nil, err
	}
	var sum float64
	for _, r := range reviews {
		sum += float64(r.Rating)
	}
	average := math.Round(sum/float64(len(reviews))*10) / 10
	if err := s.providers.SetRatings(ctx, session.ProviderID, average, len(reviews)); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *Service) Reviews(ctx context.Context, providerID uuid.UUID) ([]*Review, error) {
	return s.sessions.ListReviews(ctx, providerID)
}

// EstimatedWait maps triage severity to an expected wait in minutes.
func EstimatedWait(severity string) int {
	switch severity {
	case "critical":
		return 2
	case "urgent":
		return 10
	case "moderate":
		return 30
	default:
		return 60
	}
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func newEmergencyCode() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return "EMG" + string(b)
}

// RequestEmergency routes the patient to the best-rated provider that
// accepts emergencies and opens a waiting session immediately.
func (s *Service) RequestEmergency(ctx context.Context, req EmergencyRequest) (*EmergencyResponse, error) {
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patientId is required")
	}
	if req.EmergencyType == "" {
		return nil, fmt.Errorf("emergencyType is required")
	}

	// The emergency type doubles as the triage severity unless the caller
	// sent a separate severity field.
	severity := req.Severity
	if severity == "" {
		severity = req.EmergencyType
	}

	available, err := s.providers.Available(ctx, provider.Filters{EmergencyOnly: true})
	if err != nil {
		return nil, err
	}
	if len(available) == 0 {
		return nil, fmt.Errorf("no emergency providers available")
	}
	prov := available[0]

	now := time.Now().UTC()
	session := &Session{
		ID:            uuid.New(),
		PatientID:     req.PatientID,
		ProviderID:    prov.ID,
		Type:          TypeEmergency,
		Status:        StatusWaiting,
		ScheduledTime: now,
		Duration:      prov.Consultation.Duration,
		Fee:           prov.Consultation.Fee,
		PaymentStatus: "pending",
		Intake: Intake{
			ChiefComplaint: "Emergency: " + req.EmergencyType,
			Symptoms:       []string{req.Description},
		},
		EmergencyCode: newEmergencyCode(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Description == "" {
		session.Intake.Symptoms = nil
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.log.Warn().
		Str("session_id", session.ID.String()).
		Str("patient_id", req.PatientID.String()).
		Str("provider_id", prov.ID.String()).
		Str("severity", severity).
		Str("emergency_code", session.EmergencyCode).
		Msg("emergency consultation requested")

	return &EmergencyResponse{
		Session:              session,
		EstimatedWaitMinutes: EstimatedWait(severity),
		EmergencyCode:        session.EmergencyCode,
	}, nil
}

// AlertInput describes an emergency alert raised outside a consultation.
type AlertInput struct {
	PatientID uuid.UUID              `json:"patientId"`
	AlertType string                 `json:"alertType"`
	Location  string                 `json:"location,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// AlertResult acknowledges a dispatched emergency alert.
type AlertResult struct {
	AlertID   uuid.UUID `json:"alertId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// TriggerAlert records and acknowledges an emergency alert. Dispatch to
// external responders is logged for downstream alerting pipelines.
func (s *Service) TriggerAlert(ctx context.Context, in AlertInput) (*AlertResult, error) {
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patientId is required")
	}
	if in.AlertType == "" {
		return nil, fmt.Errorf("alertType is required")
	}

	result := &AlertResult{
		AlertID:   uuid.New(),
		Status:    "sent",
		Timestamp: time.Now().UTC(),
	}
	s.log.Error().
		Str("alert_id", result.AlertID.String()).
		Str("patient_id", in.PatientID.String()).
		Str("alert_type", in.AlertType).
		Str("location", in.Location).
		Msg("emergency alert triggered")
	return result, nil
}
