package consultation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vitalink/vitalink/internal/domain/provider"
)

type fixture struct {
	svc       *Service
	providers *provider.Service
	repo      Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := NewMemRepo()
	providers := provider.NewService(provider.NewMemRepo(), repo)
	svc := NewService(repo, providers, []byte("test-signing-key"), zerolog.Nop())
	return &fixture{svc: svc, providers: providers, repo: repo}
}

func (f *fixture) addProvider(t *testing.T, fee float64, duration int, rating float64, emergency bool) *provider.Provider {
	t.Helper()
	p := &provider.Provider{
		PersonalInfo: provider.PersonalInfo{
			FirstName: "Sarah", LastName: "Mitchell", Specialty: "Internal Medicine",
		},
		Availability: provider.Availability{
			Schedule: provider.WeeklySchedule{
				Monday: provider.DaySchedule{IsAvailable: true, StartTime: "09:00", EndTime: "11:00"},
			},
			ConsultationTypes: []string{"video", "chat"},
		},
		Consultation: provider.ConsultationInfo{Fee: fee, Duration: duration, EmergencyAvailable: emergency},
		Ratings:      provider.Ratings{AverageRating: rating},
	}
	if err := f.providers.Create(context.Background(), p); err != nil {
		t.Fatalf("create provider: %v", err)
	}
	return p
}

func TestScheduleCopiesProviderTerms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	prov := f.addProvider(t, 150, 45, 4.9, false)
	when := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)

	session, err := f.svc.Schedule(ctx, ScheduleInput{
		PatientID:     uuid.New(),
		ProviderID:    prov.ID,
		Type:          TypeVideo,
		ScheduledTime: when,
		Intake:        Intake{ChiefComplaint: "Persistent cough"},
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if session.Fee != 150 || session.Duration != 45 {
		t.Errorf("expected provider terms copied, got fee %.0f duration %d", session.Fee, session.Duration)
	}
	if session.Status != StatusScheduled || session.PaymentStatus != "pending" {
		t.Errorf("unexpected initial state: %s/%s", session.Status, session.PaymentStatus)
	}

	// Same provider, same minute: rejected.
	_, err = f.svc.Schedule(ctx, ScheduleInput{
		PatientID: uuid.New(), ProviderID: prov.ID, ScheduledTime: when,
	})
	if err == nil {
		t.Error("expected double-booking to fail")
	}

	_, err = f.svc.Schedule(ctx, ScheduleInput{
		PatientID: uuid.New(), ProviderID: uuid.New(), ScheduledTime: when,
	})
	if err == nil || !strings.Contains(err.Error(), "provider not found") {
		t.Errorf("expected provider not found, got %v", err)
	}

	_, err = f.svc.Schedule(ctx, ScheduleInput{
		PatientID: uuid.New(), ProviderID: prov.ID,
		ScheduledTime: when.Add(time.Hour), Type: "carrier-pigeon",
	})
	if err == nil {
		t.Error("expected invalid type to fail")
	}
}

func TestConsultationLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	prov := f.addProvider(t, 100, 30, 4.8, false)

	session, err := f.svc.Schedule(ctx, ScheduleInput{
		PatientID:     uuid.New(),
		ProviderID:    prov.ID,
		ScheduledTime: time.Now().UTC().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if _, err := f.svc.UpdateStatus(ctx, session.ID, StatusWaiting); err != nil {
		t.Fatalf("move to waiting: %v", err)
	}

	result, err := f.svc.Start(ctx, session.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if result.Session.Status != StatusActive || result.Session.ActualStartTime == nil {
		t.Fatalf("expected active session with start time, got %+v", result.Session)
	}
	if result.RoomID != "room_"+session.ID.String() {
		t.Errorf("unexpected room id: %s", result.RoomID)
	}
	if result.SessionToken == "" || result.AccessToken == "" {
		t.Fatal("expected signed tokens")
	}
	claims, err := f.svc.ParseToken(result.SessionToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims["sid"] != session.ID.String() || claims["room"] != result.RoomID {
		t.Errorf("unexpected claims: %v", claims)
	}

	// Starting twice is an illegal transition.
	if _, err := f.svc.Start(ctx, session.ID); err == nil {
		t.Error("expected second start to fail")
	}

	ended, err := f.svc.End(ctx, session.ID, EndInput{
		Diagnosis:   &Diagnosis{PrimaryDiagnosis: "Acute bronchitis", ICDCodes: []string{"J20.9"}, Confidence: 0.9},
		DoctorNotes: "Rest and fluids, follow up if fever persists",
	})
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if ended.Status != StatusCompleted {
		t.Errorf("status = %s, want completed", ended.Status)
	}
	if ended.ActualEndTime == nil || ended.ActualEndTime.Before(*ended.ActualStartTime) {
		t.Error("expected end time at or after start time")
	}
	if ended.Diagnosis == nil || ended.Diagnosis.PrimaryDiagnosis != "Acute bronchitis" {
		t.Errorf("diagnosis not recorded: %+v", ended.Diagnosis)
	}
	if ended.Notes.DoctorNotes == "" {
		t.Error("doctor notes not recorded")
	}

	// Completed is terminal.
	if _, err := f.svc.Cancel(ctx, session.ID); err == nil {
		t.Error("expected cancel of completed session to fail")
	}
}

func TestCancelRefundsPaidSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	prov := f.addProvider(t, 100, 30, 4.5, false)

	session, err := f.svc.Schedule(ctx, ScheduleInput{
		PatientID: uuid.New(), ProviderID: prov.ID,
		ScheduledTime: time.Now().UTC().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if _, err := f.svc.UpdatePayment(ctx, session.ID, "paid"); err != nil {
		t.Fatalf("pay: %v", err)
	}
	cancelled, err := f.svc.Cancel(ctx, session.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.PaymentStatus != "refunded" {
		t.Errorf("payment = %s, want refunded", cancelled.PaymentStatus)
	}

	if _, err := f.svc.UpdatePayment(ctx, session.ID, "comped"); err == nil {
		t.Error("expected invalid payment status to fail")
	}
}

func TestSubmitReviewUpdatesProviderRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	prov := f.addProvider(t, 100, 30, 0, false)

	complete := func(offset time.Duration) *Session {
		s, err := f.svc.Schedule(ctx, ScheduleInput{
			PatientID: uuid.New(), ProviderID: prov.ID,
			ScheduledTime: time.Now().UTC().Add(offset),
		})
		if err != nil {
			t.Fatalf("schedule: %v", err)
		}
		if _, err := f.svc.Start(ctx, s.ID); err != nil {
			t.Fatalf("start: %v", err)
		}
		if _, err := f.svc.End(ctx, s.ID, EndInput{}); err != nil {
			t.Fatalf("end: %v", err)
		}
		return s
	}

	first := complete(time.Hour)
	second := complete(2 * time.Hour)

	if _, err := f.svc.SubmitReview(ctx, first.ID, ReviewInput{Rating: 5}); err != nil {
		t.Fatalf("review: %v", err)
	}
	if _, err := f.svc.SubmitReview(ctx, second.ID, ReviewInput{Rating: 4, Comment: "Helpful"}); err != nil {
		t.Fatalf("review: %v", err)
	}

	updated, err := f.providers.Get(ctx, prov.ID)
	if err != nil {
		t.Fatalf("get provider: %v", err)
	}
	if updated.Ratings.AverageRating != 4.5 || updated.Ratings.TotalReviews != 2 {
		t.Errorf("ratings = %.1f/%d, want 4.5/2", updated.Ratings.AverageRating, updated.Ratings.TotalReviews)
	}

	// Only completed sessions can be reviewed.
	pending, err := f.svc.Schedule(ctx, ScheduleInput{
		PatientID: uuid.New(), ProviderID: prov.ID,
		ScheduledTime: time.Now().UTC().Add(3 * time.Hour),
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if _, err := f.svc.SubmitReview(ctx, pending.ID, ReviewInput{Rating: 5}); err == nil {
		t.Error("expected review of scheduled session to fail")
	}
	if _, err := f.svc.SubmitReview(ctx, first.ID, ReviewInput{Rating: 6}); err == nil {
		t.Error("expected out-of-range rating to fail")
	}
}

func TestEstimatedWait(t *testing.T) {
	cases := []struct {
		severity string
		want     int
	}{
		{"critical", 2},
		{"urgent", 10},
		{"moderate", 30},
		{"mild", 60},
		{"", 60},
	}
	for _, tc := range cases {
		if got := EstimatedWait(tc.severity); got != tc.want {
			t.Errorf("wait(%q) = %d, want %d", tc.severity, got, tc.want)
		}
	}
}

func TestRequestEmergencyRoutesToBestProvider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProvider(t, 100, 30, 4.2, true)
	best := f.addProvider(t, 200, 30, 4.9, true)
	f.addProvider(t, 100, 30, 5.0, false) // not emergency-available

	resp, err := f.svc.RequestEmergency(ctx, EmergencyRequest{
		PatientID:     uuid.New(),
		EmergencyType: "chest pain",
		Severity:      "critical",
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.Session.ProviderID != best.ID {
		t.Errorf("expected best-rated emergency provider, got %s", resp.Session.ProviderID)
	}
	if resp.EstimatedWaitMinutes != 2 {
		t.Errorf("wait = %d, want 2", resp.EstimatedWaitMinutes)
	}
	if resp.Session.Status != StatusWaiting || resp.Session.Type != TypeEmergency {
		t.Errorf("unexpected session state: %s/%s", resp.Session.Status, resp.Session.Type)
	}
	if resp.Session.Intake.ChiefComplaint != "Emergency: chest pain" {
		t.Errorf("unexpected chief complaint: %s", resp.Session.Intake.ChiefComplaint)
	}
	if !strings.HasPrefix(resp.EmergencyCode, "EMG") || len(resp.EmergencyCode) != 9 {
		t.Errorf("unexpected emergency code: %s", resp.EmergencyCode)
	}
}

func TestRequestEmergencyTypeActsAsSeverity(t *testing.T) {
	f := newFixture(t)
	f.addProvider(t, 100, 30, 4.5, true)

	cases := []struct {
		emergencyType string
		want          int
	}{
		{"critical", 2},
		{"urgent", 10},
		{"moderate", 30},
		{"chest pain", 60},
	}
	for _, tc := range cases {
		resp, err := f.svc.RequestEmergency(context.Background(), EmergencyRequest{
			PatientID:     uuid.New(),
			EmergencyType: tc.emergencyType,
		})
		if err != nil {
			t.Fatalf("request(%q): %v", tc.emergencyType, err)
		}
		if resp.EstimatedWaitMinutes != tc.want {
			t.Errorf("wait for type %q = %d, want %d", tc.emergencyType, resp.EstimatedWaitMinutes, tc.want)
		}
	}
}

func TestRequestEmergencyNoProviders(t *testing.T) {
	f := newFixture(t)
	f.addProvider(t, 100, 30, 4.9, false)

	_, err := f.svc.RequestEmergency(context.Background(), EmergencyRequest{
		PatientID:     uuid.New(),
		EmergencyType: "allergic reaction",
	})
	if err == nil || !strings.Contains(err.Error(), "no emergency providers") {
		t.Errorf("expected no-providers error, got %v", err)
	}
}

func TestBookedSessionBlocksProviderSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	prov := f.addProvider(t, 100, 30, 4.9, false)

	// 2026-09-07 is a Monday; the provider works 09:00-11:00.
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	slot := time.Date(2026, 9, 7, 9, 30, 0, 0, time.UTC)
	if _, err := f.svc.Schedule(ctx, ScheduleInput{
		PatientID: uuid.New(), ProviderID: prov.ID, ScheduledTime: slot,
	}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	slots, err := f.providers.Availability(ctx, prov.ID, day)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}
	for _, s := range slots {
		wantAvailable := !s.StartTime.Equal(slot)
		if s.Available != wantAvailable {
			t.Errorf("slot %s: available = %v, want %v", s.StartTime, s.Available, wantAvailable)
		}
	}
}

func TestTriggerAlert(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.TriggerAlert(context.Background(), AlertInput{
		PatientID: uuid.New(),
		AlertType: "fall-detected",
		Location:  "home",
	})
	if err != nil {
		t.Fatalf("alert: %v", err)
	}
	if result.Status != "sent" || result.AlertID == uuid.Nil {
		t.Errorf("unexpected result: %+v", result)
	}

	if _, err := f.svc.TriggerAlert(context.Background(), AlertInput{AlertType: "x"}); err == nil {
		t.Error("expected error for missing patient id")
	}
}

func TestGetSessionReturnsDetachedCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	prov := f.addProvider(t, 100, 30, 4.5, false)

	session, err := f.svc.Schedule(ctx, ScheduleInput{
		PatientID:     uuid.New(),
		ProviderID:    prov.ID,
		ScheduledTime: time.Now().UTC().Add(time.Hour),
		Intake:        Intake{ChiefComplaint: "headache", Symptoms: []string{"headache", "nausea"}},
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	got, err := f.svc.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Intake.Symptoms[0] = "changed"

	again, err := f.svc.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Intake.Symptoms[0] != "headache" {
		t.Errorf("intake mutated through returned copy: %v", again.Intake.Symptoms)
	}
}
