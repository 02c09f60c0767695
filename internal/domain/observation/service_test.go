package observation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestService() *Service {
	return NewService(NewMemRepo())
}

func vitalsAt(patientID uuid.UUID, at time.Time, hr, systolic float64) *VitalSignRecord {
	return &VitalSignRecord{
		PatientID:        patientID,
		Timestamp:        at,
		HeartRate:        hr,
		BloodPressure:    BloodPressure{Systolic: systolic, Diastolic: 80},
		Temperature:      36.8,
		RespiratoryRate:  14,
		OxygenSaturation: 98,
	}
}

func TestVitalSignsNewestFirstWithLimit(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	pid := uuid.New()
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		v := vitalsAt(pid, now.Add(-time.Duration(i)*time.Hour), 70+float64(i), 120)
		if err := svc.AddVitalSigns(ctx, v); err != nil {
			t.Fatalf("add vitals: %v", err)
		}
	}

	items, err := svc.VitalSigns(ctx, pid, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].Timestamp.After(items[i-1].Timestamp) {
			t.Error("expected newest-first ordering")
		}
	}

	all, _ := svc.VitalSigns(ctx, pid, 0)
	if len(all) != 5 {
		t.Errorf("expected all 5 without limit, got %d", len(all))
	}
}

func TestAddVitalSignsValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	v := vitalsAt(uuid.Nil, time.Now(), 70, 120)
	if err := svc.AddVitalSigns(ctx, v); err == nil {
		t.Error("expected error for missing patient id")
	}
	v = vitalsAt(uuid.New(), time.Now(), 0, 120)
	if err := svc.AddVitalSigns(ctx, v); err == nil {
		t.Error("expected error for missing heart rate")
	}
}

func TestAddVitalSignsComputesBMI(t *testing.T) {
	svc := newTestService()
	weight, height := 75.0, 175.0
	v := vitalsAt(uuid.New(), time.Now(), 70, 120)
	v.Weight, v.Height = &weight, &height
	if err := svc.AddVitalSigns(context.Background(), v); err != nil {
		t.Fatalf("add vitals: %v", err)
	}
	if v.BMI == nil {
		t.Fatal("expected bmi to be derived")
	}
	if *v.BMI < 24.4 || *v.BMI > 24.6 {
		t.Errorf("expected bmi ~24.5, got %f", *v.BMI)
	}
}

func TestLabResultDefaults(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	pid := uuid.New()

	l := &LabResult{PatientID: pid, TestName: "Hemoglobin A1C", Value: 5.4, Unit: "%"}
	if err := svc.AddLabResult(ctx, l); err != nil {
		t.Fatalf("add lab: %v", err)
	}
	if l.Status != "pending" {
		t.Errorf("expected pending default, got %s", l.Status)
	}
	if l.ResultDate.IsZero() || l.OrderDate.IsZero() {
		t.Error("expected dates to be defaulted")
	}

	bad := &LabResult{PatientID: pid, TestName: "X", Status: "weird"}
	if err := svc.AddLabResult(ctx, bad); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestAnalyticsRollup(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	pid := uuid.New()
	now := time.Now().UTC()

	// Older half around HR 70, newer half around HR 80: >5% increase.
	for i, hr := range []float64{70, 70, 80, 81} {
		v := vitalsAt(pid, now.Add(-time.Duration(4-i)*24*time.Hour), hr, 120)
		if err := svc.AddVitalSigns(ctx, v); err != nil {
			t.Fatalf("add vitals: %v", err)
		}
	}
	// A record outside the week window must be excluded.
	old := vitalsAt(pid, now.AddDate(0, 0, -30), 200, 200)
	if err := svc.AddVitalSigns(ctx, old); err != nil {
		t.Fatalf("add vitals: %v", err)
	}

	scan := &HealthScan{
		PatientID: pid,
		ScanType:  "comprehensive",
		Timestamp: now.Add(-time.Hour),
		Results:   ScanResults{OverallScore: 85, RiskLevel: "low"},
	}
	if err := svc.AddHealthScan(ctx, scan); err != nil {
		t.Fatalf("add scan: %v", err)
	}

	a, err := svc.Analytics(ctx, pid, "week")
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if a.Summary.TotalVitalSignRecords != 4 {
		t.Errorf("expected 4 vitals in window, got %d", a.Summary.TotalVitalSignRecords)
	}
	if a.Summary.TotalHealthScans != 1 {
		t.Errorf("expected 1 scan in window, got %d", a.Summary.TotalHealthScans)
	}
	if a.Trends.HeartRate != "increasing" {
		t.Errorf("expected increasing heart rate, got %s", a.Trends.HeartRate)
	}
	if a.Trends.BloodPressure != "stable" {
		t.Errorf("expected stable blood pressure, got %s", a.Trends.BloodPressure)
	}
	if a.Averages.HeartRate < 75 || a.Averages.HeartRate > 76 {
		t.Errorf("expected HR average ~75.25, got %f", a.Averages.HeartRate)
	}
	if len(a.HealthScoreProgression) != 1 || a.HealthScoreProgression[0].Score != 85 {
		t.Errorf("unexpected score progression: %+v", a.HealthScoreProgression)
	}
}

func TestAnalyticsDefaultsToMonth(t *testing.T) {
	svc := newTestService()
	a, err := svc.Analytics(context.Background(), uuid.New(), "decade")
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if a.Summary.Timeframe != "month" {
		t.Errorf("expected month fallback, got %s", a.Summary.Timeframe)
	}
	if a.Trends.HeartRate != "stable" {
		t.Errorf("expected stable trend with no data, got %s", a.Trends.HeartRate)
	}
}

func TestTrendThreshold(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   string
	}{
		{"empty", nil, "stable"},
		{"single", []float64{70}, "stable"},
		{"within threshold", []float64{100, 104}, "stable"},
		{"increase", []float64{100, 106}, "increasing"},
		{"decrease", []float64{100, 94}, "decreasing"},
	}
	for _, tc := range cases {
		if got := trend(tc.values); got != tc.want {
			t.Errorf("%s: trend = %s, want %s", tc.name, got, tc.want)
		}
	}
}
