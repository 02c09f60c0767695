package observation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	observations Repository
}

func NewService(observations Repository) *Service {
	return &Service{observations: observations}
}

var validLabStatuses = map[string]bool{
	"normal": true, "abnormal": true, "critical": true, "pending": true,
}

var validScanTypes = map[string]bool{
	"basic": true, "comprehensive": true, "vital-signs": true, "ai-analysis": true,
}

func (s *Service) AddVitalSigns(ctx context.Context, v *VitalSignRecord) error {
	if v.PatientID == uuid.Nil {
		return fmt.Errorf("patientId is required")
	}
	if v.HeartRate <= 0 {
		return fmt.Errorf("heartRate is required")
	}
	if v.BloodPressure.Systolic <= 0 || v.BloodPressure.Diastolic <= 0 {
		return fmt.Errorf("bloodPressure is required")
	}
	v.ID = uuid.New()
	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now().UTC()
	}
	if v.BMI == nil && v.Weight != nil && v.Height != nil && *v.Height > 0 {
		h := *v.Height / 100
		bmi := *v.Weight / (h * h)
		v.BMI = &bmi
	}
	return s.observations.AddVitalSign(ctx, v)
}

func (s *Service) VitalSigns(ctx context.Context, patientID uuid.UUID, limit int) ([]*VitalSignRecord, error) {
	return s.observations.ListVitalSigns(ctx, patientID, limit)
}

func (s *Service) AddLabResult(ctx context.Context, l *LabResult) error {
	if l.PatientID == uuid.Nil {
		return fmt.Errorf("patientId is required")
	}
	if l.TestName == "" {
		return fmt.Errorf("testName is required")
	}
	if l.Status == "" {
		l.Status = "pending"
	}
	if !validLabStatuses[l.Status] {
		return fmt.Errorf("invalid lab result status: %s", l.Status)
	}
	l.ID = uuid.New()
	if l.ResultDate.IsZero() {
		l.ResultDate = time.Now().UTC()
	}
	if l.OrderDate.IsZero() {
		l.OrderDate = l.ResultDate
	}
	return s.observations.AddLabResult(ctx, l)
}

func (s *Service) LabResults(ctx context.Context, patientID uuid.UUID, limit int) ([]*LabResult, error) {
	return s.observations.ListLabResults(ctx, patientID, limit)
}

func (s *Service) AddHealthScan(ctx context.Context, scan *HealthScan) error {
	if scan.PatientID == uuid.Nil {
		return fmt.Errorf("patientId is required")
	}
	if scan.ScanType == "" {
		scan.ScanType = "basic"
	}
	if !validScanTypes[scan.ScanType] {
		return fmt.Errorf("invalid scan type: %s", scan.ScanType)
	}
	if scan.ID == uuid.Nil {
		scan.ID = uuid.New()
	}
	if scan.Timestamp.IsZero() {
		scan.Timestamp = time.Now().UTC()
	}
	return s.observations.AddHealthScan(ctx, scan)
}

func (s *Service) HealthScans(ctx context.Context, patientID uuid.UUID, limit int) ([]*HealthScan, error) {
	return s.observations.ListHealthScans(ctx, patientID, limit)
}

// Analytics rolls the patient's observations within the timeframe into
// summary counts, vitals trends and averages, and the health score series.
// Unknown timeframes fall back to a month.
func (s *Service) Analytics(ctx context.Context, patientID uuid.UUID, timeframe string) (*Analytics, error) {
	now := time.Now().UTC()
	var start time.Time
	switch timeframe {
	case "week":
		start = now.AddDate(0, 0, -7)
	case "year":
		start = now.AddDate(-1, 0, 0)
	case "month":
		start = now.AddDate(0, -1, 0)
	default:
		timeframe = "month"
		start = now.AddDate(0, -1, 0)
	}

	vitals, err := s.observations.ListVitalSigns(ctx, patientID, 0)
	if err != nil {
		return nil, err
	}
	labs, err := s.observations.ListLabResults(ctx, patientID, 0)
	if err != nil {
		return nil, err
	}
	scans, err := s.observations.ListHealthScans(ctx, patientID, 0)
	if err != nil {
		return nil, err
	}

	// Lists come back newest-first; trend math wants chronological order.
	var fv []*VitalSignRecord
	for i := len(vitals) - 1; i >= 0; i-- {
		if !vitals[i].Timestamp.Before(start) {
			fv = append(fv, vitals[i])
		}
	}
	var fl []*LabResult
	for _, l := range labs {
		if !l.ResultDate.Before(start) {
			fl = append(fl, l)
		}
	}
	var fs []*HealthScan
	for i := len(scans) - 1; i >= 0; i-- {
		if !scans[i].Timestamp.Before(start) {
			fs = append(fs, scans[i])
		}
	}

	heartRates := make([]float64, 0, len(fv))
	systolics := make([]float64, 0, len(fv))
	diastolics := make([]float64, 0, len(fv))
	temps := make([]float64, 0, len(fv))
	var weights []float64
	for _, v := range fv {
		heartRates = append(heartRates, v.HeartRate)
		systolics = append(systolics, v.BloodPressure.Systolic)
		diastolics = append(diastolics, v.BloodPressure.Diastolic)
		temps = append(temps, v.Temperature)
		if v.Weight != nil {
			weights = append(weights, *v.Weight)
		}
	}

	progression := make([]ScorePoint, 0, len(fs))
	for _, sc := range fs {
		progression = append(progression, ScorePoint{Date: sc.Timestamp, Score: sc.Results.OverallScore})
	}

	return &Analytics{
		Summary: Summary{
			TotalVitalSignRecords: len(fv),
			TotalLabResults:       len(fl),
			TotalHealthScans:      len(fs),
			Timeframe:             timeframe,
		},
		Trends: Trends{
			HeartRate:     trend(heartRates),
			BloodPressure: trend(systolics),
			Weight:        trend(weights),
		},
		Averages: Averages{
			HeartRate:   average(heartRates),
			SystolicBP:  average(systolics),
			DiastolicBP: average(diastolics),
			Temperature: average(temps),
		},
		HealthScoreProgression: progression,
	}, nil
}

// trend compares the first and second half averages of a chronological
// series. A move beyond 5% of the first-half average counts as a trend.
func trend(values []float64) string {
	if len(values) < 2 {
		return "stable"
	}
	mid := len(values) / 2
	first := average(values[:mid])
	second := average(values[mid:])

	diff := second - first
	threshold := first * 0.05
	switch {
	case diff > threshold:
		return "increasing"
	case diff < -threshold:
		return "decreasing"
	default:
		return "stable"
	}
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
