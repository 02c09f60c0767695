package observation

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// VitalSignRecord is one point-in-time vitals measurement for a patient.
type VitalSignRecord struct {
	ID               uuid.UUID     `db:"id" json:"id"`
	PatientID        uuid.UUID     `db:"patient_id" json:"patientId"`
	Timestamp        time.Time     `db:"timestamp" json:"timestamp"`
	HeartRate        float64       `db:"heart_rate" json:"heartRate"`
	BloodPressure    BloodPressure `db:"blood_pressure" json:"bloodPressure"`
	Temperature      float64       `db:"temperature" json:"temperature"`
	RespiratoryRate  float64       `db:"respiratory_rate" json:"respiratoryRate"`
	OxygenSaturation float64       `db:"oxygen_saturation" json:"oxygenSaturation"`
	Weight           *float64      `db:"weight" json:"weight,omitempty"`
	Height           *float64      `db:"height" json:"height,omitempty"`
	BMI              *float64      `db:"bmi" json:"bmi,omitempty"`
	RecordedBy       string        `db:"recorded_by" json:"recordedBy"`
	Location         string        `db:"location" json:"location,omitempty"`
}

type BloodPressure struct {
	Systolic  float64 `json:"systolic"`
	Diastolic float64 `json:"diastolic"`
}

// LabResult is a single laboratory test result.
type LabResult struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patientId"`
	TestName       string    `db:"test_name" json:"testName"`
	TestCode       string    `db:"test_code" json:"testCode,omitempty"`
	Value          float64   `db:"value" json:"value"`
	Unit           string    `db:"unit" json:"unit"`
	ReferenceRange string    `db:"reference_range" json:"referenceRange,omitempty"`
	Status         string    `db:"status" json:"status"`
	OrderedBy      string    `db:"ordered_by" json:"orderedBy,omitempty"`
	PerformedBy    string    `db:"performed_by" json:"performedBy,omitempty"`
	OrderDate      time.Time `db:"order_date" json:"orderDate"`
	ResultDate     time.Time `db:"result_date" json:"resultDate"`
	Notes          string    `db:"notes" json:"notes,omitempty"`
}

// HealthScan is a stored assessment result with its category findings.
type HealthScan struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	PatientID    uuid.UUID   `db:"patient_id" json:"patientId"`
	ScanType     string      `db:"scan_type" json:"scanType"`
	Timestamp    time.Time   `db:"timestamp" json:"timestamp"`
	Results      ScanResults `db:"results" json:"results"`
	AIConfidence float64     `db:"ai_confidence" json:"aiConfidence"`
	ReviewedBy   string      `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewDate   *time.Time  `db:"review_date" json:"reviewDate,omitempty"`
}

type ScanResults struct {
	OverallScore    int           `json:"overallScore"`
	RiskLevel       string        `json:"riskLevel"`
	Findings        []ScanFinding `json:"findings"`
	Recommendations []string      `json:"recommendations"`
	UrgentAlerts    []string      `json:"urgentAlerts"`
}

type ScanFinding struct {
	Category        string   `json:"category"`
	Score           int      `json:"score"`
	Status          string   `json:"status"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations,omitempty"`
	Confidence      float64  `json:"confidence"`
}

// Clone returns a copy with the optional measurement pointers detached.
func (v *VitalSignRecord) Clone() *VitalSignRecord {
	cp := *v
	cp.Weight = cloneFloat(v.Weight)
	cp.Height = cloneFloat(v.Height)
	cp.BMI = cloneFloat(v.BMI)
	return &cp
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// Clone returns a deep copy with the findings and recommendation slices
// detached from the source record.
func (s *HealthScan) Clone() *HealthScan {
	cp := *s
	cp.Results = s.Results.clone()
	if s.ReviewDate != nil {
		d := *s.ReviewDate
		cp.ReviewDate = &d
	}
	return &cp
}

func (r ScanResults) clone() ScanResults {
	r.Recommendations = slices.Clone(r.Recommendations)
	r.UrgentAlerts = slices.Clone(r.UrgentAlerts)
	if r.Findings != nil {
		findings := make([]ScanFinding, len(r.Findings))
		for i, f := range r.Findings {
			f.Recommendations = slices.Clone(f.Recommendations)
			findings[i] = f
		}
		r.Findings = findings
	}
	return r
}

// Analytics is the per-patient rollup over a timeframe.
type Analytics struct {
	Summary                Summary      `json:"summary"`
	Trends                 Trends       `json:"trends"`
	Averages               Averages     `json:"averages"`
	HealthScoreProgression []ScorePoint `json:"healthScoreProgression"`
}

type Summary struct {
	TotalVitalSignRecords int    `json:"totalVitalSignRecords"`
	TotalLabResults       int    `json:"totalLabResults"`
	TotalHealthScans      int    `json:"totalHealthScans"`
	Timeframe             string `json:"timeframe"`
}

type Trends struct {
	HeartRate     string `json:"heartRate"`
	BloodPressure string `json:"bloodPressure"`
	Weight        string `json:"weight"`
}

type Averages struct {
	HeartRate   float64 `json:"heartRate"`
	SystolicBP  float64 `json:"systolicBP"`
	DiastolicBP float64 `json:"diastolicBP"`
	Temperature float64 `json:"temperature"`
}

type ScorePoint struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
}
