package assessment

import (
	"math"
	"math/rand"

	"github.com/vitalink/vitalink/internal/domain/observation"
)

// ScanData is the raw biometric input to a health scan analysis.
type ScanData struct {
	FaceAnalysis    FaceAnalysis    `json:"faceAnalysis"`
	VitalSigns      VitalSigns      `json:"vitalSigns"`
	BodyComposition BodyComposition `json:"bodyComposition"`
}

type FaceAnalysis struct {
	SkinHealth       float64 `json:"skinHealth"`
	EyeClarity       float64 `json:"eyeClarity"`
	FacialSymmetry   float64 `json:"facialSymmetry"`
	StressIndicators float64 `json:"stressIndicators"`
}

type VitalSigns struct {
	HeartRate        float64                   `json:"heartRate"`
	RespiratoryRate  float64                   `json:"respiratoryRate"`
	BloodPressure    observation.BloodPressure `json:"bloodPressure"`
	OxygenSaturation float64                   `json:"oxygenSaturation"`
}

type BodyComposition struct {
	BMI            float64 `json:"bmi"`
	BodyFat        float64 `json:"bodyFat"`
	MuscleMass     float64 `json:"muscleMass"`
	HydrationLevel float64 `json:"hydrationLevel"`
}

// Engine derives category scores, risk level and recommendations from
// scan data using fixed clinical thresholds.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	return s
}

// CardiovascularScore starts at 100 and deducts for heart rate outside
// 60-100 bpm and for elevated blood pressure.
func (e *Engine) CardiovascularScore(v VitalSigns) float64 {
	score := 100.0
	if v.HeartRate < 60 || v.HeartRate > 100 {
		score -= 15
	}
	bp := v.BloodPressure
	if bp.Systolic > 140 || bp.Diastolic > 90 {
		score -= 20
	} else if bp.Systolic > 130 || bp.Diastolic > 85 {
		score -= 10
	}
	return clampScore(score)
}

// RespiratoryScore deducts for low oxygen saturation and a respiratory
// rate outside 12-20 breaths per minute.
func (e *Engine) RespiratoryScore(v VitalSigns) float64 {
	score := 100.0
	if v.OxygenSaturation < 95 {
		score -= 30
	} else if v.OxygenSaturation < 98 {
		score -= 10
	}
	if v.RespiratoryRate < 12 || v.RespiratoryRate > 20 {
		score -= 15
	}
	return clampScore(score)
}

// SkinScore passes the facial skin health metric through directly.
func (e *Engine) SkinScore(f FaceAnalysis) float64 {
	return clampScore(f.SkinHealth)
}

// StressScore inverts the facial stress indicator.
func (e *Engine) StressScore(f FaceAnalysis) float64 {
	return clampScore(100 - f.StressIndicators)
}

// BodyCompositionScore deducts for BMI outside the healthy range and for
// elevated body fat.
func (e *Engine) BodyCompositionScore(b BodyComposition) float64 {
	score := 100.0
	if b.BMI < 18.5 || b.BMI > 30 {
		score -= 25
	} else if b.BMI < 20 || b.BMI > 25 {
		score -= 10
	}
	if b.BodyFat > 30 {
		score -= 15
	} else if b.BodyFat > 25 {
		score -= 5
	}
	return clampScore(score)
}

// HealthStatus maps a category score onto the four-level status scale.
func HealthStatus(score float64) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 75:
		return "good"
	case score >= 60:
		return "fair"
	default:
		return "poor"
	}
}

// RiskLevel classifies the overall score, with vital sign emergencies
// overriding to critical.
func (e *Engine) RiskLevel(overall float64, v VitalSigns) string {
	if v.BloodPressure.Systolic > 180 || v.OxygenSaturation < 90 {
		return "critical"
	}
	switch {
	case overall < 50:
		return "high"
	case overall < 70:
		return "moderate"
	default:
		return "low"
	}
}

// UrgentAlerts returns immediate-attention messages for dangerous vitals.
func (e *Engine) UrgentAlerts(v VitalSigns) []string {
	var alerts []string
	if v.BloodPressure.Systolic > 180 {
		alerts = append(alerts, "Severe hypertension detected - seek immediate medical attention")
	}
	if v.OxygenSaturation < 90 {
		alerts = append(alerts, "Low oxygen saturation - consult healthcare provider immediately")
	}
	if v.HeartRate > 120 || v.HeartRate < 50 {
		alerts = append(alerts, "Abnormal heart rate detected - medical evaluation recommended")
	}
	return alerts
}

func (e *Engine) cardiovascularRecommendations(v VitalSigns) []string {
	var recs []string
	if v.BloodPressure.Systolic > 130 {
		recs = append(recs,
			"Reduce sodium intake and increase physical activity",
			"Monitor blood pressure regularly")
	}
	if v.HeartRate > 100 {
		recs = append(recs,
			"Consider stress reduction techniques",
			"Limit caffeine intake")
	}
	return append(recs, "Maintain regular cardiovascular exercise")
}

func (e *Engine) respiratoryRecommendations(v VitalSigns) []string {
	var recs []string
	if v.OxygenSaturation < 98 {
		recs = append(recs,
			"Practice deep breathing exercises",
			"Ensure good air quality in living spaces")
	}
	return append(recs,
		"Avoid smoking and secondhand smoke",
		"Regular aerobic exercise to improve lung capacity")
}

func (e *Engine) skinRecommendations(f FaceAnalysis) []string {
	var recs []string
	if f.SkinHealth < 70 {
		recs = append(recs,
			"Increase daily water intake",
			"Use moisturizer regularly",
			"Protect skin from UV exposure")
	}
	return append(recs, "Maintain a balanced diet rich in antioxidants")
}

func (e *Engine) stressRecommendations(f FaceAnalysis) []string {
	var recs []string
	if f.StressIndicators > 60 {
		recs = append(recs,
			"Practice meditation or mindfulness",
			"Ensure adequate sleep (7-9 hours)",
			"Consider stress management counseling")
	}
	return append(recs,
		"Regular physical exercise",
		"Maintain social connections")
}

func (e *Engine) bodyCompositionRecommendations(b BodyComposition) []string {
	var recs []string
	if b.BMI > 25 {
		recs = append(recs,
			"Focus on balanced nutrition and portion control",
			"Increase physical activity")
	}
	if b.BodyFat > 25 {
		recs = append(recs, "Incorporate strength training exercises")
	}
	return append(recs, "Stay hydrated throughout the day")
}

// FollowUpRecommendations escalates based on how many categories scored
// poor or fair.
func (e *Engine) FollowUpRecommendations(findings []observation.ScanFinding) []string {
	var poor, fair int
	for _, f := range findings {
		switch f.Status {
		case "poor":
			poor++
		case "fair":
			fair++
		}
	}

	var recs []string
	if poor > 0 {
		recs = append(recs, "Schedule comprehensive medical evaluation within 1 week")
	}
	if fair > 1 {
		recs = append(recs, "Follow up with healthcare provider within 1 month")
	}
	return append(recs,
		"Repeat health scan in 3 months to track progress",
		"Maintain regular health monitoring routine")
}

func findingConfidence() float64 {
	return 0.85 + rand.Float64()*0.1
}

// Analyze scores the five categories and assembles the scan results.
func (e *Engine) Analyze(data ScanData) observation.ScanResults {
	cardio := e.CardiovascularScore(data.VitalSigns)
	resp := e.RespiratoryScore(data.VitalSigns)
	skin := e.SkinScore(data.FaceAnalysis)
	stress := e.StressScore(data.FaceAnalysis)
	body := e.BodyCompositionScore(data.BodyComposition)

	findings := []observation.ScanFinding{
		{
			Category:        "Cardiovascular Health",
			Score:           int(math.Round(cardio)),
			Status:          HealthStatus(cardio),
			Description:     "Analysis of heart rate, blood pressure, and circulation indicators",
			Recommendations: e.cardiovascularRecommendations(data.VitalSigns),
			Confidence:      findingConfidence(),
		},
		{
			Category:        "Respiratory Function",
			Score:           int(math.Round(resp)),
			Status:          HealthStatus(resp),
			Description:     "Assessment of breathing patterns and oxygen saturation",
			Recommendations: e.respiratoryRecommendations(data.VitalSigns),
			Confidence:      findingConfidence(),
		},
		{
			Category:        "Skin & Appearance",
			Score:           int(math.Round(skin)),
			Status:          HealthStatus(skin),
			Description:     "Evaluation of skin condition, hydration, and aging indicators",
			Recommendations: e.skinRecommendations(data.FaceAnalysis),
			Confidence:      findingConfidence(),
		},
		{
			Category:        "Stress & Mental Health",
			Score:           int(math.Round(stress)),
			Status:          HealthStatus(stress),
			Description:     "Analysis of stress markers and mental wellness indicators",
			Recommendations: e.stressRecommendations(data.FaceAnalysis),
			Confidence:      findingConfidence(),
		},
		{
			Category:        "Body Composition",
			Score:           int(math.Round(body)),
			Status:          HealthStatus(body),
			Description:     "Assessment of BMI, body fat percentage, and muscle mass",
			Recommendations: e.bodyCompositionRecommendations(data.BodyComposition),
			Confidence:      findingConfidence(),
		},
	}

	overall := (cardio + resp + skin + stress + body) / 5

	return observation.ScanResults{
		OverallScore:    int(math.Round(overall)),
		RiskLevel:       e.RiskLevel(overall, data.VitalSigns),
		Findings:        findings,
		Recommendations: e.FollowUpRecommendations(findings),
		UrgentAlerts:    e.UrgentAlerts(data.VitalSigns),
	}
}
