package assessment

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vitalink/vitalink/internal/domain/observation"
)

// ScanStore persists completed health scans. The observation service
// satisfies it.
type ScanStore interface {
	AddHealthScan(ctx context.Context, scan *observation.HealthScan) error
}

type Service struct {
	engine *Engine
	kb     *KnowledgeBase
	scans  ScanStore
}

func NewService(engine *Engine, kb *KnowledgeBase, scans ScanStore) *Service {
	return &Service{engine: engine, kb: kb, scans: scans}
}

// ProcessHealthScan analyzes raw scan data and stores the result as a
// health scan on the patient's record.
func (s *Service) ProcessHealthScan(ctx context.Context, patientID uuid.UUID, scanType string, data ScanData) (*observation.HealthScan, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patientId is required")
	}
	if scanType == "" {
		scanType = "comprehensive"
	}

	scan := &observation.HealthScan{
		ID:           uuid.New(),
		PatientID:    patientID,
		ScanType:     scanType,
		Timestamp:    time.Now().UTC(),
		Results:      s.engine.Analyze(data),
		AIConfidence: 85 + rand.Float64()*10,
	}
	if err := s.scans.AddHealthScan(ctx, scan); err != nil {
		return nil, err
	}
	return scan, nil
}

// DiseaseMatch is one candidate condition from symptom analysis.
type DiseaseMatch struct {
	Disease     Disease `json:"disease"`
	Probability float64 `json:"probability"`
	Reasoning   string  `json:"reasoning"`
}

// SymptomReport is the result of matching symptoms against the
// knowledge base.
type SymptomReport struct {
	PossibleDiseases []DiseaseMatch `json:"possibleDiseases"`
	Recommendations  []string       `json:"recommendations"`
	RedFlags         []string       `json:"redFlags"`
	Urgency          string         `json:"urgency"`
	NextSteps        []string       `json:"nextSteps"`
}

// AnalyzeSymptoms matches the presented symptoms against the catalog and
// scores the associated diseases by symptom overlap.
func (s *Service) AnalyzeSymptoms(symptoms []string) (*SymptomReport, error) {
	if len(symptoms) == 0 {
		return nil, fmt.Errorf("symptoms are required")
	}

	var (
		matches  []DiseaseMatch
		redFlags []string
		seen     = map[string]bool{}
	)
	for _, symptom := range symptoms {
		info := s.kb.FindSymptom(symptom)
		if info == nil {
			continue
		}
		redFlags = append(redFlags, info.RedFlags...)

		for _, diseaseID := range info.AssociatedDiseases {
			if seen[diseaseID] {
				continue
			}
			disease := s.kb.FindDisease(diseaseID)
			if disease == nil {
				continue
			}
			seen[diseaseID] = true

			matching := matchingSymptoms(disease.Symptoms, symptoms)
			probability := float64(matching) / float64(len(disease.Symptoms)) * 100
			if probability <= 20 {
				continue
			}
			matches = append(matches, DiseaseMatch{
				Disease:     *disease,
				Probability: probability,
				Reasoning:   fmt.Sprintf("%d of %d symptoms match", matching, len(disease.Symptoms)),
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Probability > matches[j].Probability
	})
	if len(matches) > 5 {
		matches = matches[:5]
	}
	redFlags = dedupe(redFlags)

	recommendations := []string{
		"Consult with a healthcare professional for proper diagnosis",
		"Keep a detailed symptom diary",
		"Monitor symptom progression and severity",
	}
	if len(redFlags) > 0 {
		recommendations = append([]string{"Seek immediate medical attention due to red flag symptoms"}, recommendations...)
	}

	urgency := assessUrgency(symptoms, matches)

	nextSteps := []string{"Schedule appointment with primary care physician"}
	switch urgency {
	case "emergency":
		nextSteps = append([]string{"Seek immediate emergency medical care"}, nextSteps...)
	case "high":
		nextSteps = append([]string{"Schedule urgent medical consultation within 24-48 hours"}, nextSteps...)
	}

	return &SymptomReport{
		PossibleDiseases: matches,
		Recommendations:  recommendations,
		RedFlags:         redFlags,
		Urgency:          urgency,
		NextSteps:        nextSteps,
	}, nil
}

// matchingSymptoms counts disease symptoms that overlap any presented
// symptom by case-insensitive substring in either direction.
func matchingSymptoms(diseaseSymptoms, presented []string) int {
	count := 0
	for _, ds := range diseaseSymptoms {
		lds := strings.ToLower(ds)
		for _, ps := range presented {
			lps := strings.ToLower(ps)
			if strings.Contains(lds, lps) || strings.Contains(lps, lds) {
				count++
				break
			}
		}
	}
	return count
}

var emergencySymptoms = []string{
	"chest pain", "severe headache", "difficulty breathing", "loss of consciousness",
}

func assessUrgency(symptoms []string, matches []DiseaseMatch) string {
	for _, s := range symptoms {
		ls := strings.ToLower(s)
		for _, es := range emergencySymptoms {
			if strings.Contains(ls, es) {
				return "emergency"
			}
		}
	}
	for _, m := range matches {
		if m.Disease.Category == "Cardiovascular" {
			return "high"
		}
	}
	return "medium"
}

func dedupe(values []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// InteractionReport is the result of checking a medication list for
// known pairwise interactions.
type InteractionReport struct {
	Interactions    []Interaction `json:"interactions"`
	OverallSeverity string        `json:"overallSeverity"`
	Recommendations []string      `json:"recommendations"`
}

// CheckDrugInteractions checks every unordered pair in the medication
// list against the interaction table.
func (s *Service) CheckDrugInteractions(medications []string) (*InteractionReport, error) {
	if len(medications) < 2 {
		return nil, fmt.Errorf("at least two medications are required")
	}

	var found []Interaction
	severity := "none"
	for i := 0; i < len(medications); i++ {
		for j := i + 1; j < len(medications); j++ {
			inter := s.kb.FindInteraction(medications[i], medications[j])
			if inter == nil {
				continue
			}
			found = append(found, *inter)
			if SeverityRank(inter.Severity) > SeverityRank(severity) {
				severity = inter.Severity
			}
		}
	}

	var recs []string
	switch severity {
	case "contraindicated":
		recs = append(recs, "URGENT: Contraindicated drug combination detected - contact healthcare provider immediately")
	case "major":
		recs = append(recs, "Major drug interaction detected - requires medical supervision")
	}
	recs = append(recs, "Review all medications with healthcare provider or pharmacist")

	return &InteractionReport{
		Interactions:    found,
		OverallSeverity: severity,
		Recommendations: recs,
	}, nil
}

// RiskProfile is the demographic and lifestyle input to risk prediction.
type RiskProfile struct {
	Age           int      `json:"age"`
	Gender        string   `json:"gender"`
	Smoking       bool     `json:"smoking"`
	BMI           float64  `json:"bmi"`
	FamilyHistory []string `json:"familyHistory"`
}

// RiskPrediction is one predicted condition risk.
type RiskPrediction struct {
	Condition   string   `json:"condition"`
	Probability float64  `json:"probability"`
	Timeframe   string   `json:"timeframe"`
	RiskFactors []string `json:"riskFactors"`
	Prevention  []string `json:"prevention"`
}

// RiskReport aggregates the predicted risks for a profile.
type RiskReport struct {
	Risks            []RiskPrediction `json:"risks"`
	OverallRiskScore float64          `json:"overallRiskScore"`
	Recommendations  []string         `json:"recommendations"`
}

// PredictHealthRisks applies fixed actuarial rules for cardiovascular
// disease, type 2 diabetes and common cancer screening risks.
func (s *Service) PredictHealthRisks(profile RiskProfile) *RiskReport {
	var risks []RiskPrediction

	cvdProb := 0.0
	var cvdFactors []string
	if profile.Age > 45 {
		cvdProb += 15
		cvdFactors = append(cvdFactors, "Age over 45")
	}
	if profile.Smoking {
		cvdProb += 20
		cvdFactors = append(cvdFactors, "Smoking")
	}
	if profile.BMI > 30 {
		cvdProb += 10
		cvdFactors = append(cvdFactors, "Obesity")
	}
	if cvdProb > 10 {
		risks = append(risks, RiskPrediction{
			Condition:   "Cardiovascular Disease",
			Probability: cvdProb,
			Timeframe:   "10 years",
			RiskFactors: cvdFactors,
			Prevention:  []string{"Quit smoking", "Regular exercise", "Healthy diet", "Weight management"},
		})
	}

	diabProb := 0.0
	var diabFactors []string
	if profile.Age > 45 {
		diabProb += 10
		diabFactors = append(diabFactors, "Age over 45")
	}
	if profile.BMI > 25 {
		diabProb += 15
		diabFactors = append(diabFactors, "Overweight")
	}
	if containsFold(profile.FamilyHistory, "diabetes") {
		diabProb += 20
		diabFactors = append(diabFactors, "Family history")
	}
	if diabProb > 15 {
		risks = append(risks, RiskPrediction{
			Condition:   "Type 2 Diabetes",
			Probability: diabProb,
			Timeframe:   "5 years",
			RiskFactors: diabFactors,
			Prevention:  []string{"Weight management", "Regular exercise", "Healthy diet", "Regular screening"},
		})
	}

	if profile.Age >= 50 {
		risks = append(risks, RiskPrediction{
			Condition:   "Colorectal Cancer",
			Probability: 5,
			Timeframe:   "Lifetime",
			RiskFactors: []string{"Age over 50"},
			Prevention:  []string{"Regular colonoscopy screening", "Healthy diet", "Regular exercise"},
		})
	}
	if strings.EqualFold(profile.Gender, "female") && profile.Age >= 40 {
		risks = append(risks, RiskPrediction{
			Condition:   "Breast Cancer",
			Probability: 12,
			Timeframe:   "Lifetime",
			RiskFactors: []string{"Female gender", "Age over 40"},
			Prevention:  []string{"Regular mammography", "Self-examination", "Healthy lifestyle"},
		})
	}

	overall := 0.0
	highRisk := false
	if len(risks) > 0 {
		var sum float64
		for _, r := range risks {
			sum += r.Probability
			if r.Probability > 20 {
				highRisk = true
			}
		}
		overall = math.Round(sum/float64(len(risks))*100) / 100
	}

	recs := []string{"Maintain regular health check-ups"}
	if highRisk {
		recs = append(recs, "Discuss high-risk conditions with healthcare provider")
	}
	recs = append(recs,
		"Follow age-appropriate screening guidelines",
		"Maintain healthy lifestyle practices")

	return &RiskReport{
		Risks:            risks,
		OverallRiskScore: overall,
		Recommendations:  recs,
	}
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), target) {
			return true
		}
	}
	return false
}

// LabInterpretation explains a lab value against its reference range.
type LabInterpretation struct {
	TestName        string   `json:"testName"`
	Value           float64  `json:"value"`
	Unit            string   `json:"unit"`
	Status          string   `json:"status"`
	Interpretation  string   `json:"interpretation"`
	ReferenceRange  string   `json:"referenceRange"`
	Recommendations []string `json:"recommendations"`
}

// InterpretLabResult classifies a lab value as low, normal or high
// against the built-in reference ranges.
func (s *Service) InterpretLabResult(testID string, value float64) (*LabInterpretation, error) {
	test := s.kb.FindLabTest(testID)
	if test == nil {
		return nil, fmt.Errorf("unknown lab test: %s", testID)
	}

	out := &LabInterpretation{
		TestName:       test.Name,
		Value:          value,
		Unit:           test.Unit,
		ReferenceRange: fmt.Sprintf("%g-%g %s", test.Min, test.Max, test.Unit),
	}
	switch {
	case value < test.Min:
		out.Status = "low"
		out.Interpretation = test.LowText
		out.Recommendations = []string{"Consider retesting", "Consult healthcare provider"}
	case value > test.Max:
		out.Status = "high"
		out.Interpretation = test.HighText
		out.Recommendations = []string{"Lifestyle modifications may be needed", "Follow up with healthcare provider"}
	default:
		out.Status = "normal"
		out.Interpretation = test.NormalText
		out.Recommendations = []string{"Continue current health practices"}
	}
	return out, nil
}
