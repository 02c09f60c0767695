package assessment

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/vitalink/vitalink/internal/domain/observation"
)

func newTestService() (*Service, *observation.Service) {
	obs := observation.NewService(observation.NewMemRepo())
	return NewService(NewEngine(), DefaultKnowledgeBase(), obs), obs
}

func TestProcessHealthScanStoresResult(t *testing.T) {
	svc, obs := newTestService()
	ctx := context.Background()
	pid := uuid.New()

	scan, err := svc.ProcessHealthScan(ctx, pid, "", healthyScan())
	if err != nil {
		t.Fatalf("process scan: %v", err)
	}
	if scan.ScanType != "comprehensive" {
		t.Errorf("expected comprehensive default, got %s", scan.ScanType)
	}
	if scan.AIConfidence < 85 || scan.AIConfidence > 95 {
		t.Errorf("confidence %.2f outside [85, 95]", scan.AIConfidence)
	}
	if scan.Results.OverallScore != 98 {
		t.Errorf("overall = %d, want 98", scan.Results.OverallScore)
	}

	stored, err := obs.HealthScans(ctx, pid, 0)
	if err != nil {
		t.Fatalf("list scans: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != scan.ID {
		t.Fatalf("expected stored scan %s, got %+v", scan.ID, stored)
	}

	if _, err := svc.ProcessHealthScan(ctx, uuid.Nil, "basic", healthyScan()); err == nil {
		t.Error("expected error for missing patient id")
	}
}

func TestAnalyzeSymptomsMatchesHypertension(t *testing.T) {
	svc, _ := newTestService()

	report, err := svc.AnalyzeSymptoms([]string{"headache", "dizziness"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(report.PossibleDiseases) == 0 {
		t.Fatal("expected at least one disease match")
	}
	top := report.PossibleDiseases[0]
	if top.Disease.ID != "hypertension" {
		t.Errorf("top match = %s, want hypertension", top.Disease.ID)
	}
	// headache and dizziness match 2 of hypertension's 4 symptoms.
	if top.Probability != 50 {
		t.Errorf("probability = %.0f, want 50", top.Probability)
	}
	if top.Reasoning != "2 of 4 symptoms match" {
		t.Errorf("unexpected reasoning: %s", top.Reasoning)
	}
	if len(report.RedFlags) == 0 {
		t.Error("expected headache red flags")
	}
	if report.Recommendations[0] != "Seek immediate medical attention due to red flag symptoms" {
		t.Errorf("expected red flag recommendation first, got %v", report.Recommendations)
	}
	// Hypertension is cardiovascular, so urgency escalates.
	if report.Urgency != "high" {
		t.Errorf("urgency = %s, want high", report.Urgency)
	}
	if report.NextSteps[0] != "Schedule urgent medical consultation within 24-48 hours" {
		t.Errorf("unexpected next steps: %v", report.NextSteps)
	}
}

func TestAnalyzeSymptomsEmergency(t *testing.T) {
	svc, _ := newTestService()

	report, err := svc.AnalyzeSymptoms([]string{"crushing chest pain"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.Urgency != "emergency" {
		t.Errorf("urgency = %s, want emergency", report.Urgency)
	}
	if report.NextSteps[0] != "Seek immediate emergency medical care" {
		t.Errorf("unexpected next steps: %v", report.NextSteps)
	}
}

func TestAnalyzeSymptomsUnknown(t *testing.T) {
	svc, _ := newTestService()

	report, err := svc.AnalyzeSymptoms([]string{"glowing skin"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(report.PossibleDiseases) != 0 {
		t.Errorf("expected no matches, got %+v", report.PossibleDiseases)
	}
	if report.Urgency != "medium" {
		t.Errorf("urgency = %s, want medium", report.Urgency)
	}

	if _, err := svc.AnalyzeSymptoms(nil); err == nil {
		t.Error("expected error for empty symptoms")
	}
}

func TestCheckDrugInteractionsSymmetry(t *testing.T) {
	svc, _ := newTestService()

	forward, err := svc.CheckDrugInteractions([]string{"warfarin", "aspirin"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	reverse, err := svc.CheckDrugInteractions([]string{"Aspirin", "Warfarin"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(forward.Interactions) != 1 || len(reverse.Interactions) != 1 {
		t.Fatalf("expected one interaction each way, got %d and %d",
			len(forward.Interactions), len(reverse.Interactions))
	}
	if forward.OverallSeverity != "major" || reverse.OverallSeverity != "major" {
		t.Errorf("expected major severity both ways, got %s and %s",
			forward.OverallSeverity, reverse.OverallSeverity)
	}
	if forward.Recommendations[0] != "Major drug interaction detected - requires medical supervision" {
		t.Errorf("unexpected recommendations: %v", forward.Recommendations)
	}
}

func TestCheckDrugInteractionsSeverityAggregation(t *testing.T) {
	svc, _ := newTestService()

	report, err := svc.CheckDrugInteractions([]string{"Lisinopril", "Potassium supplements", "Warfarin", "Aspirin"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(report.Interactions) != 2 {
		t.Fatalf("expected 2 interactions, got %d", len(report.Interactions))
	}
	if report.OverallSeverity != "major" {
		t.Errorf("expected worst severity major, got %s", report.OverallSeverity)
	}

	clean, err := svc.CheckDrugInteractions([]string{"Ibuprofen", "Amoxicillin"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if clean.OverallSeverity != "none" || len(clean.Interactions) != 0 {
		t.Errorf("expected clean result, got %+v", clean)
	}

	if _, err := svc.CheckDrugInteractions([]string{"Aspirin"}); err == nil {
		t.Error("expected error for single medication")
	}
}

func TestPredictHealthRisks(t *testing.T) {
	svc, _ := newTestService()

	report := svc.PredictHealthRisks(RiskProfile{
		Age:           52,
		Gender:        "female",
		Smoking:       true,
		BMI:           31,
		FamilyHistory: []string{"type 2 diabetes"},
	})
	// CVD 45, diabetes 45, colorectal 5, breast 12.
	if len(report.Risks) != 4 {
		t.Fatalf("expected 4 risks, got %+v", report.Risks)
	}
	byCondition := map[string]RiskPrediction{}
	for _, r := range report.Risks {
		byCondition[r.Condition] = r
	}
	if cvd := byCondition["Cardiovascular Disease"]; cvd.Probability != 45 || cvd.Timeframe != "10 years" {
		t.Errorf("unexpected cvd risk: %+v", cvd)
	}
	if diab := byCondition["Type 2 Diabetes"]; diab.Probability != 45 || diab.Timeframe != "5 years" {
		t.Errorf("unexpected diabetes risk: %+v", diab)
	}
	if report.OverallRiskScore != 26.75 {
		t.Errorf("overall = %.2f, want 26.75", report.OverallRiskScore)
	}
	if report.Recommendations[1] != "Discuss high-risk conditions with healthcare provider" {
		t.Errorf("expected high-risk recommendation, got %v", report.Recommendations)
	}
}

func TestPredictHealthRisksLowRiskProfile(t *testing.T) {
	svc, _ := newTestService()

	report := svc.PredictHealthRisks(RiskProfile{Age: 30, Gender: "male", BMI: 22})
	if len(report.Risks) != 0 {
		t.Errorf("expected no risks, got %+v", report.Risks)
	}
	if report.OverallRiskScore != 0 {
		t.Errorf("overall = %.2f, want 0", report.OverallRiskScore)
	}
	if len(report.Recommendations) != 3 {
		t.Errorf("expected baseline recommendations, got %v", report.Recommendations)
	}
}

func TestInterpretLabResult(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		test   string
		value  float64
		status string
	}{
		{"hba1c", 3.5, "low"},
		{"hba1c", 5.0, "normal"},
		{"hba1c", 6.8, "high"},
		{"lipid-panel", 180, "normal"},
		{"lipid-panel", 240, "high"},
	}
	for _, tc := range cases {
		out, err := svc.InterpretLabResult(tc.test, tc.value)
		if err != nil {
			t.Fatalf("%s %.1f: %v", tc.test, tc.value, err)
		}
		if out.Status != tc.status {
			t.Errorf("%s %.1f: status = %s, want %s", tc.test, tc.value, out.Status, tc.status)
		}
		if out.Interpretation == "" || len(out.Recommendations) == 0 {
			t.Errorf("%s %.1f: missing interpretation or recommendations", tc.test, tc.value)
		}
	}

	if _, err := svc.InterpretLabResult("cbc", 10); err == nil {
		t.Error("expected error for unknown test")
	}
}
