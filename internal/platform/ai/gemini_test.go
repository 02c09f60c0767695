package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func geminiStub(t *testing.T, replyText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") == "" {
			t.Error("expected api key in query")
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) == 0 || len(req.Contents[0].Parts) == 0 {
			t.Error("expected prompt in request body")
		}

		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": replyText}},
				}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestAnalyzeHealthData_ParsesJSON(t *testing.T) {
	reply := `Here is the analysis:
{"analysis": "Vitals look stable", "recommendations": ["stay hydrated"], "riskAssessment": "low risk", "confidence": 88}`
	srv := geminiStub(t, reply)
	defer srv.Close()

	client := NewGeminiClient(srv.URL, "test-key")
	result, err := client.AnalyzeHealthData(context.Background(), map[string]int{"heartRate": 72})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Analysis != "Vitals look stable" {
		t.Errorf("unexpected analysis: %s", result.Analysis)
	}
	if result.Confidence != 88 {
		t.Errorf("expected confidence 88, got %f", result.Confidence)
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0] != "stay hydrated" {
		t.Errorf("unexpected recommendations: %v", result.Recommendations)
	}
}

func TestAnalyzeHealthData_FallbackOnPlainText(t *testing.T) {
	srv := geminiStub(t, "Your vitals look fine overall.")
	defer srv.Close()

	client := NewGeminiClient(srv.URL, "test-key")
	result, err := client.AnalyzeHealthData(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Analysis != "Your vitals look fine overall." {
		t.Errorf("expected raw text as analysis, got %s", result.Analysis)
	}
	if result.Confidence != 70 {
		t.Errorf("expected fallback confidence 70, got %f", result.Confidence)
	}
}

func TestAnalyzeHealthData_NoAPIKey(t *testing.T) {
	client := NewGeminiClient("http://localhost:0", "")
	if _, err := client.AnalyzeHealthData(context.Background(), nil); err == nil {
		t.Error("expected error without api key")
	}
}

func TestChat_ReturnsReply(t *testing.T) {
	srv := geminiStub(t, "Drink plenty of water and rest.")
	defer srv.Close()

	client := NewGeminiClient(srv.URL, "test-key")
	reply, err := client.Chat(context.Background(), "I have a mild headache", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Drink plenty of water and rest." {
		t.Errorf("unexpected reply: %s", reply)
	}
}

func TestChat_ApologizesOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewGeminiClient(srv.URL, "test-key")
	reply, err := client.Chat(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("chat should not return an error: %v", err)
	}
	if !strings.Contains(reply, "unable to process") {
		t.Errorf("expected apology fallback, got %s", reply)
	}
}

func TestAnalyzeSymptoms_ParsesConditions(t *testing.T) {
	reply := `{"possibleConditions": [{"name": "Tension headache", "probability": 60, "description": "Common stress headache", "urgency": "low"}], "recommendations": ["rest"], "redFlags": ["sudden severe headache"]}`
	srv := geminiStub(t, reply)
	defer srv.Close()

	client := NewGeminiClient(srv.URL, "test-key")
	result, err := client.AnalyzeSymptoms(context.Background(), []string{"headache", "fatigue"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.PossibleConditions) != 1 {
		t.Fatalf("expected 1 condition, got %d", len(result.PossibleConditions))
	}
	if result.PossibleConditions[0].Name != "Tension headache" {
		t.Errorf("unexpected condition: %s", result.PossibleConditions[0].Name)
	}
	if len(result.RedFlags) != 1 {
		t.Errorf("expected 1 red flag, got %d", len(result.RedFlags))
	}
}

func TestAnalyzeSymptoms_FallbackOnGarbage(t *testing.T) {
	srv := geminiStub(t, "I cannot help with that.")
	defer srv.Close()

	client := NewGeminiClient(srv.URL, "test-key")
	result, err := client.AnalyzeSymptoms(context.Background(), []string{"cough"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.PossibleConditions) != 0 {
		t.Errorf("expected no conditions in fallback, got %d", len(result.PossibleConditions))
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0] != "Consult healthcare provider" {
		t.Errorf("unexpected fallback recommendations: %v", result.Recommendations)
	}
}

func TestGenerateHealthPlan_ParsesMilestones(t *testing.T) {
	reply := `{"plan": "Gradual fitness improvement", "goals": ["lose 2kg"], "timeline": "8 weeks", "milestones": [{"week": 1, "goal": "daily walks"}, {"week": 2, "goal": "add jogging"}]}`
	srv := geminiStub(t, reply)
	defer srv.Close()

	client := NewGeminiClient(srv.URL, "test-key")
	plan, err := client.GenerateHealthPlan(context.Background(), map[string]string{"age": "34"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Plan != "Gradual fitness improvement" {
		t.Errorf("unexpected plan: %s", plan.Plan)
	}
	if len(plan.Milestones) != 2 || plan.Milestones[1].Week != 2 {
		t.Errorf("unexpected milestones: %v", plan.Milestones)
	}
}

func TestGenerate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewGeminiClient(srv.URL, "test-key")
	_, err := client.AnalyzeSymptoms(context.Background(), []string{"fever"})
	if err == nil {
		t.Fatal("expected error on 429 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status code in error, got %v", err)
	}
}
