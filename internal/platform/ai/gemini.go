// Package ai provides a client for the Google Gemini generative language
// API, used for free-text health analysis, symptom triage and chat. All
// callers go through the Client interface so services can be tested with a
// stub, and every method degrades to a canned fallback when the API is
// unreachable or returns malformed output.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const defaultModel = "gemini-pro"

// AnalysisResult is the structured output of a health data analysis.
type AnalysisResult struct {
	Analysis        string   `json:"analysis"`
	Recommendations []string `json:"recommendations"`
	RiskAssessment  string   `json:"riskAssessment"`
	Confidence      float64  `json:"confidence"`
}

// SymptomFinding is a single candidate condition from symptom analysis.
type SymptomFinding struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
	Description string  `json:"description"`
	Urgency     string  `json:"urgency"`
}

// SymptomAnalysis is the structured output of a symptom triage request.
type SymptomAnalysis struct {
	PossibleConditions []SymptomFinding `json:"possibleConditions"`
	Recommendations    []string         `json:"recommendations"`
	RedFlags           []string         `json:"redFlags"`
}

// Milestone is a weekly goal inside a generated health plan.
type Milestone struct {
	Week int    `json:"week"`
	Goal string `json:"goal"`
}

// HealthPlan is a personalised plan generated from a user profile.
type HealthPlan struct {
	Plan       string      `json:"plan"`
	Goals      []string    `json:"goals"`
	Timeline   string      `json:"timeline"`
	Milestones []Milestone `json:"milestones"`
}

// Client is the generative AI surface used by the domain services.
type Client interface {
	AnalyzeHealthData(ctx context.Context, healthData interface{}) (*AnalysisResult, error)
	Chat(ctx context.Context, message string, chatContext interface{}) (string, error)
	AnalyzeSymptoms(ctx context.Context, symptoms []string) (*SymptomAnalysis, error)
	GenerateHealthPlan(ctx context.Context, profile interface{}) (*HealthPlan, error)
}

// GeminiClient calls the Gemini REST API directly.
type GeminiClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewGeminiClient creates a client against the given base URL. An empty API
// key is allowed; requests then skip the network entirely and return the
// fallback responses, which keeps the server usable in offline development.
func NewGeminiClient(baseURL, apiKey string) *GeminiClient {
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   defaultModel,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// jsonBlock matches the outermost JSON object in a model reply. Gemini often
// wraps JSON in prose or markdown fences.
var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate sends a single-turn prompt and returns the raw text reply.
func (g *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("gemini api key not configured")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("gemini returned %d: %s", resp.StatusCode, string(b))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// AnalyzeHealthData asks the model for a structured analysis of arbitrary
// health data. If the model reply cannot be parsed as JSON, the raw text is
// returned as the analysis with conservative defaults.
func (g *GeminiClient) AnalyzeHealthData(ctx context.Context, healthData interface{}) (*AnalysisResult, error) {
	data, _ := json.MarshalIndent(healthData, "", "  ")
	prompt := fmt.Sprintf(`As an advanced medical AI assistant, analyze the following health data and provide:
1. Comprehensive health analysis
2. Specific recommendations
3. Risk assessment
4. Confidence level (0-100)

Health Data:
%s

Please provide a detailed medical analysis focusing on:
- Current health status
- Potential health risks
- Preventive measures
- Lifestyle recommendations
- When to seek medical attention

Format your response as JSON with the following structure:
{
  "analysis": "detailed analysis",
  "recommendations": ["recommendation1", "recommendation2"],
  "riskAssessment": "risk level and explanation",
  "confidence": number
}`, string(data))

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if m := jsonBlock.FindString(text); m != "" {
		var result AnalysisResult
		if jsonErr := json.Unmarshal([]byte(m), &result); jsonErr == nil {
			return &result, nil
		}
	}

	return &AnalysisResult{
		Analysis:        text,
		Recommendations: []string{"Consult with healthcare provider", "Monitor symptoms"},
		RiskAssessment:  "Unable to assess risk",
		Confidence:      70,
	}, nil
}

// Chat sends a free-form health question, optionally with context, and
// returns the model's text reply. Errors are swallowed into an apology so
// the chat surface never hard-fails.
func (g *GeminiClient) Chat(ctx context.Context, message string, chatContext interface{}) (string, error) {
	var ctxBlock string
	if chatContext != nil {
		b, _ := json.Marshal(chatContext)
		ctxBlock = fmt.Sprintf("\nContext: %s\n", string(b))
	}

	prompt := fmt.Sprintf(`You are an advanced medical AI assistant. Respond to the following health-related question:

Question: %s
%s
Provide a helpful, accurate, and professional medical response. Always remind users to consult healthcare professionals for serious concerns.`, message, ctxBlock)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return "I apologize, but I'm unable to process your request at the moment. Please try again or consult with a healthcare professional.", nil
	}
	return text, nil
}

// AnalyzeSymptoms asks the model to triage a symptom list into candidate
// conditions, recommendations and red flags.
func (g *GeminiClient) AnalyzeSymptoms(ctx context.Context, symptoms []string) (*SymptomAnalysis, error) {
	prompt := fmt.Sprintf(`Analyze the following symptoms and provide medical insights:

Symptoms: %s

Please provide:
1. Possible medical conditions with probability percentages
2. General recommendations
3. Red flag symptoms that require immediate attention

Format as JSON:
{
  "possibleConditions": [
    {
      "name": "condition name",
      "probability": percentage,
      "description": "brief description",
      "urgency": "low/medium/high/emergency"
    }
  ],
  "recommendations": ["recommendation1", "recommendation2"],
  "redFlags": ["red flag1", "red flag2"]
}`, strings.Join(symptoms, ", "))

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if m := jsonBlock.FindString(text); m != "" {
		var result SymptomAnalysis
		if jsonErr := json.Unmarshal([]byte(m), &result); jsonErr == nil {
			return &result, nil
		}
	}

	return &SymptomAnalysis{
		PossibleConditions: []SymptomFinding{},
		Recommendations:    []string{"Consult healthcare provider"},
		RedFlags:           []string{},
	}, nil
}

// GenerateHealthPlan builds a personalised multi-week plan from a user
// profile.
func (g *GeminiClient) GenerateHealthPlan(ctx context.Context, profile interface{}) (*HealthPlan, error) {
	data, _ := json.MarshalIndent(profile, "", "  ")
	prompt := fmt.Sprintf(`Create a personalized health plan for the following user profile:

%s

Generate a comprehensive health plan including:
1. Overall health improvement strategy
2. Specific health goals
3. Timeline for achieving goals
4. Weekly milestones

Format as JSON:
{
  "plan": "detailed health plan",
  "goals": ["goal1", "goal2"],
  "timeline": "timeline description",
  "milestones": [
    {"week": 1, "goal": "week 1 goal"},
    {"week": 2, "goal": "week 2 goal"}
  ]
}`, string(data))

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if m := jsonBlock.FindString(text); m != "" {
		var result HealthPlan
		if jsonErr := json.Unmarshal([]byte(m), &result); jsonErr == nil {
			return &result, nil
		}
	}

	return &HealthPlan{
		Plan:       "Unable to generate plan",
		Goals:      []string{},
		Timeline:   "",
		Milestones: []Milestone{},
	}, nil
}
