package assessment

import "strings"

// Disease is an entry in the built-in condition knowledge base.
type Disease struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	ICD10Code             string   `json:"icd10Code"`
	Category              string   `json:"category"`
	Prevalence            float64  `json:"prevalence"`
	Symptoms              []string `json:"symptoms"`
	RiskFactors           []string `json:"riskFactors"`
	Complications         []string `json:"complications"`
	Prognosis             string   `json:"prognosis"`
	Treatment             []string `json:"treatment"`
	Prevention            []string `json:"prevention"`
	DifferentialDiagnosis []string `json:"differentialDiagnosis"`
}

// Symptom maps a presenting complaint to associated diseases and red flags.
type Symptom struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Category           string   `json:"category"`
	Severity           string   `json:"severity"`
	AssociatedDiseases []string `json:"associatedDiseases"`
	RedFlags           []string `json:"redFlags"`
	CommonCauses       []string `json:"commonCauses"`
}

// Interaction is a known pairwise drug interaction. Pair order is not
// significant.
type Interaction struct {
	Drug1          string `json:"drug1"`
	Drug2          string `json:"drug2"`
	Severity       string `json:"severity"`
	Mechanism      string `json:"mechanism"`
	ClinicalEffect string `json:"clinicalEffect"`
	Management     string `json:"management"`
}

// LabTest holds a reference range and its interpretation texts.
type LabTest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Min         float64  `json:"min"`
	Max         float64  `json:"max"`
	Unit        string   `json:"unit"`
	Description string   `json:"description"`
	LowText     string   `json:"lowText"`
	NormalText  string   `json:"normalText"`
	HighText    string   `json:"highText"`
}

// severityRank orders interaction severities so the worst pair wins.
var severityRank = map[string]int{
	"none": 0, "minor": 1, "moderate": 2, "major": 3, "contraindicated": 4,
}

// SeverityRank returns the ordinal for an interaction severity; unknown
// severities rank lowest.
func SeverityRank(s string) int { return severityRank[s] }

// KnowledgeBase is the static clinical reference data the engine consults.
type KnowledgeBase struct {
	Diseases     []Disease
	Symptoms     []Symptom
	Interactions []Interaction
	LabTests     []LabTest
}

// FindSymptom matches a free-text complaint against the symptom catalog by
// case-insensitive substring.
func (kb *KnowledgeBase) FindSymptom(name string) *Symptom {
	q := strings.ToLower(name)
	for i := range kb.Symptoms {
		if strings.Contains(strings.ToLower(kb.Symptoms[i].Name), q) {
			return &kb.Symptoms[i]
		}
	}
	return nil
}

// FindDisease looks a disease up by id.
func (kb *KnowledgeBase) FindDisease(id string) *Disease {
	for i := range kb.Diseases {
		if kb.Diseases[i].ID == id {
			return &kb.Diseases[i]
		}
	}
	return nil
}

// FindInteraction looks up the interaction for an unordered drug pair.
func (kb *KnowledgeBase) FindInteraction(a, b string) *Interaction {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	for i := range kb.Interactions {
		d1 := strings.ToLower(kb.Interactions[i].Drug1)
		d2 := strings.ToLower(kb.Interactions[i].Drug2)
		if (d1 == la && d2 == lb) || (d1 == lb && d2 == la) {
			return &kb.Interactions[i]
		}
	}
	return nil
}

// FindLabTest looks a lab test up by id.
func (kb *KnowledgeBase) FindLabTest(id string) *LabTest {
	for i := range kb.LabTests {
		if kb.LabTests[i].ID == id {
			return &kb.LabTests[i]
		}
	}
	return nil
}

// DefaultKnowledgeBase returns the built-in clinical reference data.
func DefaultKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		Diseases: []Disease{
			{
				ID:                    "hypertension",
				Name:                  "Hypertension",
				ICD10Code:             "I10",
				Category:              "Cardiovascular",
				Prevalence:            45.4,
				Symptoms:              []string{"headache", "dizziness", "chest pain", "shortness of breath"},
				RiskFactors:           []string{"age", "obesity", "smoking", "high sodium diet", "family history"},
				Complications:         []string{"stroke", "heart attack", "kidney disease", "heart failure"},
				Prognosis:             "Good with proper management",
				Treatment:             []string{"ACE inhibitors", "lifestyle modifications", "dietary changes"},
				Prevention:            []string{"regular exercise", "healthy diet", "weight management"},
				DifferentialDiagnosis: []string{"white coat hypertension", "secondary hypertension"},
			},
			{
				ID:                    "diabetes-t2",
				Name:                  "Type 2 Diabetes Mellitus",
				ICD10Code:             "E11",
				Category:              "Endocrine",
				Prevalence:            11.3,
				Symptoms:              []string{"increased thirst", "frequent urination", "fatigue", "blurred vision"},
				RiskFactors:           []string{"obesity", "sedentary lifestyle", "family history", "age over 45"},
				Complications:         []string{"diabetic retinopathy", "nephropathy", "neuropathy", "cardiovascular disease"},
				Prognosis:             "Good with proper management",
				Treatment:             []string{"metformin", "lifestyle modifications", "insulin therapy"},
				Prevention:            []string{"weight management", "regular exercise", "healthy diet"},
				DifferentialDiagnosis: []string{"type 1 diabetes", "MODY", "secondary diabetes"},
			},
		},
		Symptoms: []Symptom{
			{
				ID:                 "headache",
				Name:               "Headache",
				Category:           "Neurological",
				Severity:           "moderate",
				AssociatedDiseases: []string{"hypertension", "migraine", "tension-headache"},
				RedFlags:           []string{"sudden severe headache", "headache with fever and neck stiffness"},
				CommonCauses:       []string{"tension", "dehydration", "stress", "eye strain"},
			},
			{
				ID:                 "chest-pain",
				Name:               "Chest Pain",
				Category:           "Cardiovascular",
				Severity:           "severe",
				AssociatedDiseases: []string{"myocardial-infarction", "angina", "pulmonary-embolism", "hypertension"},
				RedFlags:           []string{"crushing chest pain", "pain radiating to arm or jaw", "shortness of breath"},
				CommonCauses:       []string{"heart disease", "muscle strain", "acid reflux", "anxiety"},
			},
		},
		Interactions: []Interaction{
			{
				Drug1:          "Warfarin",
				Drug2:          "Aspirin",
				Severity:       "major",
				Mechanism:      "Additive anticoagulant effects",
				ClinicalEffect: "Increased bleeding risk",
				Management:     "Monitor INR closely, consider dose adjustment",
			},
			{
				Drug1:          "Lisinopril",
				Drug2:          "Potassium supplements",
				Severity:       "moderate",
				Mechanism:      "Additive hyperkalemic effects",
				ClinicalEffect: "Increased potassium levels",
				Management:     "Monitor serum potassium levels",
			},
		},
		LabTests: []LabTest{
			{
				ID:          "hba1c",
				Name:        "Hemoglobin A1c",
				Category:    "Diabetes Monitoring",
				Min:         4.0,
				Max:         5.6,
				Unit:        "%",
				Description: "Measures average blood glucose over 2-3 months",
				LowText:     "May indicate hypoglycemia or certain anemias",
				NormalText:  "Normal glucose metabolism",
				HighText:    "Indicates diabetes (>=6.5%) or prediabetes (5.7-6.4%)",
			},
			{
				ID:          "lipid-panel",
				Name:        "Lipid Panel",
				Category:    "Cardiovascular Risk",
				Min:         0,
				Max:         200,
				Unit:        "mg/dL",
				Description: "Measures cholesterol and triglycerides",
				LowText:     "May indicate malnutrition or liver disease",
				NormalText:  "Low cardiovascular risk",
				HighText:    "Increased cardiovascular risk",
			},
		},
	}
}
