package domain

// DocumentSummary is the AI-generated overview of an uploaded document.
type DocumentSummary struct {
	ProjectName           string   `json:"project_name"`
	ProjectDescription    string   `json:"project_description"`
	Objectives            []string `json:"objectives"`
	Scope                 []string `json:"scope"`
	Stakeholders          []string `json:"stakeholders"`
	KeyFeatures           []string `json:"key_features"`
	TechnicalRequirements []string `json:"technical_requirements"`
	TimelineEstimate      string   `json:"timeline_estimate"`
	Risks                 []string `json:"risks"`
	Assumptions           []string `json:"assumptions"`
}
