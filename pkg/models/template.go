package models

// Template is a pre-built workflow blueprint. Instantiating one
// produces a fresh graph with regenerated node and connection ids.
type Template struct {
	ID          string   `json:"id"   validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Popularity  int      `json:"popularity"`
	Services    []string `json:"services"`
	Workflow    Workflow `json:"workflow"`
}
