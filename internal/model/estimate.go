package model

// AnalyzeRequest is the form-encoded input for damage analysis
type AnalyzeRequest struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Country     string `form:"country"`
}

// CostEstimate holds the min/max repair cost band.
// Both values derive from the same random base with a symmetric ±15% spread,
// so Min <= Max always holds.
type CostEstimate struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// EstimationResult is the response of the damage analysis pipeline.
// The shape is consumed by the front end as-is; do not add fields lightly.
type EstimationResult struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Country      string       `json:"country"`
	Currency     string       `json:"currency"`
	CostEstimate CostEstimate `json:"costEstimate"`
}
