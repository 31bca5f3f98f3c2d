package request

// StartSessionRequest is the request body for starting a game session
type StartSessionRequest struct {
	GameID   string         `json:"game_id"`
	Settings map[string]any `json:"settings,omitempty"`
}

// SubmitScoreRequest is the request body for submitting a session score
type SubmitScoreRequest struct {
	Score    int    `json:"score"`
	ProofRef string `json:"proof_ref,omitempty"`
}
