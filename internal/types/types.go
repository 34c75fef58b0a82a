package types

// ScoreRequest is the body for stateless score computation
type ScoreRequest struct {
	Answers map[string]any `json:"answers" binding:"required"`
}

// SubmitAuditRequest is the body for persisting a new audit entry
type SubmitAuditRequest struct {
	Answers map[string]any `json:"answers" binding:"required"`
}

// UpdateAuditRequest carries field-level edits for an existing audit.
// A null value removes the answer for that field.
type UpdateAuditRequest struct {
	Edits map[string]any `json:"edits" binding:"required"`
}

// LoginRequest is the body for admin authentication
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued admin session token
type LoginResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the generic error payload
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
