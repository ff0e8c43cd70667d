package dto

type ClaimSessionRequest struct {
	TableNumber    int    `json:"table_number"    validate:"required,min=1"`
	OrganizationID string `json:"organization_id" validate:"required,uuid"`
	ClientToken    string `json:"client_token"    validate:"required,min=1"`
}

type SessionResponse struct {
	SessionID   string `json:"session_id"`
	TableID     string `json:"table_id"`
	ClientToken string `json:"client_token"`
}
