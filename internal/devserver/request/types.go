package request

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Identifier  string `json:"identifier"`
	Secret      string `json:"secret"`
	DisplayName string `json:"display_name"`
}

// AwardPointsRequest is the request body for adding points
type AwardPointsRequest struct {
	Points int `json:"points"`
}
