package models

// Operator is an account allowed to drive the panel over the HTTP API.
type Operator struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
