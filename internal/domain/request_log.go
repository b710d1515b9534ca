package domain

import "time"

// RequestLog records every API request for traceability.
type RequestLog struct {
	ID        string    `json:"id"         db:"id"`
	Method    string    `json:"method"     db:"method"`
	Path      string    `json:"path"       db:"path"`
	Status    int       `json:"status"     db:"status"`
	Details   string    `json:"details"    db:"details"` // JSON blob
	IP        string    `json:"ip"         db:"ip"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
