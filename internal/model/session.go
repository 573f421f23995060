package model

import "time"

// Session is an authenticated client. Token is the opaque session id handed
// to the client.
type Session struct {
	Token     string    `json:"-"`
	Name      string    `json:"name"`
	Street    string    `json:"street"`
	ExpiresAt time.Time `json:"-"`
	CreatedAt time.Time `json:"-"`
}
