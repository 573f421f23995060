package model

// User is keyed by name in the users document.
type User struct {
	PasswordHash string `json:"password_hash"`
	Street       string `json:"street"`
}

type Users map[string]User
