package models

type Admin struct {
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}
