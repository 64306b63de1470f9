package models

import "time"

// User is an account authenticated through Telegram, email/password, or both.
// @Description User account
type User struct {
	ID           int64     `json:"id" example:"1"`
	TelegramID   *string   `json:"telegramId,omitempty" example:"987654321"`
	Email        *string   `json:"email,omitempty" example:"alice@example.com"`
	PasswordHash string    `json:"-"`
	Username     string    `json:"username" example:"alice"`
	FirstName    string    `json:"firstName" example:"Alice"`
	LastName     string    `json:"lastName" example:""`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile holds the mutable display fields refreshed on every Telegram login.
type Profile struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (u *User) Profile() Profile {
	return Profile{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}

// PublicUser is the view of a user shown to other project members.
// @Description Public user information
type PublicUser struct {
	ID        int64  `json:"id" example:"2"`
	Username  string `json:"username" example:"bob"`
	FirstName string `json:"firstName" example:"Bob"`
	LastName  string `json:"lastName" example:""`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}
