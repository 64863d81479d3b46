package domain

import "time"

// User is the directory record behind lookup/create-by-email.
type User struct {
	ID        string
	Email     string
	Username  string
	Status    string
	About     string
	CreatedAt time.Time
}

// Profile is the safe projection exposed by the HTTP surface: no email.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Status   string `json:"status"`
	About    string `json:"about"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Status:   u.Status,
		About:    u.About,
	}
}
