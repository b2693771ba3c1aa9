package models

type UserType string

const (
	UserTypeCommon UserType = "Common"
	UserTypeAdmin  UserType = "Admin"
)

type User struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email"`
	Type  UserType `json:"type"`
}

func (u User) IsAdmin() bool {
	return u.Type == UserTypeAdmin
}

// Session is the signed-in user and the bearer token for protected endpoints.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the sign-in payload returned by the backend.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
