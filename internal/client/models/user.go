package models

// User is the authenticated account.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

// UserUpdate is the body of PUT /users/{id}.
type UserUpdate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PasswordChange is the body of POST /users/{id}/change-password.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
