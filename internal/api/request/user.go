package request

// RegisterRequest represents the request body for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,min=6,max=120"`
	Password string `json:"password" validate:"required,min=6,max=40"`
}

// LoginRequest represents the request body for obtaining a session token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,min=6,max=100"`
	Password string `json:"password" validate:"required"`
}

// EmailRequest carries a single email address, used to request a password
// reset and by admins to change an account's address.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email,min=6,max=100"`
}

// PasswordRequest carries a new password, used with a reset token and by admins.
type PasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}
