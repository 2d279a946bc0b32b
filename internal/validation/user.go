package validation

import "github.com/ndewijer/stock-portfolio-tracker/internal/api/request"

func ValidateRegister(req request.RegisterRequest) error {
	return validateStruct(req)
}

func ValidateLogin(req request.LoginRequest) error {
	return validateStruct(req)
}

func ValidateEmail(req request.EmailRequest) error {
	return validateStruct(req)
}

func ValidatePassword(req request.PasswordRequest) error {
	return validateStruct(req)
}

func ValidateChangePassword(req request.ChangePasswordRequest) error {
	return validateStruct(req)
}
