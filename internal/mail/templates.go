package mail

import "fmt"

// ConfirmEmail builds the address confirmation message. link is the full URL
// the user opens to confirm.
func ConfirmEmail(to, link string) Message {
	return Message{
		To:      to,
		Subject: "Stock Portfolio App - Confirm Your Email Address",
		Body: fmt.Sprintf("Thanks for registering!\n\n"+
			"Please confirm your email address by opening the link below:\n\n%s\n\n"+
			"The link expires in one hour.\n", link),
	}
}

// PasswordReset builds the password reset message.
func PasswordReset(to, link string) Message {
	return Message{
		To:      to,
		Subject: "Stock Portfolio App - Password Reset Requested",
		Body: fmt.Sprintf("A password reset was requested for your account.\n\n"+
			"Open the link below to choose a new password:\n\n%s\n\n"+
			"If you did not request this, you can ignore this email.\n", link),
	}
}
