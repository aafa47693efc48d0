package authcore

import (
	"strings"
	"text/template"
	"time"
)

// recoveryMailParams feeds the recovery-request mail template.
type recoveryMailParams struct {
	Name       string
	RecoveryID string
	ValidFor   time.Duration
}

// newPasswordMailParams feeds the generated-password mail template.
type newPasswordMailParams struct {
	Name     string
	Login    string
	Password string
}

// Mail bodies are deliberately plain text with no host-specific URLs: the
// host wraps the recovery id into its own link before dispatch.
var recoveryMailTemplate = template.Must(template.New("recovery").Parse(`Hi {{.Name}},

A password recovery was requested for your account.

Your recovery id is:

{{.RecoveryID}}

It is valid for {{printf "%.f" .ValidFor.Hours}} hours and can be used once.

If you did not request a recovery, you can ignore this mail.
`))

var newPasswordMailTemplate = template.Must(template.New("newpassword").Parse(`Hi {{.Name}},

A new password was generated for your account {{.Login}}:

{{.Password}}

Please change it after your next login.
`))

func buildRecoveryMail(account *Account, recoveryID string, validFor time.Duration) (Mail, error) {
	var body strings.Builder
	err := recoveryMailTemplate.Execute(&body, recoveryMailParams{
		Name:       account.Name,
		RecoveryID: recoveryID,
		ValidFor:   validFor,
	})
	if err != nil {
		return Mail{}, err
	}
	return Mail{
		To:      account.Email,
		Subject: "Password recovery",
		Body:    body.String(),
	}, nil
}

func buildNewPasswordMail(account *Account, newPassword string) (Mail, error) {
	var body strings.Builder
	err := newPasswordMailTemplate.Execute(&body, newPasswordMailParams{
		Name:     account.Name,
		Login:    account.Login,
		Password: newPassword,
	})
	if err != nil {
		return Mail{}, err
	}
	return Mail{
		To:      account.Email,
		Subject: "Your new password",
		Body:    body.String(),
	}, nil
}
