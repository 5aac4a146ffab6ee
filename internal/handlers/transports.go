package handlers

import (
	"github.com/pkg/errors"

	"github.com/Rajini967/CRM/internal/constants"
	"github.com/Rajini967/CRM/internal/db"
	"github.com/Rajini967/CRM/internal/mailer"
	"github.com/Rajini967/CRM/internal/secrets"
)

// NewTransportForAccount is the production TransportFactory. It decrypts the
// account's stored credentials and builds the matching provider transport.
func NewTransportForAccount(account db.EmailAccount, decrypt secrets.Decryptor) (mailer.Transport, error) {
	switch account.Provider {
	case constants.ProviderSMTP:
		if !account.HasSMTPCapability() {
			return nil, errors.New("account has incomplete SMTP settings")
		}
		password, err := decrypt(account.SmtpPasswordEncrypted.String)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decrypt SMTP password")
		}
		return mailer.NewSMTPTransport(mailer.SMTPConfig{
			Host:      account.SmtpHost.String,
			Port:      int(account.SmtpPort.Int32),
			Username:  account.SmtpUsername.String,
			Password:  password,
			FromName:  account.FromName,
			FromEmail: account.FromEmail,
		}), nil

	case constants.ProviderResend:
		if !account.ResendApiKeyEncrypted.Valid {
			return nil, errors.New("account has no Resend API key")
		}
		apiKey, err := decrypt(account.ResendApiKeyEncrypted.String)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decrypt Resend API key")
		}
		return mailer.NewResendTransport(apiKey, account.FromName, account.FromEmail), nil

	default:
		return nil, errors.Errorf("unsupported email provider %q", account.Provider)
	}
}
