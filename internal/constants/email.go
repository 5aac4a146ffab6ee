package constants

// Email account providers
const (
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
)
