package db

// HasSMTPCapability reports whether the account carries complete SMTP
// connection settings. Accounts backed by an HTTP provider return false and
// cannot be used for bulk sending.
func (a EmailAccount) HasSMTPCapability() bool {
	return a.Provider == "smtp" &&
		a.SmtpHost.Valid && a.SmtpHost.String != "" &&
		a.SmtpPort.Valid &&
		a.SmtpUsername.Valid &&
		a.SmtpPasswordEncrypted.Valid
}
