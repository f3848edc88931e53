package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template selects a built-in template rendered by the worker; raw
// Subject/Text are used as-is when Template is empty.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "email_validate", "password_reset"
	Data     map[string]any `json:"data,omitempty"`
}
