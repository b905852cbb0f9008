package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for async sends
// (order confirmations, delivery notices). HTML is optional; Text is the
// fallback body.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}
