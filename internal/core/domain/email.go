package domain

// Email is an outgoing message queued on the outbox.
type Email struct {
	To      string
	Subject string
	Body    string
}
