package jobs

const (
	TaskSendWelcome = "email:welcome"

	// QueueMail carries outgoing mail tasks
	QueueMail = "mail"
)

type SendWelcomePayload struct {
	Email string `json:"email"`
}
