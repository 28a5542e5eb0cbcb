package mailqueue

// Message types understood by the mail worker.
const (
	TypeWelcome       = "welcome"
	TypeUserCreated   = "user_created"
	TypeExpenseStatus = "expense_status"
)

// Message is the JSON body placed on the queue.
type Message struct {
	Type string            `json:"type"`
	To   string            `json:"to"`
	Data map[string]string `json:"data"`
}
