package email

import (
	"fmt"
	"log"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Notifier sends intake notifications (contact form, collaboration requests)
// to the shop inbox. Delivery is best-effort; the primary operation never
// fails because an email did not go out.
type Notifier struct {
	client *sendgrid.Client
	from   string
	to     string
}

// NewNotifier returns nil when SENDGRID_API_KEY is unset; a nil Notifier
// silently skips sends so local setups work without credentials.
func NewNotifier() *Notifier {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		log.Println("SENDGRID_API_KEY not set, email notifications disabled")
		return nil
	}
	return &Notifier{
		client: sendgrid.NewSendClient(apiKey),
		from:   os.Getenv("EMAIL_SENDER"),
		to:     os.Getenv("EMAIL_RECIPIENT"),
	}
}

func (n *Notifier) Notify(subject, body string) {
	if n == nil {
		return
	}
	message := mail.NewSingleEmail(
		mail.NewEmail("Storefront", n.from),
		subject,
		mail.NewEmail("", n.to),
		body,
		body,
	)
	resp, err := n.client.Send(message)
	if err != nil {
		log.Printf("Warning: failed to send notification email: %v", err)
		return
	}
	if resp.StatusCode >= 400 {
		log.Printf("Warning: notification email rejected with status %d", resp.StatusCode)
	}
}

// NotifyContact formats a contact/collaboration submission for the inbox.
func (n *Notifier) NotifyContact(kind, name, from, message string) {
	n.Notify(
		fmt.Sprintf("New %s from %s", kind, name),
		fmt.Sprintf("From: %s <%s>\n\n%s", name, from, message),
	)
}
