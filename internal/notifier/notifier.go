package notifier

import (
	"fmt"

	"github.com/confops/conference-api/internal/models"
)

// Mailer delivers participant-facing messages. Delivery is best
// effort: callers log failures and never fail their primary operation
// on a mail error.
type Mailer interface {
	Send(to, subject, body string) error
}

// Announcer broadcasts catalog changes to the organizer channel.
type Announcer interface {
	AnnounceSession(action string, session models.Session) error
}

// WelcomeBody renders the registration mail carrying the identity token.
func WelcomeBody(participant models.Participant) string {
	return fmt.Sprintf(
		"Hello %s,\n\nyour conference registration is confirmed.\n"+
			"Present this identity token at session check-in:\n\n%s\n",
		participant.Name, participant.IdentityToken)
}
