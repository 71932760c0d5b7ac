package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/models"
)

// MailSender delivers a notification to a set of internal users. Address
// resolution and transport belong to the surrounding suite.
type MailSender interface {
	Send(ctx context.Context, recipients []uuid.UUID, subject, body string) error
}

// LogSender is the default MailSender: it only logs. Deployments wire the
// suite's real mail transport instead.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, recipients []uuid.UUID, subject, body string) error {
	log.Printf("notify %d recipient(s): %s", len(recipients), subject)
	return nil
}

// Notifier turns audit entries into mails for the users with a standing
// interest in the affected area.
type Notifier struct {
	sender MailSender
}

func NewNotifier(sender MailSender) *Notifier {
	if sender == nil {
		sender = LogSender{}
	}
	return &Notifier{sender: sender}
}

// Notify mails everyone interested in the given event. A nil return with no
// recipients is not an error; events acted on by the only interested party
// simply produce no mail.
func (n *Notifier) Notify(ctx context.Context, area *models.Area, entry *models.AuditEntry) error {
	recipients := Recipients(area.ObserverIDs, entry.UploadOwnerID, entry.ActingUserID)
	if len(recipients) == 0 {
		return nil
	}
	subject, body := messageFor(area, entry)
	return n.sender.Send(ctx, recipients, subject, body)
}

func messageFor(area *models.Area, entry *models.AuditEntry) (subject, body string) {
	actor := entry.ActingUserInfo
	if entry.ActingUserID != nil {
		actor = entry.ActingUserID.String()
	}
	if actor == "" {
		actor = "an external user"
	}

	var action string
	switch entry.Event {
	case models.EventUpload:
		action = "uploaded"
	case models.EventDelete:
		action = "deleted"
	case models.EventModification:
		action = "modified"
	case models.EventDownload:
		action = "downloaded"
	case models.EventDownloadMulti:
		action = "downloaded (selection)"
	case models.EventDownloadAll:
		action = "downloaded (all files)"
	default:
		action = string(entry.Event)
	}

	subject = fmt.Sprintf("[%s] %s: %s", area.Name, action, entry.FileName)
	body = fmt.Sprintf("%s %s %q in data transfer area %q.", actor, action, entry.FileName, area.Name)
	return subject, body
}
