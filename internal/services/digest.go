package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/platform/envutil"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/platform/resend"
	"github.com/0unveiled/backend/internal/repos"
)

const digestTemplateText = `<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #1a1a1a; max-width: 600px; margin: 0 auto;">
    <h2>Hi {{.Name}},</h2>
    <p>Here is your {{.Label}} digest: {{len .Notifications}} unread notification{{if ne (len .Notifications) 1}}s{{end}}.</p>
    <ul>
      {{range .Notifications}}<li style="margin-bottom: 8px;"><a href="{{$.SiteURL}}{{if .Link}}{{.Link}}{{else}}/notifications{{end}}">{{.Content}}</a></li>
      {{end}}
    </ul>
    <p><a href="{{.SiteURL}}/notifications">Open all notifications</a></p>
  </body>
</html>`

var digestTmpl = template.Must(template.New("digest").Parse(digestTemplateText))

// DigestService batches unread notifications into periodic emails. Per-user
// failures are counted, never fatal for the run.
type DigestService interface {
	ProcessDailyDigests(ctx context.Context, now time.Time) (sent, failed int, err error)
	ProcessWeeklyDigests(ctx context.Context, now time.Time) (sent, failed int, err error)
}

type digestService struct {
	log     *logger.Logger
	users   repos.UserRepo
	notes   repos.NotificationRepo
	mail    resend.Client
	siteURL string
}

func NewDigestService(log *logger.Logger, users repos.UserRepo, notes repos.NotificationRepo, mail resend.Client) DigestService {
	return &digestService{
		log:     log.With("service", "DigestService"),
		users:   users,
		notes:   notes,
		mail:    mail,
		siteURL: strings.TrimRight(envutil.Str("NEXT_PUBLIC_SITE_URL", "http://localhost:3000"), "/"),
	}
}

func (ds *digestService) ProcessDailyDigests(ctx context.Context, now time.Time) (int, int, error) {
	return ds.process(ctx, now, types.EmailFrequencyDaily, 24*time.Hour, "daily")
}

func (ds *digestService) ProcessWeeklyDigests(ctx context.Context, now time.Time) (int, int, error) {
	return ds.process(ctx, now, types.EmailFrequencyWeekly, 7*24*time.Hour, "weekly")
}

func (ds *digestService) process(ctx context.Context, now time.Time, freq types.EmailFrequency, window time.Duration, label string) (int, int, error) {
	users, err := ds.users.ListByEmailFrequency(ctx, nil, freq)
	if err != nil {
		return 0, 0, err
	}
	cutoff := now.Add(-window)

	var sent, failed int
	for _, user := range users {
		notes, err := ds.notes.ListUnreadSince(ctx, nil, user.ID, cutoff)
		if err != nil {
			ds.log.Warn("digest notification lookup failed", "user_id", user.ID, "error", err)
			failed++
			continue
		}
		if len(notes) == 0 {
			continue
		}

		html, err := ds.render(user, notes, label)
		if err != nil {
			ds.log.Error("digest render failed", "user_id", user.ID, "error", err)
			failed++
			continue
		}
		subject := fmt.Sprintf("Your %s digest: %d unread notification", label, len(notes))
		if len(notes) != 1 {
			subject += "s"
		}
		if _, err := ds.mail.Send(ctx, resend.SendEmailRequest{
			To:      []string{user.Email},
			Subject: subject,
			HTML:    html,
		}); err != nil {
			ds.log.Warn("digest send failed", "user_id", user.ID, "error", err)
			failed++
			continue
		}
		sent++
	}

	ds.log.Info("digest run finished", "frequency", string(freq), "sent", sent, "failed", failed)
	return sent, failed, nil
}

func (ds *digestService) render(user *types.User, notes []*types.Notification, label string) (string, error) {
	name := user.FirstName
	if name == "" {
		name = user.Username
	}
	var buf bytes.Buffer
	err := digestTmpl.Execute(&buf, struct {
		Name          string
		Label         string
		SiteURL       string
		Notifications []*types.Notification
	}{
		Name:          name,
		Label:         label,
		SiteURL:       ds.siteURL,
		Notifications: notes,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
