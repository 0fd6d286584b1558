// Package calendar wraps the Google Calendar REST surface consumed by
// ChronoBox: inserting a reminder event for a capsule's unlock date and
// fetching a previously created event, both on the user's primary
// calendar.
package calendar

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/hpungsan/chronobox/internal/capsule"
	"github.com/hpungsan/chronobox/internal/config"
	"github.com/hpungsan/chronobox/internal/errors"
	"github.com/hpungsan/chronobox/internal/session"
)

// Event payload constants. The summary prefix and reminder offsets are
// part of the product behavior, not configuration.
const (
	summaryPrefix = "Time Capsule Opening: "
	fallbackTitle = "A Memory"

	primaryCalendar = "primary"
	eventDuration   = 30 * time.Minute

	emailReminderMinutes = 24 * 60
	popupReminderMinutes = 10
)

// Gateway issues calendar calls on behalf of an authenticated session.
type Gateway struct {
	sess    *session.Session
	cfg     *config.Config
	baseURL string
	timeout time.Duration
}

// New creates a gateway bound to the session's calendar endpoint.
func New(sess *session.Session, cfg *config.Config) *Gateway {
	return &Gateway{
		sess:    sess,
		cfg:     cfg,
		baseURL: sess.Endpoints().CalendarBaseURL,
		timeout: cfg.HTTPTimeout(),
	}
}

// service builds the calendar client after re-checking session readiness,
// so calls against a failed or uninitialized session are rejected before
// any network traffic.
func (g *Gateway) service(ctx context.Context) (*gcal.Service, error) {
	switch g.sess.State() {
	case session.StateReady:
	case session.StateError:
		return nil, errors.NewConfiguration("session initialization failed; restart required")
	default:
		return nil, errors.NewInitialization("session not initialized; call Init first")
	}

	client := oauth2.NewClient(ctx, g.sess.TokenSource(ctx))
	client.Timeout = g.timeout
	svc, err := gcal.NewService(ctx,
		option.WithHTTPClient(client),
		option.WithEndpoint(g.baseURL),
	)
	if err != nil {
		return nil, errors.NewInitialization(fmt.Sprintf("failed to build calendar client: %v", err))
	}
	return svc, nil
}

// CreateReminder inserts a reminder event for the capsule on the primary
// calendar: it starts at the unlock date, runs 30 minutes, and overrides
// the default reminders with an email 24 hours before and a popup 10
// minutes before. The description deep-links back to the capsule view.
func (g *Gateway) CreateReminder(ctx context.Context, c *capsule.Capsule) (*gcal.Event, error) {
	svc, err := g.service(ctx)
	if err != nil {
		return nil, err
	}

	title := c.Title
	if title == "" {
		title = fallbackTitle
	}

	loc := g.cfg.Location()
	start := c.UnlockDate.In(loc)
	event := &gcal.Event{
		Summary:     summaryPrefix + title,
		Description: fmt.Sprintf("Your time capsule is ready to open! View it here: %s/open/%s", g.cfg.BaseURL, c.ID),
		Start: &gcal.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: g.cfg.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: start.Add(eventDuration).Format(time.RFC3339),
			TimeZone: g.cfg.TimeZone,
		},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: emailReminderMinutes},
				{Method: "popup", Minutes: popupReminderMinutes},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	created, err := svc.Events.Insert(primaryCalendar, event).Context(ctx).Do()
	if err != nil {
		return nil, wrapProviderError("create event", err)
	}
	return created, nil
}

// FetchReminder retrieves a previously created reminder event by id from
// the primary calendar.
func (g *Gateway) FetchReminder(ctx context.Context, eventID string) (*gcal.Event, error) {
	svc, err := g.service(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	event, err := svc.Events.Get(primaryCalendar, eventID).Context(ctx).Do()
	if err != nil {
		var gErr *googleapi.Error
		if stderrors.As(err, &gErr) && gErr.Code == 404 {
			return nil, errors.NewNotFound("event", eventID)
		}
		return nil, wrapProviderError("fetch event", err)
	}
	return event, nil
}

// wrapProviderError re-throws a provider failure as a REMOTE_API_ERROR,
// except that session-level errors (not signed in, failed init) surfaced
// through the token source pass through unchanged.
func wrapProviderError(op string, err error) error {
	var cErr *errors.ChronoError
	if stderrors.As(err, &cErr) {
		return cErr
	}
	return errors.NewRemoteAPI(op, err)
}
