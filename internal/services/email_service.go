package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/justsurfingit/career-tracker/internal/events"
	"github.com/justsurfingit/career-tracker/internal/models"
	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

const (
	syncTimeout    = 2 * time.Minute
	bootstrapQuery = "subject:(application OR interview OR update OR offer OR rejected OR status) newer_than:7d"
)

// Mailbox is the slice of the Gmail API the watcher uses.
type Mailbox interface {
	// Recent returns candidate messages from the last week and the current
	// history id to anchor the next incremental sync.
	Recent(ctx context.Context) ([]*gmail.Message, uint64, error)
	// Since returns messages added after startID.
	Since(ctx context.Context, startID uint64) ([]*gmail.Message, uint64, error)
}

// EmailClassifier reads recruiter emails. LLMService implements it.
type EmailClassifier interface {
	IdentifyJobRole(ctx context.Context, titles []string, subject, body string) int
	AnalyzeEmailStatus(ctx context.Context, company, subject, body string) (string, error)
}

type EmailService struct {
	State      EmailStateStore
	Jobs       JobStore
	Classifier EmailClassifier
	Matcher    *MatcherService
	Mailbox    Mailbox
	Events     events.Publisher
	Log        *zap.Logger
}

func NewEmailService(state EmailStateStore, jobs JobStore, classifier EmailClassifier, mailbox Mailbox, pub events.Publisher, log *zap.Logger) *EmailService {
	return &EmailService{
		State:      state,
		Jobs:       jobs,
		Classifier: classifier,
		Matcher:    NewMatcherService(jobs),
		Mailbox:    mailbox,
		Events:     pub,
		Log:        log,
	}
}

// SyncEmails runs one sync cycle: bootstrap on the first run, incremental
// afterwards, falling back to bootstrap when Google has expired the history.
func (s *EmailService) SyncEmails(ctx context.Context) error {
	if s.Mailbox == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	user, err := s.State.DefaultUser(ctx)
	if err != nil {
		return err
	}

	var (
		messages     []*gmail.Message
		newHistoryID uint64
	)
	if user.LastHistoryID == 0 {
		s.Log.Info("email sync bootstrap")
		messages, newHistoryID, err = s.Mailbox.Recent(ctx)
	} else {
		messages, newHistoryID, err = s.Mailbox.Since(ctx, user.LastHistoryID)
		if err != nil && isHistoryExpiredError(err) {
			s.Log.Warn("gmail history expired, running full sync", zap.Uint64("history_id", user.LastHistoryID))
			messages, newHistoryID, err = s.Mailbox.Recent(ctx)
		}
	}
	if err != nil {
		return fmt.Errorf("email sync: %w", err)
	}

	s.Log.Info("email sync candidates", zap.Int("count", len(messages)))
	for _, msg := range messages {
		done, err := s.State.IsProcessed(ctx, msg.Id)
		if err != nil {
			return err
		}
		if done {
			continue
		}
		s.processSingleEmail(ctx, msg)
		if err := s.State.MarkProcessed(ctx, msg.Id); err != nil {
			return err
		}
	}

	// Move the bookmark even when nothing matched so the window isn't rescanned.
	if newHistoryID > user.LastHistoryID {
		if err := s.State.UpdateHistoryID(ctx, user.ID, newHistoryID); err != nil {
			return err
		}
	}
	return nil
}

type emailDecision struct {
	Status  string `json:"status"`
	Summary string `json:"summary"`
}

// processSingleEmail matches the email to a job, asks the model for the new
// status and records it as an EMAIL_UPDATE history row.
func (s *EmailService) processSingleEmail(ctx context.Context, msg *gmail.Message) {
	headers := parseHeaders(msg)
	subject, sender := headers["Subject"], headers["From"]
	log := s.Log.With(zap.String("message_id", msg.Id), zap.String("subject", subject))

	company, err := s.Matcher.FindCompanyFromEmail(ctx, subject, sender)
	if err != nil {
		log.Warn("company match failed", zap.Error(err))
		return
	}
	if company == nil {
		log.Debug("email skipped, no tracked company", zap.String("from", sender))
		return
	}

	jobs, err := s.Jobs.ActiveJobsForCompany(ctx, company.ID)
	if err != nil || len(jobs) == 0 {
		log.Debug("email skipped, no active jobs", zap.String("company", company.Name), zap.Error(err))
		return
	}

	body := getEmailBody(msg)
	target := &jobs[0]
	if len(jobs) > 1 {
		titles := make([]string, len(jobs))
		for i, j := range jobs {
			titles[i] = j.Title
		}
		idx := s.Classifier.IdentifyJobRole(ctx, titles, subject, body)
		if idx < 0 {
			log.Info("email skipped, ambiguous job", zap.Strings("titles", titles))
			return
		}
		target = &jobs[idx]
	}

	raw, err := s.Classifier.AnalyzeEmailStatus(ctx, company.Name, subject, body)
	if err != nil {
		log.Warn("email analysis failed", zap.Error(err))
		return
	}
	var decision emailDecision
	if err := json.Unmarshal([]byte(raw), &decision); err != nil {
		log.Warn("email analysis returned invalid JSON", zap.Error(err), zap.String("raw", raw))
		return
	}
	if decision.Status == "NO_CHANGE" || decision.Status == "UNKNOWN" || decision.Status == target.Status {
		return
	}

	event := &models.JobEvent{
		JobID:     target.ID,
		Status:    decision.Status,
		EventType: models.EventEmailUpdate,
		Details:   fmt.Sprintf("Status changed to %s. Summary: %s", decision.Status, decision.Summary),
	}
	if err := s.Jobs.AppendEvent(ctx, event); err != nil {
		log.Error("record email status failed", zap.Uint("job_id", target.ID), zap.Error(err))
		return
	}
	log.Info("job status updated from email",
		zap.Uint("job_id", target.ID), zap.String("from", target.Status), zap.String("to", decision.Status))

	if err := s.Events.Publish(ctx, events.EmailStatusDetected, map[string]any{
		"jobId": target.ID, "status": decision.Status, "summary": decision.Summary,
	}); err != nil {
		log.Warn("publish email status event failed", zap.Error(err))
	}
}

// GmailMailbox implements Mailbox on the Gmail API with bounded retries.
type GmailMailbox struct {
	Client *gmail.Service
	Log    *zap.Logger
}

func (m *GmailMailbox) Recent(ctx context.Context) ([]*gmail.Message, uint64, error) {
	var resp *gmail.ListMessagesResponse
	err := retry(ctx, m.Log, 3, time.Second, func() error {
		var e error
		resp, e = m.Client.Users.Messages.List("me").Q(bootstrapQuery).MaxResults(50).Context(ctx).Do()
		return e
	})
	if err != nil {
		return nil, 0, err
	}
	profile, err := m.Client.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return nil, 0, err
	}
	return m.expand(ctx, resp.Messages), profile.HistoryId, nil
}

func (m *GmailMailbox) Since(ctx context.Context, startID uint64) ([]*gmail.Message, uint64, error) {
	var resp *gmail.ListHistoryResponse
	err := retry(ctx, m.Log, 3, time.Second, func() error {
		var e error
		resp, e = m.Client.Users.History.List("me").
			StartHistoryId(startID).
			HistoryTypes("messageAdded").
			Context(ctx).Do()
		return e
	})
	if err != nil {
		return nil, 0, err
	}
	var refs []*gmail.Message
	for _, h := range resp.History {
		for _, added := range h.MessagesAdded {
			if added.Message != nil {
				refs = append(refs, added.Message)
			}
		}
	}
	return m.expand(ctx, refs), resp.HistoryId, nil
}

// expand fetches full bodies and headers; messages that keep failing are skipped.
func (m *GmailMailbox) expand(ctx context.Context, refs []*gmail.Message) []*gmail.Message {
	var full []*gmail.Message
	for _, ref := range refs {
		var msg *gmail.Message
		err := retry(ctx, m.Log, 2, 500*time.Millisecond, func() error {
			var e error
			msg, e = m.Client.Users.Messages.Get("me", ref.Id).Context(ctx).Do()
			return e
		})
		if err == nil {
			full = append(full, msg)
		}
	}
	return full
}

// retry runs f with exponential backoff. An expired history id fails fast so
// the caller can fall back to a full sync.
func retry(ctx context.Context, log *zap.Logger, attempts int, sleep time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		if isHistoryExpiredError(err) {
			return err
		}
		log.Warn("gmail api error, retrying", zap.Error(err), zap.Duration("backoff", sleep))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}

func isHistoryExpiredError(err error) bool {
	var gErr *googleapi.Error
	return errors.As(err, &gErr) && gErr.Code == http.StatusNotFound
}

func parseHeaders(msg *gmail.Message) map[string]string {
	res := make(map[string]string)
	if msg.Payload == nil {
		return res
	}
	for _, h := range msg.Payload.Headers {
		res[h.Name] = h.Value
	}
	return res
}

// getEmailBody prefers the top-level body, then text/plain, then text/html parts.
func getEmailBody(msg *gmail.Message) string {
	if msg.Payload == nil {
		return ""
	}
	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		return decodeBody(msg.Payload.Body.Data)
	}
	for _, mime := range []string{"text/plain", "text/html"} {
		for _, part := range msg.Payload.Parts {
			if part.MimeType == mime && part.Body != nil && part.Body.Data != "" {
				return decodeBody(part.Body.Data)
			}
		}
	}
	return ""
}

func decodeBody(data string) string {
	d, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail sometimes omits padding.
		d, _ = base64.RawURLEncoding.DecodeString(data)
	}
	return string(d)
}
