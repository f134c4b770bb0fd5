package services

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/justsurfingit/career-tracker/internal/events"
	"github.com/justsurfingit/career-tracker/internal/models"
	"github.com/justsurfingit/career-tracker/internal/repository/memrepo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

func message(id, from, subject, body string) *gmail.Message {
	return &gmail.Message{
		Id: id,
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: from},
				{Name: "Subject", Value: subject},
			},
			Parts: []*gmail.MessagePart{
				{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte("<p>html</p>"))}},
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte(body))}},
			},
		},
	}
}

type emailFixture struct {
	svc     *EmailService
	jobs    *memrepo.Jobs
	state   *memrepo.EmailState
	mailbox *fakeMailbox
	llm     *fakeClassifier
	pub     *recordingPublisher
}

func newEmailFixture(t *testing.T, historyID uint64) *emailFixture {
	t.Helper()
	f := &emailFixture{
		jobs:    memrepo.NewJobs(),
		state:   memrepo.NewEmailState(historyID),
		mailbox: &fakeMailbox{historyID: 500},
		llm:     &fakeClassifier{role: -1, status: `{"status": "INTERVIEW", "summary": "Phone screen booked."}`},
		pub:     &recordingPublisher{},
	}
	f.svc = NewEmailService(f.state, f.jobs, f.llm, f.mailbox, f.pub, nopLog)
	return f
}

func (f *emailFixture) addJob(t *testing.T, company, title string) *models.Job {
	t.Helper()
	c, err := f.jobs.FindOrCreateCompany(context.Background(), company)
	require.NoError(t, err)
	j := &models.Job{CompanyID: c.ID, Company: *c, Title: title, Status: models.StatusApplied}
	require.NoError(t, f.jobs.CreateJob(context.Background(), j))
	return j
}

func TestEmailService_BootstrapUpdatesSingleActiveJob(t *testing.T) {
	f := newEmailFixture(t, 0)
	job := f.addJob(t, "Stripe", "Backend Engineer")
	f.mailbox.recent = []*gmail.Message{
		message("m1", "Stripe Recruiting <jobs@stripe.com>", "Next steps", "Let's talk"),
		message("m2", "newsletter@shop.com", "Sale", "50% off"),
	}

	require.NoError(t, f.svc.SyncEmails(context.Background()))

	assert.Equal(t, 1, f.mailbox.recentCalls)
	assert.Equal(t, uint64(500), f.state.User.LastHistoryID)
	assert.True(t, f.state.Processed["m1"])
	assert.True(t, f.state.Processed["m2"])

	require.Len(t, f.jobs.Events, 1)
	ev := f.jobs.Events[0]
	assert.Equal(t, job.ID, ev.JobID)
	assert.Equal(t, models.EventEmailUpdate, ev.EventType)
	assert.Equal(t, models.StatusInterview, f.jobs.ByID[job.ID].Status)
	assert.Equal(t, []string{events.EmailStatusDetected}, f.pub.types())
}

func TestEmailService_IncrementalSkipsProcessedAndAmbiguous(t *testing.T) {
	f := newEmailFixture(t, 100)
	f.addJob(t, "Stripe", "Backend Engineer")
	f.addJob(t, "Stripe", "SRE")
	f.state.Processed["old"] = true
	f.mailbox.since = []*gmail.Message{
		message("old", "jobs@stripe.com", "Stripe update", "x"),
		message("new", "jobs@stripe.com", "Stripe update", "y"),
	}

	require.NoError(t, f.svc.SyncEmails(context.Background()))

	assert.Equal(t, 1, f.mailbox.sinceCalls)
	assert.Equal(t, uint64(100), f.mailbox.lastStartID)
	assert.Equal(t, 0, f.mailbox.recentCalls)
	assert.Empty(t, f.jobs.Events, "classifier could not pick a job")
	assert.True(t, f.state.Processed["new"])
}

func TestEmailService_PicksRoleWhenAmbiguous(t *testing.T) {
	f := newEmailFixture(t, 100)
	f.addJob(t, "Stripe", "Backend Engineer")
	sre := f.addJob(t, "Stripe", "SRE")
	f.llm.role = 1
	f.mailbox.since = []*gmail.Message{message("m", "jobs@stripe.com", "Your SRE application", "z")}

	require.NoError(t, f.svc.SyncEmails(context.Background()))
	require.Len(t, f.jobs.Events, 1)
	assert.Equal(t, sre.ID, f.jobs.Events[0].JobID)
}

func TestEmailService_ExpiredHistoryFallsBackToFullSync(t *testing.T) {
	f := newEmailFixture(t, 100)
	f.mailbox.sinceErr = &googleapi.Error{Code: http.StatusNotFound}

	require.NoError(t, f.svc.SyncEmails(context.Background()))
	assert.Equal(t, 1, f.mailbox.recentCalls)
	assert.Equal(t, uint64(500), f.state.User.LastHistoryID)
}

func TestEmailService_NoChangeStatusIsIgnored(t *testing.T) {
	f := newEmailFixture(t, 0)
	f.addJob(t, "Stripe", "Backend Engineer")
	f.llm.status = `{"status": "NO_CHANGE", "summary": "Automated receipt."}`
	f.mailbox.recent = []*gmail.Message{message("m", "jobs@stripe.com", "Thanks for applying", "")}

	require.NoError(t, f.svc.SyncEmails(context.Background()))
	assert.Empty(t, f.jobs.Events)
}

func TestGetEmailBodyPrefersPlainText(t *testing.T) {
	msg := message("m", "a@b.com", "s", "plain body")
	assert.Equal(t, "plain body", getEmailBody(msg))

	msg.Payload.Body = &gmail.MessagePartBody{Data: base64.RawURLEncoding.EncodeToString([]byte("top"))}
	assert.Equal(t, "top", getEmailBody(msg))

	assert.Empty(t, getEmailBody(&gmail.Message{}))
}

func TestMatchCompany(t *testing.T) {
	companies := []models.Company{{ID: 1, Name: "Go"}, {ID: 2, Name: "Stripe"}, {ID: 3, Name: "Jane Street"}}

	tests := []struct {
		name, subject, sender string
		want                  uint
	}{
		{"subject", "Your application to Stripe", "noreply@greenhouse.io", 2},
		{"display name", "Update", "Stripe Recruiting <noreply@greenhouse.io>", 2},
		{"domain", "Update", "talent@janestreet.com", 3},
		{"short names ignored", "Go team says hi", "x@y.com", 0},
		{"no match", "Hello", "friend@mail.com", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchCompany(companies, tt.subject, tt.sender)
			if tt.want == 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestCleanJSONAndRoleIndex(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `[1,2]`, cleanJSON("Sure! [1,2] hope that helps"))
	assert.Equal(t, 1, parseRoleIndex(" 1\n", 3))
	assert.Equal(t, -1, parseRoleIndex("3", 3))
	assert.Equal(t, -1, parseRoleIndex("none", 3))
}
