package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defaulter-server-go/dataset"
	"defaulter-server-go/email"
	"defaulter-server-go/models"
)

// failingMailer records sent messages and fails for configured addresses.
type failingMailer struct {
	sent []*email.Message
	fail map[string]bool
}

func (m *failingMailer) Send(_ context.Context, msg *email.Message) error {
	for _, to := range msg.To {
		if m.fail[to] {
			return fmt.Errorf("550 no such mailbox: %s", to)
		}
	}
	m.sent = append(m.sent, msg)
	return nil
}

func classifiedDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Columns: []string{dataset.ColName, dataset.ColEmail, dataset.ColAttendance, dataset.ColClassification},
		Rows: [][]string{
			{"Alice", "valid@x.com", "60", dataset.Defaulter},
			{"Bob", "bob@x.com", "80", dataset.NonDefaulter},
			{"Cara", "", "50", dataset.Defaulter},
			{"Dan", "bad-address", "40", dataset.Defaulter},
		},
	}
}

func TestDefaulterRecipients(t *testing.T) {
	recipients := DefaulterRecipients(classifiedDataset())

	// Bob is not a defaulter and Cara has no address.
	assert.Equal(t, []string{"valid@x.com", "bad-address"}, recipients)
}

func TestDefaulterRecipientsWithoutColumns(t *testing.T) {
	ds := &dataset.Dataset{Columns: []string{dataset.ColName}}
	assert.Empty(t, DefaulterRecipients(ds))
}

func TestSendStudentWarningsIsolatesFailures(t *testing.T) {
	mailer := &failingMailer{fail: map[string]bool{"bad-address": true}}
	d := NewDispatcher(mailer, "Ms. Rao", 0)

	result := d.SendStudentWarnings(context.Background(), []string{"valid@x.com", "bad-address"}, 75)

	assert.Equal(t, 1, result.SentCount)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "bad-address", result.Failures[0].Recipient)
	assert.Contains(t, result.Failures[0].Error(), "bad-address")

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"valid@x.com"}, mailer.sent[0].To)
}

func TestSendStudentWarningsUsesActualThreshold(t *testing.T) {
	mailer := &failingMailer{}
	d := NewDispatcher(mailer, "Ms. Rao", 0)

	result := d.SendStudentWarnings(context.Background(), []string{"valid@x.com"}, 65)

	assert.Equal(t, 1, result.SentCount)
	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "Attendance Warning Notice", msg.Subject)
	assert.Contains(t, msg.HTMLContent, "65%")
	assert.NotContains(t, msg.HTMLContent, "75%")
	assert.Empty(t, msg.Attachments)
}

func TestSendTeacherSummary(t *testing.T) {
	mailer := &failingMailer{}
	d := NewDispatcher(mailer, "Ms. Rao", 0)

	ts := TeacherSummary{
		TeacherName:  "Ms. Rao",
		TeacherEmail: "rao@college.edu",
		Details: models.TeacherDetails{
			Designation: "Assistant Professor",
			ClassName:   "TY CSE",
			Department:  "CSE",
			CollegeName: "ADCET",
		},
		Summary: models.Summary{
			TotalStudents:     30,
			DefaulterCount:    7,
			NonDefaulterCount: 23,
			Threshold:         75,
		},
		ReportName: "results_20250101_120000.xlsx",
		Report:     []byte("xlsx-bytes"),
		GraphName:  "Attendance_Report_TY_CSE_20250101_120000.pdf",
		Graph:      []byte("%PDF-fake"),
	}
	require.NoError(t, d.SendTeacherSummary(context.Background(), ts))

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, []string{"rao@college.edu"}, msg.To)
	assert.Equal(t, "Student Defaulter Analysis Report - TY CSE", msg.Subject)
	assert.Contains(t, msg.HTMLContent, "30")
	assert.Contains(t, msg.HTMLContent, "7")
	assert.Contains(t, msg.HTMLContent, "23")
	assert.Contains(t, msg.HTMLContent, "75%")
	require.Len(t, msg.Attachments, 2)
	assert.Equal(t, ts.ReportName, msg.Attachments[0].Filename)
	assert.Equal(t, ts.GraphName, msg.Attachments[1].Filename)
}

func TestSendTeacherSummarySkipsAbsentGraph(t *testing.T) {
	mailer := &failingMailer{}
	d := NewDispatcher(mailer, "Ms. Rao", 0)

	err := d.SendTeacherSummary(context.Background(), TeacherSummary{
		TeacherEmail: "rao@college.edu",
		ReportName:   "results_x.xlsx",
		Report:       []byte("xlsx-bytes"),
	})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Len(t, mailer.sent[0].Attachments, 1)
}

func TestSendTeacherSummaryDeliveryError(t *testing.T) {
	mailer := &failingMailer{fail: map[string]bool{"rao@college.edu": true}}
	d := NewDispatcher(mailer, "Ms. Rao", 0)

	err := d.SendTeacherSummary(context.Background(), TeacherSummary{TeacherEmail: "rao@college.edu"})
	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, "rao@college.edu", deliveryErr.Recipient)
}

func TestSendStudentWarningsNoRetries(t *testing.T) {
	calls := 0
	mailer := mailerFunc(func(context.Context, *email.Message) error {
		calls++
		return errors.New("transient")
	})
	d := NewDispatcher(mailer, "Ms. Rao", 0)

	result := d.SendStudentWarnings(context.Background(), []string{"a@x.com"}, 75)

	assert.Equal(t, 1, calls)
	assert.Len(t, result.Failures, 1)
}

type mailerFunc func(ctx context.Context, msg *email.Message) error

func (f mailerFunc) Send(ctx context.Context, msg *email.Message) error { return f(ctx, msg) }
