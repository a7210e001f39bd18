// Package notify composes and dispatches the two report emails: the teacher
// summary with attachments and the per-student attendance warning. Recipient
// selection is a pure step so it can be tested apart from the fan-out.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"defaulter-server-go/dataset"
	"defaulter-server-go/email"
	"defaulter-server-go/models"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

// DeliveryError records one recipient's failed send.
type DeliveryError struct {
	Recipient string
	Cause     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Recipient, e.Cause)
}

func (e *DeliveryError) Unwrap() error { return e.Cause }

// DispatchResult summarizes a warning fan-out. Failures never abort the
// batch; every recipient is attempted.
type DispatchResult struct {
	SentCount int
	Failures  []*DeliveryError
}

// TeacherSummary carries everything needed to email the instructor their
// report.
type TeacherSummary struct {
	TeacherName  string
	TeacherEmail string
	Details      models.TeacherDetails
	Summary      models.Summary

	ReportName string
	Report     []byte

	// Optional graph document.
	GraphName string
	Graph     []byte
}

// Dispatcher sends report emails through an injected transport. Construct it
// once at startup with explicit configuration; it holds no request state.
type Dispatcher struct {
	mailer      email.Mailer
	fromName    string
	sendTimeout time.Duration
}

// NewDispatcher creates a dispatcher. sendTimeout bounds each individual
// send; zero disables the deadline.
func NewDispatcher(mailer email.Mailer, fromName string, sendTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		mailer:      mailer,
		fromName:    fromName,
		sendTimeout: sendTimeout,
	}
}

func (d *Dispatcher) send(ctx context.Context, msg *email.Message) error {
	if !msg.HasRecipients() {
		return errors.New("message has no recipients")
	}
	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
	}
	return d.mailer.Send(ctx, msg)
}

// SendTeacherSummary emails the aggregate counts to the teacher with the
// results workbook (and graph document, when present) attached.
func (d *Dispatcher) SendTeacherSummary(ctx context.Context, ts TeacherSummary) error {
	var body bytes.Buffer
	if err := teacherSummaryTmpl.Execute(&body, ts); err != nil {
		return fmt.Errorf("failed to render teacher summary: %w", err)
	}

	msg := &email.Message{
		To:          []string{ts.TeacherEmail},
		Subject:     fmt.Sprintf("Student Defaulter Analysis Report - %s", ts.Details.ClassName),
		HTMLContent: body.String(),
	}
	if len(ts.Report) > 0 {
		msg.Attachments = append(msg.Attachments, email.Attachment{
			Filename:    ts.ReportName,
			ContentType: xlsxContentType,
			Content:     ts.Report,
		})
	}
	if len(ts.Graph) > 0 {
		msg.Attachments = append(msg.Attachments, email.Attachment{
			Filename:    ts.GraphName,
			ContentType: pdfContentType,
			Content:     ts.Graph,
		})
	}

	if err := d.send(ctx, msg); err != nil {
		return &DeliveryError{Recipient: ts.TeacherEmail, Cause: err}
	}
	return nil
}

// DefaulterRecipients selects the email addresses of students classified as
// Defaulter. Rows without an Email value are skipped. Pure; no I/O.
func DefaulterRecipients(ds *dataset.Dataset) []string {
	clsIdx, ok := ds.ColumnIndex(dataset.ColClassification)
	if !ok {
		return nil
	}
	emailIdx, ok := ds.ColumnIndex(dataset.ColEmail)
	if !ok {
		return nil
	}

	var recipients []string
	for i := range ds.Rows {
		if ds.Cell(i, clsIdx) != dataset.Defaulter {
			continue
		}
		addr := strings.TrimSpace(ds.Cell(i, emailIdx))
		if addr == "" {
			continue
		}
		recipients = append(recipients, addr)
	}
	return recipients
}

// SendStudentWarnings sends the attendance warning to each recipient in
// turn. One recipient's failure never stops the rest; every failure is
// captured with the responsible address. No retries.
func (d *Dispatcher) SendStudentWarnings(ctx context.Context, recipients []string, threshold float64) DispatchResult {
	var body bytes.Buffer
	data := struct {
		Threshold float64
		FromName  string
	}{Threshold: threshold, FromName: d.fromName}
	if err := studentWarningTmpl.Execute(&body, data); err != nil {
		// Template data is fixed at compile time; treat failure as fatal for
		// the whole batch since no message can be built.
		result := DispatchResult{}
		for _, r := range recipients {
			result.Failures = append(result.Failures, &DeliveryError{Recipient: r, Cause: err})
		}
		return result
	}

	var result DispatchResult
	for _, recipient := range recipients {
		msg := &email.Message{
			To:          []string{recipient},
			Subject:     "Attendance Warning Notice",
			HTMLContent: body.String(),
		}
		if err := d.send(ctx, msg); err != nil {
			log.Printf("Error sending warning to %s: %v", recipient, err)
			result.Failures = append(result.Failures, &DeliveryError{Recipient: recipient, Cause: err})
			continue
		}
		result.SentCount++
	}
	return result
}
