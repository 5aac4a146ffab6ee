package mailer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Rajini967/CRM/internal/logger"
	"github.com/Rajini967/CRM/internal/spreadsheet"
)

// Outcome statuses recorded per row.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// maxReportedErrors caps the error lines returned to the client; the rest
// collapse into a single "+N more" line.
const maxReportedErrors = 50

// Outcome is the per-row result of one send attempt, immutable once recorded.
type Outcome struct {
	Recipient string
	Subject   string
	Status    string
	Error     string
	SentAt    time.Time
}

// OutcomeRecorder persists one Outcome. Recording is best effort: the
// pipeline logs a warning on failure and carries on.
type OutcomeRecorder interface {
	Record(ctx context.Context, outcome Outcome) error
}

// BatchResult aggregates all outcomes of one bulk send request.
type BatchResult struct {
	Success int
	Failed  int
	Total   int
	Errors  []string
}

// ReportableErrors returns the error lines for the HTTP response, truncated
// to the first maxReportedErrors entries plus a summary line when more exist.
func (r BatchResult) ReportableErrors() []string {
	if len(r.Errors) <= maxReportedErrors {
		return r.Errors
	}
	capped := make([]string, maxReportedErrors, maxReportedErrors+1)
	copy(capped, r.Errors[:maxReportedErrors])
	return append(capped, fmt.Sprintf("+%d more", len(r.Errors)-maxReportedErrors))
}

// BatchInput is everything the pipeline needs for one request: the parsed
// sheet and the already template-resolved subject and bodies.
type BatchInput struct {
	Sheet       *spreadsheet.Sheet
	Subject     string
	BodyHTML    string
	BodyText    string
	Attachments []Attachment
}

// BatchSender runs the sequential per-row send loop. One instance serves one
// request; there is no cross-request coordination.
type BatchSender struct {
	transport Transport
	recorder  OutcomeRecorder
	pacer     Pacer
}

func NewBatchSender(transport Transport, recorder OutcomeRecorder, pacer Pacer) *BatchSender {
	return &BatchSender{
		transport: transport,
		recorder:  recorder,
		pacer:     pacer,
	}
}

// Run processes every row of the sheet in file order. Rows with an invalid
// address are recorded as failed without reaching the transport; transport
// failures are recorded and never abort the batch. Consecutive transport
// attempts are separated by the pacer.
func (s *BatchSender) Run(ctx context.Context, in BatchInput) BatchResult {
	result := BatchResult{Total: len(in.Sheet.Rows)}
	attempted := false

	for _, row := range in.Sheet.Rows {
		address := row.Email(in.Sheet.EmailColumn)
		if !IsValidAddress(address) {
			line := fmt.Sprintf("row %d: invalid email address %q", row.Number, address)
			result.Failed++
			result.Errors = append(result.Errors, line)
			s.record(ctx, Outcome{
				Recipient: address,
				Subject:   in.Subject,
				Status:    StatusFailed,
				Error:     line,
			})
			continue
		}

		if attempted {
			s.pacer.Pause()
		}
		attempted = true

		msg := &Message{
			To:          address,
			Subject:     Substitute(in.Subject, row.Values),
			HTMLBody:    Substitute(in.BodyHTML, row.Values),
			TextBody:    Substitute(in.BodyText, row.Values),
			Attachments: in.Attachments,
		}

		if err := s.transport.Send(ctx, msg); err != nil {
			line := fmt.Sprintf("row %d (%s): %s", row.Number, address, err.Error())
			result.Failed++
			result.Errors = append(result.Errors, line)
			s.record(ctx, Outcome{
				Recipient: address,
				Subject:   msg.Subject,
				Status:    StatusFailed,
				Error:     err.Error(),
			})
			continue
		}

		result.Success++
		s.record(ctx, Outcome{
			Recipient: address,
			Subject:   msg.Subject,
			Status:    StatusSent,
			SentAt:    time.Now().UTC(),
		})
	}

	return result
}

func (s *BatchSender) record(ctx context.Context, outcome Outcome) {
	if err := s.recorder.Record(ctx, outcome); err != nil {
		logger.Warn("failed to record send outcome",
			zap.Error(err),
			zap.String("recipient", outcome.Recipient),
			zap.String("status", outcome.Status),
		)
	}
}
