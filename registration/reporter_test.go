// FILE: registration/reporter_test.go
package registration

import (
	"errors"
	"testing"
	"time"
)

type failingSubmitter struct{ fail bool }

func (f failingSubmitter) Submit(reportID string, rendered string, format ReportFormat) error {
	if f.fail {
		return errors.New("injected submit failure")
	}
	return nil
}

func TestGenerateAndSubmitDailyReport(t *testing.T) {
	at := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	r := NewRegistry(nil, nil)
	rp := NewReporter(r, failingSubmitter{}, nil)

	rec := rp.GenerateDailyReport(DailyReportContent{
		ReportDate: at, AccountID: "acct1", StrategyCount: 2,
		TotalOrders: 100, TotalCancels: 10, TotalTrades: 90, CancelRatio: 0.1,
	}, at)
	if rec.Status != ReportStatusPending {
		t.Fatalf("expected PENDING, got %s", rec.Status)
	}

	if err := rp.SubmitReport(rec.ReportID, FormatJSON, at); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	got, ok := rp.GetReport(rec.ReportID)
	if !ok || got.Status != ReportStatusSubmitted {
		t.Fatalf("expected SUBMITTED, got %+v", got)
	}
}

func TestRetryFailedReportsCapsAtThreeAttempts(t *testing.T) {
	at := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	r := NewRegistry(nil, nil)
	rp := NewReporter(r, failingSubmitter{fail: true}, nil)

	rec := rp.GenerateExceptionReport(ExceptionReportContent{
		AccountID: "acct1", EventType: "THROTTLE_REJECT", Description: "too many orders", OccurredAt: at,
	}, at)

	if err := rp.SubmitReport(rec.ReportID, FormatText, at); err == nil {
		t.Fatalf("expected submit failure")
	}

	for i := 0; i < 5; i++ {
		rp.RetryFailedReports(FormatText, at)
	}

	got, _ := rp.GetReport(rec.ReportID)
	if got.RetryCount > maxRetries {
		t.Fatalf("expected retry count capped at %d, got %d", maxRetries, got.RetryCount)
	}
	if got.Status != ReportStatusFailed {
		t.Fatalf("expected report to remain FAILED, got %s", got.Status)
	}
}

func TestExportFormatsAllSucceed(t *testing.T) {
	at := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	r := NewRegistry(nil, nil)
	rp := NewReporter(r, NoopSubmitter{}, nil)
	rec := rp.GenerateDailyReport(DailyReportContent{ReportDate: at, AccountID: "acct1"}, at)

	for _, format := range []ReportFormat{FormatJSON, FormatXML, FormatCSV, FormatText} {
		out, err := rp.ExportReport(rec.ReportID, format)
		if err != nil {
			t.Fatalf("format %s: unexpected error: %v", format, err)
		}
		if out == "" {
			t.Fatalf("format %s: expected non-empty output", format)
		}
	}
}
