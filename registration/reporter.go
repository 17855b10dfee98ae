// FILE: registration/reporter.go
// Package registration – RegulatoryReporter generates and submits the three
// report kinds the rules require: daily, exception, and change reports, with
// bounded retry and multi-format export (JSON/XML/CSV/TEXT).
package registration

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type ReportType string

const (
	ReportDaily        ReportType = "DAILY"
	ReportException    ReportType = "EXCEPTION"
	ReportChange       ReportType = "CHANGE"
	ReportRegistration ReportType = "REGISTRATION"
)

type ReportFormat string

const (
	FormatJSON ReportFormat = "JSON"
	FormatXML  ReportFormat = "XML"
	FormatCSV  ReportFormat = "CSV"
	FormatText ReportFormat = "TEXT"
)

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "PENDING"
	ReportStatusSubmitted ReportStatus = "SUBMITTED"
	ReportStatusAccepted  ReportStatus = "ACCEPTED"
	ReportStatusRejected  ReportStatus = "REJECTED"
	ReportStatusFailed    ReportStatus = "FAILED"
)

const maxRetries = 3

// ReportRecord is one generated report, mutable through its submission
// lifecycle (unlike RegistrationInfo, a report's status does change in
// place: it tracks one physical artifact being retried, not a versioned
// fact).
type ReportRecord struct {
	ReportID      string
	ReportType    ReportType
	ReportDate    time.Time
	CreatedAt     time.Time
	SubmittedAt   time.Time
	Status        ReportStatus
	StatusMessage string
	Content       map[string]interface{}
	ContentHash   string
	AccountID     string
	RetryCount    int
}

// DailyReportContent is the §4.9 daily-report payload.
type DailyReportContent struct {
	ReportDate      time.Time
	AccountID       string
	StrategyCount   int
	TotalOrders     int64
	TotalCancels    int64
	TotalTrades     int64
	CancelRatio     float64
	MaxCancelFreq   float64
	MaxOrdersPerSec float64
}

// Submitter delivers a rendered report to the regulator's endpoint; the
// in-process default just records success, so tests never need network
// access.
type Submitter interface {
	Submit(reportID string, rendered string, format ReportFormat) error
}

// NoopSubmitter always succeeds; used by tests and local development.
type NoopSubmitter struct{}

func (NoopSubmitter) Submit(reportID string, rendered string, format ReportFormat) error { return nil }

// Reporter generates, submits, and exports regulatory reports.
type Reporter struct {
	mu sync.Mutex

	registry  *Registry
	submitter Submitter
	reports   map[string]*ReportRecord
	audit     AuditCallback
}

func NewReporter(registry *Registry, submitter Submitter, audit AuditCallback) *Reporter {
	if submitter == nil {
		submitter = NoopSubmitter{}
	}
	return &Reporter{registry: registry, submitter: submitter, reports: map[string]*ReportRecord{}, audit: audit}
}

func reportID(reportType ReportType, accountID string, at time.Time) string {
	data := fmt.Sprintf("%s:%s:%s", reportType, accountID, at.Format(time.RFC3339Nano))
	sum := sha256.Sum256([]byte(data))
	return fmt.Sprintf("RPT-%s-%s", reportType, upper(hex.EncodeToString(sum[:])[:10]))
}

func contentHash(content map[string]interface{}) string {
	data, _ := json.Marshal(orderedContent(content))
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// orderedContent returns m unchanged: json.Marshal already sorts map keys,
// which is what gives the hash a deterministic key order; the call only
// makes that explicit at the call site.
func orderedContent(m map[string]interface{}) map[string]interface{} { return m }

// GenerateDailyReport builds a PENDING daily ReportRecord from content.
func (rp *Reporter) GenerateDailyReport(content DailyReportContent, at time.Time) *ReportRecord {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	c := map[string]interface{}{
		"report_date":        content.ReportDate.Format("2006-01-02"),
		"account_id":         content.AccountID,
		"strategy_count":     content.StrategyCount,
		"total_orders":       content.TotalOrders,
		"total_cancels":      content.TotalCancels,
		"total_trades":       content.TotalTrades,
		"cancel_ratio":       content.CancelRatio,
		"max_cancel_freq":    content.MaxCancelFreq,
		"max_orders_per_sec": content.MaxOrdersPerSec,
	}
	rec := &ReportRecord{
		ReportID: reportID(ReportDaily, content.AccountID, at), ReportType: ReportDaily,
		ReportDate: content.ReportDate, CreatedAt: at, Status: ReportStatusPending,
		Content: c, ContentHash: contentHash(c), AccountID: content.AccountID,
	}
	rp.reports[rec.ReportID] = rec
	return rec
}

// ExceptionReportContent is the §4.9 exception-report payload: triggered
// whenever a throttle REJECT, HFT detection, or kill-switch fire needs
// regulator notice within the 15-minute SLA.
type ExceptionReportContent struct {
	AccountID   string
	EventType   string
	Description string
	OccurredAt  time.Time
}

// GenerateExceptionReport builds a PENDING exception ReportRecord.
func (rp *Reporter) GenerateExceptionReport(content ExceptionReportContent, at time.Time) *ReportRecord {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	c := map[string]interface{}{
		"account_id":  content.AccountID,
		"event_type":  content.EventType,
		"description": content.Description,
		"occurred_at": content.OccurredAt.Format(time.RFC3339),
	}
	rec := &ReportRecord{
		ReportID: reportID(ReportException, content.AccountID, at), ReportType: ReportException,
		ReportDate: at, CreatedAt: at, Status: ReportStatusPending,
		Content: c, ContentHash: contentHash(c), AccountID: content.AccountID,
	}
	rp.reports[rec.ReportID] = rec
	return rec
}

// GenerateChangeReport builds a PENDING change ReportRecord from the
// registry's recent Change rows for accountID, within the 24-hour SLA.
func (rp *Reporter) GenerateChangeReport(accountID string, at time.Time) *ReportRecord {
	changes := rp.registry.GetChanges(accountID, 100)
	rp.mu.Lock()
	defer rp.mu.Unlock()

	changeList := make([]map[string]interface{}, 0, len(changes))
	for _, c := range changes {
		changeList = append(changeList, map[string]interface{}{
			"change_type": c.ChangeType, "old_value": c.OldValue, "new_value": c.NewValue,
			"changed_at": c.ChangedAt.Format(time.RFC3339), "reason": c.Reason,
		})
	}
	content := map[string]interface{}{"account_id": accountID, "changes": changeList}
	rec := &ReportRecord{
		ReportID: reportID(ReportChange, accountID, at), ReportType: ReportChange,
		ReportDate: at, CreatedAt: at, Status: ReportStatusPending,
		Content: content, ContentHash: contentHash(content), AccountID: accountID,
	}
	rp.reports[rec.ReportID] = rec
	return rec
}

// SubmitReport renders the report in format and hands it to the Submitter,
// updating status on success or failure.
func (rp *Reporter) SubmitReport(reportID string, format ReportFormat, at time.Time) error {
	rp.mu.Lock()
	rec, ok := rp.reports[reportID]
	rp.mu.Unlock()
	if !ok {
		return fmt.Errorf("registration: no report %s", reportID)
	}

	rendered, err := rp.ExportReport(reportID, format)
	if err != nil {
		return err
	}

	err = rp.submitter.Submit(reportID, rendered, format)

	rp.mu.Lock()
	defer rp.mu.Unlock()
	if err != nil {
		rec.Status = ReportStatusFailed
		rec.StatusMessage = err.Error()
		rec.RetryCount++
		if rp.audit != nil {
			rp.audit(AuditEvent{EventType: "REPORT_FAILED", AccountID: rec.AccountID,
				Details: map[string]interface{}{"report_id": rec.ReportID, "report_type": string(rec.ReportType), "error": err.Error()}, TS: at})
		}
		return err
	}
	rec.Status = ReportStatusSubmitted
	rec.SubmittedAt = at
	if rp.audit != nil {
		rp.audit(AuditEvent{EventType: "REPORT_SUBMITTED", AccountID: rec.AccountID,
			Details: map[string]interface{}{"report_id": rec.ReportID, "report_type": string(rec.ReportType)}, TS: at})
	}
	return nil
}

// RetryFailedReports resubmits every FAILED report with RetryCount < 3,
// returning the count of reports that were retried.
func (rp *Reporter) RetryFailedReports(format ReportFormat, at time.Time) int {
	rp.mu.Lock()
	var toRetry []string
	for id, rec := range rp.reports {
		if rec.Status == ReportStatusFailed && rec.RetryCount < maxRetries {
			toRetry = append(toRetry, id)
		}
	}
	rp.mu.Unlock()

	sort.Strings(toRetry)
	for _, id := range toRetry {
		_ = rp.SubmitReport(id, format, at)
	}
	return len(toRetry)
}

// GetReport returns (record, true) or (nil, false).
func (rp *Reporter) GetReport(reportID string) (*ReportRecord, bool) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rec, ok := rp.reports[reportID]
	return rec, ok
}

// ExportReport renders a report in the requested format.
func (rp *Reporter) ExportReport(reportID string, format ReportFormat) (string, error) {
	rp.mu.Lock()
	rec, ok := rp.reports[reportID]
	rp.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("registration: no report %s", reportID)
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(rec, "", "  ")
		return string(data), err
	case FormatCSV:
		return exportCSV(rec), nil
	case FormatXML:
		return exportXML(rec), nil
	case FormatText:
		return exportText(rec), nil
	default:
		return "", fmt.Errorf("registration: unknown report format %s", format)
	}
}

func exportCSV(rec *ReportRecord) string {
	var b strings.Builder
	keys := sortedKeys(rec.Content)
	b.WriteString("field,value\n")
	fmt.Fprintf(&b, "report_id,%s\n", rec.ReportID)
	fmt.Fprintf(&b, "report_type,%s\n", rec.ReportType)
	fmt.Fprintf(&b, "status,%s\n", rec.Status)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s,%v\n", k, rec.Content[k])
	}
	return b.String()
}

func exportXML(rec *ReportRecord) string {
	var b strings.Builder
	b.WriteString("<report>\n")
	fmt.Fprintf(&b, "  <report_id>%s</report_id>\n", rec.ReportID)
	fmt.Fprintf(&b, "  <report_type>%s</report_type>\n", rec.ReportType)
	fmt.Fprintf(&b, "  <status>%s</status>\n", rec.Status)
	b.WriteString("  <content>\n")
	for _, k := range sortedKeys(rec.Content) {
		fmt.Fprintf(&b, "    <%s>%v</%s>\n", k, rec.Content[k], k)
	}
	b.WriteString("  </content>\n")
	b.WriteString("</report>\n")
	return b.String()
}

func exportText(rec *ReportRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report %s (%s) — %s\n", rec.ReportID, rec.ReportType, rec.Status)
	for _, k := range sortedKeys(rec.Content) {
		fmt.Fprintf(&b, "  %s: %v\n", k, rec.Content[k])
	}
	return b.String()
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Statistics returns a small summary for dashboards.
func (rp *Reporter) Statistics() map[string]interface{} {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	counts := map[string]int{}
	for _, rec := range rp.reports {
		counts[string(rec.Status)]++
	}
	return map[string]interface{}{"total_reports": len(rp.reports), "status_distribution": counts}
}
