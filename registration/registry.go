// FILE: registration/registry.go
// Package registration implements the account/strategy备案 (regulatory
// registration) registry: immutable registration records, a change audit
// trail, and a file-backed persistence layer with write-temp-then-rename
// semantics.
package registration

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Status is the lifecycle state of an account registration.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusSuspended Status = "SUSPENDED"
	StatusExpired   Status = "EXPIRED"
	StatusRevoked   Status = "REVOKED"
)

// RegistrationInfo is immutable once constructed; status changes produce a
// new value via withStatus, never an in-place mutation.
type RegistrationInfo struct {
	RegistrationID     string
	AccountID           string
	AccountType         string
	ResponsiblePerson   string
	ContactInfo         string
	RegisteredAt        time.Time
	Status              Status
	StatusReason        string
	ApprovedAt          time.Time
	ExpiresAt           time.Time
	Metadata            map[string]interface{}
}

func (r RegistrationInfo) withStatus(newStatus Status, reason string, at time.Time) RegistrationInfo {
	out := r
	out.Status = newStatus
	out.StatusReason = reason
	if newStatus == StatusApproved {
		out.ApprovedAt = at
	}
	return out
}

// StrategyRegistration is immutable once constructed.
type StrategyRegistration struct {
	StrategyID      string
	AccountID       string
	StrategyType    string
	StrategyName    string
	Description     string
	Version         string
	CodeHash        string
	RegisteredAt    time.Time
	IsActive        bool
	ParametersHash  string
	RiskLevel       int
	MaxPosition     int64
	MaxOrderFreq    int
}

// Change is one recorded mutation to a registration or strategy.
type Change struct {
	ChangeID       string
	RegistrationID string
	ChangeType     string
	OldValue       string
	NewValue       string
	ChangedAt      time.Time
	ChangedBy      string
	Reason         string
}

// AuditEvent is what the registry hands to an optional audit callback.
type AuditEvent struct {
	EventType      string
	RegistrationID string
	AccountID      string
	Details        map[string]interface{}
	TS             time.Time
}

// AuditCallback receives every registry mutation; wiring failures are
// swallowed (a failing audit sink must not block registration itself — mirror
// the caller re-emitting onto the durable bus separately).
type AuditCallback func(AuditEvent)

// Registry is the in-memory source of truth for a process; an optional
// Persister mirrors it to disk after every mutation.
type Registry struct {
	mu sync.Mutex

	registrations     map[string]RegistrationInfo     // accountID -> info
	strategies        map[string]StrategyRegistration // "accountID:strategyID" -> reg
	accountStrategies map[string][]string
	changes           []Change

	audit     AuditCallback
	persister *Persister
}

func NewRegistry(audit AuditCallback, persister *Persister) *Registry {
	r := &Registry{
		registrations:     map[string]RegistrationInfo{},
		strategies:        map[string]StrategyRegistration{},
		accountStrategies: map[string][]string{},
		audit:             audit,
		persister:         persister,
	}
	if persister != nil {
		if snap, err := persister.Load(); err == nil && snap != nil {
			r.registrations = snap.Registrations
			r.strategies = snap.Strategies
			r.accountStrategies = snap.AccountStrategies
		}
	}
	return r
}

func strategyKey(accountID, strategyID string) string { return accountID + ":" + strategyID }

func generateID(prefix, seed string, at time.Time) string {
	data := fmt.Sprintf("%s:%s", seed, at.Format(time.RFC3339Nano))
	sum := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%s-%s", prefix, upper(hex.EncodeToString(sum[:])[:12]))
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// RegisterAccount creates a new PENDING registration. Returns an error if the
// account already has one.
func (r *Registry) RegisterAccount(accountID, accountType, responsiblePerson, contactInfo string, metadata map[string]interface{}, at time.Time) (RegistrationInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.registrations[accountID]; exists {
		return RegistrationInfo{}, fmt.Errorf("registration: account %s already registered", accountID)
	}

	info := RegistrationInfo{
		RegistrationID:    generateID("REG", accountID, at),
		AccountID:         accountID,
		AccountType:       accountType,
		ResponsiblePerson: responsiblePerson,
		ContactInfo:       contactInfo,
		RegisteredAt:      at,
		Status:            StatusPending,
		Metadata:          metadata,
	}
	r.registrations[accountID] = info
	r.accountStrategies[accountID] = nil

	r.emitAudit("REGISTRATION_CREATED", info.RegistrationID, accountID,
		map[string]interface{}{"account_type": accountType, "responsible_person": responsiblePerson}, at)
	r.persist()
	return info, nil
}

// RegisterStrategy registers a strategy under an already-registered account.
// The account must be PENDING or APPROVED.
func (r *Registry) RegisterStrategy(accountID, strategyID, strategyType, name, description, version, codeHash string, riskLevel int, maxPosition int64, maxOrderFreq int, at time.Time) (StrategyRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.registrations[accountID]
	if !ok {
		return StrategyRegistration{}, fmt.Errorf("registration: account %s has no registration", accountID)
	}
	if info.Status != StatusApproved && info.Status != StatusPending {
		return StrategyRegistration{}, fmt.Errorf("registration: account %s status %s cannot register a strategy", accountID, info.Status)
	}

	key := strategyKey(accountID, strategyID)
	if _, exists := r.strategies[key]; exists {
		return StrategyRegistration{}, fmt.Errorf("registration: strategy %s already registered under account %s", strategyID, accountID)
	}
	if name == "" {
		name = strategyID
	}
	if version == "" {
		version = "1.0.0"
	}

	reg := StrategyRegistration{
		StrategyID: strategyID, AccountID: accountID, StrategyType: strategyType,
		StrategyName: name, Description: description, Version: version, CodeHash: codeHash,
		RegisteredAt: at, IsActive: true, RiskLevel: riskLevel, MaxPosition: maxPosition, MaxOrderFreq: maxOrderFreq,
	}
	r.strategies[key] = reg
	r.accountStrategies[accountID] = append(r.accountStrategies[accountID], strategyID)

	r.emitAudit("STRATEGY_REGISTERED", info.RegistrationID, accountID,
		map[string]interface{}{"strategy_id": strategyID, "strategy_type": strategyType, "version": version}, at)
	r.persist()
	return reg, nil
}

// UpdateRegistrationStatus produces a new immutable RegistrationInfo with the
// given status and records a Change row.
func (r *Registry) UpdateRegistrationStatus(accountID string, newStatus Status, reason, changedBy string, at time.Time) (RegistrationInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.registrations[accountID]
	if !ok {
		return RegistrationInfo{}, fmt.Errorf("registration: account %s has no registration", accountID)
	}

	newInfo := old.withStatus(newStatus, reason, at)
	r.registrations[accountID] = newInfo

	r.changes = append(r.changes, Change{
		ChangeID: generateID("CHG", accountID, at), RegistrationID: old.RegistrationID,
		ChangeType: "STATUS_CHANGE", OldValue: string(old.Status), NewValue: string(newStatus),
		ChangedAt: at, ChangedBy: changedBy, Reason: reason,
	})

	r.emitAudit("REGISTRATION_STATUS_CHANGED", old.RegistrationID, accountID,
		map[string]interface{}{"old_status": string(old.Status), "new_status": string(newStatus), "reason": reason, "changed_by": changedBy}, at)
	r.persist()
	return newInfo, nil
}

// GetRegistration returns (info, true) or (zero, false).
func (r *Registry) GetRegistration(accountID string) (RegistrationInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.registrations[accountID]
	return info, ok
}

// GetStrategy returns (reg, true) or (zero, false).
func (r *Registry) GetStrategy(accountID, strategyID string) (StrategyRegistration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.strategies[strategyKey(accountID, strategyID)]
	return reg, ok
}

// IsAccountApproved reports whether an account's registration is APPROVED.
func (r *Registry) IsAccountApproved(accountID string) bool {
	info, ok := r.GetRegistration(accountID)
	return ok && info.Status == StatusApproved
}

// IsStrategyActive reports whether a strategy is registered and active.
func (r *Registry) IsStrategyActive(accountID, strategyID string) bool {
	reg, ok := r.GetStrategy(accountID, strategyID)
	return ok && reg.IsActive
}

// GetChanges returns up to limit most recent changes, optionally filtered by
// account.
func (r *Registry) GetChanges(accountID string, limit int) []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	changes := r.changes
	if accountID != "" {
		if info, ok := r.registrations[accountID]; ok {
			var filtered []Change
			for _, c := range changes {
				if c.RegistrationID == info.RegistrationID {
					filtered = append(filtered, c)
				}
			}
			changes = filtered
		} else {
			changes = nil
		}
	}
	if limit > 0 && len(changes) > limit {
		changes = changes[len(changes)-limit:]
	}
	out := make([]Change, len(changes))
	copy(out, changes)
	return out
}

// Statistics returns a status-distribution summary.
func (r *Registry) Statistics() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int{}
	for _, info := range r.registrations {
		counts[string(info.Status)]++
	}
	return map[string]interface{}{
		"total_registrations": len(r.registrations),
		"total_strategies":    len(r.strategies),
		"total_changes":       len(r.changes),
		"status_distribution": counts,
	}
}

func (r *Registry) emitAudit(eventType, registrationID, accountID string, details map[string]interface{}, at time.Time) {
	if r.audit == nil {
		return
	}
	r.audit(AuditEvent{EventType: eventType, RegistrationID: registrationID, AccountID: accountID, Details: details, TS: at})
}

func (r *Registry) persist() {
	if r.persister == nil {
		return
	}
	_ = r.persister.Save(Snapshot{
		Registrations:     r.registrations,
		Strategies:        r.strategies,
		AccountStrategies: r.accountStrategies,
	})
}
