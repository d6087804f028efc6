package audit

import (
	"time"

	"mutuelle/pkg/domain"
)

// Severity classifies an entry for filtering and display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Module names the part of the engine that produced an entry.
type Module string

const (
	ModuleFamily  Module = "family"
	ModuleBenefit Module = "benefit"
	ModuleCatalog Module = "catalog"
)

// Entry is the immutable record of one decision. Entries are append-only:
// nothing in this codebase mutates or deletes one after Record returns.
type Entry struct {
	ID        domain.EntryID
	Timestamp time.Time
	ActorID   domain.MemberID
	ActorName string
	Action    string
	Details   string
	Severity  Severity
	Module    Module
}

// Action labels. Free-text details accompany each; the label stays stable so
// entries can be grouped and reconstructed.
const (
	ActionFamilyMemberAdded   = "family_member_added"
	ActionFamilyMemberUpdated = "family_member_updated"
	ActionFamilyMemberRefused = "family_member_refused"
	ActionRequestSubmitted    = "request_submitted"
	ActionRequestAccepted     = "request_accepted"
	ActionRequestRejected     = "request_rejected"
	ActionRequestValidated    = "request_validated"
	ActionRequestRefused      = "request_refused"
	ActionCatalogUpdated      = "catalog_updated"
)
