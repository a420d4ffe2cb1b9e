package cart

import (
	"errors"

	"fandomia/internal/domain"
)

var (
	// ErrLocalStorage: the device store is corrupt or unreachable.
	ErrLocalStorage = errors.New("cart: local storage")
	// ErrAuthResolution: identity or role lookup failed.
	ErrAuthResolution = errors.New("cart: auth resolution")
	// ErrRemoteWrite: upsert or hydration fetch failed.
	ErrRemoteWrite = errors.New("cart: remote write")

	ErrNoIdentity      = errors.New("cart: no authenticated identity")
	ErrRoleNotEligible = errors.New("cart: role not eligible for sync")
	ErrInvalidLine     = errors.New("cart: product id must be positive")
)

type SyncStatus int

const (
	SyncOK SyncStatus = iota
	SyncSkippedNotEligible
	SyncFailed
)

func (s SyncStatus) String() string {
	switch s {
	case SyncOK:
		return "ok"
	case SyncSkippedNotEligible:
		return "skipped"
	case SyncFailed:
		return "failed"
	}
	return "invalid"
}

// SyncAction says what an OK sync did.
type SyncAction int

const (
	ActionNone SyncAction = iota
	ActionPushed
	ActionHydrated
)

func (a SyncAction) String() string {
	switch a {
	case ActionPushed:
		return "pushed"
	case ActionHydrated:
		return "hydrated"
	}
	return "none"
}

// SyncResult is the outcome of one SyncCartToDbIfClient call. Reason is set
// for skipped and failed syncs and wraps one of the package errors.
type SyncResult struct {
	Status SyncStatus
	Action SyncAction
	Rows   int
	Reason error
}

func (r SyncResult) OK() bool { return r.Status == SyncOK }

func skipped(reason error) SyncResult {
	return SyncResult{Status: SyncSkippedNotEligible, Reason: reason}
}

func failed(reason error) SyncResult {
	return SyncResult{Status: SyncFailed, Reason: reason}
}

// IsSyncEligible is the allow-list of roles whose carts are mirrored
// remotely. Only retail customers qualify.
func IsSyncEligible(r domain.Role) bool {
	return r == domain.RoleClient
}
