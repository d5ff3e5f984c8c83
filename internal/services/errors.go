package services

import (
	"errors"
	"fmt"
)

// Error classes. Handlers map these to HTTP codes with errors.Is; the
// specific sentinels below wrap exactly one class each.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

var (
	ErrReportNotFound     = fmt.Errorf("%w: report not found", ErrNotFound)
	ErrBidNotFound        = fmt.Errorf("%w: bid not found", ErrNotFound)
	ErrContractorNotFound = fmt.Errorf("%w: contractor not found", ErrNotFound)
	ErrAssignmentNotFound = fmt.Errorf("%w: assignment not found", ErrNotFound)
	ErrProofNotFound      = fmt.Errorf("%w: completion proof not found", ErrNotFound)
	ErrWardNotFound       = fmt.Errorf("%w: ward not found", ErrNotFound)
	ErrDepartmentNotFound = fmt.Errorf("%w: department not found", ErrNotFound)

	ErrJustificationTooShort = fmt.Errorf("%w: justification must be at least %d characters", ErrValidation, MinJustificationLen)
	ErrInvalidStatus         = fmt.Errorf("%w: unrecognized report status", ErrValidation)
	ErrInvalidSeverity       = fmt.Errorf("%w: severity must be between 1 and 5", ErrValidation)
	ErrInvalidModeration     = fmt.Errorf("%w: unrecognized moderation action", ErrValidation)
	ErrTitleRequired         = fmt.Errorf("%w: title is required", ErrValidation)
	ErrDescriptionRequired   = fmt.Errorf("%w: description is required", ErrValidation)
	ErrInvalidLatitude       = fmt.Errorf("%w: latitude must be between -90 and 90", ErrValidation)
	ErrInvalidLongitude      = fmt.Errorf("%w: longitude must be between -180 and 180", ErrValidation)
	ErrInvalidCost           = fmt.Errorf("%w: proposed cost must be positive", ErrValidation)
	ErrInvalidEstimate       = fmt.Errorf("%w: estimated days must be positive", ErrValidation)
	ErrAssigneeRequired      = fmt.Errorf("%w: exactly one of contractor or department is required", ErrValidation)
	ErrDuplicateRefRequired  = fmt.Errorf("%w: duplicate_of_id is required for MARK_DUPLICATE", ErrValidation)

	ErrRoleNotAllowed    = fmt.Errorf("%w: role not permitted for this operation", ErrForbidden)
	ErrNotOwner          = fmt.Errorf("%w: only the reporting citizen may do this", ErrForbidden)
	ErrContractorBlocked = fmt.Errorf("%w: contractor is blocked", ErrForbidden)

	ErrReportNotEditable      = fmt.Errorf("%w: report is only editable while OPEN", ErrConflict)
	ErrReportNotDeletable     = fmt.Errorf("%w: report can only be deleted while OPEN", ErrConflict)
	ErrTerminalStatus         = fmt.Errorf("%w: report is in a terminal status", ErrConflict)
	ErrConcurrentUpdate       = fmt.Errorf("%w: report was modified concurrently, retry", ErrConflict)
	ErrBidReportMismatch      = fmt.Errorf("%w: bid does not belong to this report", ErrConflict)
	ErrBidAlreadyDecided      = fmt.Errorf("%w: bid has already been decided", ErrConflict)
	ErrDuplicateBid           = fmt.Errorf("%w: contractor already has a pending bid on this report", ErrConflict)
	ErrActiveAssignmentExists = fmt.Errorf("%w: report already has an active assignment", ErrConflict)
	ErrAssignmentRequired     = fmt.Errorf("%w: ASSIGNED requires an active assignment", ErrConflict)
	ErrCompletionViaProofOnly = fmt.Errorf("%w: COMPLETED is only reachable through proof approval", ErrConflict)
	ErrProofAlreadyReviewed   = fmt.Errorf("%w: completion proof has already been reviewed", ErrConflict)
	ErrAlreadyUpvoted         = fmt.Errorf("%w: already upvoted", ErrConflict)
	ErrAlreadySubscribed      = fmt.Errorf("%w: already subscribed", ErrConflict)
	ErrNotSubscribed          = fmt.Errorf("%w: not subscribed", ErrConflict)
	ErrDuplicateSelf          = fmt.Errorf("%w: a report cannot be a duplicate of itself", ErrConflict)
	ErrDuplicateOfDuplicate   = fmt.Errorf("%w: canonical report is itself a duplicate", ErrConflict)
	ErrBlockStateUnchanged    = fmt.Errorf("%w: contractor block state already set", ErrConflict)
)
