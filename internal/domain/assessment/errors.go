package assessment

import "errors"

var (
	// ErrNotAuthorized: the roster authorization flag is off (or the employee
	// is unknown). Recoverable only by a roster edit.
	ErrNotAuthorized = errors.New("employee is not authorized to assess")

	// ErrDuplicateSubmission: an open submission already exists for the
	// employee. Recoverable once that submission is finalized.
	ErrDuplicateSubmission = errors.New("an open submission already exists")

	// ErrRecordNotFound: the submission row could not be re-resolved, e.g.
	// the external table was modified out of band.
	ErrRecordNotFound = errors.New("submission record not found")

	// ErrConflict: the located row is already finalized; the listing the
	// admin acted on was stale.
	ErrConflict = errors.New("submission was already finalized")

	// ErrInvalidManagerInput: empty review text or a score outside 0-100.
	ErrInvalidManagerInput = errors.New("invalid manager review input")

	// ErrStoreUnavailable: the record store could not be reached.
	ErrStoreUnavailable = errors.New("record store unavailable")
)
