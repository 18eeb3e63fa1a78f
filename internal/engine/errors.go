package engine

// RefreshError marks a poll cycle that failed as a whole. Individual endpoint
// failures are swallowed into empty defaults; a RefreshError is raised only
// when the backend looks unreachable (PVE node name unresolvable, PBS with
// every endpoint empty) or an unclassified error escapes the cycle.
type RefreshError struct {
	Reason string
	Err    error
}

func (e *RefreshError) Error() string {
	return "refresh failed: " + e.Reason
}

func (e *RefreshError) Unwrap() error { return e.Err }
