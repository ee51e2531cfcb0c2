package pagination

// Policy selects how a page loop decides that the page it just received
// is the last one. The set is closed: every list endpoint uses one of these.
type Policy int

const (
	// StopOnLastFlag stops when the server marks the page with isLast=true.
	// Boards, board projects and board sprints use it.
	StopOnLastFlag Policy = iota

	// StopOnOffsetStall stops when a non-zero offset was requested but the
	// server reports the same startAt as on the previous page. Board issue
	// listings omit isLast, so they use this instead. A page without any
	// records also ends the loop.
	StopOnOffsetStall
)

// String returns the policy name used in logs.
func (p Policy) String() string {
	switch p {
	case StopOnLastFlag:
		return "last_flag"
	case StopOnOffsetStall:
		return "offset_stall"
	default:
		return "unknown"
	}
}

// Progress is the loop state a policy is evaluated against.
type Progress struct {
	// Index is the zero-based number of the page just received.
	Index int

	// Offset is the startAt that was requested for this page.
	Offset int

	// PrevStartAt is the server-reported startAt of the previous page.
	// Only meaningful when Index > 0.
	PrevStartAt int
}

// Stop reports whether the loop ends after page. The page itself is always
// yielded before stopping.
func (p Policy) Stop(progress Progress, page *Page) bool {
	switch p {
	case StopOnLastFlag:
		return page.Last()
	case StopOnOffsetStall:
		if page.Len() == 0 {
			return true
		}
		return progress.Index > 0 && progress.Offset != 0 && page.Start() == progress.PrevStartAt
	default:
		return true
	}
}
