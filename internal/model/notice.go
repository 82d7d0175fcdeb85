package model

// NoticeCategory classifies an informational finding worth surfacing.
type NoticeCategory string

const (
	BrokenLink         NoticeCategory = "broken_link"
	AbsoluteLink       NoticeCategory = "absolute_link"
	UnrecognizedLink   NoticeCategory = "unrecognized_link"
	MissingNav         NoticeCategory = "missing_nav"
	NoGitLogs          NoticeCategory = "no_git_logs"
	DeprecationWarning NoticeCategory = "deprecation_warning"
)

// Notice is an INFO-level finding (broken link, nav gap, deprecation)
// that is not a warning or error but still useful to the author.
type Notice struct {
	Category   NoticeCategory `json:"category"`
	File       string         `json:"file"`
	Target     string         `json:"target,omitempty"`
	Suggestion string         `json:"suggestion,omitempty"`
}

// Key identifies a notice for deduplication.
func (n Notice) Key() string {
	return string(n.Category) + "\x00" + n.File + "\x00" + n.Target
}

// GroupNotices buckets notices by category, preserving insertion order
// within each bucket.
func GroupNotices(notices []Notice) map[NoticeCategory][]Notice {
	groups := make(map[NoticeCategory][]Notice)
	for _, n := range notices {
		groups[n.Category] = append(groups[n.Category], n)
	}
	return groups
}
