package domain

// Status is the funnel stage. Any transition is allowed.
type Status string

const (
	StatusNew         Status = "New"
	StatusQualifying  Status = "Qualifying"
	StatusQualified   Status = "Qualified"
	StatusNegotiating Status = "Negotiating"
	StatusConverted   Status = "Converted"
	StatusDiscarded   Status = "Discarded"
	StatusArchived    Status = "Archived"
)

// Source is the channel a lead was captured from.
type Source string

const (
	SourceWebsite        Source = "Website"
	SourceFacebook       Source = "Facebook"
	SourceInstagram      Source = "Instagram"
	SourceLinkedIn       Source = "LinkedIn"
	SourceGoogleAds      Source = "GoogleAds"
	SourceEmailMarketing Source = "EmailMarketing"
	SourceReferral       Source = "Referral"
	SourceEvent          Source = "Event"
	SourcePhone          Source = "Phone"
	SourceChat           Source = "Chat"
	SourceOther          Source = "Other"
)

// Priority is the tier derived from the score.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

var (
	allStatuses   = []Status{StatusNew, StatusQualifying, StatusQualified, StatusNegotiating, StatusConverted, StatusDiscarded, StatusArchived}
	allSources    = []Source{SourceWebsite, SourceFacebook, SourceInstagram, SourceLinkedIn, SourceGoogleAds, SourceEmailMarketing, SourceReferral, SourceEvent, SourcePhone, SourceChat, SourceOther}
	allPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}
)

// Statuses returns every status in funnel order.
func Statuses() []Status { return append([]Status(nil), allStatuses...) }

// Sources returns every source in declaration order.
func Sources() []Source { return append([]Source(nil), allSources...) }

// Priorities returns the tiers from lowest to highest.
func Priorities() []Priority { return append([]Priority(nil), allPriorities...) }

// Ordinal is the position in funnel order, or -1 when unknown.
func (s Status) Ordinal() int { return indexOf(allStatuses, s) }

// Valid reports whether s is a known status.
func (s Status) Valid() bool { return s.Ordinal() >= 0 }

// Ordinal is the declaration position, or -1 when unknown.
func (s Source) Ordinal() int { return indexOf(allSources, s) }

// Valid reports whether s is a known source.
func (s Source) Valid() bool { return s.Ordinal() >= 0 }

// Rank orders tiers: Low 0, Medium 1, High 2, unknown -1.
func (p Priority) Rank() int { return indexOf(allPriorities, p) }

// Valid reports whether p is a known tier.
func (p Priority) Valid() bool { return p.Rank() >= 0 }

// StatusValues, SourceValues and PriorityValues expose the raw strings for validators.
func StatusValues() []string   { return toStrings(allStatuses) }
func SourceValues() []string   { return toStrings(allSources) }
func PriorityValues() []string { return toStrings(allPriorities) }

func indexOf[T comparable](values []T, v T) int {
	for i, candidate := range values {
		if candidate == v {
			return i
		}
	}
	return -1
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
