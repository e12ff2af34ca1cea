package core

import (
	"log"
	"strings"
	"time"
)

// dateLayout is the wire format for calendar dates throughout the service.
const dateLayout = "2006-01-02"

// expiryLayouts are accepted timestamp formats for blocking-rule expiries,
// tried in order. Upstream systems are inconsistent about this field.
var expiryLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// BlockingRule restricts delivery scheduling on a single calendar date.
// An empty Expiry blocks the date unconditionally. A set Expiry means the
// date is a pre-order window: it stays open until the expiry instant passes,
// after which the date is blocked.
type BlockingRule struct {
	BlockedDate string `json:"blocked_date"` // YYYY-MM-DD
	Expiry      string `json:"expiry,omitempty"`
}

// DeliveryConstraint is the per-customer delivery configuration consumed by
// ComputeCandidateDates. An empty AllowedWeekdays means every weekday is
// eligible.
type DeliveryConstraint struct {
	AllowedWeekdays []time.Weekday `json:"allowed_weekdays"`
	BlockingRules   []BlockingRule `json:"blocking_rules"`
}

// CandidateDate is one deliverable calendar date within the scheduling
// horizon. Blocked dates are kept in the output so the frontend can render
// them as visible but disabled.
type CandidateDate struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Weekday string `json:"weekday"`
	Blocked bool   `json:"blocked"`
}

// LeadTimePolicy maps the current weekday and hour to the day offset of the
// first candidate date. Values come from configuration.
type LeadTimePolicy struct {
	SaturdayOffset int `yaml:"saturday_offset"`
	SundayOffset   int `yaml:"sunday_offset"`
	// Orders placed on a weekday before CutoffHour ship next day; at or
	// after the cutoff they lose a day.
	BeforeCutoffOffset int `yaml:"before_cutoff_offset"`
	AfterCutoffOffset  int `yaml:"after_cutoff_offset"`
	CutoffHour         int `yaml:"cutoff_hour"`
}

// DefaultLeadTimePolicy matches the standing dispatch schedule.
var DefaultLeadTimePolicy = LeadTimePolicy{
	SaturdayOffset:     3,
	SundayOffset:       2,
	BeforeCutoffOffset: 1,
	AfterCutoffOffset:  2,
	CutoffHour:         16,
}

var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "sunday",
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
}

// WeekdayName returns the lowercase English name used on the wire.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// ParseWeekday resolves a weekday name case-insensitively. Unknown names
// return false and are ignored by callers, so a bad entry in customer data
// can never match a real day.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, name := range weekdayNames {
		if name == s {
			return d, true
		}
	}
	return 0, false
}

// WeekdaysFromNames maps weekday names to the closed enumeration, dropping
// any name that does not resolve.
func WeekdaysFromNames(names []string) []time.Weekday {
	var out []time.Weekday
	for _, n := range names {
		if d, ok := ParseWeekday(n); ok {
			out = append(out, d)
		}
	}
	return out
}

// StartDate returns the first candidate delivery date for now under the
// policy, reset to midnight in now's location.
func (p LeadTimePolicy) StartDate(now time.Time) time.Time {
	var offset int
	switch now.Weekday() {
	case time.Saturday:
		offset = p.SaturdayOffset
	case time.Sunday:
		offset = p.SundayOffset
	default:
		if now.Hour() < p.CutoffHour {
			offset = p.BeforeCutoffOffset
		} else {
			offset = p.AfterCutoffOffset
		}
	}
	d := now.AddDate(0, 0, offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
}

// ComputeCandidateDates walks horizonDays consecutive calendar days starting
// at the policy's lead-time start date and returns, in chronological order,
// every day whose weekday the constraint allows, flagging days matched by a
// blocking rule. The result is derived fresh on every call; nothing is
// cached across cart mutations.
func ComputeCandidateDates(constraint DeliveryConstraint, now time.Time, horizonDays int, policy LeadTimePolicy) []CandidateDate {
	if horizonDays <= 0 {
		return nil
	}

	start := policy.StartDate(now)
	var out []CandidateDate
	for i := 0; i < horizonDays; i++ {
		day := start.AddDate(0, 0, i)
		if !constraint.allowsWeekday(day.Weekday()) {
			continue
		}
		out = append(out, CandidateDate{
			Date:    day.Format(dateLayout),
			Weekday: WeekdayName(day.Weekday()),
			Blocked: constraint.blockedOn(day, now),
		})
	}
	return out
}

func (c DeliveryConstraint) allowsWeekday(d time.Weekday) bool {
	if len(c.AllowedWeekdays) == 0 {
		return true
	}
	for _, allowed := range c.AllowedWeekdays {
		if allowed == d {
			return true
		}
	}
	return false
}

// blockedOn reports whether a blocking rule closes the given day. Matching
// uses calendar-date equality; only the expiry check is timestamp-based.
// At most one rule matches a date; the first match wins.
func (c DeliveryConstraint) blockedOn(day time.Time, now time.Time) bool {
	date := day.Format(dateLayout)
	for _, rule := range c.BlockingRules {
		if rule.BlockedDate != date {
			continue
		}
		return rule.activeAt(now)
	}
	return false
}

// activeAt reports whether the rule currently blocks its date. Rules without
// an expiry block permanently. An unparsable expiry fails safe toward
// blocking rather than permissiveness.
func (r BlockingRule) activeAt(now time.Time) bool {
	if strings.TrimSpace(r.Expiry) == "" {
		return true
	}
	expiry, err := parseExpiry(r.Expiry)
	if err != nil {
		log.Printf("blocking rule for %s has unparsable expiry %q, treating as blocked", r.BlockedDate, r.Expiry)
		return true
	}
	return !expiry.After(now)
}

func parseExpiry(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range expiryLayouts {
		t, err := time.Parse(layout, strings.TrimSpace(s))
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
