package feature

import (
	"strings"
	"time"
)

// Business-day boundaries used by the calendar pass. Hours are local to the
// event timestamps; upstream ingestion normalizes timezones.
const (
	businessStartHour = 8
	businessEndHour   = 18
	overtimeHour      = 18
	earlyMorningHour  = 7
	lateNightHour     = 22
)

// backToBackGap is the maximum gap between consecutive meetings that still
// counts as back-to-back.
const backToBackGap = 15 * time.Minute

// The helpers below replace the schema-attached virtual fields of the old
// document store: each derived value is an explicit function of the raw
// record, called by the extractor, never computed by a persistence hook.

// EventDuration returns the event span, or zero for an invalid span.
func EventDuration(e RawEvent) time.Duration {
	if !e.End.After(e.Start) {
		return 0
	}
	return e.End.Sub(e.Start)
}

// IsWeekend reports whether the event starts on a Saturday or Sunday.
func IsWeekend(e RawEvent) bool {
	wd := e.Start.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsOvertime reports whether the event starts or ends at or after the
// overtime boundary.
func IsOvertime(e RawEvent) bool {
	return e.Start.Hour() >= overtimeHour || e.End.Hour() >= overtimeHour
}

// IsBusinessHours reports whether the event falls inside the weekday
// business window.
func IsBusinessHours(e RawEvent) bool {
	if IsWeekend(e) {
		return false
	}
	return e.Start.Hour() >= businessStartHour && e.Start.Hour() < businessEndHour
}

// IsEarlyMorning reports whether the event starts before the early-morning
// boundary.
func IsEarlyMorning(e RawEvent) bool {
	return e.Start.Hour() < earlyMorningHour
}

// IsLateNight reports whether the event runs past the late-night boundary.
func IsLateNight(e RawEvent) bool {
	return e.End.Hour() > lateNightHour
}

// MessageWordCount returns the stored word count, falling back to counting
// the body when ingestion did not populate it.
func MessageWordCount(m RawMessage) int {
	if m.WordCount > 0 {
		return m.WordCount
	}
	return len(strings.Fields(m.Body))
}

// HasEmotionTag reports whether the message carries the given tag
// (case-insensitive).
func HasEmotionTag(m RawMessage, tag string) bool {
	for _, t := range m.EmotionTags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// IsUrgentSubject reports whether the subject line flags urgency.
func IsUrgentSubject(m RawMessage) bool {
	return strings.Contains(strings.ToLower(m.Subject), "urgent")
}
