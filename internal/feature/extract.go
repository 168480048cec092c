package feature

import (
	"sort"
	"time"

	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/signal"
)

// CalendarSummary is the result of the single-traversal calendar pass.
type CalendarSummary struct {
	WorkHours          float64
	OvertimeHours      float64
	WeekendWork        float64
	EarlyMorningHours  float64
	LateNightHours     float64
	MeetingCount       int
	VirtualMeetings    int
	BackToBackMeetings int
	MeetingDuration    float64 // hours
	FocusTime          float64 // hours
	BreakTime          float64 // hours
	TrackedTime        float64 // hours
	AvgEventDuration   float64 // hours
	AvgStressLevel     float64 // 0-5
	AvgWorkloadLevel   float64 // 0-5
	FocusTimeRatio     float64
	BreakTimeRatio     float64
	WorkLifeBalance    float64
}

// EmailSummary is the result of the email pass.
type EmailSummary struct {
	EmailCount       int
	AvgEmailLength   float64
	StressEmailCount int
	UrgentEmailCount int
	AvgResponseTime  float64 // hours
}

// SummarizeCalendar runs the calendar pass over events inside [from, to).
// Events with invalid spans are skipped; any internal failure degrades to
// the empty summary so extraction never aborts the caller.
func SummarizeCalendar(events []RawEvent, from, to time.Time) (summary CalendarSummary) {
	defer func() {
		if recover() != nil {
			summary = CalendarSummary{}
		}
	}()

	inRange := make([]RawEvent, 0, len(events))
	for _, e := range events {
		if e.Validate() != nil {
			continue
		}
		if !from.IsZero() && e.Start.Before(from) {
			continue
		}
		if !to.IsZero() && !e.Start.Before(to) {
			continue
		}
		inRange = append(inRange, e)
	}
	sort.Slice(inRange, func(i, j int) bool { return inRange[i].Start.Before(inRange[j].Start) })

	var (
		stressSum, workloadSum   float64
		stressRated, workloadN   int
		totalDuration            float64
		lastMeetingEnd           time.Time
		haveLastMeeting          bool
	)

	for _, e := range inRange {
		hours := EventDuration(e).Hours()
		totalDuration += hours

		if IsBusinessHours(e) {
			summary.WorkHours += hours
		}
		if IsOvertime(e) {
			summary.OvertimeHours += hours
		}
		if IsWeekend(e) {
			summary.WeekendWork += hours
		}
		if IsEarlyMorning(e) {
			summary.EarlyMorningHours += hours
		}
		if IsLateNight(e) {
			summary.LateNightHours += hours
		}

		switch e.Category {
		case CategoryMeeting:
			summary.MeetingCount++
			summary.MeetingDuration += hours
			if e.Virtual {
				summary.VirtualMeetings++
			}
			if haveLastMeeting && !e.Start.After(lastMeetingEnd.Add(backToBackGap)) {
				summary.BackToBackMeetings++
			}
			lastMeetingEnd = e.End
			haveLastMeeting = true
		case CategoryFocusTime:
			summary.FocusTime += hours
		case CategoryBreak:
			summary.BreakTime += hours
		}

		if e.StressRating >= 1 && e.StressRating <= 5 {
			stressSum += float64(e.StressRating)
			stressRated++
		}
		if e.WorkloadRating >= 1 && e.WorkloadRating <= 5 {
			workloadSum += float64(e.WorkloadRating)
			workloadN++
		}
	}

	summary.TrackedTime = totalDuration
	if n := len(inRange); n > 0 {
		summary.AvgEventDuration = totalDuration / float64(n)
	}
	if stressRated > 0 {
		summary.AvgStressLevel = stressSum / float64(stressRated)
	}
	if workloadN > 0 {
		summary.AvgWorkloadLevel = workloadSum / float64(workloadN)
	}
	if totalDuration > 0 {
		summary.FocusTimeRatio = summary.FocusTime / totalDuration
		summary.BreakTimeRatio = summary.BreakTime / totalDuration
	}

	workTotal := summary.WorkHours + summary.OvertimeHours + summary.WeekendWork
	if workTotal > 0 {
		summary.WorkLifeBalance = summary.WorkHours / workTotal
	} else {
		// No tracked work time means no imbalance signal.
		summary.WorkLifeBalance = 1
	}
	return summary
}

// SummarizeEmail runs the email pass over messages inside [from, to).
// Messages without precomputed sentiment or emotion tags fall back to the
// keyword analyzer; any internal failure degrades to the empty summary.
func SummarizeEmail(msgs []RawMessage, from, to time.Time) (summary EmailSummary) {
	defer func() {
		if recover() != nil {
			summary = EmailSummary{}
		}
	}()

	var (
		wordSum      int
		latencySum   float64
		latencyCount int
	)

	for _, m := range msgs {
		if m.Validate() != nil {
			continue
		}
		if !from.IsZero() && m.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && !m.Timestamp.Before(to) {
			continue
		}

		summary.EmailCount++
		wordSum += MessageWordCount(m)

		sentiment := m.Sentiment
		tags := m.EmotionTags
		if sentiment == nil || len(tags) == 0 {
			derived := signal.Analyze(m.Subject + " " + m.Body)
			if sentiment == nil {
				s := derived.Score
				sentiment = &s
			}
			if len(tags) == 0 {
				tags = derived.EmotionTags
			}
		}
		classified := RawMessage{Subject: m.Subject, EmotionTags: tags}

		if HasEmotionTag(classified, signal.TagStress) ||
			HasEmotionTag(classified, signal.TagFrustration) ||
			(sentiment != nil && *sentiment < -0.3) {
			summary.StressEmailCount++
		}
		if HasEmotionTag(classified, signal.TagUrgency) || IsUrgentSubject(m) {
			summary.UrgentEmailCount++
		}

		if m.ResponseLatency > 0 {
			latencySum += m.ResponseLatency.Hours()
			latencyCount++
		}
	}

	if summary.EmailCount > 0 {
		summary.AvgEmailLength = float64(wordSum) / float64(summary.EmailCount)
	}
	if latencyCount > 0 {
		summary.AvgResponseTime = latencySum / float64(latencyCount)
	}
	return summary
}

// Extract combines both passes into the full vector. Wellness features
// (social, sleep, exercise, nutrition) stay at 0 until an Overlay supplies
// them; extraction alone cannot observe them.
func Extract(events []RawEvent, msgs []RawMessage, from, to time.Time) Vector {
	cal := SummarizeCalendar(events, from, to)
	mail := SummarizeEmail(msgs, from, to)

	return Vector{
		WorkHours:          cal.WorkHours,
		OvertimeHours:      cal.OvertimeHours,
		WeekendWork:        cal.WeekendWork,
		MeetingCount:       float64(cal.MeetingCount),
		MeetingDuration:    cal.MeetingDuration,
		BackToBackMeetings: float64(cal.BackToBackMeetings),
		EmailCount:         float64(mail.EmailCount),
		AvgEmailLength:     mail.AvgEmailLength,
		StressEmailCount:   float64(mail.StressEmailCount),
		UrgentEmailCount:   float64(mail.UrgentEmailCount),
		ResponseTime:       mail.AvgResponseTime,
		FocusTimeRatio:     cal.FocusTimeRatio,
		BreakTimeRatio:     cal.BreakTimeRatio,
		StressLevel:        cal.AvgStressLevel,
		WorkloadLevel:      cal.AvgWorkloadLevel,
		WorkLifeBalance:    cal.WorkLifeBalance,
	}
}
