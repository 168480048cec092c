package risk

import "sort"

// Recommendation is one prioritized action item.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"` // "medium" or "high"
}

const (
	maxRecommendations = 4
	factorThreshold    = 4.0 // on the 0-10 severity scale
	criticalProbCutoff = 0.2
	priorityMedium     = "medium"
	priorityHigh       = "high"
)

type template struct {
	Title       string
	Description string
	Category    string
}

// Fixed templates keyed by canonical factor name. Factors without a
// template (e.g. job satisfaction) surface through the factor map but carry
// no actionable item of their own.
var templates = map[string]template{
	FactorWorkload: {
		Title:       "Reduce workload",
		Description: "Weekly hours are well above sustainable levels. Defer or delegate non-critical work and block recovery time.",
		Category:    "workload",
	},
	FactorMeetingLoad: {
		Title:       "Cut meeting load",
		Description: "Meetings dominate the calendar. Decline optional invites and convert status meetings to async updates.",
		Category:    "workload",
	},
	FactorStress: {
		Title:       "Address stress signals",
		Description: "Stress indicators are elevated across recent activity. Schedule a check-in and consider short daily decompression breaks.",
		Category:    "stress",
	},
	FactorBalance: {
		Title:       "Restore work-life balance",
		Description: "Work is spilling into evenings and weekends. Set a hard end-of-day boundary and keep weekends clear.",
		Category:    "balance",
	},
	FactorSleep: {
		Title:       "Improve sleep",
		Description: "Sleep quality is below the healthy range. Aim for a consistent 7-8 hour schedule and avoid late-night work.",
		Category:    "health",
	},
	FactorExercise: {
		Title:       "Increase physical activity",
		Description: "Activity levels are low. Even two or three short sessions a week measurably reduce burnout risk.",
		Category:    "health",
	},
	FactorSocial: {
		Title:       "Reconnect with the team",
		Description: "Social interaction is low. Plan informal time with colleagues outside of delivery-focused meetings.",
		Category:    "social",
	},
}

var maintainItem = Recommendation{
	Title:       "Maintain current habits",
	Description: "Risk indicators are in the healthy range. Keep the current working rhythm and recovery routines.",
	Category:    "maintain",
	Priority:    priorityMedium,
}

var resilienceItem = Recommendation{
	Title:       "Maintain resilience",
	Description: "No single factor stands out, but overall risk is elevated. Keep monitoring and protect recovery time.",
	Category:    "maintain",
	Priority:    priorityMedium,
}

var escalateItem = Recommendation{
	Title:       "Escalate to support",
	Description: "Critical burnout probability is significant. Involve HR or a manager and consider professional support options.",
	Category:    "escalation",
	Priority:    priorityHigh,
}

// Recommend maps a risk level and ranked factor severities to a bounded,
// prioritized action list. Never empty, never more than four items.
func Recommend(level Level, factors map[string]float64, probabilities map[string]float64) []Recommendation {
	if level == LevelLow {
		return []Recommendation{maintainItem}
	}

	priority := priorityMedium
	if level == LevelHigh || level == LevelCritical {
		priority = priorityHigh
	}

	type ranked struct {
		name  string
		value float64
	}
	order := make([]ranked, 0, len(factors))
	for name, value := range factors {
		order = append(order, ranked{name, value})
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].value != order[j].value {
			return order[i].value > order[j].value
		}
		return order[i].name < order[j].name // stable output for equal severities
	})
	if len(order) > maxRecommendations {
		order = order[:maxRecommendations]
	}

	var items []Recommendation
	for _, f := range order {
		if f.value < factorThreshold {
			continue
		}
		tpl, ok := templates[f.name]
		if !ok {
			continue
		}
		items = append(items, Recommendation{
			Title:       tpl.Title,
			Description: tpl.Description,
			Category:    tpl.Category,
			Priority:    priority,
		})
	}
	if len(items) == 0 {
		items = []Recommendation{resilienceItem}
	}

	if probabilities[string(LevelCritical)] >= criticalProbCutoff {
		items = append([]Recommendation{escalateItem}, items...)
	}
	if len(items) > maxRecommendations {
		items = items[:maxRecommendations]
	}
	return items
}
