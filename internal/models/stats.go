package models

type Granularity string

const (
	GranularityAuto  Granularity = "auto"
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// DateRange is an inclusive range of calendar days (YYYY-MM-DD)
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// StatPoint is one bucket of a period aggregation
type StatPoint struct {
	Label      string  `json:"label"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Current    bool    `json:"current"` // bucket contains today or later
}

// Comparison is a period-over-period change in completed habit-days
type Comparison struct {
	Current       int     `json:"current"`
	Previous      int     `json:"previous"`
	ChangePercent float64 `json:"change_percent"`
}

type PeriodStats struct {
	UserID            string      `json:"user_id"`
	Range             DateRange   `json:"range"`
	Granularity       Granularity `json:"granularity"`
	Points            []StatPoint `json:"points"`
	TotalCompleted    int         `json:"total_completed"`
	TotalPossible     int         `json:"total_possible"`
	AveragePercentage float64     `json:"average_percentage"`
	BestPeriod        *StatPoint  `json:"best_period,omitempty"`
	WorstPeriod       *StatPoint  `json:"worst_period,omitempty"`
	Comparison        Comparison  `json:"comparison"`
}
