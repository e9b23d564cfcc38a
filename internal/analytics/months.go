package analytics

import (
	"sort"
	"time"
)

const monthKeyLayout = "2006-01"

func monthKey(t time.Time) string {
	return t.Format(monthKeyLayout)
}

// sortedMonthly flattens a month-keyed accumulator into an ascending
// series. "YYYY-MM" keys sort chronologically as plain strings.
func sortedMonthly(buckets map[string]float64) []MonthlyAmount {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	series := make([]MonthlyAmount, 0, len(keys))
	for _, k := range keys {
		series = append(series, MonthlyAmount{Month: k, Amount: buckets[k]})
	}
	return series
}

// classifyTrend compares the last two buckets of a month-ordered series:
// up when the last exceeds the prior by more than 10%, down when it falls
// short by more than 10%, stable otherwise or when fewer than two buckets
// exist.
func classifyTrend(series []MonthlyAmount) TrendDirection {
	if len(series) < 2 {
		return TrendStable
	}
	last := series[len(series)-1].Amount
	prior := series[len(series)-2].Amount
	switch {
	case last > prior*1.10:
		return TrendUp
	case last < prior*0.90:
		return TrendDown
	default:
		return TrendStable
	}
}
