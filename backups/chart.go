package backups

import "time"

// ChartDay is the per-category backup count of one local calendar day.
type ChartDay struct {
	Date     string `json:"date"` // 2006-01-02, local
	Snapshot int    `json:"snapshot"`
	Local    int    `json:"local"`
	Remote   int    `json:"remote"`
}

func (d ChartDay) Total() int {
	return d.Snapshot + d.Local + d.Remote
}

// Chart is the stacked-bar input for one trailing window. MaxDaily is the
// largest daily total and exists only for axis scaling.
type Chart struct {
	Days     []ChartDay `json:"days"`
	MaxDaily int        `json:"maxDaily"`
}

// BuildChart buckets records into exactly `days` trailing local calendar days
// ending today, zero-count days included. The input should already be
// search/kind/category filtered but NOT date-range filtered, so a selected
// day stays visible in the chart.
func BuildChart(records []UnifiedBackup, days int, now time.Time) Chart {
	if days <= 0 {
		days = 30
	}
	today := midnight(now)
	start := today.AddDate(0, 0, -(days - 1))

	buckets := make([]ChartDay, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		buckets[i] = ChartDay{Date: date}
		index[date] = i
	}

	for _, r := range records {
		if r.Time == 0 {
			continue
		}
		date := time.Unix(r.Time, 0).In(now.Location()).Format("2006-01-02")
		i, ok := index[date]
		if !ok {
			continue
		}
		switch r.Category {
		case CategorySnapshot:
			buckets[i].Snapshot++
		case CategoryLocal:
			buckets[i].Local++
		case CategoryRemote:
			buckets[i].Remote++
		}
	}

	maxDaily := 0
	for _, b := range buckets {
		if t := b.Total(); t > maxDaily {
			maxDaily = t
		}
	}
	return Chart{Days: buckets, MaxDaily: maxDaily}
}

// DayRangeFor covers one local calendar day, inclusive on both ends.
func DayRangeFor(day time.Time) DayRange {
	from := midnight(day)
	to := from.AddDate(0, 0, 1).Add(-time.Second)
	return DayRange{From: from.Unix(), To: to.Unix()}
}

// ToggleDay is the chart click behavior: clicking a day selects it, clicking
// the already-selected day clears the selection.
func ToggleDay(current *DayRange, day time.Time) *DayRange {
	next := DayRangeFor(day)
	if current != nil && current.From == next.From && current.To == next.To {
		return nil
	}
	return &next
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
