package backups

import (
	"fmt"
	"sort"
	"time"
)

// Group is one displayed bucket of the unified list.
type Group struct {
	Key     string          `json:"key"`
	Label   string          `json:"label"`
	Records []UnifiedBackup `json:"records"`
}

// GroupByDay buckets records into local calendar days. Day grouping only
// makes sense when the list is time-sorted; for any other sort key it
// collapses into a single "All Backups" group so the day headers cannot
// contradict the row order. Groups follow the sort direction, which keeps
// Today/Yesterday pinned at the matching end. Records with an unknown
// timestamp land in a trailing "Unknown Date" group.
func GroupByDay(records []UnifiedBackup, sortKey string, desc bool, now time.Time) []Group {
	if sortKey != SortByTime && sortKey != "" {
		return []Group{{Key: "all", Label: "All Backups", Records: records}}
	}

	byDay := make(map[string]*Group)
	var order []string
	var unknown *Group
	for _, r := range records {
		if r.Time == 0 {
			if unknown == nil {
				unknown = &Group{Key: "unknown", Label: "Unknown Date"}
			}
			unknown.Records = append(unknown.Records, r)
			continue
		}
		day := time.Unix(r.Time, 0).In(now.Location())
		key := day.Format("2006-01-02")
		g, ok := byDay[key]
		if !ok {
			g = &Group{Key: key, Label: dayLabel(day, now)}
			byDay[key] = g
			order = append(order, key)
		}
		g.Records = append(g.Records, r)
	}

	sort.Slice(order, func(i, j int) bool {
		if desc {
			return order[i] > order[j]
		}
		return order[i] < order[j]
	})

	out := make([]Group, 0, len(order)+1)
	for _, key := range order {
		out = append(out, *byDay[key])
	}
	if unknown != nil {
		out = append(out, *unknown)
	}
	return out
}

func dayLabel(day, now time.Time) string {
	date := day.Format("Jan 2")
	if day.Year() != now.Year() {
		date = day.Format("Jan 2, 2006")
	}
	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	switch day.Format("2006-01-02") {
	case today:
		return fmt.Sprintf("Today (%s)", date)
	case yesterday:
		return fmt.Sprintf("Yesterday (%s)", date)
	default:
		return date
	}
}

// GroupByGuest buckets records by (kind, vmid, name), ordered by vmid
// ascending with the name as tie-break.
func GroupByGuest(records []UnifiedBackup) []Group {
	type guestGroupKey struct {
		kind EntityKind
		vmid int
		name string
	}
	byGuest := make(map[guestGroupKey]*Group)
	var keys []guestGroupKey
	for _, r := range records {
		k := guestGroupKey{kind: r.Kind, vmid: r.VMID, name: r.Name}
		g, ok := byGuest[k]
		if !ok {
			g = &Group{
				Key:   fmt.Sprintf("%s/%d/%s", r.Kind, r.VMID, r.Name),
				Label: fmt.Sprintf("%s (%s %d)", r.Name, r.Kind, r.VMID),
			}
			byGuest[k] = g
			keys = append(keys, k)
		}
		g.Records = append(g.Records, r)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].vmid != keys[j].vmid {
			return keys[i].vmid < keys[j].vmid
		}
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].kind < keys[j].kind
	})

	out := make([]Group, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byGuest[k])
	}
	return out
}
