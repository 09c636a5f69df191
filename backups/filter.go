package backups

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// DayRange is an inclusive range of unix seconds. Records with an unknown
// timestamp never match a range.
type DayRange struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

func (r DayRange) contains(unix int64) bool {
	return unix > 0 && unix >= r.From && unix <= r.To
}

// NodeSelection restricts records to one node. PBS selections match on the
// instance alone; Proxmox selections need the (instance, node) pair because
// node names are not unique across clusters.
type NodeSelection struct {
	Instance string
	Node     string
	PBS      bool
}

// Query is the filter state applied to the unified list. Empty or "all"
// fields pass everything. All populated parts are ANDed.
type Query struct {
	Range    *DayRange
	Node     *NodeSelection
	Search   string
	Kind     string // "all", or an EntityKind
	Category string // "all", or a Category
	Verified string // "all", "verified", "unverified", "unknown"
}

// Filter applies q to records and returns the matching subset in input order.
func Filter(records []UnifiedBackup, q Query) []UnifiedBackup {
	search := compileSearch(q.Search)
	out := make([]UnifiedBackup, 0, len(records))
	for _, r := range records {
		if q.Range != nil && !q.Range.contains(r.Time) {
			continue
		}
		if q.Node != nil && !matchNode(r, *q.Node) {
			continue
		}
		if search != nil && !search(r) {
			continue
		}
		if !matchEnum(string(r.Kind), q.Kind) {
			continue
		}
		if !matchEnum(string(r.Category), q.Category) {
			continue
		}
		if !matchVerified(r.Verified, q.Verified) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchNode(r UnifiedBackup, sel NodeSelection) bool {
	if sel.PBS {
		return strings.EqualFold(r.Instance, sel.Instance)
	}
	return strings.EqualFold(r.Instance, sel.Instance) && strings.EqualFold(r.Node, sel.Node)
}

func matchEnum(have, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" || strings.EqualFold(want, "all") {
		return true
	}
	return strings.EqualFold(have, want)
}

func matchVerified(v *bool, want string) bool {
	switch strings.ToLower(strings.TrimSpace(want)) {
	case "", "all":
		return true
	case "verified":
		return v != nil && *v
	case "unverified":
		return v != nil && !*v
	case "unknown":
		return v == nil
	default:
		return true
	}
}

type searchPredicate func(UnifiedBackup) bool

// compileSearch parses the search box grammar:
//   - "pbs:<instance>:<datastore>:<namespace>" restricts to PBS records
//     matching all three coordinates (namespace compared canonically)
//   - otherwise the string splits on commas; tokens containing '>', '<' or
//     ':' become field comparisons (ANDed), the rest are plain substring
//     terms (ORed across the haystack fields)
//
// A nil predicate means "match everything".
func compileSearch(s string) searchPredicate {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if strings.HasPrefix(strings.ToLower(s), "pbs:") {
		parts := strings.Split(s, ":")
		if len(parts) == 4 {
			instance, datastore := parts[1], parts[2]
			namespace := CanonicalNamespace(parts[3])
			return func(r UnifiedBackup) bool {
				return r.Category == CategoryRemote &&
					r.Instance == instance &&
					r.Datastore == datastore &&
					CanonicalNamespace(r.Namespace) == namespace
			}
		}
	}

	var comparisons []searchPredicate
	var terms []string
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if i := strings.IndexAny(tok, "><:"); i > 0 {
			comparisons = append(comparisons, compileComparison(tok[:i], tok[i], tok[i+1:]))
			continue
		}
		terms = append(terms, strings.ToLower(tok))
	}
	if len(comparisons) == 0 && len(terms) == 0 {
		return nil
	}

	return func(r UnifiedBackup) bool {
		for _, c := range comparisons {
			if !c(r) {
				return false
			}
		}
		if len(terms) == 0 {
			return true
		}
		hay := haystack(r)
		for _, t := range terms {
			for _, h := range hay {
				if strings.Contains(h, t) {
					return true
				}
			}
		}
		return false
	}
}

// compileComparison builds one field predicate. ':' is substring on text
// fields and equality on numeric ones; '>'/'<' compare numerically. An
// unknown field matches nothing, so a typo narrows instead of passing.
func compileComparison(field string, op byte, value string) searchPredicate {
	field = strings.ToLower(strings.TrimSpace(field))
	value = strings.TrimSpace(value)
	lower := strings.ToLower(value)

	textField := func(get func(UnifiedBackup) string) searchPredicate {
		if op != ':' {
			return func(UnifiedBackup) bool { return false }
		}
		return func(r UnifiedBackup) bool {
			return strings.Contains(strings.ToLower(get(r)), lower)
		}
	}
	numField := func(get func(UnifiedBackup) (int64, bool), parse func(string) (int64, bool)) searchPredicate {
		want, ok := parse(value)
		if !ok {
			return func(UnifiedBackup) bool { return false }
		}
		return func(r UnifiedBackup) bool {
			have, ok := get(r)
			if !ok {
				return false
			}
			switch op {
			case '>':
				return have > want
			case '<':
				return have < want
			default:
				return have == want
			}
		}
	}

	switch field {
	case "size":
		return numField(
			func(r UnifiedBackup) (int64, bool) {
				if r.Size == nil {
					return 0, false
				}
				return *r.Size, true
			},
			parseSizeValue,
		)
	case "vmid", "id":
		return numField(
			func(r UnifiedBackup) (int64, bool) { return int64(r.VMID), true },
			parseIntValue,
		)
	case "name":
		return textField(func(r UnifiedBackup) string { return r.Name })
	case "node":
		return textField(func(r UnifiedBackup) string { return r.Node })
	case "instance":
		return textField(func(r UnifiedBackup) string { return r.Instance })
	case "storage":
		return textField(func(r UnifiedBackup) string { return r.Storage })
	case "datastore":
		return textField(func(r UnifiedBackup) string { return r.Datastore })
	case "namespace":
		return textField(func(r UnifiedBackup) string { return CanonicalNamespace(r.Namespace) })
	case "kind", "type":
		return textField(func(r UnifiedBackup) string { return string(r.Kind) })
	case "category", "source":
		return textField(func(r UnifiedBackup) string { return string(r.Category) })
	case "backup", "label":
		return textField(func(r UnifiedBackup) string { return r.BackupName })
	default:
		return func(UnifiedBackup) bool { return false }
	}
}

// haystack lists the lowercased fields plain search terms match against.
func haystack(r UnifiedBackup) []string {
	return []string{
		strconv.Itoa(r.VMID),
		strings.ToLower(r.Name),
		strings.ToLower(r.Node),
		strings.ToLower(r.BackupName),
		strings.ToLower(r.Description),
		strings.ToLower(r.Comment),
		strings.ToLower(r.Storage),
		strings.ToLower(r.Datastore),
		strings.ToLower(r.Namespace),
	}
}

// parseSizeValue accepts plain byte counts and humanized values like "10GB"
// or "512MiB".
func parseSizeValue(s string) (int64, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, false
	}
	return int64(n), true
}

func parseIntValue(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
