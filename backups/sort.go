package backups

import (
	"sort"
	"strings"
)

// Sort keys. Unknown keys fall back to SortByTime.
const (
	SortByTime      = "time"
	SortBySize      = "size"
	SortByVMID      = "vmid"
	SortByName      = "name"
	SortByNode      = "node"
	SortByStorage   = "storage"
	SortByDatastore = "datastore"
	SortByNamespace = "namespace"
	SortByCategory  = "category"
	SortByKind      = "kind"
	SortByVerified  = "verified"
)

// Sort orders records in place, stably. Records with a null or empty value
// for the key always land at the end, in both directions. Numeric keys (time,
// size, vmid) compare numerically, everything else as case-insensitive text.
func Sort(records []UnifiedBackup, key string, desc bool) {
	sort.SliceStable(records, func(i, j int) bool {
		return sortLess(records[i], records[j], key, desc)
	})
}

func sortLess(a, b UnifiedBackup, key string, desc bool) bool {
	av := sortValue(a, key)
	bv := sortValue(b, key)
	if av.null != bv.null {
		return !av.null
	}
	if av.null {
		return false
	}
	var c int
	if av.numeric {
		switch {
		case av.num < bv.num:
			c = -1
		case av.num > bv.num:
			c = 1
		}
	} else {
		c = strings.Compare(strings.ToLower(av.str), strings.ToLower(bv.str))
	}
	if c == 0 {
		return false
	}
	if desc {
		return c > 0
	}
	return c < 0
}

type sortKeyValue struct {
	null    bool
	numeric bool
	num     int64
	str     string
}

func sortValue(r UnifiedBackup, key string) sortKeyValue {
	numeric := func(n int64, null bool) sortKeyValue {
		return sortKeyValue{null: null, numeric: true, num: n}
	}
	text := func(s string) sortKeyValue {
		return sortKeyValue{null: strings.TrimSpace(s) == "", str: s}
	}
	switch key {
	case SortBySize:
		if r.Size == nil {
			return numeric(0, true)
		}
		return numeric(*r.Size, false)
	case SortByVMID:
		return numeric(int64(r.VMID), false)
	case SortByName:
		return text(r.Name)
	case SortByNode:
		return text(r.Node)
	case SortByStorage:
		return text(r.Storage)
	case SortByDatastore:
		return text(r.Datastore)
	case SortByNamespace:
		return text(r.Namespace)
	case SortByCategory:
		return text(string(r.Category))
	case SortByKind:
		return text(string(r.Kind))
	case SortByVerified:
		if r.Verified == nil {
			return sortKeyValue{null: true}
		}
		if *r.Verified {
			return text("verified")
		}
		return text("unverified")
	default:
		return numeric(r.Time, r.Time == 0)
	}
}
