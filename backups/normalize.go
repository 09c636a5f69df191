package backups

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dedupKey identifies one physical guest backup across the PBS and storage
// feeds. Both feeds report completion time in whole seconds for the same
// backup, which is what makes the key collide on purpose.
type dedupKey struct {
	vmid int
	unix int64
}

// pmgKey identifies one PMG host-config backup.
type pmgKey struct {
	instance string
	node     string
	filename string
}

type guestIndex struct {
	exact map[guestIndexKey]string
	byID  map[int][]string
}

type guestIndexKey struct {
	vmid     int
	instance string
}

func newGuestIndex(guests []Guest) guestIndex {
	idx := guestIndex{
		exact: make(map[guestIndexKey]string),
		byID:  make(map[int][]string),
	}
	for _, g := range guests {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			continue
		}
		idx.exact[guestIndexKey{vmid: g.VMID, instance: g.Instance}] = name
		idx.byID[g.VMID] = append(idx.byID[g.VMID], name)
	}
	return idx
}

func (g guestIndex) name(vmid int, instance string) (string, bool) {
	n, ok := g.exact[guestIndexKey{vmid: vmid, instance: instance}]
	return n, ok
}

// anyName resolves a vmid without an instance. Only an unambiguous vmid
// resolves; PBS instances never match PVE instance names so this is all the
// PBS feed can use.
func (g guestIndex) anyName(vmid int) (string, bool) {
	names := g.byID[vmid]
	if len(names) == 0 {
		return "", false
	}
	for _, n := range names[1:] {
		if n != names[0] {
			return "", false
		}
	}
	return names[0], true
}

func guestLabel(kind EntityKind, vmid int) string {
	switch kind {
	case KindVM:
		return fmt.Sprintf("VM %d", vmid)
	case KindContainer:
		return fmt.Sprintf("CT %d", vmid)
	default:
		return fmt.Sprintf("Host %d", vmid)
	}
}

// Unify maps the raw feeds into one unified backup list. It is a pure
// projection: same feeds in, same list out. The PBS feed is processed before
// the storage feed so that a PBS backup surfaced a second time through
// PBS-backed Proxmox storage is emitted exactly once. A storage record is only
// suppressed when it is flagged PBS-backed and carries a usable timestamp, so
// an ambiguous record shows up as a duplicate row rather than vanishing.
func Unify(feeds Feeds) []UnifiedBackup {
	dir := newGuestIndex(feeds.Guests)
	out := make([]UnifiedBackup, 0, len(feeds.PBS)+len(feeds.Storage)+len(feeds.Snapshots)+len(feeds.PMG))

	seen := make(map[dedupKey]bool, len(feeds.PBS))
	for _, b := range feeds.PBS {
		rec := fromPBS(b, dir)
		if rec.Time > 0 {
			seen[dedupKey{vmid: rec.VMID, unix: rec.Time}] = true
		}
		out = append(out, rec)
	}

	for _, b := range feeds.Storage {
		typ := strings.ToLower(strings.TrimSpace(b.Type))
		if typ == "vztmpl" || typ == "iso" {
			// Templates and ISO images share the storage content listing but
			// are not backups.
			continue
		}
		if b.IsPBS && b.CTime > 0 && seen[dedupKey{vmid: b.VMID, unix: b.CTime}] {
			continue
		}
		out = append(out, fromStorage(b, dir))
	}

	for _, s := range feeds.Snapshots {
		out = append(out, fromSnapshot(s, dir))
	}

	seenPMG := make(map[pmgKey]bool, len(feeds.PMG))
	for _, p := range feeds.PMG {
		k := pmgKey{instance: p.Instance, node: p.Node, filename: p.Filename}
		if seenPMG[k] {
			continue
		}
		seenPMG[k] = true
		out = append(out, fromPMG(p))
	}

	return out
}

func fromPBS(b PBSBackup, dir guestIndex) UnifiedBackup {
	vmid, err := strconv.Atoi(strings.TrimSpace(b.VMID))
	if err != nil {
		vmid = 0
	}
	kind := GuestKind(vmid, b.BackupType)
	name, ok := dir.anyName(vmid)
	if !ok {
		name = guestLabel(kind, vmid)
	}
	verified := b.Verified
	return UnifiedBackup{
		Category:  CategoryRemote,
		VMID:      vmid,
		Kind:      kind,
		Name:      name,
		Instance:  b.Instance,
		Time:      unixOrZero(b.BackupTime),
		Size:      sizePtr(b.Size),
		Datastore: b.Datastore,
		Namespace: CanonicalNamespace(b.Namespace),
		Verified:  &verified,
		Protected: b.Protected,
		Encrypted: pbsEncrypted(b.Files),
		Owner:     b.Owner,
		Comment:   b.Comment,
	}
}

func fromStorage(b StorageBackup, dir guestIndex) UnifiedBackup {
	kind := GuestKind(b.VMID, b.Type)
	name, ok := dir.name(b.VMID, b.Instance)
	if !ok {
		name = guestLabel(kind, b.VMID)
	}
	rec := UnifiedBackup{
		Category:    CategoryLocal,
		VMID:        b.VMID,
		Kind:        kind,
		Name:        name,
		BackupName:  volidTail(b.Volid),
		Node:        b.Node,
		Instance:    b.Instance,
		Time:        b.CTime,
		Size:        sizePtr(b.Size),
		Storage:     b.Storage,
		Protected:   b.Protected,
		Encrypted:   b.Encrypted,
		Description: b.Notes,
	}
	if b.IsPBS {
		rec.Category = CategoryRemote
		verified := b.Verified
		rec.Verified = &verified
	}
	return rec
}

func fromSnapshot(s GuestSnapshot, dir guestIndex) UnifiedBackup {
	kind := SnapshotKind(s.Type)
	name, ok := dir.name(s.VMID, s.Instance)
	if !ok {
		name = guestLabel(kind, s.VMID)
	}
	return UnifiedBackup{
		Category:    CategorySnapshot,
		VMID:        s.VMID,
		Kind:        kind,
		Name:        name,
		BackupName:  s.Name,
		Node:        s.Node,
		Instance:    s.Instance,
		Time:        unixOrZero(s.Time),
		Size:        sizePtr(s.SizeBytes),
		Description: s.Description,
	}
}

func fromPMG(p PMGBackup) UnifiedBackup {
	return UnifiedBackup{
		Category:   CategoryLocal,
		Kind:       KindHost,
		Name:       p.Node,
		BackupName: p.Filename,
		Node:       p.Node,
		Instance:   p.Instance,
		Time:       unixOrZero(p.BackupTime),
		Size:       sizePtr(p.Size),
		Storage:    "PMG",
	}
}

// pbsEncrypted reports whether any constituent file carries an encrypting
// crypt mode or an encrypted-file suffix.
func pbsEncrypted(files []PBSBackupFile) bool {
	for _, f := range files {
		mode := strings.ToLower(strings.TrimSpace(f.CryptMode))
		if strings.HasPrefix(mode, "encrypt") || mode == "crypt" {
			return true
		}
		if strings.HasSuffix(f.Filename, ".enc") {
			return true
		}
	}
	return false
}

func volidTail(volid string) string {
	if i := strings.LastIndex(volid, "/"); i >= 0 {
		return volid[i+1:]
	}
	return volid
}

func sizePtr(n int64) *int64 {
	if n <= 0 {
		return nil
	}
	return &n
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
