package backups

import (
	"encoding/json"
	"time"
)

// Raw feed shapes. These mirror the backend API payloads and are parsed
// defensively: missing or null fields fall back per the rules in normalize.go,
// they never fail the run.

// GuestSnapshot is a point-in-time snapshot of a VM or container. Snapshots
// live inside the hypervisor; there is no size or verification data.
type GuestSnapshot struct {
	Name        string    `json:"name"`
	Node        string    `json:"node"`
	Instance    string    `json:"instance"` // disambiguates same-named nodes across clusters
	Type        string    `json:"type"`     // qemu, lxc
	VMID        int       `json:"vmid"`
	Time        time.Time `json:"time"`
	Description string    `json:"description,omitempty"`
	SizeBytes   int64     `json:"sizeBytes,omitempty"`
}

// StorageBackup is a backup file resident on Proxmox storage. Type spellings
// vary by API path (qemu/vm, lxc/ct, host, vztmpl, iso).
type StorageBackup struct {
	Storage   string `json:"storage"`
	Node      string `json:"node"`
	Instance  string `json:"instance"`
	Type      string `json:"type"`
	VMID      int    `json:"vmid"`
	CTime     int64  `json:"ctime"` // unix seconds
	Size      int64  `json:"size"`
	Notes     string `json:"notes,omitempty"`
	Volid     string `json:"volid"`
	Protected bool   `json:"protected"`
	Encrypted bool   `json:"encrypted"`
	IsPBS     bool   `json:"isPBS"` // backup lives on PBS-backed storage
	Verified  bool   `json:"verified"`
}

// PBSBackupFile is one constituent file of a PBS backup group. Older backends
// emit bare filename strings instead of objects; both forms decode.
type PBSBackupFile struct {
	Filename  string `json:"filename"`
	CryptMode string `json:"crypt-mode,omitempty"`
}

func (f *PBSBackupFile) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = PBSBackupFile{Filename: s}
		return nil
	}
	type alias PBSBackupFile
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*f = PBSBackupFile(a)
	return nil
}

// PBSBackup is a backup entry reported directly by a PBS datastore. VMID is a
// string per the PBS API; "0" marks host-configuration backups.
type PBSBackup struct {
	Instance   string          `json:"instance"` // PBS instance name
	Datastore  string          `json:"datastore"`
	Namespace  string          `json:"namespace"` // root spelled "", "/" or "root" depending on feed
	BackupType string          `json:"backupType"`
	VMID       string          `json:"vmid"`
	BackupTime time.Time       `json:"backupTime"`
	Size       int64           `json:"size"`
	Owner      string          `json:"owner,omitempty"`
	Comment    string          `json:"comment,omitempty"`
	Verified   bool            `json:"verified"`
	Protected  bool            `json:"protected"`
	Files      []PBSBackupFile `json:"files,omitempty"`
}

// PMGBackup is a host-configuration backup generated by a Mail Gateway node.
type PMGBackup struct {
	ID         string    `json:"id"`
	Instance   string    `json:"instance"`
	Node       string    `json:"node"`
	Filename   string    `json:"filename"`
	BackupTime time.Time `json:"backupTime"`
	Size       int64     `json:"size"`
}

// Guest is one entry of the guest directory used for display-name lookups.
type Guest struct {
	VMID     int    `json:"vmid"`
	Name     string `json:"name"`
	Node     string `json:"node"`
	Instance string `json:"instance"`
	Type     string `json:"type"`
}

// Feeds bundles the raw inputs of one unify run.
type Feeds struct {
	Snapshots []GuestSnapshot
	Storage   []StorageBackup
	PBS       []PBSBackup
	PMG       []PMGBackup
	Guests    []Guest
}

// Category classifies where a backup physically lives.
type Category string

const (
	CategorySnapshot Category = "snapshot" // in-hypervisor snapshot
	CategoryLocal    Category = "local"    // Proxmox-local backup file
	CategoryRemote   Category = "remote"   // PBS-resident backup
)

// EntityKind is the kind of entity a backup belongs to.
type EntityKind string

const (
	KindVM        EntityKind = "VM"
	KindContainer EntityKind = "Container"
	KindHost      EntityKind = "Host"
	KindPod       EntityKind = "Pod"
)

// UnifiedBackup is the canonical record every feed maps into. At most one of
// Storage and Datastore is populated. Verified stays nil unless the category
// is remote; Size nil means the feed did not report one. Time 0 means unknown
// and sorts last.
type UnifiedBackup struct {
	Category    Category   `json:"category"`
	VMID        int        `json:"vmid"`
	Kind        EntityKind `json:"kind"`
	Name        string     `json:"name"`
	BackupName  string     `json:"backupName,omitempty"` // snapshot label, volume or file name
	Node        string     `json:"node,omitempty"`
	Instance    string     `json:"instance"`
	Time        int64      `json:"time"` // unix seconds
	Size        *int64     `json:"sizeBytes"`
	Storage     string     `json:"storage,omitempty"`
	Datastore   string     `json:"datastore,omitempty"`
	Namespace   string     `json:"namespace,omitempty"` // canonical, "root" for the root namespace
	Verified    *bool      `json:"verified"`
	Protected   bool       `json:"protected"`
	Encrypted   bool       `json:"encrypted"`
	Owner       string     `json:"owner,omitempty"`
	Comment     string     `json:"comment,omitempty"`
	Description string     `json:"description,omitempty"`
}
