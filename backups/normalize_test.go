package backups

import (
	"reflect"
	"testing"
	"time"
)

func TestUnifySnapshotMapping(t *testing.T) {
	when := time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)
	feeds := Feeds{
		Snapshots: []GuestSnapshot{
			{Name: "pre-upgrade", Node: "pve1", Instance: "cluster-a", Type: "qemu", VMID: 101, Time: when, Description: "before kernel update"},
			{Name: "daily", Node: "pve2", Instance: "cluster-a", Type: "lxc", VMID: 200},
		},
		Guests: []Guest{
			{VMID: 101, Name: "web01", Instance: "cluster-a"},
		},
	}
	out := Unify(feeds)
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}

	vm := out[0]
	if vm.Category != CategorySnapshot || vm.Kind != KindVM {
		t.Fatalf("unexpected category/kind: %s/%s", vm.Category, vm.Kind)
	}
	if vm.Name != "web01" {
		t.Fatalf("expected directory name web01, got %q", vm.Name)
	}
	if vm.BackupName != "pre-upgrade" || vm.Description != "before kernel update" {
		t.Fatalf("unexpected label/description: %q %q", vm.BackupName, vm.Description)
	}
	if vm.Time != when.Unix() {
		t.Fatalf("unexpected time: %d", vm.Time)
	}
	if vm.Verified != nil {
		t.Fatalf("snapshots must not carry verification")
	}
	if vm.Size != nil {
		t.Fatalf("missing snapshot size must stay nil")
	}

	ct := out[1]
	if ct.Kind != KindContainer {
		t.Fatalf("non-qemu snapshot should map to Container, got %s", ct.Kind)
	}
	if ct.Name != "CT 200" {
		t.Fatalf("expected synthesized name, got %q", ct.Name)
	}
	if ct.Time != 0 {
		t.Fatalf("zero time should stay 0, got %d", ct.Time)
	}
}

func TestUnifySkipsTemplatesAndISOs(t *testing.T) {
	feeds := Feeds{
		Storage: []StorageBackup{
			{Storage: "local", Node: "pve1", Instance: "cluster-a", Type: "vztmpl", VMID: 0, CTime: 1700000000},
			{Storage: "local", Node: "pve1", Instance: "cluster-a", Type: "iso", VMID: 0, CTime: 1700000001},
			{Storage: "local", Node: "pve1", Instance: "cluster-a", Type: "qemu", VMID: 101, CTime: 1700000002, Size: 1024},
		},
	}
	out := Unify(feeds)
	if len(out) != 1 {
		t.Fatalf("expected only the qemu backup, got %d records", len(out))
	}
	if out[0].Kind != KindVM || out[0].Category != CategoryLocal {
		t.Fatalf("unexpected record: %+v", out[0])
	}
}

func TestUnifyStorageKinds(t *testing.T) {
	cases := []struct {
		vmid int
		typ  string
		want EntityKind
	}{
		{0, "qemu", KindHost},
		{7, "host", KindHost},
		{101, "qemu", KindVM},
		{101, "vm", KindVM},
		{102, "lxc", KindContainer},
		{102, "ct", KindContainer},
		{103, "weird", KindContainer},
	}
	for _, c := range cases {
		got := GuestKind(c.vmid, c.typ)
		if got != c.want {
			t.Fatalf("GuestKind(%d, %q) = %s, want %s", c.vmid, c.typ, got, c.want)
		}
	}
}

func TestUnifyStorageCategories(t *testing.T) {
	feeds := Feeds{
		Storage: []StorageBackup{
			{Storage: "local", Node: "pve1", Instance: "cluster-a", Type: "lxc", VMID: 104, CTime: 1700000000, Size: 2048, Verified: true},
			{Storage: "pbs-main", Node: "pve1", Instance: "cluster-a", Type: "lxc", VMID: 105, CTime: 1700000100, Size: 4096, IsPBS: true, Verified: true},
		},
	}
	out := Unify(feeds)
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	local := out[0]
	if local.Category != CategoryLocal {
		t.Fatalf("plain storage backup must be local, got %s", local.Category)
	}
	if local.Verified != nil {
		t.Fatalf("local backups must not carry verification")
	}
	remote := out[1]
	if remote.Category != CategoryRemote {
		t.Fatalf("PBS-backed storage backup must be remote, got %s", remote.Category)
	}
	if remote.Verified == nil || !*remote.Verified {
		t.Fatalf("remote backup should keep its verified flag")
	}
}

func TestUnifyPBSMapping(t *testing.T) {
	when := time.Date(2024, 1, 15, 2, 0, 0, 0, time.UTC)
	feeds := Feeds{
		PBS: []PBSBackup{
			{Instance: "pbs1", Datastore: "main", Namespace: "/", BackupType: "ct", VMID: "104", BackupTime: when, Size: 8192, Owner: "root@pam", Comment: "nightly", Verified: true},
			{Instance: "pbs1", Datastore: "main", Namespace: "", BackupType: "host", VMID: "0", BackupTime: when.Add(time.Hour)},
			{Instance: "pbs1", Datastore: "main", Namespace: "prod/web", BackupType: "vm", VMID: "bogus", BackupTime: when.Add(2 * time.Hour)},
		},
	}
	out := Unify(feeds)
	if len(out) != 3 {
		t.Fatalf("expected 3 records, got %d", len(out))
	}

	ct := out[0]
	if ct.Category != CategoryRemote || ct.Kind != KindContainer || ct.VMID != 104 {
		t.Fatalf("unexpected record: %+v", ct)
	}
	if ct.Namespace != "root" {
		t.Fatalf("namespace %q should canonicalize to root", ct.Namespace)
	}
	if ct.Datastore != "main" || ct.Storage != "" {
		t.Fatalf("PBS records populate datastore, not storage: %+v", ct)
	}
	if ct.Verified == nil || !*ct.Verified {
		t.Fatalf("verified flag lost")
	}
	if ct.Owner != "root@pam" || ct.Comment != "nightly" {
		t.Fatalf("owner/comment lost: %+v", ct)
	}

	host := out[1]
	if host.Kind != KindHost || host.VMID != 0 {
		t.Fatalf("vmid 0 must map to Host: %+v", host)
	}
	if host.Namespace != "root" {
		t.Fatalf("empty namespace should canonicalize to root, got %q", host.Namespace)
	}

	leading := out[2]
	if leading.Namespace != "prod/web" {
		t.Fatalf("non-root namespace mangled: %q", leading.Namespace)
	}
	if leading.VMID != 0 {
		t.Fatalf("unparsable vmid should fall back to 0, got %d", leading.VMID)
	}
}

func TestUnifyPBSEncryption(t *testing.T) {
	when := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	feeds := Feeds{
		PBS: []PBSBackup{
			{Instance: "pbs1", Datastore: "main", VMID: "101", BackupTime: when, Files: []PBSBackupFile{{Filename: "drive-scsi0.img.fidx", CryptMode: "encrypt"}}},
			{Instance: "pbs1", Datastore: "main", VMID: "102", BackupTime: when, Files: []PBSBackupFile{{Filename: "catalog.pcat1.enc"}}},
			{Instance: "pbs1", Datastore: "main", VMID: "103", BackupTime: when, Files: []PBSBackupFile{{Filename: "drive-scsi0.img.fidx", CryptMode: "none"}}},
			{Instance: "pbs1", Datastore: "main", VMID: "104", BackupTime: when},
		},
	}
	out := Unify(feeds)
	want := []bool{true, true, false, false}
	for i, rec := range out {
		if rec.Encrypted != want[i] {
			t.Fatalf("record %d: encrypted=%v, want %v", i, rec.Encrypted, want[i])
		}
	}
}

func TestUnifyPMGMapping(t *testing.T) {
	when := time.Date(2024, 6, 2, 4, 0, 0, 0, time.UTC)
	feeds := Feeds{
		PMG: []PMGBackup{
			{Instance: "pmg1", Node: "mail1", Filename: "pmg-backup_2024_06_02.tgz", BackupTime: when, Size: 512},
		},
	}
	out := Unify(feeds)
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
	rec := out[0]
	if rec.Category != CategoryLocal || rec.Kind != KindHost {
		t.Fatalf("PMG backups are local host backups: %+v", rec)
	}
	if rec.Storage != "PMG" {
		t.Fatalf("expected storage PMG, got %q", rec.Storage)
	}
	if rec.Verified != nil {
		t.Fatalf("PMG backups have no verification concept")
	}
	if rec.BackupName != "pmg-backup_2024_06_02.tgz" || rec.Name != "mail1" {
		t.Fatalf("unexpected names: %+v", rec)
	}
}

func TestUnifyIdempotent(t *testing.T) {
	when := time.Date(2024, 1, 15, 2, 0, 0, 0, time.UTC)
	feeds := Feeds{
		Snapshots: []GuestSnapshot{{Name: "s1", Type: "qemu", VMID: 101, Instance: "a", Time: when}},
		Storage:   []StorageBackup{{Storage: "local", Type: "lxc", VMID: 104, Instance: "a", CTime: when.Unix(), Size: 10}},
		PBS:       []PBSBackup{{Instance: "pbs1", Datastore: "main", BackupType: "ct", VMID: "104", BackupTime: when}},
		PMG:       []PMGBackup{{Instance: "pmg1", Node: "mail1", Filename: "a.tgz", BackupTime: when}},
	}
	first := Unify(feeds)
	second := Unify(feeds)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Unify is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestVerifiedOnlyOnRemote(t *testing.T) {
	when := time.Date(2024, 1, 15, 2, 0, 0, 0, time.UTC)
	feeds := Feeds{
		Snapshots: []GuestSnapshot{{Name: "s1", Type: "qemu", VMID: 101, Time: when}},
		Storage: []StorageBackup{
			{Storage: "local", Type: "lxc", VMID: 102, CTime: when.Unix(), Verified: true},
			{Storage: "pbs-main", Type: "lxc", VMID: 103, CTime: when.Unix(), IsPBS: true},
		},
		PBS: []PBSBackup{{Instance: "pbs1", Datastore: "main", BackupType: "vm", VMID: "104", BackupTime: when}},
		PMG: []PMGBackup{{Instance: "pmg1", Node: "mail1", Filename: "a.tgz", BackupTime: when}},
	}
	for _, rec := range Unify(feeds) {
		if rec.Category != CategoryRemote && rec.Verified != nil {
			t.Fatalf("non-remote record carries verification: %+v", rec)
		}
		if rec.Category == CategoryRemote && rec.Verified == nil {
			t.Fatalf("remote record lost verification: %+v", rec)
		}
	}
}

func TestCanonicalNamespace(t *testing.T) {
	cases := map[string]string{
		"":          "root",
		"/":         "root",
		"root":      "root",
		" root ":    "root",
		"/prod":     "prod",
		"prod/web":  "prod/web",
		"/prod/web": "prod/web",
	}
	for in, want := range cases {
		if got := CanonicalNamespace(in); got != want {
			t.Fatalf("CanonicalNamespace(%q) = %q, want %q", in, got, want)
		}
	}
}
