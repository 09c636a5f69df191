package backups

import "strings"

// GuestKind maps a raw backup type to an entity kind:
// - vmid 0 or type host -> Host
// - qemu/vm -> VM
// - lxc/ct -> Container
// - else -> Container
func GuestKind(vmid int, typ string) EntityKind {
	s := strings.ToLower(strings.TrimSpace(typ))
	if vmid == 0 || s == "host" {
		return KindHost
	}
	switch s {
	case "qemu", "vm":
		return KindVM
	case "lxc", "ct", "container":
		return KindContainer
	default:
		return KindContainer
	}
}

// SnapshotKind maps a guest snapshot type: qemu -> VM, anything else -> Container.
func SnapshotKind(typ string) EntityKind {
	if strings.ToLower(strings.TrimSpace(typ)) == "qemu" {
		return KindVM
	}
	return KindContainer
}

// CanonicalNamespace folds the root-namespace spellings ("", "/", "root") into
// "root" and strips a leading slash from non-root paths. Comparisons must use
// the canonical form.
func CanonicalNamespace(ns string) string {
	ns = strings.TrimSpace(ns)
	ns = strings.TrimPrefix(ns, "/")
	if ns == "" || ns == "root" {
		return "root"
	}
	return ns
}
