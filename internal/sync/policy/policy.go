package policy

import (
	"time"

	"github.com/dl-alexandre/dsync/internal/localfs"
	"github.com/dl-alexandre/dsync/internal/types"
)

// Mode selects the comparison strategy for transfer decisions.
type Mode string

const (
	// ModeDefault compares timestamps at one-second resolution.
	ModeDefault Mode = "default"
	// ModeForce transfers every item regardless of local state.
	ModeForce Mode = "force"
	// ModeSkipExisting never overwrites an existing local or remote item.
	ModeSkipExisting Mode = "skip-existing"
	// ModeSizeAndTime additionally treats equal sizes with near-equal
	// timestamps as already in sync.
	ModeSizeAndTime Mode = "size-and-time"
)

// Valid reports whether m is a known comparison mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeDefault, ModeForce, ModeSkipExisting, ModeSizeAndTime:
		return true
	}
	return false
}

// Reason explains why an item was or was not transferred.
type Reason string

const (
	ReasonForce             Reason = "force"
	ReasonSkipExisting      Reason = "skip-existing"
	ReasonSizeAndTimeMatch  Reason = "size-and-time-match"
	ReasonRemoteNewer       Reason = "remote-newer"
	ReasonLocalNewer        Reason = "local-newer"
	ReasonLocalNewerOrSame  Reason = "local-newer-or-same"
	ReasonRemoteNewerOrSame Reason = "remote-newer-or-same"
	ReasonNotFoundLocally   Reason = "not-found-locally"
	ReasonCreated           Reason = "created"
	ReasonUpdated           Reason = "updated"
	ReasonExcluded          Reason = "excluded"
)

// Decision is the outcome of a staleness check.
type Decision struct {
	Transfer bool
	Reason   Reason
}

// Decide determines whether a remote item needs to be transferred onto the
// given local snapshot. It is pure: no I/O beyond the already-resolved
// snapshot, no side effects. First match wins.
func Decide(remote *types.RemoteItem, local localfs.Info, mode Mode) Decision {
	if mode == ModeForce {
		return Decision{Transfer: true, Reason: ReasonForce}
	}
	if !local.Exists {
		return Decision{Transfer: true, Reason: ReasonNotFoundLocally}
	}
	if mode == ModeSkipExisting {
		return Decision{Transfer: false, Reason: ReasonSkipExisting}
	}
	if mode == ModeSizeAndTime && sizeAndTimeMatch(remote, local) {
		return Decision{Transfer: false, Reason: ReasonSizeAndTimeMatch}
	}
	// Compare at one-second resolution: filesystems truncate timestamps, so
	// sub-second precision would cause spurious transfers.
	if remote.ModTime().Unix() > local.ModTime.Unix() {
		return Decision{Transfer: true, Reason: ReasonRemoteNewer}
	}
	return Decision{Transfer: false, Reason: ReasonLocalNewerOrSame}
}

// DecideUpload is the inverse-direction check: whether a local file needs to
// be pushed over an existing remote item.
func DecideUpload(local localfs.Info, remote *types.RemoteItem, mode Mode) Decision {
	if mode == ModeForce {
		return Decision{Transfer: true, Reason: ReasonForce}
	}
	if mode == ModeSkipExisting {
		return Decision{Transfer: false, Reason: ReasonSkipExisting}
	}
	if mode == ModeSizeAndTime && sizeAndTimeMatch(remote, local) {
		return Decision{Transfer: false, Reason: ReasonSizeAndTimeMatch}
	}
	if local.ModTime.Unix() > remote.ModTime().Unix() {
		return Decision{Transfer: true, Reason: ReasonLocalNewer}
	}
	return Decision{Transfer: false, Reason: ReasonRemoteNewerOrSame}
}

func sizeAndTimeMatch(remote *types.RemoteItem, local localfs.Info) bool {
	if !remote.HasSize() || remote.Size != local.Size {
		return false
	}
	delta := remote.ModTime().Sub(local.ModTime)
	if delta < 0 {
		delta = -delta
	}
	return delta < time.Second
}
