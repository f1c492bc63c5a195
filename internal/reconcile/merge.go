package reconcile

import (
	"time"

	"github.com/sells-group/remates-cli/internal/model"
)

// MergeUpdate builds the update applied when incoming duplicates a stored
// notice. raw_text is always replaced; an escalation tier is written only
// when the stored one is unset and the incoming one is set. Tiers never go
// back.
func MergeUpdate(stored, incoming *model.Remate, now time.Time) model.RemateUpdate {
	u := model.RemateUpdate{RawText: incoming.RawText, UpdatedAt: now}
	if t := incoming.SecondTier(); !stored.SecondTier().IsSet() && t.IsSet() {
		u.Second = &t
	}
	if t := incoming.ThirdTier(); !stored.ThirdTier().IsSet() && t.IsSet() {
		u.Third = &t
	}
	return u
}
