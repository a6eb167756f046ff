package store

import (
	"encoding/json"
	"time"
)

type User struct {
	ID           string
	DisplayName  string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Document statuses. A document is editable from creation until it is locked
// exactly once; after that content and html are immutable via the edit path.
const (
	StatusEditable = "editable"
	StatusLocked   = "locked"
)

// Document is one user's instance of a blueprint: the answers they gave, the
// HTML rendered (or hand-edited) from them, and the lock state.
type Document struct {
	ID               string
	OwnerID          string
	Title            string
	Slug             string
	Kind             string
	Jurisdiction     string
	BlueprintSlug    string
	BlueprintVersion int
	Status           string
	Content          json.RawMessage // answer map, null until first save
	HTML             *string         // rendered or freeform output, nullable
	LockedAt         *time.Time
	LockDeadline     *time.Time // auto-lock boundary for the editing window
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DraftPatch carries a partial document update. SetContent/SetHTML distinguish
// "leave untouched" from "overwrite, possibly with null".
type DraftPatch struct {
	SetContent bool
	Content    json.RawMessage
	SetHTML    bool
	HTML       *string
}

// Empty reports whether the patch would change nothing.
func (p DraftPatch) Empty() bool {
	return !p.SetContent && !p.SetHTML
}
