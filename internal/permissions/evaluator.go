package permissions

import (
	"fmt"
	"strings"

	"github.com/charlesng35/fleetcn/internal/models"
)

// Action is an operation a role may be granted on a resource.
type Action string

const (
	ActionView   Action = "view"
	ActionInsert Action = "insert"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Actions lists every action in display order.
func Actions() []Action {
	return []Action{ActionView, ActionInsert, ActionEdit, ActionDelete}
}

// ErrUnknownAction indicates an action name outside view/insert/edit/delete.
var ErrUnknownAction = fmt.Errorf("permission: unknown action")

// ParseAction converts a case-insensitive action name into an Action.
func ParseAction(value string) (Action, error) {
	switch action := Action(strings.ToLower(strings.TrimSpace(value))); action {
	case ActionView, ActionInsert, ActionEdit, ActionDelete:
		return action, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownAction, value)
	}
}

// Record is the set of actions granted on one resource. CanAll grants every action on
// that resource regardless of the individual flags.
type Record struct {
	ResourceID string `json:"resource_id"`
	CanView    bool   `json:"can_view"`
	CanInsert  bool   `json:"can_insert"`
	CanEdit    bool   `json:"can_edit"`
	CanDelete  bool   `json:"can_delete"`
	CanAll     bool   `json:"can_all"`
}

// Allows reports whether the record grants action. Unknown actions are denied.
func (r Record) Allows(action Action) bool {
	if r.CanAll {
		return true
	}
	switch action {
	case ActionView:
		return r.CanView
	case ActionInsert:
		return r.CanInsert
	case ActionEdit:
		return r.CanEdit
	case ActionDelete:
		return r.CanDelete
	default:
		return false
	}
}

// HasPermission reports whether perms grants action on resourceID. The first record whose
// ResourceID equals resourceID decides; when none matches the answer is false. A nil or
// empty snapshot denies everything.
func HasPermission(perms []Record, resourceID string, action Action) bool {
	for _, rec := range perms {
		if rec.ResourceID == resourceID {
			return rec.Allows(action)
		}
	}
	return false
}

// RecordFromModel converts a persisted role permission into a Record.
func RecordFromModel(rp models.RolePermission) Record {
	return Record{
		ResourceID: rp.MenuID,
		CanView:    rp.CanView,
		CanInsert:  rp.CanInsert,
		CanEdit:    rp.CanEdit,
		CanDelete:  rp.CanDelete,
		CanAll:     rp.CanAll,
	}
}

// FullAccess returns a record granting every action on resourceID.
func FullAccess(resourceID string) Record {
	return Record{
		ResourceID: resourceID,
		CanView:    true,
		CanInsert:  true,
		CanEdit:    true,
		CanDelete:  true,
		CanAll:     true,
	}
}
