package permissions

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Resource describes a protected menu entry registered by a module.
type Resource struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

type resourceRegistry struct {
	mu        sync.RWMutex
	resources map[string]*Resource
}

var globalRegistry = &resourceRegistry{
	resources: make(map[string]*Resource),
}

var (
	errNilResource  = errors.New("permission: nil resource")
	errEmptyID      = errors.New("permission: resource id is required")
	errEmptyName    = errors.New("permission: resource name is required")
	errDuplicateID  = errors.New("permission: resource already registered")
	errIDWhitespace = errors.New("permission: resource id must not contain whitespace")
)

// ErrUnknownResource indicates a resource lookup failed because it has not been registered.
var ErrUnknownResource = errors.New("permission: unknown resource")

// Register adds a resource definition to the global registry.
func Register(res *Resource) error {
	if res == nil {
		return errNilResource
	}

	id := strings.TrimSpace(res.ID)
	if id == "" {
		return errEmptyID
	}
	if strings.ContainsAny(id, " \t\r\n") {
		return errIDWhitespace
	}

	def := *res
	def.ID = id
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return errEmptyName
	}

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, exists := globalRegistry.resources[id]; exists {
		return fmt.Errorf("%w: %s", errDuplicateID, id)
	}

	globalRegistry.resources[id] = &def
	return nil
}

// Get returns a copy of the resource definition when registered.
func Get(id string) (*Resource, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	res, ok := globalRegistry.resources[id]
	if !ok {
		return nil, false
	}
	cp := *res
	return &cp, true
}

// GetAll returns a copy of all registered resources keyed by ID.
func GetAll() map[string]*Resource {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	out := make(map[string]*Resource, len(globalRegistry.resources))
	for id, res := range globalRegistry.resources {
		cp := *res
		out[id] = &cp
	}
	return out
}

// List returns registered resources ordered by sort order, then ID.
func List() []Resource {
	all := GetAll()
	out := make([]Resource, 0, len(all))
	for _, res := range all {
		out = append(out, *res)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Visible filters the registry down to resources the snapshot allows viewing.
func Visible(perms []Record) []Resource {
	all := List()
	out := make([]Resource, 0, len(all))
	for _, res := range all {
		if HasPermission(perms, res.ID, ActionView) {
			out = append(out, res)
		}
	}
	return out
}

// reset clears registry entries. Intended for testing only.
func reset() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.resources = make(map[string]*Resource)
}
