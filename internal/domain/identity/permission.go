package identity

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/marketplace/portal/internal/domain/shared"
)

// Module is an admin console area that can be granted to a sub-admin.
// The set is closed: permission maps with any other key are rejected.
type Module string

const (
	ModuleDashboard  Module = "dashboard"
	ModuleProducts   Module = "products"
	ModuleBulkImport Module = "bulk_import"
	ModuleOrders     Module = "orders"
	ModuleReturns    Module = "returns"
	ModuleVendors    Module = "vendors"
	ModuleOffers     Module = "offers"
	ModuleReports    Module = "reports"
	ModuleTeam       Module = "team"
	ModuleHomepage   Module = "homepage"
)

// AllModules lists modules in the order the permission editor shows them
var AllModules = []Module{
	ModuleDashboard,
	ModuleProducts,
	ModuleBulkImport,
	ModuleOrders,
	ModuleReturns,
	ModuleVendors,
	ModuleOffers,
	ModuleReports,
	ModuleTeam,
	ModuleHomepage,
}

var moduleLabels = map[Module]string{
	ModuleDashboard:  "Dashboard",
	ModuleProducts:   "Products",
	ModuleBulkImport: "Bulk Import",
	ModuleOrders:     "Orders",
	ModuleReturns:    "Returns & Replacements",
	ModuleVendors:    "Vendors",
	ModuleOffers:     "Offers",
	ModuleReports:    "Reports",
	ModuleTeam:       "Team",
	ModuleHomepage:   "Homepage",
}

// IsValid checks if the module is one of the known modules
func (m Module) IsValid() bool {
	_, ok := moduleLabels[m]
	return ok
}

// Label is the display name of the module
func (m Module) Label() string {
	return moduleLabels[m]
}

// Action is one capability within a module
type Action string

const (
	ActionView Action = "view"
	ActionAdd  Action = "add"
	ActionEdit Action = "edit"
	ActionBulk Action = "bulk"
)

// IsValid checks if the action is known
func (a Action) IsValid() bool {
	switch a {
	case ActionView, ActionAdd, ActionEdit, ActionBulk:
		return true
	}
	return false
}

// Capability is the {view, add, edit, bulk} record granted per module
type Capability struct {
	View bool `json:"view"`
	Add  bool `json:"add"`
	Edit bool `json:"edit"`
	Bulk bool `json:"bulk"`
}

// Allows reports whether the capability includes action
func (c Capability) Allows(a Action) bool {
	switch a {
	case ActionView:
		return c.View
	case ActionAdd:
		return c.Add
	case ActionEdit:
		return c.Edit
	case ActionBulk:
		return c.Bulk
	}
	return false
}

// Any reports whether anything is granted
func (c Capability) Any() bool {
	return c.View || c.Add || c.Edit || c.Bulk
}

// normalize grants view whenever another action is granted
func (c Capability) normalize() Capability {
	if c.Add || c.Edit || c.Bulk {
		c.View = true
	}
	return c
}

// FullCapability grants every action
func FullCapability() Capability {
	return Capability{View: true, Add: true, Edit: true, Bulk: true}
}

// PermissionSet maps each module to its capability. Modules absent from the
// set have no access.
type PermissionSet map[Module]Capability

// ParsePermissions converts a loosely keyed map, as sent by the team editor,
// into a PermissionSet. Unknown modules are an error; empty capabilities
// are dropped.
func ParsePermissions(raw map[string]Capability) (PermissionSet, error) {
	set := make(PermissionSet, len(raw))
	for key, c := range raw {
		m := Module(strings.ToLower(strings.TrimSpace(key)))
		if !m.IsValid() {
			return nil, shared.NewDomainError("INVALID_PERMISSION_MODULE", fmt.Sprintf("Unknown permission module: %s", key))
		}
		if c.Any() {
			set[m] = c.normalize()
		}
	}
	return set, nil
}

// FullPermissions grants every module
func FullPermissions() PermissionSet {
	set := make(PermissionSet, len(AllModules))
	for _, m := range AllModules {
		set[m] = FullCapability()
	}
	return set
}

// Allows reports whether the set grants action on module
func (p PermissionSet) Allows(m Module, a Action) bool {
	return p[m].Allows(a)
}

// Covers reports whether every action granted in other is also granted in p
func (p PermissionSet) Covers(other PermissionSet) bool {
	for m, c := range other {
		held := p[m]
		if (c.View && !held.View) || (c.Add && !held.Add) || (c.Edit && !held.Edit) || (c.Bulk && !held.Bulk) {
			return false
		}
	}
	return true
}

// Codes flattens the set into "module:action" strings, sorted, for token claims
func (p PermissionSet) Codes() []string {
	codes := make([]string, 0, len(p)*2)
	for m, c := range p {
		for _, a := range []Action{ActionView, ActionAdd, ActionEdit, ActionBulk} {
			if c.Allows(a) {
				codes = append(codes, string(m)+":"+string(a))
			}
		}
	}
	sort.Strings(codes)
	return codes
}

// PermissionsFromCodes rebuilds a set from "module:action" strings.
// Malformed or unknown codes are skipped.
func PermissionsFromCodes(codes []string) PermissionSet {
	set := make(PermissionSet)
	for _, code := range codes {
		mod, act, ok := strings.Cut(code, ":")
		if !ok {
			continue
		}
		m, a := Module(mod), Action(act)
		if !m.IsValid() || !a.IsValid() {
			continue
		}
		c := set[m]
		switch a {
		case ActionView:
			c.View = true
		case ActionAdd:
			c.Add = true
		case ActionEdit:
			c.Edit = true
		case ActionBulk:
			c.Bulk = true
		}
		set[m] = c
	}
	return set
}

// MarshalJSON writes every known module so the editor always gets a full grid
func (p PermissionSet) MarshalJSON() ([]byte, error) {
	out := make(map[string]Capability, len(AllModules))
	for _, m := range AllModules {
		out[string(m)] = p[m]
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses through ParsePermissions
func (p *PermissionSet) UnmarshalJSON(data []byte) error {
	var raw map[string]Capability
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	set, err := ParsePermissions(raw)
	if err != nil {
		return err
	}
	*p = set
	return nil
}

// ModuleInfo describes a module for the permission editor
type ModuleInfo struct {
	Key   Module `json:"key"`
	Label string `json:"label"`
}

// Modules returns the catalog of modules
func Modules() []ModuleInfo {
	out := make([]ModuleInfo, 0, len(AllModules))
	for _, m := range AllModules {
		out = append(out, ModuleInfo{Key: m, Label: m.Label()})
	}
	return out
}
