// Package scoping resolves the effective view of a catalog process for a
// (country, department) scope. A customization overlays the base process
// field by field: only its non-empty item lists replace the base lists,
// while its kanban status always stands on its own.
package scoping

import (
	"strings"

	"github.com/samber/lo"

	"github.com/erd-lab/procatalog/dao/model"
)

// Scope names the customization axis of a read. A nil DepartmentID selects
// country-wide customizations only.
type Scope struct {
	CountryCode  string
	DepartmentID *uint
}

// IsZero reports whether the read is unscoped.
func (s Scope) IsZero() bool {
	return s.CountryCode == "" && s.DepartmentID == nil
}

// Resolved is the effective view of one process under one scope.
type Resolved struct {
	Inputs       model.ItemList
	Tools        model.ItemList
	Outputs      model.ItemList
	KanbanStatus model.KanbanStatus
	// Customization is the matched override row, nil when the base process
	// is served unmodified.
	Customization *model.Customization
}

// Match returns the customization among candidates that belongs to the
// scope, or nil. Country codes compare case-insensitively; the department
// must match exactly, with nil matching only customizations that carry no
// department.
func Match(customizations []model.Customization, s Scope) *model.Customization {
	matched, ok := lo.Find(customizations, func(c model.Customization) bool {
		if !strings.EqualFold(c.CountryCode, s.CountryCode) {
			return false
		}
		if s.DepartmentID == nil {
			return c.DepartmentID == nil
		}
		return c.DepartmentID != nil && *c.DepartmentID == *s.DepartmentID
	})
	if !ok {
		return nil
	}
	return &matched
}

// Resolve merges the matching customization onto the base process. Without
// a match the base fields come back unmodified.
func Resolve(p *model.Process, customizations []model.Customization, s Scope) Resolved {
	r := Resolved{
		Inputs:       p.Inputs,
		Tools:        p.Tools,
		Outputs:      p.Outputs,
		KanbanStatus: p.KanbanStatus,
	}
	if s.IsZero() {
		return r
	}
	c := Match(customizations, s)
	if c == nil {
		return r
	}
	if len(c.Inputs) > 0 {
		r.Inputs = c.Inputs
	}
	if len(c.Tools) > 0 {
		r.Tools = c.Tools
	}
	if len(c.Outputs) > 0 {
		r.Outputs = c.Outputs
	}
	r.KanbanStatus = c.KanbanStatus
	r.Customization = c
	return r
}
