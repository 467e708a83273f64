package project

import (
	"fmt"
	"strings"
)

// Category selects one of the three OrgEntity collections.
type Category int

const (
	BusinessUnit Category = iota
	Geography
	Label
)

// Categories lists every category in display order.
var Categories = []Category{BusinessUnit, Geography, Label}

type categoryOps struct {
	key      string
	noun     string
	idPrefix string
	entities func(*State) *[]OrgEntity
	links    func(*Stakeholder) *IDSet
}

var categoryTable = [...]categoryOps{
	BusinessUnit: {
		key:      "business_unit",
		noun:     "unit",
		idPrefix: "bu",
		entities: func(s *State) *[]OrgEntity { return &s.BusinessUnits },
		links:    func(s *Stakeholder) *IDSet { return &s.BusinessUnitIDs },
	},
	Geography: {
		key:      "geography",
		noun:     "geography",
		idPrefix: "geo",
		entities: func(s *State) *[]OrgEntity { return &s.Geographies },
		links:    func(s *Stakeholder) *IDSet { return &s.GeographyIDs },
	},
	Label: {
		key:      "label",
		noun:     "label",
		idPrefix: "l",
		entities: func(s *State) *[]OrgEntity { return &s.Labels },
		links:    func(s *Stakeholder) *IDSet { return &s.LabelIDs },
	},
}

func (c Category) valid() bool { return c >= 0 && int(c) < len(categoryTable) }

func (c Category) ops() categoryOps {
	if !c.valid() {
		panic(fmt.Sprintf("project: unknown category %d", int(c)))
	}
	return categoryTable[c]
}

func (c Category) String() string {
	if !c.valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryTable[c].key
}

// DefaultName is the placeholder name for a freshly added entity.
func (c Category) DefaultName() string { return "New " + c.ops().noun }

// ParseCategory maps the wire names (and a few aliases) to a Category.
func ParseCategory(raw string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "business_unit", "business-unit", "units", "unit", "bu":
		return BusinessUnit, nil
	case "geography", "geographies", "geo":
		return Geography, nil
	case "label", "labels":
		return Label, nil
	}
	return 0, fmt.Errorf("project: unknown category %q", raw)
}

// Links returns the stakeholder's association set for the category.
func (s Stakeholder) Links(c Category) IDSet {
	return *c.ops().links(&s)
}
