package models

import "strings"

// ServiceCategory is one of the fixed trades a request can be filed under
type ServiceCategory string

const (
	CategoryPlumbing       ServiceCategory = "Plumbing"
	CategoryCarpentry      ServiceCategory = "Carpentry"
	CategoryMasonry        ServiceCategory = "Masonry"
	CategoryElectrical     ServiceCategory = "Electrical"
	CategoryWelding        ServiceCategory = "Welding"
	CategoryGeneralRepairs ServiceCategory = "General Repairs"
	CategoryPainting       ServiceCategory = "Painting"
	CategoryGardening      ServiceCategory = "Gardening"
	CategoryCleaning       ServiceCategory = "Cleaning"
	CategoryOther          ServiceCategory = "Other"
)

// ServiceCategories lists every category in display order.
var ServiceCategories = []ServiceCategory{
	CategoryPlumbing,
	CategoryCarpentry,
	CategoryMasonry,
	CategoryElectrical,
	CategoryWelding,
	CategoryGeneralRepairs,
	CategoryPainting,
	CategoryGardening,
	CategoryCleaning,
	CategoryOther,
}

// ParseServiceCategory matches name against the known categories ignoring
// case and surrounding whitespace, returning the canonical value.
func ParseServiceCategory(name string) (ServiceCategory, bool) {
	name = strings.TrimSpace(name)
	for _, c := range ServiceCategories {
		if strings.EqualFold(string(c), name) {
			return c, true
		}
	}
	return "", false
}
