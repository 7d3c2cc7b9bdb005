package domain

import (
	"encoding/json"
	"fmt"
)

// Category is the closed set of civic issue categories.
type Category string

// Category identifiers. Their lexical order is the tie-break order used by
// the classifier and the hotspot analyzer.
const (
	CategoryBuildingsHousing   Category = "buildings_housing"
	CategoryElectricity        Category = "electricity"
	CategoryGarbageSanitation  Category = "garbage_sanitation"
	CategoryParksEnvironment   Category = "parks_environment"
	CategoryPublicSafety       Category = "public_safety"
	CategoryPublicTransport    Category = "public_transport"
	CategoryRoadInfrastructure Category = "road_infrastructure"
	CategoryWaterSupply        Category = "water_supply"

	// CategoryUncategorized is returned when no category scores above the
	// classifier's minimum. It is a valid value, not a failure.
	CategoryUncategorized Category = "uncategorized"
)

// NumCategories is the number of real (non-uncategorized) categories.
const NumCategories = 8

var categories = [NumCategories]Category{
	CategoryBuildingsHousing,
	CategoryElectricity,
	CategoryGarbageSanitation,
	CategoryParksEnvironment,
	CategoryPublicSafety,
	CategoryPublicTransport,
	CategoryRoadInfrastructure,
	CategoryWaterSupply,
}

var displayNames = map[Category]string{
	CategoryBuildingsHousing:   "Buildings & Housing",
	CategoryElectricity:        "Electricity",
	CategoryGarbageSanitation:  "Garbage & Sanitation",
	CategoryParksEnvironment:   "Parks & Environment",
	CategoryPublicSafety:       "Public Safety",
	CategoryPublicTransport:    "Public Transport",
	CategoryRoadInfrastructure: "Road & Infrastructure",
	CategoryWaterSupply:        "Water Supply",
	CategoryUncategorized:      "Uncategorized",
}

// Categories returns the 8 categories in lexical identifier order.
func Categories() []Category {
	out := make([]Category, NumCategories)
	copy(out, categories[:])
	return out
}

// Index returns the position of c in Categories(), or -1 for uncategorized
// and unknown values.
func (c Category) Index() int {
	for i, v := range categories {
		if v == c {
			return i
		}
	}
	return -1
}

// Valid reports whether c is one of the 8 categories or uncategorized.
func (c Category) Valid() bool {
	return c == CategoryUncategorized || c.Index() >= 0
}

// DisplayName returns the human readable name, e.g. "Water Supply".
func (c Category) DisplayName() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	return string(c)
}

// ParseCategory accepts either an identifier or a display name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if c.Valid() {
		return c, nil
	}
	for k, name := range displayNames {
		if name == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("domain: unknown category %q", s)
}

// UnmarshalJSON rejects values outside the closed set.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*c = ""
		return nil
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
