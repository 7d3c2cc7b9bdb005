package service

import (
	"strings"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
)

// GeneralAdministration handles uncategorized issues
const GeneralAdministration = "General Administration"

var departments = map[domain.Category]string{
	domain.CategoryRoadInfrastructure: "Public Works Department (PWD)",
	domain.CategoryWaterSupply:        "Water & Sewage Department",
	domain.CategoryElectricity:        "Electricity Board",
	domain.CategoryGarbageSanitation:  "Solid Waste Management",
	domain.CategoryPublicSafety:       "Police & Municipal Security",
	domain.CategoryParksEnvironment:   "Environment & Horticulture",
	domain.CategoryPublicTransport:    "Transport Department",
	domain.CategoryBuildingsHousing:   "Town Planning Department",
}

// DepartmentFor routes a category to the department that handles it
func DepartmentFor(cat domain.Category) string {
	if d, ok := departments[cat]; ok {
		return d
	}
	return GeneralAdministration
}

const maxSuggestions = 5

var commonIssues = []string{
	"Pothole on main road needs repair",
	"Streetlight not working",
	"Garbage not collected for 3 days",
	"Water leakage from pipe",
	"Broken drainage cover on footpath",
	"Illegal parking blocking road",
	"Tree branches blocking road",
	"Road accident prone area needs attention",
	"Public toilet not maintained",
	"Stray animals causing nuisance",
}

// Suggest completes a partial title from common issue phrasings. Input
// shorter than two characters, or with no match, yields the first few
// phrasings.
func Suggest(partial string) []string {
	partial = strings.ToLower(strings.TrimSpace(partial))
	if len([]rune(partial)) >= 2 {
		var matches []string
		for _, s := range commonIssues {
			if strings.Contains(strings.ToLower(s), partial) {
				matches = append(matches, s)
				if len(matches) == maxSuggestions {
					break
				}
			}
		}
		if len(matches) > 0 {
			return matches
		}
	}
	out := make([]string, maxSuggestions)
	copy(out, commonIssues)
	return out
}
