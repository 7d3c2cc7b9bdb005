package solution

import "github.com/devrana9696-ux/civic-issue-reporter/internal/domain"

type plan struct {
	summary   string
	cost      string
	time      string
	materials []string
	steps     []string
}

type variant struct {
	severity string
	plan     plan
}

// variants are keyed by subcategory tag and ordered from least to most severe.
var variants = map[string][]variant{
	"pothole": {
		{"small", plan{
			summary:   "Cold patch asphalt repair",
			cost:      "₹2,000 - ₹5,000",
			time:      "2-4 hours",
			materials: []string{"Cold mix asphalt", "Hand tools"},
			steps: []string{
				"Clean the pothole of debris and water",
				"Apply tack coat if necessary",
				"Fill with cold patch asphalt",
				"Compact using tamper or vehicle",
				"Allow to cure for 24 hours",
			},
		}},
		{"medium", plan{
			summary:   "Hot mix asphalt repair",
			cost:      "₹8,000 - ₹15,000",
			time:      "4-6 hours",
			materials: []string{"Hot mix asphalt", "Tack coat", "Compaction equipment"},
			steps: []string{
				"Mark and secure the area",
				"Cut square edges around pothole",
				"Remove loose material",
				"Apply tack coat",
				"Fill with hot mix asphalt in layers",
				"Compact each layer thoroughly",
			},
		}},
		{"large", plan{
			summary:   "Full-depth road repair",
			cost:      "₹25,000 - ₹50,000",
			time:      "1-2 days",
			materials: []string{"Base course material", "Hot mix asphalt", "Equipment"},
			steps: []string{
				"Traffic management and area marking",
				"Complete removal of damaged section",
				"Base course preparation and compaction",
				"Prime coat application",
				"Asphalt laying in multiple layers",
				"Quality testing and road marking",
			},
		}},
	},
	"streetlight_failure": {
		{"flickering", plan{
			summary:   "Ballast or starter replacement",
			cost:      "₹800 - ₹2,000",
			time:      "1 hour",
			materials: []string{"Ballast/starter", "Tools"},
			steps: []string{
				"Power cutoff",
				"Replace ballast or starter",
				"Check all connections",
				"Test operation",
			},
		}},
		{"completely_dark", plan{
			summary:   "Bulb/LED replacement and wiring check",
			cost:      "₹1,500 - ₹3,000",
			time:      "1-2 hours",
			materials: []string{"LED bulbs", "Wiring materials", "Safety equipment"},
			steps: []string{
				"Safety assessment and power cutoff",
				"Inspect wiring and connections",
				"Replace faulty bulb/LED",
				"Test electrical connections",
				"Restore power and verify operation",
			},
		}},
	},
	"garbage_overflow": {
		{"minor", plan{
			summary:   "Immediate collection and bin cleaning",
			cost:      "₹500 - ₹1,000",
			time:      "30 minutes - 1 hour",
			materials: []string{"Collection vehicle", "Cleaning supplies"},
			steps: []string{
				"Deploy collection team",
				"Clear overflow waste",
				"Clean and sanitize bin",
				"Schedule regular collection",
			},
		}},
		{"moderate", plan{
			summary:   "Deep cleaning and additional bin placement",
			cost:      "₹2,000 - ₹5,000",
			time:      "2-3 hours",
			materials: []string{"Collection vehicle", "Additional bin", "Cleaning equipment"},
			steps: []string{
				"Complete waste removal",
				"Area sanitization",
				"Install additional bin if needed",
				"Increase collection frequency",
			},
		}},
		{"severe", plan{
			summary:   "Emergency cleanup and permanent solution",
			cost:      "₹10,000 - ₹20,000",
			time:      "4-6 hours",
			materials: []string{"Multiple bins", "Heavy equipment", "Sanitization"},
			steps: []string{
				"Emergency response team deployment",
				"Complete area cleanup",
				"Multiple bin installation",
				"Daily monitoring setup",
				"Community awareness program",
			},
		}},
	},
	"water_logging": {
		{"shallow", plan{
			summary:   "Drain cleaning and minor repair",
			cost:      "₹3,000 - ₹8,000",
			time:      "2-4 hours",
			materials: []string{"Drain cleaning equipment", "Repair materials"},
			steps: []string{
				"Identify drainage blockage",
				"Clear debris from drains",
				"Check drain functionality",
				"Minor repairs if needed",
			},
		}},
		{"deep", plan{
			summary:   "Major drainage system repair",
			cost:      "₹50,000 - ₹1,00,000",
			time:      "2-5 days",
			materials: []string{"Drainage pipes", "Heavy equipment", "Construction materials"},
			steps: []string{
				"Survey drainage system",
				"Design repair solution",
				"Excavation and pipe replacement",
				"System testing",
				"Road restoration",
			},
		}},
	},
	"traffic_signal": {
		{"timing_issue", plan{
			summary:   "Signal timing recalibration",
			cost:      "₹2,000 - ₹5,000",
			time:      "1-2 hours",
			materials: []string{"Programming equipment"},
			steps: []string{
				"Traffic flow analysis",
				"Reprogram signal timings",
				"Test multiple cycles",
				"Monitor and adjust",
			},
		}},
		{"not_working", plan{
			summary:   "Signal controller and power supply check",
			cost:      "₹5,000 - ₹15,000",
			time:      "2-4 hours",
			materials: []string{"Signal controller parts", "Electrical components"},
			steps: []string{
				"Deploy traffic police for manual control",
				"Check power supply",
				"Inspect signal controller",
				"Replace faulty components",
				"Test all signal phases",
			},
		}},
	},
}

var deterioration = map[string]domain.Deterioration{
	"pothole": {
		Timeline:         "2-4 weeks",
		SeverityIncrease: "Can grow 2-3x in size",
		RiskFactors:      []string{"Heavy traffic", "Rain", "Temperature fluctuations"},
		Warning:          "Potholes can cause vehicle damage and accidents if not repaired promptly",
	},
	"streetlight_failure": {
		Timeline:         "Immediate concern",
		SeverityIncrease: "Safety risk increases at night",
		RiskFactors:      []string{"Accidents", "Crime", "Pedestrian safety"},
		Warning:          "Dark areas pose immediate safety risks",
	},
	"garbage_overflow": {
		Timeline:         "1-2 days",
		SeverityIncrease: "Health hazard escalation",
		RiskFactors:      []string{"Disease spread", "Pest infestation", "Odor"},
		Warning:          "Can lead to public health issues and environmental damage",
	},
	"water_logging": {
		Timeline:         "Hours to days",
		SeverityIncrease: "Can cause structural damage",
		RiskFactors:      []string{"Foundation damage", "Traffic disruption", "Disease spread"},
		Warning:          "Standing water can damage infrastructure and spread diseases",
	},
}

var preventive = map[string][]string{
	"pothole": {
		"Regular road surface inspections",
		"Proper drainage maintenance",
		"Timely repair of small cracks",
		"Quality construction materials",
	},
	"streetlight_failure": {
		"Monthly maintenance checks",
		"LED upgrade for longer life",
		"Weather-proof installations",
		"Backup power systems",
	},
	"garbage_overflow": {
		"Increase bin capacity in high-density areas",
		"More frequent collection schedules",
		"Community awareness programs",
		"Waste segregation at source",
	},
	"water_logging": {
		"Regular drain cleaning",
		"Pre-monsoon preparations",
		"Proper road grading",
		"Drainage system upgrades",
	},
}

// Category fallbacks for subcategories without their own entry.

var categoryPlans = map[domain.Category]plan{
	domain.CategoryRoadInfrastructure: {
		summary:   "Site inspection and surface repair",
		cost:      "₹5,000 - ₹25,000",
		time:      "1-2 days",
		materials: []string{"Asphalt or concrete mix", "Barricades"},
		steps:     []string{"Inspect and measure damaged area", "Barricade the site", "Repair surface", "Restore markings"},
	},
	domain.CategoryWaterSupply: {
		summary:   "Locate fault and repair supply line",
		cost:      "₹3,000 - ₹15,000",
		time:      "4-8 hours",
		materials: []string{"Pipe fittings", "Sealant", "Excavation tools"},
		steps:     []string{"Isolate the affected line", "Locate leak or blockage", "Repair or replace section", "Pressure test and restore supply"},
	},
	domain.CategoryElectricity: {
		summary:   "Fault isolation and electrical repair",
		cost:      "₹2,000 - ₹10,000",
		time:      "2-4 hours",
		materials: []string{"Electrical components", "Safety equipment"},
		steps:     []string{"Secure the area and cut power", "Trace the fault", "Replace faulty components", "Restore and test supply"},
	},
	domain.CategoryGarbageSanitation: {
		summary:   "Clearance and sanitation drive",
		cost:      "₹1,000 - ₹5,000",
		time:      "2-4 hours",
		materials: []string{"Collection vehicle", "Cleaning supplies"},
		steps:     []string{"Deploy sanitation crew", "Clear waste", "Disinfect the area", "Review collection schedule"},
	},
	domain.CategoryPublicSafety: {
		summary:   "Safety assessment and patrol deployment",
		cost:      "To be assessed",
		time:      "Same day",
		materials: []string{"Patrol resources", "Warning signage"},
		steps:     []string{"Alert local police or security", "Assess the hazard on site", "Secure or mark the area", "Schedule follow-up patrols"},
	},
	domain.CategoryParksEnvironment: {
		summary:   "Horticulture and environment team visit",
		cost:      "₹2,000 - ₹10,000",
		time:      "1-2 days",
		materials: []string{"Gardening tools", "Cutting equipment"},
		steps:     []string{"Inspect the site", "Clear debris or hazards", "Restore greenery", "Plan periodic maintenance"},
	},
	domain.CategoryPublicTransport: {
		summary:   "Refer to transport authority for service review",
		cost:      "To be assessed",
		time:      "3-7 days",
		materials: []string{"To be determined"},
		steps:     []string{"Log complaint with transport department", "Inspect facility or route", "Fix or reschedule service", "Inform commuters"},
	},
	domain.CategoryBuildingsHousing: {
		summary:   "Structural inspection and enforcement review",
		cost:      "To be assessed",
		time:      "1-2 weeks",
		materials: []string{"Inspection equipment"},
		steps:     []string{"Town planning inspection", "Verify permits and safety", "Issue notice or order repairs", "Follow-up inspection"},
	},
}

var defaultPlan = plan{
	summary:   "Standard resolution procedure",
	cost:      "To be assessed",
	time:      "To be determined",
	materials: []string{"To be determined"},
	steps:     []string{"Assessment required", "Solution to be determined"},
}

var defaultDeterioration = domain.Deterioration{
	Timeline:         "Varies",
	SeverityIncrease: "Requires monitoring",
	RiskFactors:      []string{"To be assessed"},
	Warning:          "Issue should be addressed promptly",
}

var defaultPreventive = []string{"Regular maintenance and monitoring"}
