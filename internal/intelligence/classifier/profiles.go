package classifier

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence/textsim"
)

// Keyword is one weighted term of a category profile. Subcategory tags the
// kind of problem the term points at.
type Keyword struct {
	Term        string  `json:"term"`
	Weight      float64 `json:"weight"`
	Subcategory string  `json:"subcategory,omitempty"`
}

// Profiles maps each category to its reference keywords.
type Profiles map[domain.Category][]Keyword

func kw(term string, weight float64, sub string) Keyword {
	return Keyword{Term: term, Weight: weight, Subcategory: sub}
}

// DefaultProfiles returns the compiled-in reference profiles.
func DefaultProfiles() Profiles {
	return Profiles{
		domain.CategoryRoadInfrastructure: {
			kw("pothole", 2, "pothole"),
			kw("road", 1.5, "broken_road"),
			kw("street", 1, "broken_road"),
			kw("footpath", 1.5, "footpath"),
			kw("pavement", 1.5, "footpath"),
			kw("bridge", 1.5, "bridge"),
			kw("highway", 1.5, "broken_road"),
			kw("crack", 1, "broken_road"),
			kw("signal", 1, "traffic_signal"),
			kw("speedbreaker", 1.5, "speed_breaker"),
		},
		domain.CategoryWaterSupply: {
			kw("water", 1.5, "water_supply"),
			kw("pipe", 1.5, "pipe_leak"),
			kw("pipeline", 1.5, "pipe_leak"),
			kw("leak", 1.5, "pipe_leak"),
			kw("leakage", 1.5, "pipe_leak"),
			kw("supply", 1, "water_supply"),
			kw("drainage", 1.5, "water_logging"),
			kw("sewage", 2, "sewage_overflow"),
			kw("sewer", 2, "sewage_overflow"),
			kw("tap", 1, "water_supply"),
			kw("overflow", 1, "sewage_overflow"),
			kw("waterlogging", 2, "water_logging"),
		},
		domain.CategoryElectricity: {
			kw("electricity", 2, "power_outage"),
			kw("power", 1.5, "power_outage"),
			kw("outage", 1.5, "power_outage"),
			kw("streetlight", 2, "streetlight_failure"),
			kw("light", 1, "streetlight_failure"),
			kw("lamp", 1, "streetlight_failure"),
			kw("pole", 1, "electric_pole"),
			kw("wire", 1.5, "exposed_wire"),
			kw("transformer", 2, "transformer"),
			kw("voltage", 1.5, "power_outage"),
		},
		domain.CategoryGarbageSanitation: {
			kw("garbage", 2, "garbage_overflow"),
			kw("waste", 1.5, "garbage_overflow"),
			kw("trash", 1.5, "garbage_overflow"),
			kw("dustbin", 1.5, "dustbin"),
			kw("bin", 1, "dustbin"),
			kw("cleaning", 1, "cleaning"),
			kw("sanitation", 1.5, "cleaning"),
			kw("litter", 1.5, "littering"),
			kw("dump", 1.5, "illegal_dumping"),
			kw("smell", 1, "cleaning"),
			kw("toilet", 1.5, "public_toilet"),
		},
		domain.CategoryPublicSafety: {
			kw("crime", 2, "crime"),
			kw("safety", 1, "hazard"),
			kw("unsafe", 1.5, "hazard"),
			kw("violence", 2, "crime"),
			kw("theft", 2, "crime"),
			kw("robbery", 2, "crime"),
			kw("danger", 1, "hazard"),
			kw("police", 1.5, "crime"),
			kw("security", 1, "hazard"),
			kw("harassment", 2, "harassment"),
			kw("stray", 1.5, "stray_animals"),
			kw("fire", 1.5, "fire_hazard"),
		},
		domain.CategoryParksEnvironment: {
			kw("park", 2, "park_maintenance"),
			kw("tree", 1.5, "fallen_tree"),
			kw("garden", 1.5, "park_maintenance"),
			kw("pollution", 2, "pollution"),
			kw("noise", 1.5, "noise"),
			kw("air", 1, "pollution"),
			kw("smoke", 1, "pollution"),
			kw("greenery", 1.5, "park_maintenance"),
			kw("plantation", 1.5, "park_maintenance"),
			kw("playground", 1.5, "park_maintenance"),
		},
		domain.CategoryPublicTransport: {
			kw("bus", 2, "bus_service"),
			kw("metro", 2, "metro"),
			kw("transport", 1.5, "bus_service"),
			kw("station", 1.5, "station_facility"),
			kw("stop", 1, "station_facility"),
			kw("railway", 2, "railway"),
			kw("train", 1.5, "railway"),
			kw("traffic", 1, "traffic_congestion"),
			kw("parking", 1.5, "parking"),
			kw("auto", 1, "bus_service"),
		},
		domain.CategoryBuildingsHousing: {
			kw("building", 2, "unsafe_building"),
			kw("construction", 1.5, "illegal_construction"),
			kw("illegal", 1, "illegal_construction"),
			kw("encroachment", 2, "encroachment"),
			kw("demolition", 1.5, "demolition"),
			kw("housing", 1.5, "housing"),
			kw("wall", 1, "unsafe_building"),
			kw("roof", 1, "unsafe_building"),
			kw("apartment", 1.5, "housing"),
		},
	}
}

// normalise checks that profiles only name real categories and carry positive
// weights. Terms are normalised with the tokenizer so "Potholes" and
// "pothole" match the same input tokens.
func (p Profiles) normalise() (Profiles, error) {
	out := make(Profiles, len(p))
	for cat, kws := range p {
		if cat.Index() < 0 {
			return nil, fmt.Errorf("classifier: profile for unknown category %q", cat)
		}
		list := make([]Keyword, 0, len(kws))
		for _, k := range kws {
			if !(k.Weight > 0) {
				return nil, fmt.Errorf("classifier: keyword %q of %s has non-positive weight", k.Term, cat)
			}
			toks := textsim.Tokenize(k.Term)
			if len(toks) != 1 {
				return nil, fmt.Errorf("classifier: keyword %q of %s must be a single term", k.Term, cat)
			}
			k.Term = toks[0]
			list = append(list, k)
		}
		out[cat] = list
	}
	return out, nil
}

// LoadProfiles reads a JSON profile override file. Categories missing from the
// file keep their default profile.
func LoadProfiles(path string) (Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("classifier: failed to read profiles: %w", err)
	}

	var override Profiles
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("classifier: failed to decode profiles: %w", err)
	}

	merged := DefaultProfiles()
	for cat, kws := range override {
		merged[cat] = kws
	}
	return merged, nil
}
