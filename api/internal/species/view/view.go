// Package view maps a parsed result to a render-safe view model.
package view

import (
	"fmt"
	"math"
	"strings"

	"species-bot/api/internal/species/types"
)

// Defaults for absent fields. Every default lives here and nowhere else.
const (
	DefaultScientificName     = "Unknown"
	DefaultCommonNames        = "N/A"
	DefaultDescription        = "No description available."
	DefaultConfidence         = "Unknown"
	DefaultOverallAppearance  = "No details available."
	DefaultFeatures           = "No distinguishing features available."
	DefaultHabitat            = "No information available."
	DefaultGeographicLocation = "Not specified."
	DefaultResources          = "No additional resources available."

	NoDataMessage = "No data available. Please try again with a different image."
)

type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ViewModel has every field populated; templates and bots can print it as is.
type ViewModel struct {
	NoData  bool   `json:"no_data"`
	Message string `json:"message,omitempty"`

	ScientificName     string   `json:"scientific_name"`
	CommonNames        string   `json:"common_names"`
	BriefDescription   []string `json:"brief_description"`
	Confidence         string   `json:"confidence"`
	OverallAppearance  string   `json:"overall_appearance"`
	Features           []string `json:"distinguishing_features"`
	Habitat            string   `json:"habitat"`
	GeographicLocation string   `json:"geographic_location"`
	Resources          []Link   `json:"resources"`
	ResourcesNote      string   `json:"resources_note,omitempty"`
}

// ToViewModel never fails: absence is always representable.
func ToViewModel(r *types.Result) ViewModel {
	if r == nil {
		return ViewModel{NoData: true, Message: NoDataMessage}
	}
	sp := r.Species
	if sp == nil {
		sp = &types.SpeciesIdentification{}
	}

	vm := ViewModel{
		ScientificName:     str(sp.ScientificName, DefaultScientificName),
		CommonNames:        joined(sp.CommonNames, DefaultCommonNames),
		BriefDescription:   lines(sp.BriefDescription, DefaultDescription),
		Confidence:         Percent(sp.ConfidenceLevel),
		OverallAppearance:  str(r.OverallAppearance, DefaultOverallAppearance),
		Features:           lines(r.DistinguishingFeatures, DefaultFeatures),
		Habitat:            str(r.Habitat, DefaultHabitat),
		GeographicLocation: str(r.GeographicLocation, DefaultGeographicLocation),
		Resources:          links(r.AdditionalResources),
	}
	if len(vm.Resources) == 0 {
		vm.ResourcesNote = DefaultResources
	}
	return vm
}

// Percent formats a 0..1 confidence as round(v*100)%.
func Percent(v *float64) string {
	if v == nil || math.IsNaN(*v) || !types.ValidConfidence(*v) {
		return DefaultConfidence
	}
	return fmt.Sprintf("%d%%", int(math.Round(*v*100)))
}

func str(p *string, def string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return def
	}
	return *p
}

func joined(xs []string, def string) string {
	xs = nonEmpty(xs)
	if len(xs) == 0 {
		return def
	}
	return strings.Join(xs, ", ")
}

func lines(xs []string, placeholder string) []string {
	xs = nonEmpty(xs)
	if len(xs) == 0 {
		return []string{placeholder}
	}
	return xs
}

func links(rs []types.Resource) []Link {
	out := make([]Link, 0, len(rs))
	for _, r := range rs {
		if strings.TrimSpace(r.Link) == "" {
			continue
		}
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = r.Link
		}
		out = append(out, Link{Title: title, URL: r.Link})
	}
	return out
}

func nonEmpty(xs []string) []string {
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if s := strings.TrimSpace(x); s != "" {
			out = append(out, s)
		}
	}
	return out
}
