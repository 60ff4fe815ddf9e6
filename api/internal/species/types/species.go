package types

// SpeciesIdentification is the "most_likely_species" block of the model answer.
// Every field is optional: nil means the model did not provide it.
type SpeciesIdentification struct {
	ScientificName   *string  `json:"scientific_name,omitempty"`
	CommonNames      []string `json:"common_names,omitempty"`
	BriefDescription []string `json:"brief_description,omitempty"`
	ConfidenceLevel  *float64 `json:"confidence_level,omitempty"` // 0..1
}

// Resource is a link to additional reading about the species.
type Resource struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// AppearanceReport describes what the organism looks like and where it lives.
type AppearanceReport struct {
	OverallAppearance      *string    `json:"overall_appearance,omitempty"`
	DistinguishingFeatures []string   `json:"distinguishing_features,omitempty"`
	Habitat                *string    `json:"habitat,omitempty"`
	GeographicLocation     *string    `json:"geographic_location,omitempty"`
	AdditionalResources    []Resource `json:"links_to_additional_resources,omitempty"`
}

// Result is a parsed model answer. A nil *Result is the "no result" sentinel.
type Result struct {
	Species *SpeciesIdentification `json:"most_likely_species,omitempty"`
	AppearanceReport
}

// ValidConfidence reports whether v satisfies 0 <= v <= 1.
func ValidConfidence(v float64) bool { return v >= 0 && v <= 1 }
