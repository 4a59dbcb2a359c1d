// Package profile defines the canonical company-intelligence record and the
// normalization rules that turn free-form AI or client input into it.
package profile

// CompanyProfile is the canonical structured payload persisted per company.
// Nil string pointers mean "unknown"; list fields are never nil after
// normalization.
type CompanyProfile struct {
	CompanyName        *string  `json:"company_name"`
	CompanyDescription *string  `json:"company_description"`
	ServiceLines       []string `json:"service_lines"`
	Tier1Keywords      []string `json:"tier1_keywords"`
	Tier2Keywords      []string `json:"tier2_keywords"`
	Emails             []string `json:"emails"`
	POC                *string  `json:"poc"`
}

// Empty returns a profile with all lists initialized and all strings absent.
func Empty() CompanyProfile {
	return CompanyProfile{
		ServiceLines:  []string{},
		Tier1Keywords: []string{},
		Tier2Keywords: []string{},
		Emails:        []string{},
	}
}

// Normalize projects a raw decoded JSON value into a CompanyProfile. It is
// the single sanitization point for both AI output and client submissions:
// every field passes through ToNullableString or ToList, so nothing bypasses
// trimming and deduplication. Returns false when raw is not a JSON object.
//
// A legacy singular "service_line" key is accepted as a fallback source for
// service_lines; earlier extraction prompts produced that shape.
func Normalize(raw any) (CompanyProfile, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return CompanyProfile{}, false
	}

	serviceLines := obj["service_lines"]
	if serviceLines == nil {
		serviceLines = obj["service_line"]
	}

	return CompanyProfile{
		CompanyName:        ToNullableString(obj["company_name"]),
		CompanyDescription: ToNullableString(obj["company_description"]),
		POC:                ToNullableString(obj["poc"]),
		ServiceLines:       ToList(serviceLines),
		Tier1Keywords:      ToList(obj["tier1_keywords"]),
		Tier2Keywords:      ToList(obj["tier2_keywords"]),
		Emails:             ToList(obj["emails"]),
	}, true
}
