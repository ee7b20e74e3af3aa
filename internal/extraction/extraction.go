// Package extraction pulls structured fields out of OCR text: patient
// demographics, encounter dates and facility names. Matching is strict
// and contextual; a date is only a DOB when it sits next to a DOB label.
package extraction

import (
	"regexp"
	"strings"
	"time"
)

// Demographics holds the patient identity fields parsed from a document.
// Any field may be empty when the text carried no usable marker for it.
type Demographics struct {
	FirstName string
	LastName  string
	DOB       *time.Time
}

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`Patient\s+Name\s*[:\-–—]\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]*\.?)?\s+[A-Z][a-z]+)`),
	regexp.MustCompile(`Patient\s*[:\-–—]\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]*\.?)?\s+[A-Z][a-z]+)`),
	regexp.MustCompile(`Name\s*[:\-–—]\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]*\.?)?\s+[A-Z][a-z]+)`),
}

var lastFirstPattern = regexp.MustCompile(`Patient\s*[:\-–—]\s*([A-Z][a-z]+),\s*([A-Z][a-z]+)`)

var numericDateLayouts = []string{"1/2/2006", "1/2/06", "1-2-2006", "1-2-06"}

var dobPatterns = []struct {
	re      *regexp.Regexp
	layouts []string
}{
	{regexp.MustCompile(`(?im)DOB\s*[:\-–—]\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`), numericDateLayouts},
	{regexp.MustCompile(`(?im)Date\s+of\s+Birth\s*[:\-–—]\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`), numericDateLayouts},
	{regexp.MustCompile(`(?im)Birth\s+Date\s*[:\-–—]\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`), numericDateLayouts},
	{regexp.MustCompile(`(?im)DOB\s*[:\-–—]\s*(\d{4}-\d{2}-\d{2})`), []string{"2006-01-02"}},
	{regexp.MustCompile(`(?im)DOB\s*[:\-–—]\s*([A-Z][a-z]+\.?\s+\d{1,2},?\s+\d{4})`), []string{"January 2, 2006", "Jan 2, 2006", "January 2 2006", "Jan 2 2006"}},
}

var encounterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)Date\s+of\s+Service\s*[:\-–—]\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	regexp.MustCompile(`(?im)Service\s+Date\s*[:\-–—]\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	regexp.MustCompile(`(?im)Visit\s+Date\s*[:\-–—]\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	regexp.MustCompile(`(?im)Encounter\s+Date\s*[:\-–—]\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	regexp.MustCompile(`(?im)Admission\s+Date\s*[:\-–—]\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	regexp.MustCompile(`(?im)Discharge\s+Date\s*[:\-–—]\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
}

var facilityKeywords = []string{
	`Hospital`,
	`Medical Center`,
	`Clinic`,
	`Health System`,
	`Healthcare`,
	`Regional Medical`,
	`University Hospital`,
	`Community Hospital`,
	`Memorial`,
	`General Hospital`,
	`Children's Hospital`,
	`Veterans Affairs`,
	`VA Medical`,
}

var facilityPatterns = buildFacilityPatterns()

var whitespaceRun = regexp.MustCompile(`\s+`)

func buildFacilityPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(facilityKeywords))
	for _, kw := range facilityKeywords {
		patterns = append(patterns, regexp.MustCompile(`([A-Z][A-Za-z\s&]+`+regexp.QuoteMeta(kw)+`[A-Za-z\s&]*)`))
	}
	return patterns
}

// ParseDemographics extracts the patient name and date of birth from OCR
// text. Name parsing tries "Patient Name: First Last" style markers
// first, then the "Patient: Last, First" form.
func ParseDemographics(text string) Demographics {
	d := Demographics{DOB: ParseDOB(text)}

	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			parts := strings.Fields(strings.TrimSpace(m[1]))
			if len(parts) >= 2 {
				d.FirstName = parts[0]
				d.LastName = parts[len(parts)-1]
				return d
			}
		}
	}

	if m := lastFirstPattern.FindStringSubmatch(text); m != nil {
		d.LastName = strings.TrimSpace(m[1])
		d.FirstName = strings.TrimSpace(m[2])
	}
	return d
}

// ParseDOB extracts a date of birth from OCR text. Only dates sitting
// next to an explicit DOB marker count, and the parsed date must put the
// patient between 0 and 120 years old.
func ParseDOB(text string) *time.Time {
	for _, p := range dobPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := strings.TrimSpace(m[1])
		for _, layout := range p.layouts {
			parsed, err := time.Parse(layout, raw)
			if err != nil {
				continue
			}
			age := time.Since(parsed).Hours() / 24 / 365.25
			if age >= 0 && age <= 120 {
				return &parsed
			}
		}
	}
	return nil
}

// ParseEncounterDate extracts the clinical service date from OCR text.
// Accepted marker labels are Date of Service, Service Date, Visit Date,
// Encounter Date, Admission Date and Discharge Date. The date must be in
// the past and no more than fifty years old.
func ParseEncounterDate(text string) *time.Time {
	now := time.Now()
	for _, re := range encounterPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := strings.TrimSpace(m[1])
		for _, layout := range numericDateLayouts {
			parsed, err := time.Parse(layout, raw)
			if err != nil {
				continue
			}
			if !parsed.After(now) && now.Sub(parsed) <= 50*365*24*time.Hour {
				return &parsed
			}
		}
	}
	return nil
}

// ExtractFacilityNames returns candidate hospital and clinic names found
// in OCR text, deduplicated case-insensitively in first-seen order. The
// list feeds provider matching for responses whose fax line is unknown.
func ExtractFacilityNames(text string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, re := range facilityPatterns {
		for _, m := range re.FindAllString(text, -1) {
			cleaned := whitespaceRun.ReplaceAllString(strings.TrimSpace(m), " ")
			if len(cleaned) <= 5 {
				continue
			}
			key := strings.ToLower(cleaned)
			if !seen[key] {
				seen[key] = true
				names = append(names, cleaned)
			}
		}
	}
	return names
}
