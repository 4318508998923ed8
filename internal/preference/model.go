package preference

import (
	"fmt"
	"time"
)

// Preference holds a user's job-matching preferences, created with defaults
// when the user is created. Field keys match the submission wire format.
type Preference struct {
	ID                    string    `bson:"_id,omitempty" json:"id"`
	UserID                string    `bson:"userId" json:"userId"`
	MatchThreshold        int       `bson:"match_threshold" json:"match_threshold"`
	Healthcare            bool      `bson:"healthcare" json:"healthcare"`
	Dental                bool      `bson:"dental" json:"dental"`
	Vision                bool      `bson:"vision" json:"vision"`
	LifeInsurance         bool      `bson:"life_insurance" json:"life_insurance"`
	Equity                bool      `bson:"equity" json:"equity"`
	Bonuses               bool      `bson:"bonuses" json:"bonuses"`
	Retirement            bool      `bson:"retirement" json:"retirement"`
	Fulltime              bool      `bson:"fulltime" json:"fulltime"`
	Remote                int       `bson:"remote" json:"remote"`
	OpenSource            bool      `bson:"open_source" json:"open_source"`
	ExpectedSalary        int       `bson:"expected_salary" json:"expected_salary"`
	PotentialAvailability int       `bson:"potential_availability" json:"potential_availability"`
	WorkHours             int       `bson:"work_hours" json:"work_hours"`
	ValidUSWorker         bool      `bson:"valid_us_worker" json:"valid_us_worker"`
	VacationDays          int       `bson:"vacation_days" json:"vacation_days"`
	WillingToRelocate     bool      `bson:"willing_to_relocate" json:"willing_to_relocate"`
	Locations             []string  `bson:"locations" json:"locations"`
	Industries            []string  `bson:"industries" json:"industries"`
	ExperienceLevels      []string  `bson:"experience_levels" json:"experience_levels"`
	PositionTitles        []string  `bson:"position_titles" json:"position_titles"`
	Settings              []string  `bson:"settings" json:"settings"`
	DressCodes            []string  `bson:"dress_codes" json:"dress_codes"`
	CompanyTypes          []string  `bson:"company_types" json:"company_types"`
	Perks                 []string  `bson:"perks" json:"perks"`
	Practices             []string  `bson:"practices" json:"practices"`
	Skills                []string  `bson:"skills" json:"skills"`
	CreatedAt             time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Bounds for the numeric scalar fields.
const (
	MaxExpectedSalary        = 1000000
	MaxWorkHours             = 168
	MaxPotentialAvailability = 120
	MaxVacationDays          = 365
)

// Default returns the system default preference for a new user.
func Default(userID string) *Preference {
	return &Preference{
		UserID:                userID,
		MatchThreshold:        5,
		Fulltime:              true,
		Remote:                0,
		WorkHours:             40,
		PotentialAvailability: 14,
		VacationDays:          10,
		Locations:             []string{},
		Industries:            []string{},
		ExperienceLevels:      []string{},
		PositionTitles:        []string{},
		Settings:              []string{},
		DressCodes:            []string{},
		CompanyTypes:          []string{},
		Perks:                 []string{},
		Practices:             []string{},
		Skills:                []string{},
	}
}

// Checklist returns the current accepted values for a checklist field.
func (p *Preference) Checklist(field string) []string {
	switch field {
	case "locations":
		return p.Locations
	case "industries":
		return p.Industries
	case "experience_levels":
		return p.ExperienceLevels
	case "position_titles":
		return p.PositionTitles
	case "settings":
		return p.Settings
	case "dress_codes":
		return p.DressCodes
	case "company_types":
		return p.CompanyTypes
	case "perks":
		return p.Perks
	case "practices":
		return p.Practices
	case "skills":
		return p.Skills
	}
	return nil
}

// Candidate pairs a checklist candidate with its current selection state,
// the shape the preference UI submits back.
type Candidate struct {
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
}

// Candidates returns the candidate list for a checklist field with the
// currently selected names marked. For skills the domain is the imported
// skill set, passed in by the caller.
func Candidates(field string, selected []string, importedSkills []string) []Candidate {
	domain := checklistDomains[field]
	if field == "skills" {
		domain = importedSkills
	}
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}
	out := make([]Candidate, 0, len(domain))
	for _, name := range domain {
		out = append(out, Candidate{Name: name, Checked: chosen[name]})
	}
	return out
}

// ValidateScalars checks the numeric range rules on a cleaned submission.
// Keys absent from params are not validated.
func ValidateScalars(params map[string]interface{}) error {
	bounds := map[string]int{
		"expected_salary":        MaxExpectedSalary,
		"work_hours":             MaxWorkHours,
		"potential_availability": MaxPotentialAvailability,
		"vacation_days":          MaxVacationDays,
	}
	for key, max := range bounds {
		v, ok := params[key]
		if !ok {
			continue
		}
		n, ok := asInt(v)
		if !ok {
			return fmt.Errorf("%s must be a number", key)
		}
		if n < 0 || n > max {
			return fmt.Errorf("%s must be between 0 and %d", key, max)
		}
	}
	return nil
}

// ValidateChecklists rejects accepted values outside the attribute's domain.
// Skills is unrestricted free text.
func ValidateChecklists(params map[string]interface{}) error {
	for key, domain := range checklistDomains {
		if domain == nil {
			continue
		}
		v, ok := params[key]
		if !ok {
			continue
		}
		values, ok := v.([]string)
		if !ok {
			continue
		}
		allowed := make(map[string]bool, len(domain))
		for _, d := range domain {
			allowed[d] = true
		}
		for _, val := range values {
			if !allowed[val] {
				return fmt.Errorf("%s: %q is not an allowed value", key, val)
			}
		}
	}
	return nil
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
