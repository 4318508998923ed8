package preference

// Candidate domains for the checklist attributes. Skills is free text coming
// from provider imports, everything else is validated against these lists.

var Locations = []string{
	"San Francisco, CA", "Portland, OR", "Seattle, WA",
	"New York City, NY", "Chicago, IL", "Boston, MA",
	"Austin, TX", "Los Angeles, CA", "Cincinnati, OH",
}

var Industries = []string{
	"Medical", "Mobile", "Education", "Entertainment", "Advertising", "Scientific", "Consumer Technology",
	"Security", "Transportation", "Banking", "Real Estate", "Legal", "Industrial", "Gaming", "Food",
	"Fitness", "Sports", "Architecture", "Agriculture", "Art", "Hardware", "Non-profit",
}

var ExperienceLevels = []string{
	"Intern", "Co-op", "Junior Engineer", "Mid-level Engineer", "Senior-level Engineer", "Executive",
}

var PositionTitles = []string{
	"Associative Engineer", "Software Engineer", "DevOps Engineer", "Senior Engineer", "Staff Engineer", "Engineering Manager",
	"Principal Engineer", "Senior Principal Engineer", "Senior Engineering Manager", "Architect", "Director of Engineering",
	"Senior Architect", "Senior Director of Engineering", "VP of Engineering", "SVP of Engineering",
}

var Settings = []string{"Urban", "Rural", "Office Park"}

var DressCodes = []string{"Professional", "Business Casual", "Casual"}

var CompanyTypes = []string{"Bootstrapped", "VC Backed", "Small Business", "Publicly-Owned Business"}

var Perks = []string{
	"Kegs", "Ping-pong table", "Snacks", "Catered Meals", "Offsites", "Flexible Work Hours", "Conference Travel",
	"Work from Home", "Lunch Stipend", "Phone Stipend", "Public Transit Stipend", "Tuition Reimbursement", "Choice of Equipment",
	"Swag",
}

var Practices = []string{
	"Test-driven Development", "Agile Development", "Pair Programming", "Behavior-driven Development", "Scrum",
	"Cowboy Coding", "Object Oriented Design", "Waterfall Model", "Service-oriented Design", "Don't Repeat Yourself (DRY)",
	"Extreme Programming", "Continuous Integration",
}

// RemoteLabels maps the stored remote preference to its display label.
var RemoteLabels = map[int]string{
	0: "No",
	1: "Yes",
	2: "I'm open to remote work",
}

// CompanySizeLabels maps the stored company size bucket to its display label.
var CompanySizeLabels = map[int]string{
	0: "1-10 Employees",
	1: "11-50 Employees",
	2: "51-200 Employees",
	3: "201-500 Employees",
	4: "501+ Employees",
}

// checklistDomains maps each checklist attribute to its candidate domain.
// Skills has no fixed domain; its candidates come from imported profiles.
var checklistDomains = map[string][]string{
	"locations":         Locations,
	"industries":        Industries,
	"experience_levels": ExperienceLevels,
	"position_titles":   PositionTitles,
	"settings":          Settings,
	"dress_codes":       DressCodes,
	"company_types":     CompanyTypes,
	"perks":             Perks,
	"practices":         Practices,
	"skills":            nil,
}

// ChecklistFields lists the attributes the reconciler rewrites.
func ChecklistFields() []string {
	out := make([]string, 0, len(checklistDomains))
	for k := range checklistDomains {
		out = append(out, k)
	}
	return out
}

// IsChecklistField reports whether key names a checklist attribute.
func IsChecklistField(key string) bool {
	_, ok := checklistDomains[key]
	return ok
}
