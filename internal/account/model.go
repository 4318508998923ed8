package account

import "time"

// Provider tags the identity providers users can authenticate or link with.
// Adding a provider means extending this enum, not scattering new branches.
type Provider string

const (
	ProviderGithub        Provider = "github"
	ProviderLinkedin      Provider = "linkedin"
	ProviderStackexchange Provider = "stackexchange"
)

// ParseProvider maps a wire tag to a Provider. ok is false for unknown tags.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(s) {
	case ProviderGithub:
		return ProviderGithub, true
	case ProviderLinkedin:
		return ProviderLinkedin, true
	case ProviderStackexchange:
		return ProviderStackexchange, true
	}
	return "", false
}

// User is the identity anchor. Provider uids are unique across users
// (enforced by the store); MainProvider marks which provider owns the
// primary profile fields and the avatar.
type User struct {
	ID                   string    `bson:"_id,omitempty" json:"id"`
	Email                string    `bson:"email" json:"email"`
	Name                 string    `bson:"name" json:"name"`
	Location             string    `bson:"location,omitempty" json:"location,omitempty"`
	Description          string    `bson:"description,omitempty" json:"description,omitempty"`
	GithubUID            string    `bson:"githubUid,omitempty" json:"githubUid,omitempty"`
	LinkedinUID          string    `bson:"linkedinUid,omitempty" json:"linkedinUid,omitempty"`
	MainProvider         Provider  `bson:"mainProvider" json:"mainProvider"`
	StackexchangeSynced  bool      `bson:"stackexchangeSynced" json:"stackexchangeSynced"`
	ProfileImage         string    `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	ManuallySetupProfile bool      `bson:"manuallySetupProfile" json:"manuallySetupProfile"`
	CreatedAt            time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time `bson:"updatedAt" json:"updatedAt"`
}

// GithubAccount is the GitHub sub-account snapshot, 1:1 with a user.
type GithubAccount struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	UserID      string    `bson:"userId" json:"userId"`
	Token       string    `bson:"token" json:"-"`
	Nickname    string    `bson:"nickname" json:"nickname"`
	Bio         string    `bson:"bio,omitempty" json:"bio,omitempty"`
	Company     string    `bson:"company,omitempty" json:"company,omitempty"`
	Hireable    bool      `bson:"hireable" json:"hireable"`
	PublicRepos int       `bson:"publicRepos" json:"publicRepos"`
	Followers   int       `bson:"followers" json:"followers"`
	Following   int       `bson:"following" json:"following"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Linkedin is the LinkedIn sub-account snapshot, 1:1 with a user.
type Linkedin struct {
	ID               string    `bson:"_id,omitempty" json:"id"`
	UserID           string    `bson:"userId" json:"userId"`
	Token            string    `bson:"token" json:"-"`
	Headline         string    `bson:"headline,omitempty" json:"headline,omitempty"`
	Industry         string    `bson:"industry,omitempty" json:"industry,omitempty"`
	PublicProfileURL string    `bson:"publicProfileUrl,omitempty" json:"publicProfileUrl,omitempty"`
	NumConnections   int       `bson:"numConnections" json:"numConnections"`
	Skills           []string  `bson:"skills,omitempty" json:"skills,omitempty"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Stackexchange is the StackExchange sub-account snapshot, 1:1 with a user.
type Stackexchange struct {
	ID          string         `bson:"_id,omitempty" json:"id"`
	UserID      string         `bson:"userId" json:"userId"`
	Token       string         `bson:"token" json:"-"`
	UID         string         `bson:"uid" json:"uid"`
	ExternalKey string         `bson:"externalKey" json:"externalKey"`
	Nickname    string         `bson:"nickname,omitempty" json:"nickname,omitempty"`
	DisplayName string         `bson:"displayName,omitempty" json:"displayName,omitempty"`
	ProfileURL  string         `bson:"profileUrl,omitempty" json:"profileUrl,omitempty"`
	Reputation  int            `bson:"reputation" json:"reputation"`
	Age         int            `bson:"age,omitempty" json:"age,omitempty"`
	Badges      map[string]int `bson:"badges,omitempty" json:"badges,omitempty"`
	CreatedAt   time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// Repo is an imported GitHub repository, keyed by the provider-assigned id.
type Repo struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	AccountID   string    `bson:"accountId" json:"accountId"`
	ExternalKey string    `bson:"externalKey" json:"externalKey"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Private     bool      `bson:"private" json:"private"`
	URL         string    `bson:"url,omitempty" json:"url,omitempty"`
	Language    string    `bson:"language,omitempty" json:"language,omitempty"`
	Forks       int       `bson:"forks" json:"forks"`
	Watchers    int       `bson:"watchers" json:"watchers"`
	Size        int       `bson:"size" json:"size"`
	OpenIssues  int       `bson:"openIssues" json:"openIssues"`
	Started     time.Time `bson:"started,omitempty" json:"started,omitempty"`
	LastUpdated time.Time `bson:"lastUpdated,omitempty" json:"lastUpdated,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Organization is an imported GitHub organization membership.
type Organization struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	AccountID   string    `bson:"accountId" json:"accountId"`
	ExternalKey string    `bson:"externalKey" json:"externalKey"`
	Name        string    `bson:"name" json:"name"`
	URL         string    `bson:"url,omitempty" json:"url,omitempty"`
	AvatarURL   string    `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Position is an imported LinkedIn work position, keyed by the company id.
type Position struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	AccountID   string    `bson:"accountId" json:"accountId"`
	ExternalKey string    `bson:"externalKey" json:"externalKey"`
	Title       string    `bson:"title" json:"title"`
	Summary     string    `bson:"summary,omitempty" json:"summary,omitempty"`
	CompanyName string    `bson:"companyName,omitempty" json:"companyName,omitempty"`
	CompanyType string    `bson:"companyType,omitempty" json:"companyType,omitempty"`
	CompanySize string    `bson:"companySize,omitempty" json:"companySize,omitempty"`
	Industry    string    `bson:"industry,omitempty" json:"industry,omitempty"`
	IsCurrent   bool      `bson:"isCurrent" json:"isCurrent"`
	StartYear   int       `bson:"startYear,omitempty" json:"startYear,omitempty"`
	StartMonth  int       `bson:"startMonth,omitempty" json:"startMonth,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Education is an imported LinkedIn education entry.
type Education struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	AccountID    string    `bson:"accountId" json:"accountId"`
	ExternalKey  string    `bson:"externalKey" json:"externalKey"`
	SchoolName   string    `bson:"schoolName" json:"schoolName"`
	Degree       string    `bson:"degree,omitempty" json:"degree,omitempty"`
	FieldOfStudy string    `bson:"fieldOfStudy,omitempty" json:"fieldOfStudy,omitempty"`
	StartYear    int       `bson:"startYear,omitempty" json:"startYear,omitempty"`
	EndYear      int       `bson:"endYear,omitempty" json:"endYear,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
