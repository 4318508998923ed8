package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/liamneesonsarm/pickemup/internal/account"
	"github.com/liamneesonsarm/pickemup/internal/identity"
)

const (
	linkedinBaseURL = "https://api.linkedin.com"
	linkedinIssuer  = "https://www.linkedin.com/oauth"
)

// LinkedinProfile is the deep profile snapshot pulled during background
// refreshes: the sub-account fields plus the owned position and education
// sets, already keyed for set-reconciliation.
type LinkedinProfile struct {
	Headline         string
	Industry         string
	PublicProfileURL string
	NumConnections   int
	Skills           []string
	Positions        []account.Position
	Educations       []account.Education
}

// LinkedinClient talks to the LinkedIn REST API and verifies the id_token
// minted during the OpenID Connect login flow.
type LinkedinClient struct {
	http     *http.Client
	baseURL  string
	verifier *oidc.IDTokenVerifier
}

// NewLinkedinClient discovers LinkedIn's OIDC metadata so callback handlers
// can verify id_tokens. Discovery failure is fatal at startup.
func NewLinkedinClient(ctx context.Context, clientID string) (*LinkedinClient, error) {
	provider, err := oidc.NewProvider(ctx, linkedinIssuer)
	if err != nil {
		return nil, fmt.Errorf("linkedin: oidc discovery: %w", err)
	}
	return &LinkedinClient{
		http:     &http.Client{Timeout: 15 * time.Second},
		baseURL:  linkedinBaseURL,
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// NewLinkedinClientWithBase builds a client without OIDC discovery, used by
// tests against a stub server.
func NewLinkedinClientWithBase(baseURL string) *LinkedinClient {
	return &LinkedinClient{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
	}
}

// VerifyIDToken checks the signature, issuer and audience of a callback
// id_token and returns its claims.
func (c *LinkedinClient) VerifyIDToken(ctx context.Context, rawIDToken string) (map[string]interface{}, error) {
	if c.verifier == nil {
		return nil, fmt.Errorf("linkedin: id_token verification unavailable")
	}
	idToken, err := c.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("linkedin: verify id_token: %w", err)
	}
	claims := map[string]interface{}{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *LinkedinClient) getJSON(ctx context.Context, token, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("linkedin: GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("linkedin: GET %s returned %d: %s", path, resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// FetchViewer loads the userinfo document plus the public profile fields and
// normalizes them into an auth payload.
func (c *LinkedinClient) FetchViewer(ctx context.Context, token string) (*identity.AuthPayload, error) {
	var userinfo map[string]interface{}
	if err := c.getJSON(ctx, token, "/v2/userinfo", &userinfo); err != nil {
		return nil, err
	}
	uid, _ := userinfo["sub"].(string)
	name, _ := userinfo["name"].(string)
	email, _ := userinfo["email"].(string)
	picture, _ := userinfo["picture"].(string)

	raw := map[string]interface{}{}
	for k, v := range userinfo {
		raw[k] = v
	}
	// profile fields live on a separate endpoint; absence is tolerated
	if profile, err := c.FetchProfile(ctx, token); err == nil {
		raw["headline"] = profile.Headline
		raw["industry"] = profile.Industry
		raw["publicProfileUrl"] = profile.PublicProfileURL
		raw["numConnections"] = float64(profile.NumConnections)
	}

	return &identity.AuthPayload{
		UID:       uid,
		Name:      name,
		Email:     email,
		AvatarURL: picture,
		Token:     token,
		Raw:       raw,
	}, nil
}

type linkedinProfileDoc struct {
	Headline         string `json:"headline"`
	Industry         string `json:"industry"`
	PublicProfileURL string `json:"publicProfileUrl"`
	NumConnections   int    `json:"numConnections"`
	Skills           struct {
		Values []struct {
			Skill struct {
				Name string `json:"name"`
			} `json:"skill"`
		} `json:"values"`
	} `json:"skills"`
	Positions struct {
		Values []struct {
			ID        int64  `json:"id"`
			Title     string `json:"title"`
			Summary   string `json:"summary"`
			IsCurrent bool   `json:"isCurrent"`
			StartDate struct {
				Year  int `json:"year"`
				Month int `json:"month"`
			} `json:"startDate"`
			Company struct {
				Name     string `json:"name"`
				Type     string `json:"type"`
				Size     string `json:"size"`
				Industry string `json:"industry"`
			} `json:"company"`
		} `json:"values"`
	} `json:"positions"`
	Educations struct {
		Values []struct {
			ID           int64  `json:"id"`
			SchoolName   string `json:"schoolName"`
			Degree       string `json:"degree"`
			FieldOfStudy string `json:"fieldOfStudy"`
			StartDate    struct {
				Year int `json:"year"`
			} `json:"startDate"`
			EndDate struct {
				Year int `json:"year"`
			} `json:"endDate"`
		} `json:"values"`
	} `json:"educations"`
}

// FetchProfile pulls the full profile document used by the background
// refresh: headline and counts plus positions and educations.
func (c *LinkedinClient) FetchProfile(ctx context.Context, token string) (*LinkedinProfile, error) {
	var doc linkedinProfileDoc
	path := "/v1/people/~:(headline,industry,public-profile-url,num-connections,skills,positions,educations)?format=json"
	if err := c.getJSON(ctx, token, path, &doc); err != nil {
		return nil, err
	}

	p := &LinkedinProfile{
		Headline:         doc.Headline,
		Industry:         doc.Industry,
		PublicProfileURL: doc.PublicProfileURL,
		NumConnections:   doc.NumConnections,
	}
	for _, s := range doc.Skills.Values {
		if s.Skill.Name != "" {
			p.Skills = append(p.Skills, s.Skill.Name)
		}
	}
	for _, v := range doc.Positions.Values {
		p.Positions = append(p.Positions, account.Position{
			ExternalKey: strconv.FormatInt(v.ID, 10),
			Title:       v.Title,
			Summary:     v.Summary,
			CompanyName: v.Company.Name,
			CompanyType: v.Company.Type,
			CompanySize: v.Company.Size,
			Industry:    v.Company.Industry,
			IsCurrent:   v.IsCurrent,
			StartYear:   v.StartDate.Year,
			StartMonth:  v.StartDate.Month,
		})
	}
	for _, v := range doc.Educations.Values {
		p.Educations = append(p.Educations, account.Education{
			ExternalKey:  strconv.FormatInt(v.ID, 10),
			SchoolName:   v.SchoolName,
			Degree:       v.Degree,
			FieldOfStudy: v.FieldOfStudy,
			StartYear:    v.StartDate.Year,
			EndYear:      v.EndDate.Year,
		})
	}
	return p, nil
}
