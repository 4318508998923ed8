package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const linkedinProfileJSON = `{
	"headline": "Engineer at Acme",
	"industry": "Computer Software",
	"publicProfileUrl": "https://linkedin.com/in/janedev",
	"numConnections": 250,
	"skills": {"values": [{"skill": {"name": "Go"}}, {"skill": {"name": "Ruby"}}]},
	"positions": {"values": [{"id": 100, "title": "Engineer", "isCurrent": true, "startDate": {"year": 2024, "month": 3}, "company": {"name": "Acme", "size": "51-200 employees", "industry": "Computer Software"}}]},
	"educations": {"values": [{"id": 200, "schoolName": "State U", "degree": "BS", "fieldOfStudy": "CS", "startDate": {"year": 2016}, "endDate": {"year": 2020}}]}
}`

func TestLinkedinClient_FetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(linkedinProfileJSON))
	}))
	defer srv.Close()

	c := NewLinkedinClientWithBase(srv.URL)
	p, err := c.FetchProfile(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "Engineer at Acme", p.Headline)
	require.Equal(t, 250, p.NumConnections)
	require.Equal(t, []string{"Go", "Ruby"}, p.Skills)

	require.Len(t, p.Positions, 1)
	require.Equal(t, "100", p.Positions[0].ExternalKey)
	require.Equal(t, "Acme", p.Positions[0].CompanyName)
	require.True(t, p.Positions[0].IsCurrent)

	require.Len(t, p.Educations, 1)
	require.Equal(t, "200", p.Educations[0].ExternalKey)
	require.Equal(t, "State U", p.Educations[0].SchoolName)
}

func TestLinkedinClient_FetchViewer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/userinfo" {
			w.Write([]byte(`{"sub": "li-9", "name": "Jane Dev", "email": "jane@example.com", "picture": "https://m/x.jpg", "locale": "en-US"}`))
			return
		}
		w.Write([]byte(linkedinProfileJSON))
	}))
	defer srv.Close()

	c := NewLinkedinClientWithBase(srv.URL)
	p, err := c.FetchViewer(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "li-9", p.UID)
	require.Equal(t, "jane@example.com", p.Email)
	require.Equal(t, "https://m/x.jpg", p.AvatarURL)
	require.Equal(t, "Engineer at Acme", p.Raw["headline"])
	require.Equal(t, "https://linkedin.com/in/janedev", p.Raw["publicProfileUrl"])
}
