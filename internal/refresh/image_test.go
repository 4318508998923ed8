package refresh

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liamneesonsarm/pickemup/internal/account"
)

type fakeAvatarStorage struct {
	uploads map[string][]byte
}

func (f *fakeAvatarStorage) UploadAvatar(ctx context.Context, userID string, reader io.Reader, size int64, contentType string) (string, error) {
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	key := "avatars/" + userID
	f.uploads[key] = b
	return key, nil
}

func TestImageCapturer_Capture(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	store := account.NewMemoryStore()
	ctx := context.Background()
	u, err := store.CreateUser(ctx, &account.User{Name: "Jane", Email: "jane@example.com", GithubUID: "gh-1", MainProvider: account.ProviderGithub})
	require.NoError(t, err)

	fs := &fakeAvatarStorage{}
	c := NewImageCapturer(store, fs)

	require.NoError(t, c.Capture(ctx, u.ID, srv.URL+"/avatar.png"))
	require.Equal(t, []byte("png-bytes"), fs.uploads["avatars/"+u.ID])

	got, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "avatars/"+u.ID, got.ProfileImage)
}

func TestImageCapturer_EmptyURLIsNoop(t *testing.T) {
	store := account.NewMemoryStore()
	c := NewImageCapturer(store, &fakeAvatarStorage{})
	require.NoError(t, c.Capture(context.Background(), "u1", ""))
}

func TestImageCapturer_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store := account.NewMemoryStore()
	c := NewImageCapturer(store, &fakeAvatarStorage{})
	err := c.Capture(context.Background(), "u1", srv.URL+"/missing.png")
	require.Error(t, err)
}
