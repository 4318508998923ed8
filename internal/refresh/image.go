package refresh

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/liamneesonsarm/pickemup/internal/account"
)

// AvatarStorage is the slice of the object store the capturer needs.
type AvatarStorage interface {
	UploadAvatar(ctx context.Context, userID string, reader io.Reader, size int64, contentType string) (string, error)
}

// ImageCapturer downloads a provider avatar and stores a copy under our own
// object key, then points the user record at it. Re-captures overwrite the
// same key, so repeated delivery of the same job converges.
type ImageCapturer struct {
	store   account.Store
	storage AvatarStorage
	http    *http.Client
}

func NewImageCapturer(store account.Store, storage AvatarStorage) *ImageCapturer {
	return &ImageCapturer{
		store:   store,
		storage: storage,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Capture fetches imageURL and stores it as the user's profile image.
func (c *ImageCapturer) Capture(ctx context.Context, userID, imageURL string) error {
	if imageURL == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch avatar %s: %w", imageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch avatar %s: status %d", imageURL, resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	key, err := c.storage.UploadAvatar(ctx, userID, resp.Body, resp.ContentLength, contentType)
	if err != nil {
		return err
	}
	return c.store.SetProfileImage(ctx, userID, key)
}
