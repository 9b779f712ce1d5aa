package gcs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultEndpoint   = "https://storage.googleapis.com"
	defaultUploadBase = "https://storage.googleapis.com/upload"
)

// ErrObjectNotFound is returned when the referenced object does not exist.
var ErrObjectNotFound = errors.New("gcs: object not found")

// Upload stores the payload at the given object path via a media upload.
func (b *Bucket) Upload(ctx context.Context, object, contentType string, data []byte) error {
	if b == nil || b.client == nil {
		return errors.New("gcs bucket not initialized")
	}
	if object == "" {
		return errors.New("object path is required")
	}

	token, err := b.client.tokenSource.Token(ctx)
	if err != nil {
		return err
	}

	u := fmt.Sprintf(
		"%s/storage/v1/b/%s/o?uploadType=media&name=%s",
		b.client.uploadBase,
		url.PathEscape(b.name),
		url.QueryEscape(object),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := b.client.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return statusError("upload", object, resp)
	}
	return nil
}

// Delete removes a single object. Absent objects map to ErrObjectNotFound.
func (b *Bucket) Delete(ctx context.Context, object string) error {
	if b == nil || b.client == nil {
		return errors.New("gcs bucket not initialized")
	}
	if object == "" {
		return errors.New("object path is required")
	}

	token, err := b.client.tokenSource.Token(ctx)
	if err != nil {
		return err
	}

	u := fmt.Sprintf(
		"%s/storage/v1/b/%s/o/%s",
		b.client.endpoint,
		url.PathEscape(b.name),
		url.PathEscape(object),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := b.client.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrObjectNotFound
	default:
		return statusError("delete", object, resp)
	}
}

// ListPrefix returns the names of every object under the prefix, following
// pagination until the listing is exhausted.
func (b *Bucket) ListPrefix(ctx context.Context, prefix string) ([]string, error) {
	if b == nil || b.client == nil {
		return nil, errors.New("gcs bucket not initialized")
	}

	var names []string
	pageToken := ""
	for {
		token, err := b.client.tokenSource.Token(ctx)
		if err != nil {
			return nil, err
		}

		query := url.Values{}
		query.Set("prefix", prefix)
		query.Set("fields", "items(name),nextPageToken")
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		u := fmt.Sprintf(
			"%s/storage/v1/b/%s/o?%s",
			b.client.endpoint,
			url.PathEscape(b.name),
			query.Encode(),
		)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		resp, err := b.client.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			err := statusError("list", prefix, resp)
			_ = resp.Body.Close()
			return nil, err
		}

		var listing struct {
			Items []struct {
				Name string `json:"name"`
			} `json:"items"`
			NextPageToken string `json:"nextPageToken"`
		}
		decodeErr := json.NewDecoder(resp.Body).Decode(&listing)
		_ = resp.Body.Close()
		if decodeErr != nil {
			return nil, decodeErr
		}

		for _, item := range listing.Items {
			if item.Name != "" {
				names = append(names, item.Name)
			}
		}

		if listing.NextPageToken == "" {
			return names, nil
		}
		pageToken = listing.NextPageToken
	}
}

// ObjectURL returns the public URL for an object in this bucket.
func (b *Bucket) ObjectURL(object string) string {
	if b == nil || b.client == nil {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", b.client.endpoint, b.name, object)
}

// PathFromURL resolves the object path from a previously issued public URL.
// The empty string means the URL does not belong to this bucket.
func (b *Bucket) PathFromURL(rawURL string) string {
	if b == nil {
		return ""
	}
	marker := "/" + b.name + "/"
	idx := strings.Index(rawURL, marker)
	if idx < 0 {
		return ""
	}
	path := rawURL[idx+len(marker):]
	if cut := strings.IndexAny(path, "?#"); cut >= 0 {
		path = path[:cut]
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	return path
}

func statusError(op, object string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if len(body) > 0 {
		return fmt.Errorf("gcs %s %q: %s: %s", op, object, resp.Status, strings.TrimSpace(string(body)))
	}
	return fmt.Errorf("gcs %s %q: %s", op, object, resp.Status)
}
