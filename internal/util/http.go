package util

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrStatus is returned by GetBytes for non-200 responses.
type ErrStatus struct {
	URL    string
	Status int
}

func (e *ErrStatus) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Status)
}

// ErrTooLarge is returned by GetBytes when the body exceeds the limit.
var ErrTooLarge = errors.New("response body too large")

var httpClient = &http.Client{Timeout: 12 * time.Second}

// GetBytes fetches url and returns the body. A positive maxBytes rejects
// larger bodies with ErrTooLarge.
func GetBytes(url string, maxBytes int64) ([]byte, error) {
	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &ErrStatus{URL: url, Status: resp.StatusCode}
	}
	if maxBytes <= 0 {
		return io.ReadAll(resp.Body)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > maxBytes {
		return nil, fmt.Errorf("GET %s: %w (max %d bytes)", url, ErrTooLarge, maxBytes)
	}
	return b, nil
}
