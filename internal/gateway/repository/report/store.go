// Package report archives exported summary documents per user.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store keeps report documents grouped by owner.
type Store interface {
	Put(ctx context.Context, owner, name string, content []byte) error
	Get(ctx context.Context, owner, name string) ([]byte, error)
	GetURL(ctx context.Context, owner, name string) (string, error)
	List(ctx context.Context, owner string) ([]string, error)
}

var ErrNotFound = errors.New("report not found")

func normalize(owner, name string) (string, string, error) {
	owner = strings.TrimSpace(owner)
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if owner == "" {
		return "", "", fmt.Errorf("owner is required")
	}
	if strings.Contains(owner, "/") {
		return "", "", fmt.Errorf("owner must not contain '/'")
	}
	if name == "" {
		return "", "", fmt.Errorf("name is required")
	}
	return owner, name, nil
}

func objectKey(owner, name string) string {
	return owner + "/" + name
}
