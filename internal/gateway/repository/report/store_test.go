package report

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, "u1", "summary-2.json", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := s.Put(ctx, "u1", "/summary-1.json", []byte(`{}`)); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := s.Put(ctx, "u2", "summary-9.json", []byte(`{}`)); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := s.Get(ctx, "u1", "summary-2.json")
	if err != nil || string(got) != `{"a":1}` {
		t.Fatalf("unexpected get: %q %v", got, err)
	}
	got[0] = 'X'
	again, _ := s.Get(ctx, "u1", "summary-2.json")
	if again[0] != '{' {
		t.Fatalf("store returned shared buffer")
	}

	names, err := s.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"summary-1.json", "summary-2.json"}) {
		t.Fatalf("unexpected list: %#v", names)
	}

	if _, err := s.Get(ctx, "u1", "missing.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if url, err := s.GetURL(ctx, "u1", "summary-1.json"); err != nil || url != "" {
		t.Fatalf("memory store should not have urls: %q %v", url, err)
	}
}

func TestMemoryStoreValidation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, tc := range []struct{ owner, name string }{
		{"", "a.json"},
		{"u1", ""},
		{"a/b", "x.json"},
	} {
		if err := s.Put(ctx, tc.owner, tc.name, nil); err == nil {
			t.Fatalf("expected error for %+v", tc)
		}
	}
	if _, err := s.List(ctx, " "); err == nil {
		t.Fatalf("expected error for blank owner")
	}
}

func TestNewS3StoreValidation(t *testing.T) {
	cases := []S3Config{
		{},
		{Endpoint: "minio:9000"},
		{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "b"},
	}
	for _, cfg := range cases {
		if _, err := NewS3Store(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
	s, err := NewS3Store(S3Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "b", Bucket: "reports"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.region != "us-east-1" {
		t.Fatalf("unexpected default region %q", s.region)
	}
	if !strings.HasPrefix(contentType("x.json"), "application/json") {
		t.Fatalf("unexpected content type")
	}
}
