package localfs

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(t.TempDir(), "http://localhost:8080", []byte("test-secret"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestSaveThenOpenRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	const key = "comp-1/documents/doc-1.pdf"
	if err := s.Save(ctx, key, strings.NewReader("%PDF-1.7 contenido")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := s.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "%PDF-1.7 contenido" {
		t.Fatalf("read back %q", data)
	}
}

func TestOpenMissingKeyFails(t *testing.T) {
	s := newTestStorage(t)
	if _, err := s.Open(context.Background(), "comp-1/documents/ghost.pdf"); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	s := newTestStorage(t)
	for _, key := range []string{"../etc/passwd", "/etc/passwd", "comp-1/../../secrets", "."} {
		if err := s.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Fatalf("Save(%q) accepted a key outside the base path", key)
		}
	}
}

func TestSignedURLVerifies(t *testing.T) {
	s := newTestStorage(t)

	const key = "comp-1/documents/doc-1.pdf"
	signed, err := s.SignedURL(key, time.Hour)
	if err != nil {
		t.Fatalf("SignedURL() error = %v", err)
	}

	u, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}
	if want := "/v1/files/" + key; u.Path != want {
		t.Fatalf("path = %q, want %q", u.Path, want)
	}
	expires, err := strconv.ParseInt(u.Query().Get("exp"), 10, 64)
	if err != nil {
		t.Fatalf("parse exp: %v", err)
	}
	sig := u.Query().Get("sig")

	if !s.VerifySignature(key, expires, sig) {
		t.Fatalf("signature did not verify")
	}
	if s.VerifySignature("comp-1/documents/otro.pdf", expires, sig) {
		t.Fatalf("signature verified for a different key")
	}
	if s.VerifySignature(key, expires, sig+"00") {
		t.Fatalf("tampered signature verified")
	}
}

func TestExpiredSignatureRejected(t *testing.T) {
	s := newTestStorage(t)

	const key = "comp-1/documents/doc-1.pdf"
	expires := time.Now().Add(-time.Minute).Unix()
	sig := s.sign(key, expires)

	if s.VerifySignature(key, expires, sig) {
		t.Fatalf("expired signature verified")
	}
}

func TestSignedURLRequiresSecret(t *testing.T) {
	s, err := New(t.TempDir(), "http://localhost:8080", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.SignedURL("comp-1/documents/doc-1.pdf", time.Hour); err == nil {
		t.Fatalf("expected error without a signing secret")
	}
}
