package util

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTokenSigner_RoundTrip(t *testing.T) {
	signer := NewTokenSigner([]byte("test-secret"), time.Hour)

	token, err := signer.Issue("user-a")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	userID, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if userID != "user-a" {
		t.Fatalf("expected user-a, got %q", userID)
	}
}

func TestTokenSigner_Expired(t *testing.T) {
	signer := NewTokenSigner([]byte("test-secret"), -time.Minute)

	token, err := signer.Issue("user-a")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := signer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenSigner_Tampered(t *testing.T) {
	signer := NewTokenSigner([]byte("test-secret"), time.Hour)

	token, err := signer.Issue("user-a")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.SplitN(token, ".", 2)
	flipped := []byte(parts[0])
	if flipped[len(flipped)-1] == 'A' {
		flipped[len(flipped)-1] = 'B'
	} else {
		flipped[len(flipped)-1] = 'A'
	}
	tampered := string(flipped) + "." + parts[1]

	if _, err := signer.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered payload, got %v", err)
	}
}

func TestTokenSigner_WrongSecret(t *testing.T) {
	issuer := NewTokenSigner([]byte("secret-one"), time.Hour)
	verifier := NewTokenSigner([]byte("secret-two"), time.Hour)

	token, err := issuer.Issue("user-a")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken with mismatched secret, got %v", err)
	}
}

func TestTokenSigner_Garbage(t *testing.T) {
	signer := NewTokenSigner([]byte("test-secret"), time.Hour)

	for _, token := range []string{"", "no-dot", "a.b", "!!!.???"} {
		if _, err := signer.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestTokenSigner_EmptyUserID(t *testing.T) {
	signer := NewTokenSigner([]byte("test-secret"), time.Hour)
	if _, err := signer.Issue(""); !errors.Is(err, ErrEmptyUserID) {
		t.Fatalf("expected ErrEmptyUserID, got %v", err)
	}
}

func TestTokenSigner_MissingSecret(t *testing.T) {
	signer := NewTokenSigner(nil, time.Hour)
	if _, err := signer.Issue("user-a"); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret on issue, got %v", err)
	}
	if _, err := signer.Verify("x.y"); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret on verify, got %v", err)
	}
}
