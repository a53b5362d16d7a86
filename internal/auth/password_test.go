package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// newTestPasswordService uses bcrypt's minimum cost so tests stay fast.
func newTestPasswordService() *PasswordService {
	return NewPasswordService(bcrypt.MinCost)
}

func TestNewPasswordService_CostOutOfRangeFallsBack(t *testing.T) {
	for _, cost := range []int{0, 3, 32} {
		if got := NewPasswordService(cost).cost; got != DefaultCost {
			t.Errorf("NewPasswordService(%d).cost = %d, want %d", cost, got, DefaultCost)
		}
	}
}

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
	if strings.Contains(hash, "secret1") {
		t.Error("Hash() output contains the plaintext")
	}
}

func TestHash_SamePasswordProducesDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password (salt must be random)")
	}
}

func TestHash_Length(t *testing.T) {
	ps := newTestPasswordService()

	if _, err := ps.Hash(strings.Repeat("a", 73)); err == nil {
		t.Error("Hash() should reject passwords longer than 72 bytes")
	}
	if _, err := ps.Hash(strings.Repeat("a", 72)); err != nil {
		t.Errorf("Hash() should accept a 72-byte password, got error: %v", err)
	}
}

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	tests := []struct {
		name      string
		hash      string
		password  string
		wantErr   bool
		wantWrong bool
	}{
		{name: "correct password", hash: hash, password: "correct-horse-battery-staple"},
		{name: "wrong password", hash: hash, password: "battery-staple", wantErr: true, wantWrong: true},
		{name: "empty password", hash: hash, password: "", wantErr: true, wantWrong: true},
		{name: "garbage hash", hash: "not-a-valid-bcrypt-hash", password: "password", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ps.Verify(tt.hash, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := errors.Is(err, ErrInvalidPassword); got != tt.wantWrong {
				t.Errorf("errors.Is(err, ErrInvalidPassword) = %v, want %v", got, tt.wantWrong)
			}
		})
	}
}

func TestHashVerify_RoundTrip(t *testing.T) {
	ps := newTestPasswordService()

	cases := []struct {
		name     string
		password string
	}{
		{"simple alphanumeric", "hello123"},
		{"special characters", "p@$$w0rd!#%"},
		{"unicode", "пароль-密码"},
		{"whitespace", "  leading and trailing  "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hash, err := ps.Hash(tc.password)
			if err != nil {
				t.Fatalf("Hash(%q) error = %v", tc.password, err)
			}
			if err := ps.Verify(hash, tc.password); err != nil {
				t.Errorf("Verify() failed for %q: %v", tc.password, err)
			}
		})
	}
}
