package hashing_test

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/hasbyte1/go-credentials/hashing"
)

func TestNewIteratedHash_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts hashing.IteratedHashOptions
	}{
		{"zero work factor", hashing.IteratedHashOptions{WorkFactor: 0}},
		{"negative work factor", hashing.IteratedHashOptions{WorkFactor: -5}},
		{"unknown digest", hashing.IteratedHashOptions{WorkFactor: 1, Digest: "crc32"}},
		{"bad policy", hashing.IteratedHashOptions{WorkFactor: 1, Policy: hashing.Policy{MaxLength: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := hashing.NewIteratedHash(tt.opts); !errors.Is(err, hashing.ErrInvalidOption) {
				t.Errorf("expected ErrInvalidOption, got %v", err)
			}
		})
	}
}

func TestIteratedHash_KnownAnswer_SHA1(t *testing.T) {
	s, _ := hashing.NewIteratedHash(hashing.IteratedHashOptions{WorkFactor: 3})
	s.SetSalt("pepper")

	want := "pepper###hunter2"
	for i := 0; i < 3; i++ {
		sum := sha1.Sum([]byte(want))
		want = hex.EncodeToString(sum[:])
	}

	got, err := s.Encode("hunter2")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got != want {
		t.Errorf("Encode = %s, want %s", got, want)
	}
}

func TestIteratedHash_KnownAnswer_SHA256(t *testing.T) {
	s, _ := hashing.NewIteratedHash(hashing.IteratedHashOptions{WorkFactor: 1, Digest: "sha256"})
	s.SetSalt("s")
	sum := sha256.Sum256([]byte("s###pw"))
	got, _ := s.Encode("pw")
	if got != hex.EncodeToString(sum[:]) {
		t.Errorf("Encode = %s", got)
	}
}

func TestIteratedHash_EmptySaltIsKept(t *testing.T) {
	s, _ := hashing.NewIteratedHash(hashing.IteratedHashOptions{WorkFactor: 1})
	s.SetSalt("")

	sum := sha1.Sum([]byte("###pw"))
	ok, err := s.Compare("pw", hex.EncodeToString(sum[:]))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("a value stored without salt must verify")
	}
	if salt, _ := s.Salt(false); salt != "" {
		t.Errorf("Compare must not generate a salt, got %q", salt)
	}
	if salt, _ := s.Salt(true); len(salt) != 40 {
		t.Errorf("forced refresh must generate a salt, got %q", salt)
	}
}

func TestIteratedHash_EncodeGeneratesMissingSalt(t *testing.T) {
	s, _ := hashing.NewIteratedHash(hashing.IteratedHashOptions{WorkFactor: 1})
	if _, err := s.Encode("pw"); err != nil {
		t.Fatal(err)
	}
	salt, _ := s.Salt(false)
	if len(salt) != 40 {
		t.Fatalf("expected a 40-char hex salt after Encode, got %q", salt)
	}
	again, _ := s.Salt(false)
	if again != salt {
		t.Error("Salt(false) must not regenerate an existing salt")
	}
}

func TestIteratedHash_CompareDependsOnSalt(t *testing.T) {
	s, _ := hashing.NewIteratedHash(hashing.IteratedHashOptions{WorkFactor: 2})
	s.SetSalt("one")
	encoded, _ := s.Encode("pw")

	s.SetSalt("two")
	if ok, _ := s.Compare("pw", encoded); ok {
		t.Error("a different salt must not verify")
	}
	s.SetSalt("one")
	if ok, _ := s.Compare("pw", encoded); !ok {
		t.Error("the original salt must verify")
	}
}

func TestIteratedHash_WorkFactorChangesOutput(t *testing.T) {
	a, _ := hashing.NewIteratedHash(hashing.IteratedHashOptions{WorkFactor: 1})
	b, _ := hashing.NewIteratedHash(hashing.IteratedHashOptions{WorkFactor: 2})
	a.SetSalt("x")
	b.SetSalt("x")
	ea, _ := a.Encode("pw")
	eb, _ := b.Encode("pw")
	if ea == eb {
		t.Error("work factor must affect the encoded value")
	}
	if b.WorkFactor() != 2 {
		t.Errorf("WorkFactor = %d", b.WorkFactor())
	}
}

func TestDigests(t *testing.T) {
	got := hashing.Digests()
	want := []string{"md5", "sha1", "sha256", "sha512"}
	if len(got) != len(want) {
		t.Fatalf("Digests = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Digests[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
