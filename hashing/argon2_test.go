package hashing_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/hasbyte1/go-credentials/hashing"
)

// fastArgon2Opts returns minimal Argon2 parameters for unit tests.
// These are intentionally weak; do NOT use in production.
func fastArgon2Opts() hashing.Argon2Options {
	return hashing.Argon2Options{
		Memory:  8 * 2, // 8 × Threads minimum
		Time:    1,
		Threads: 2,
		KeyLen:  16,
		SaltLen: 8,
	}
}

func newTestArgon2id(t testing.TB) *hashing.Argon2id {
	t.Helper()
	s, err := hashing.NewArgon2id(fastArgon2Opts())
	if err != nil {
		t.Fatalf("NewArgon2id: %v", err)
	}
	return s
}

func TestNewArgon2id_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts hashing.Argon2Options
	}{
		{"time=0", hashing.Argon2Options{Memory: 64, Time: 0, Threads: 1, KeyLen: 16, SaltLen: 8}},
		{"threads=0", hashing.Argon2Options{Memory: 64, Time: 1, Threads: 0, KeyLen: 16, SaltLen: 8}},
		{"memory too low", hashing.Argon2Options{Memory: 1, Time: 1, Threads: 2, KeyLen: 16, SaltLen: 8}},
		{"key_len<4", hashing.Argon2Options{Memory: 64, Time: 1, Threads: 1, KeyLen: 3, SaltLen: 8}},
		{"salt_len<8", hashing.Argon2Options{Memory: 64, Time: 1, Threads: 1, KeyLen: 16, SaltLen: 7}},
		{"negative policy", hashing.Argon2Options{Memory: 64, Time: 1, Threads: 1, KeyLen: 16, SaltLen: 8,
			Policy: hashing.Policy{MinDigits: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hashing.NewArgon2id(tt.opts)
			if !errors.Is(err, hashing.ErrInvalidOption) {
				t.Errorf("expected ErrInvalidOption, got %v", err)
			}
		})
	}
}

func TestArgon2id_Encode_PHCFormat(t *testing.T) {
	s := newTestArgon2id(t)
	encoded, err := s.Encode("password")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=16,t=1,p=2$") {
		t.Errorf("unexpected PHC prefix: %s", encoded)
	}
}

func TestArgon2id_Compare_WrongVariant(t *testing.T) {
	s := newTestArgon2id(t)
	_, err := s.Compare("pw", "$argon2i$v=19$m=16,t=1,p=2$c2FsdHNhbHQ$aGFzaGhhc2hoYXNoaGFzaA")
	if !errors.Is(err, hashing.ErrInvalidHash) {
		t.Errorf("expected ErrInvalidHash, got %v", err)
	}
}

func TestArgon2id_Compare_Malformed(t *testing.T) {
	s := newTestArgon2id(t)
	for _, v := range []string{
		"",
		"garbage",
		"$argon2id$v=19$m=16,t=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=16,t=1,p=0$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=16,t=1,p=2$!!!$aGFzaA",
	} {
		if _, err := s.Compare("pw", v); !errors.Is(err, hashing.ErrInvalidHash) {
			t.Errorf("%q: expected ErrInvalidHash, got %v", v, err)
		}
	}
}

func TestArgon2id_NeedsRehash(t *testing.T) {
	s := newTestArgon2id(t)
	encoded, _ := s.Encode("pw")

	needs, err := s.NeedsRehash(encoded)
	if err != nil || needs {
		t.Fatalf("same params: needs=%v err=%v", needs, err)
	}

	opts := fastArgon2Opts()
	opts.Time = 2
	stronger, _ := hashing.NewArgon2id(opts)
	needs, err = stronger.NeedsRehash(encoded)
	if err != nil || !needs {
		t.Fatalf("different time: needs=%v err=%v", needs, err)
	}

	opts = fastArgon2Opts()
	opts.KeyLen = 32
	longer, _ := hashing.NewArgon2id(opts)
	needs, err = longer.NeedsRehash(encoded)
	if err != nil || !needs {
		t.Fatalf("different key length: needs=%v err=%v", needs, err)
	}
}

func TestArgon2id_VerifiesAfterConfigChange(t *testing.T) {
	old := newTestArgon2id(t)
	encoded, _ := old.Encode("pw")

	opts := fastArgon2Opts()
	opts.Time = 2
	opts.Memory = 32
	current, _ := hashing.NewArgon2id(opts)
	ok, err := current.Compare("pw", encoded)
	if err != nil || !ok {
		t.Fatalf("Compare with changed config: ok=%v err=%v", ok, err)
	}
}

func TestArgon2id_UsesInjectedEntropy(t *testing.T) {
	opts := fastArgon2Opts()
	opts.Entropy = &hashing.Entropy{Primary: failingReader{}, SecondaryPath: "-"}
	s, _ := hashing.NewArgon2id(opts)
	if _, err := s.Encode("pw"); !errors.Is(err, hashing.ErrEntropyUnavailable) {
		t.Errorf("expected ErrEntropyUnavailable, got %v", err)
	}
}
