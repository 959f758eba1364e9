package hashing_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hasbyte1/go-credentials/hashing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestEntropy_ZeroValueUsesCryptoRand(t *testing.T) {
	var e hashing.Entropy
	a, err := e.Bytes(32)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	b, _ := e.Bytes(32)
	if len(a) != 32 || bytes.Equal(a, b) {
		t.Fatalf("expected two distinct 32-byte reads")
	}
}

func TestEntropy_NilReceiverUsesDefault(t *testing.T) {
	var e *hashing.Entropy
	b, err := e.Bytes(8)
	if err != nil || len(b) != 8 {
		t.Fatalf("Bytes on nil: len=%d err=%v", len(b), err)
	}
}

func TestEntropy_FallsBackToSecondary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "random")
	want := []byte("0123456789abcdef")
	if err := os.WriteFile(path, want, 0o600); err != nil {
		t.Fatal(err)
	}
	e := &hashing.Entropy{Primary: failingReader{}, SecondaryPath: path}
	got, err := e.Bytes(len(want))
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %q, want bytes read from secondary source", got)
	}
}

func TestEntropy_UnavailableWithoutDegradedMode(t *testing.T) {
	e := &hashing.Entropy{Primary: failingReader{}, SecondaryPath: "-"}
	_, err := e.Bytes(16)
	if !errors.Is(err, hashing.ErrEntropyUnavailable) {
		t.Fatalf("expected ErrEntropyUnavailable, got %v", err)
	}
}

func TestEntropy_DegradedModeIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e := &hashing.Entropy{
		Primary:       failingReader{},
		SecondaryPath: filepath.Join(t.TempDir(), "missing"),
		AllowDegraded: true,
		Logger:        zap.New(core),
	}

	a, err := e.Bytes(40)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	b, _ := e.Bytes(40)
	if len(a) != 40 || bytes.Equal(a, b) {
		t.Fatal("expected two distinct 40-byte degraded reads")
	}

	if logs.Len() != 2 {
		t.Fatalf("expected 2 warnings, got %d", logs.Len())
	}
	entry := logs.All()[0]
	if err, ok := entry.ContextMap()["error"].(string); !ok || err != hashing.ErrDegradedEntropy.Error() {
		t.Errorf("warning does not carry ErrDegradedEntropy: %v", entry.ContextMap())
	}
}

func TestIteratedHash_SaltSurvivesPrimaryFailure(t *testing.T) {
	opts := hashing.DefaultIteratedHashOptions()
	opts.Entropy = &hashing.Entropy{Primary: failingReader{}, SecondaryPath: "-", AllowDegraded: true}
	s, err := hashing.NewIteratedHash(opts)
	if err != nil {
		t.Fatal(err)
	}
	salt, err := s.Salt(true)
	if err != nil || len(salt) != 40 {
		t.Fatalf("Salt: %q err=%v", salt, err)
	}
}
