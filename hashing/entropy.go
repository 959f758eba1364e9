package hashing

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultSecondarySource is the device read when the primary source fails.
const DefaultSecondarySource = "/dev/urandom"

// fallbackRounds is the number of keyed-digest rounds mixed per output block
// by the timing fallback.
const fallbackRounds = 12

// processSeed is unique per process and keys the timing fallback.
var processSeed = []byte(strconv.Itoa(os.Getpid()) + "|" + strconv.FormatInt(time.Now().UnixNano(), 10))

var fallbackCounter atomic.Uint64

// Entropy produces random bytes for salt generation.
//
// Sources are tried in order:
//
//  1. Primary (crypto/rand by default).
//  2. Secondary, a device path read directly (/dev/urandom by default).
//  3. Only when AllowDegraded is set: bytes derived by repeatedly mixing an
//     HMAC-SHA256 keyed with a process-unique seed over nanosecond timings.
//     This is NOT cryptographically strong.  Every use is logged at warn
//     level with [ErrDegradedEntropy].
//
// When every permitted source fails, [ErrEntropyUnavailable] is returned.
// The zero value is ready to use.
type Entropy struct {
	// Primary defaults to crypto/rand.Reader.
	Primary io.Reader
	// SecondaryPath defaults to [DefaultSecondarySource].  Set to "-" to
	// disable the secondary source.
	SecondaryPath string
	// AllowDegraded enables the timing-based fallback.
	AllowDegraded bool
	// Logger receives degraded-entropy warnings.  Nil means no logging.
	Logger *zap.Logger
}

// DefaultEntropy is used by strategies constructed without an explicit
// [Entropy].
var DefaultEntropy = &Entropy{}

// Bytes returns n random bytes.
func (e *Entropy) Bytes(n int) ([]byte, error) {
	if e == nil {
		e = DefaultEntropy
	}
	b := make([]byte, n)

	primary := e.Primary
	if primary == nil {
		primary = rand.Reader
	}
	if _, err := io.ReadFull(primary, b); err == nil {
		return b, nil
	}

	if path := e.secondaryPath(); path != "-" {
		if err := readDevice(path, b); err == nil {
			return b, nil
		}
	}

	if !e.AllowDegraded {
		return nil, fmt.Errorf("%w: primary and secondary sources failed", ErrEntropyUnavailable)
	}
	if e.Logger != nil {
		e.Logger.Warn("hashing: using timing-based entropy fallback",
			zap.Error(ErrDegradedEntropy),
			zap.Int("bytes", n),
		)
	}
	return timingBytes(n), nil
}

func (e *Entropy) secondaryPath() string {
	if e.SecondaryPath == "" {
		return DefaultSecondarySource
	}
	return e.SecondaryPath
}

func readDevice(path string, b []byte) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.ReadFull(f, b)
	return err
}

// timingBytes derives n pseudo-random bytes from timing jitter.
func timingBytes(n int) []byte {
	out := make([]byte, 0, n)
	var value []byte
	for len(out) < n {
		for i := 0; i < fallbackRounds; i++ {
			mac := hmac.New(sha256.New, processSeed)
			mac.Write([]byte(strconv.FormatInt(time.Now().UnixNano(), 10)))
			mac.Write([]byte(strconv.FormatUint(fallbackCounter.Add(1), 10)))
			mac.Write(value)
			value = mac.Sum(nil)
		}
		out = append(out, value...)
	}
	return out[:n]
}
