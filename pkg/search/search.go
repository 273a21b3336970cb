// Package search coordinates the parallel hunt for a did:plc identifier
// matching a pattern. Workers repeatedly sign the fixed genesis operation
// with a fresh nonce, finalize the identifier digest from a precomputed
// prefix state, and test the encoded suffix; the first worker to match
// claims a single-assignment result slot and stops the rest.
package search

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/plchunter/plchunter/pkg/plc"
	"github.com/plchunter/plchunter/pkg/sign"
)

// ErrConfig wraps every configuration failure detected before workers start.
var ErrConfig = errors.New("search: invalid configuration")

// sigTextLen is the width of a base64url-encoded compact signature. Both
// supported curves produce 64-byte signatures, so the CBOR string header in
// the canonical template never changes width.
var sigTextLen = base64.RawURLEncoding.EncodedLen(sign.CompactSigLen)

// Config holds the search parameters.
type Config struct {
	// RotationKey is the user's did:key rotation key; registered first, so
	// it stays in control of the identifier.
	RotationKey string

	// Pattern is a regular expression evaluated against the 24-character
	// identifier suffix.
	Pattern string

	// Curve selects the weak key's curve ("k256" or "p256"). Empty means
	// the curve of the rotation key.
	Curve string

	// Workers overrides the worker count; 0 means runtime.NumCPU().
	Workers int

	// Optional document fields carried into the genesis operation.
	VerificationMethods map[string]string
	AlsoKnownAs         []string
	Services            map[string]plc.Service
}

// Result is the search outcome, published at most once per run.
type Result struct {
	Op       *plc.SignedOperation
	DID      string
	Attempts uint64
	Elapsed  time.Duration
}

// Searcher owns everything the workers share read-only: the genesis
// operation, the digest of its unsigned bytes, the compiled pattern and the
// prefix hash state.
type Searcher struct {
	attempts  uint64 // atomic; advisory only
	startTime time.Time

	workers        int
	curve          plc.Curve
	op             *plc.Operation
	unsignedDigest [32]byte
	matcher        *Matcher
	prefix         *PrefixHasher
}

// New validates the configuration and precomputes the run-invariant state.
// All configuration errors surface here; Run cannot fail on input.
func New(cfg Config) (*Searcher, error) {
	userCurve, _, err := plc.ParseDIDKey(cfg.RotationKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	curve := userCurve
	if cfg.Curve != "" {
		curve, err = plc.ParseCurve(cfg.Curve)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
	}

	matcher, err := NewMatcher(cfg.Pattern)
	if err != nil {
		return nil, err
	}

	// Any signer instance exposes the weak public key; the per-worker
	// signers are created inside Run.
	signer, err := sign.NewWeakSigner(curve, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	weakDID, err := plc.FormatDIDKey(curve, signer.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	op, err := plc.NewGenesisOperation(plc.GenesisParams{
		RotationKey:         cfg.RotationKey,
		WeakKeyDID:          weakDID,
		VerificationMethods: cfg.VerificationMethods,
		AlsoKnownAs:         cfg.AlsoKnownAs,
		Services:            cfg.Services,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	unsigned, err := op.CanonicalBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	template, span, err := op.CanonicalTemplate(sigTextLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	prefix, err := NewPrefixHasher(template, span)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Searcher{
		workers:        workers,
		curve:          curve,
		op:             op,
		unsignedDigest: sha256.Sum256(unsigned),
		matcher:        matcher,
		prefix:         prefix,
	}, nil
}

// Matcher exposes the compiled pattern, for difficulty estimates.
func (s *Searcher) Matcher() *Matcher { return s.matcher }

// Curve reports the weak key's curve.
func (s *Searcher) Curve() plc.Curve { return s.curve }

// Workers reports the configured parallelism.
func (s *Searcher) Workers() int { return s.workers }

// Stats holds real-time performance statistics. Counters are advisory and
// never consulted for correctness.
type Stats struct {
	Attempts    uint64
	HashRate    float64
	ElapsedSecs float64
}

// Stats returns the current performance statistics. Safe to call from any
// goroutine while Run is in flight.
func (s *Searcher) Stats() Stats {
	attempts := atomic.LoadUint64(&s.attempts)
	elapsed := time.Since(s.startTime).Seconds()

	var hashRate float64
	if elapsed > 0 {
		hashRate = float64(attempts) / elapsed
	}
	return Stats{
		Attempts:    attempts,
		HashRate:    hashRate,
		ElapsedSecs: elapsed,
	}
}

// Run searches until a worker claims a match or ctx is cancelled, then
// joins all workers. It returns exactly one of: a published result,
// (nil, nil) for cancellation before a match, or an error if the signing
// arithmetic failed (an implementation bug, per the error contract).
func (s *Searcher) Run(ctx context.Context) (*Result, error) {
	s.startTime = time.Now()
	atomic.StoreUint64(&s.attempts, 0)

	var (
		stop     atomic.Bool
		winner   atomic.Pointer[Result]
		firstErr atomic.Pointer[error]
		wg       sync.WaitGroup
	)

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, &stop, &winner, &firstErr)
		}()
	}
	wg.Wait()

	if errp := firstErr.Load(); errp != nil {
		return nil, *errp
	}
	return winner.Load(), nil
}

func (s *Searcher) worker(ctx context.Context, stop *atomic.Bool, winner *atomic.Pointer[Result], firstErr *atomic.Pointer[error]) {
	fail := func(err error) {
		if firstErr.CompareAndSwap(nil, &err) {
			stop.CompareAndSwap(false, true)
		}
	}

	signer, err := sign.NewWeakSigner(s.curve, nil)
	if err != nil {
		fail(err)
		return
	}
	fin := s.prefix.Fork()

	var (
		digest  [32]byte
		sigText = make([]byte, sigTextLen)
		b32     = make([]byte, plc.Encoding.EncodedLen(sha256.Size))
	)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if stop.Load() {
			return
		}

		sig, err := signer.Sign(s.unsignedDigest)
		if err != nil {
			fail(err)
			return
		}
		base64.RawURLEncoding.Encode(sigText, sig[:])

		if err := fin.Sum(sigText, &digest); err != nil {
			fail(err)
			return
		}
		atomic.AddUint64(&s.attempts, 1)

		plc.Encoding.Encode(b32, digest[:])
		if !s.matcher.Match(b32[:plc.SuffixLen]) {
			continue
		}

		res := &Result{
			Op:       s.op.Signed(string(sigText)),
			DID:      plc.DIDPrefix + string(b32[:plc.SuffixLen]),
			Attempts: atomic.LoadUint64(&s.attempts),
			Elapsed:  time.Since(s.startTime),
		}
		// First successful claim wins; everyone else backs off.
		if winner.CompareAndSwap(nil, res) {
			stop.CompareAndSwap(false, true)
		}
		return
	}
}
