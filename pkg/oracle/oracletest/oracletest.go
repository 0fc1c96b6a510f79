// Package oracletest provides in-memory oracles and known collision data for
// tests.
package oracletest

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/jlrickert/md5coll/pkg/md5x"
	"github.com/jlrickert/md5coll/pkg/oracle"
)

// The collision published by Wang and Yu. Both messages are 128 bytes and
// collide from the standard initial value, so WangPair satisfies the oracle
// contract at md5x.IV.
const (
	wangHex0 = "d131dd02c5e6eec4693d9a0698aff95c2fcab58712467eab4004583eb8fb7f89" +
		"55ad340609f4b30283e488832571415a085125e8f7cdc99fd91dbdf280373c5b" +
		"d8823e3156348f5bae6dacd436c919c6dd53e2b487da03fd02396306d248cda0" +
		"e99f33420f577ee8ce54b67080a80d1ec69821bcb6a8839396f9652b6ff72a70"
	wangHex1 = "d131dd02c5e6eec4693d9a0698aff95c2fcab50712467eab4004583eb8fb7f89" +
		"55ad340609f4b30283e4888325f1415a085125e8f7cdc99fd91dbd7280373c5b" +
		"d8823e3156348f5bae6dacd436c919c6dd53e23487da03fd02396306d248cda0" +
		"e99f33420f577ee8ce54b67080280d1ec69821bcb6a8839396f965ab6ff72a70"
)

// WangPair returns the published collision pair.
func WangPair() oracle.Pair {
	b0, err := hex.DecodeString(wangHex0)
	if err != nil {
		panic(err)
	}
	b1, err := hex.DecodeString(wangHex1)
	if err != nil {
		panic(err)
	}
	p, err := oracle.NewPair(b0, b1)
	if err != nil {
		panic(err)
	}
	return p
}

// Wang answers only at md5x.IV, with WangPair. Any other chaining value is an
// error since no real collision is known for it.
func Wang() oracle.Oracle {
	return oracle.Func(func(_ context.Context, cv md5x.ChainingValue) (oracle.Pair, error) {
		if cv != md5x.IV {
			return oracle.Pair{}, fmt.Errorf("oracletest: no known collision at %s", cv)
		}
		return WangPair(), nil
	})
}

// Synthetic returns distinct, deterministic pairs for any chaining value. The
// pairs do NOT collide; use it where only the bookkeeping matters.
func Synthetic() *Recorder {
	return NewRecorder(oracle.Func(func(_ context.Context, cv md5x.ChainingValue) (oracle.Pair, error) {
		return SyntheticPair(cv, 0), nil
	}))
}

// SyntheticPair derives a pair from cv and salt. Branch bytes are printable
// so tests can embed them in text without tripping filters.
func SyntheticPair(cv md5x.ChainingValue, salt uint32) oracle.Pair {
	var p oracle.Pair
	fill := func(dst []byte, branch uint32) {
		var seed [md5x.Size + 8]byte
		b := cv.Bytes()
		copy(seed[:], b[:])
		binary.LittleEndian.PutUint32(seed[md5x.Size+4:], branch)
		for i := 0; i < len(dst); i += md5x.Size {
			binary.LittleEndian.PutUint32(seed[md5x.Size:], salt+uint32(i))
			sum := md5x.Sum(seed[:])
			for j := 0; j < md5x.Size && i+j < len(dst); j++ {
				dst[i+j] = 'A' + sum[j]%26
			}
		}
	}
	fill(p.B0[:], 0)
	fill(p.B1[:], 1)
	return p
}

// Sequence returns pairs in order, one per call, then fails. It ignores the
// chaining value.
func Sequence(pairs ...oracle.Pair) *Recorder {
	var mu sync.Mutex
	next := 0
	return NewRecorder(oracle.Func(func(_ context.Context, _ md5x.ChainingValue) (oracle.Pair, error) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(pairs) {
			return oracle.Pair{}, fmt.Errorf("oracletest: sequence exhausted after %d pairs", len(pairs))
		}
		p := pairs[next]
		next++
		return p, nil
	}))
}

// Recorder wraps an oracle and records the chaining values it was asked for.
type Recorder struct {
	mu    sync.Mutex
	inner oracle.Oracle
	calls []md5x.ChainingValue
}

func NewRecorder(o oracle.Oracle) *Recorder {
	return &Recorder{inner: o}
}

func (r *Recorder) Collide(ctx context.Context, cv md5x.ChainingValue) (oracle.Pair, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cv)
	r.mu.Unlock()
	return r.inner.Collide(ctx, cv)
}

// Calls returns a copy of the recorded chaining values.
func (r *Recorder) Calls() []md5x.ChainingValue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]md5x.ChainingValue(nil), r.calls...)
}

var _ oracle.Oracle = (*Recorder)(nil)
