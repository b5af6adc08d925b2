package lstpool

import (
	"github.com/krazyTry/lstpool-go/pool"
	"github.com/krazyTry/lstpool-go/release"
)

// NewPool builds a quoting pool from a consistent snapshot.
//
// Example:
//
// snapshot, _ := LoadSnapshot(data, rate)
//
// p, _ := NewPool(snapshot, pool.WithLogger(logger))
//
// p.SwapExactIn(solana.SolMint, jitoSolMint, 1_000_000_000, minOut)
var NewPool = pool.New

// LoadSnapshot decodes a JSON pool snapshot.
var LoadSnapshot = pool.LoadSnapshot

// DefaultReleaseRate releases 99.99% of withheld value within 2,160,000 slots.
var DefaultReleaseRate = release.DefaultRate
