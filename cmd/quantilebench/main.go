// Copyright (C) 2024 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sneller-quantile/exact/internal/percentile"
	"github.com/sneller-quantile/exact/quantile"
)

func fatalf(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

func policyByName(name string) quantile.Policy {
	switch name {
	case "nearest":
		return quantile.Nearest{}
	case "exclusive":
		return quantile.Exclusive{}
	case "inclusive":
		return quantile.Inclusive{}
	default:
		fatalf("unknown policy %q (want nearest, exclusive or inclusive)", name)
		return nil
	}
}

func generate(n int, seed int64) []int64 {
	r := rand.New(rand.NewSource(seed))
	data := make([]int64, n)
	for i := range data {
		data[i] = r.Int63n(1 << 40)
	}
	return data
}

// runExact times repeated Finalize calls against a freshly rebuilt
// quantile.State, since Finalize may reorder the retained buffer and
// a representative benchmark should always select from a pristine
// buffer the way a fresh query does.
func runExact(data []int64, policy quantile.Policy, level float64, deadline time.Time) (time.Duration, any) {
	var min time.Duration
	var last any
	for time.Now().Before(deadline) {
		s := quantile.New[int64](policy)
		for _, x := range data {
			s.Add(x)
		}
		start := time.Now()
		var err error
		if _, ok := policy.(quantile.Nearest); ok {
			last, err = s.Finalize(level)
		} else {
			last, err = s.FinalizeFloat(level)
		}
		if err != nil {
			fatalf("finalize: %s", err)
		}
		dur := time.Since(start)
		if min == 0 || dur < min {
			min = dur
		}
	}
	return min, last
}

// runApprox times the sibling approximate path (percentile.TDigest),
// so -approx lets a caller compare the exact and approximate families
// spec.md explicitly distinguishes.
func runApprox(data []int64, level float32, deadline time.Time) (time.Duration, float32) {
	var min time.Duration
	var last float32
	means := make([]float32, len(data))
	for i, x := range data {
		means[i] = float32(x)
	}
	// NewTDigest and TDigest.Merge accept at most 16 new centroids per
	// call, so the input is fed in chunks of 16.
	chunk := func(x []float32) []float32 {
		if len(x) > 16 {
			return x[:16]
		}
		return x
	}
	for time.Now().Before(deadline) {
		start := time.Now()
		td := percentile.NewTDigest(chunk(means), 16)
		for rest := means[len(chunk(means)):]; len(rest) > 0; rest = rest[len(chunk(rest)):] {
			td.Merge(percentile.NewTDigest(chunk(rest), 16), 16)
		}
		last = td.Percentile(level)
		dur := time.Since(start)
		if min == 0 || dur < min {
			min = dur
		}
	}
	return min, last
}

func main() {
	var (
		n       int
		seed    int64
		policy  string
		level   float64
		approx  bool
		seconds float64
	)
	flag.IntVar(&n, "n", 1_000_000, "number of samples")
	flag.Int64Var(&seed, "seed", 0, "random seed")
	flag.StringVar(&policy, "policy", "nearest", "nearest, exclusive or inclusive")
	flag.Float64Var(&level, "level", 0.5, "quantile level in [0,1]")
	flag.BoolVar(&approx, "approx", false, "also benchmark the approximate (tDigest) path")
	flag.Float64Var(&seconds, "time", 2, "benchmark duration in seconds per path")
	flag.Parse()

	data := generate(n, seed)
	deadline := time.Now().Add(time.Duration(seconds * float64(time.Second)))
	dur, result := runExact(data, policyByName(policy), level, deadline)
	multiplier := float64(time.Second) / float64(dur)
	throughput := float64(len(data)) * multiplier
	fmt.Printf("exact   n=%d policy=%s level=%v -> %v (%.3gs, %.3g samples/s)\n",
		n, policy, level, result, dur.Seconds(), throughput)

	if approx {
		deadline = time.Now().Add(time.Duration(seconds * float64(time.Second)))
		adur, aresult := runApprox(data, float32(level), deadline)
		amultiplier := float64(time.Second) / float64(adur)
		athroughput := float64(len(data)) * amultiplier
		fmt.Printf("approx  n=%d level=%v -> %v (%.3gs, %.3g samples/s)\n",
			n, level, aresult, adur.Seconds(), athroughput)
	}
}
