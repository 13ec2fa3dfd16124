// Command revtriesim drives a pool of concurrent clients against a
// pkg/driver.Facade, each repeatedly looking up, inserting, or removing
// random lowercase keys for a fixed simulation length. The worker pool
// runs on pkg/driver.Facade's errgroup-backed Init/Go/Shutdown so a
// simulation whose timer expires mid-flight still drains every client
// goroutine cleanly.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/bobboyms/revtrie/pkg/driver"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("revtriesim", flag.ContinueOnError)
	fs.Usage = func() { printHelp(fs) }

	numClients := fs.Int("c", 1, "run `N` client goroutines")
	simLength := fs.Int("l", 30, "run the simulation for `S` seconds")
	seed := fs.Int64("s", 1, "seed the PRNG with `SEED` for a reproducible run")
	dedicated := fs.Bool("t", false, "run a dedicated capacity-eviction agent instead of inline enforcement")
	help := fs.Bool("h", false, "print this help")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *help {
		printHelp(fs)
		return 0
	}
	if *numClients <= 0 {
		fmt.Fprintln(os.Stderr, "revtriesim: -c must be positive")
		return 1
	}
	if *simLength <= 0 {
		fmt.Fprintln(os.Stderr, "revtriesim: -l must be positive")
		return 1
	}

	f := driver.New(driver.Config{
		DedicatedAgent: *dedicated,
		Namespace:      "revtriesim",
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*simLength)*time.Second)
	defer cancel()

	f.Init(ctx, *numClients)
	for i := 0; i < *numClients; i++ {
		clientSeed := *seed + int64(i)
		f.Go(func(ctx context.Context) error {
			runClient(ctx, f, clientSeed)
			return nil
		})
	}

	if err := f.Shutdown(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "revtriesim: shutdown: %v\n", err)
		return 1
	}

	fmt.Printf("revtriesim: clean shutdown, %d keys live\n", f.Count())
	return 0
}

// runClient repeats the original simulator's workload: generate a
// random lowercase key, then with equal probability look it up, insert
// it with a random value, or remove it, until ctx is cancelled.
func runClient(ctx context.Context, f *driver.Facade, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		key := randomKey(rng)
		switch rng.Intn(3) {
		case 0:
			f.Lookup(ctx, key)
		case 1:
			f.Insert(ctx, key, rng.Uint32())
			f.EnforceCapacity()
		case 2:
			f.Remove(ctx, key)
		}
	}
}

const minKeyLen, maxKeyLen = 1, 16

// randomKey produces a random lowercase ASCII key, mirroring
// original_source/main.c's client() string generator.
func randomKey(rng *rand.Rand) []byte {
	n := minKeyLen + rng.Intn(maxKeyLen-minKeyLen+1)
	key := make([]byte, n)
	for i := range key {
		key[i] = byte('a' + rng.Intn(26))
	}
	return key
}

func printHelp(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "revtriesim: concurrent workload driver for the reverse trie.")
	fmt.Fprintln(os.Stderr, "\nOptions:")
	fs.PrintDefaults()
}
