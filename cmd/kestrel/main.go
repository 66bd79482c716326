package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/kestrel/internal/engine"
	"github.com/hailam/kestrel/internal/storage"
	"github.com/hailam/kestrel/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	noPersist  = flag.Bool("nopersist", false, "skip loading and saving options/stats")
)

func main() {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	// The persisted Hash size has to be known before the engine allocates
	// its table.
	hashMB := storage.DefaultOptions().HashMB
	if store != nil {
		if opts, err := store.LoadOptions(); err == nil && opts.HashMB > 0 {
			hashMB = opts.HashMB
		}
	}

	eng := engine.NewEngine(hashMB)

	protocol := uci.New(eng, store)
	protocol.LoadOptions()
	protocol.Run(os.Stdin)
}

// openStore opens the persistent store; failures degrade to a stateless
// run instead of refusing to start.
func openStore() *storage.Store {
	if *noPersist {
		return nil
	}
	dir, err := storage.DatabaseDir()
	if err != nil {
		log.Printf("storage disabled: %v", err)
		return nil
	}
	store, err := storage.Open(dir)
	if err != nil {
		log.Printf("storage disabled: %v", err)
		return nil
	}
	return store
}
