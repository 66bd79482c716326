// Command perft counts legal move tree leaves for a position, optionally
// split per root move. Root subtrees are independent, so they fan out over
// a worker pool.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/kestrel/internal/board"
	"github.com/hailam/kestrel/internal/engine"
)

func main() {
	fen := flag.String("fen", board.StartFEN, "position to count from")
	depth := flag.Int("depth", 0, "perft depth (required)")
	divide := flag.Bool("divide", false, "print per-root-move node counts")
	jobs := flag.Int("jobs", runtime.NumCPU(), "parallel workers over root moves")
	flag.Parse()

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	start := time.Now()
	rows, total := parallelPerft(pos, *depth, *jobs)
	elapsed := time.Since(start)

	if *divide {
		slices.SortFunc(rows, func(a, b rootCount) int {
			return strings.Compare(a.move, b.move)
		})
		for _, r := range rows {
			fmt.Printf("%s: %d\n", r.move, r.nodes)
		}
	}

	fmt.Printf("nodes %d\n", total)
	fmt.Printf("time %v\n", elapsed)
	if secs := elapsed.Seconds(); secs > 0 {
		fmt.Printf("nps %.0f\n", float64(total)/secs)
	}
}

type rootCount struct {
	move  string
	nodes uint64
}

// parallelPerft splits the count at the root: each legal root move gets a
// private copy of the position and a worker slot.
func parallelPerft(pos *board.Position, depth, jobs int) ([]rootCount, uint64) {
	moves := pos.GenerateLegalMoves()
	rows := make([]rootCount, moves.Len())
	var total atomic.Uint64

	var g errgroup.Group
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)

	for i := 0; i < moves.Len(); i++ {
		i := i
		m := moves.Get(i)
		child := pos.Copy()
		child.MakeMove(m)

		g.Go(func() error {
			count := uint64(1)
			if depth > 1 {
				count = engine.Perft(child, depth-1)
			}
			rows[i] = rootCount{move: m.String(), nodes: count}
			total.Add(count)
			return nil
		})
	}
	_ = g.Wait()

	return rows, total.Load()
}
