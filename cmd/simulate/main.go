// Command simulate plays random hands through the betting engine and
// reports aggregate statistics. Every hand is checked for chip
// conservation, so it doubles as a soak test.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/pokerroom/holdem/internal/engine"
)

type CLI struct {
	Hands      int   `default:"10000" help:"Number of hands to simulate"`
	Players    int   `default:"6" help:"Players per hand (2-10)"`
	SmallBlind int   `default:"5" help:"Small blind"`
	BigBlind   int   `default:"10" help:"Big blind"`
	BuyIn      int   `default:"1000" help:"Starting stack per player"`
	Seed       int64 `default:"0" help:"Base RNG seed (0 for time-based)"`
	Workers    int   `default:"0" help:"Worker goroutines (0 for NumCPU)"`
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
)

type stats struct {
	Hands    int
	FoldWins int
	Showdown int
	Streets  map[engine.Street]int
	MaxPot   int
	SumPot   int
	Steps    int
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli)

	if cli.Players < 2 || cli.Players > engine.MaxPlayers {
		fmt.Fprintf(os.Stderr, "players must be between 2 and %d\n", engine.MaxPlayers)
		ctx.Exit(1)
	}

	baseSeed := cli.Seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}
	workers := cli.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	start := time.Now()
	agg, err := simulate(cli, baseSeed, workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulation failed: %v\n", err)
		ctx.Exit(1)
	}
	report(agg, baseSeed, time.Since(start))
}

func simulate(cli CLI, baseSeed int64, workers int) (*stats, error) {
	seeds := make(chan int64)
	results := make(chan handResult)

	g, gctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		defer close(seeds)
		for i := 0; i < cli.Hands; i++ {
			select {
			case seeds <- baseSeed + int64(i):
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var workerGroup errgroup.Group
	for i := 0; i < workers; i++ {
		workerGroup.Go(func() error {
			for seed := range seeds {
				result, err := playHand(seed, cli.Players, cli.SmallBlind, cli.BigBlind, cli.BuyIn)
				if err != nil {
					return err
				}
				select {
				case results <- result:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(workerGroup.Wait)

	done := make(chan *stats, 1)
	go func() {
		agg := &stats{Streets: make(map[engine.Street]int)}
		for result := range results {
			agg.Hands++
			if result.FoldWin {
				agg.FoldWins++
			} else {
				agg.Showdown++
			}
			agg.Streets[result.Street]++
			agg.SumPot += result.Pot
			agg.Steps += result.Steps
			if result.Pot > agg.MaxPot {
				agg.MaxPot = result.Pot
			}
		}
		done <- agg
	}()

	err := g.Wait()
	close(results)
	agg := <-done
	if err != nil {
		return nil, err
	}
	return agg, nil
}

func report(agg *stats, baseSeed int64, elapsed time.Duration) {
	fmt.Println(headerStyle.Render("Simulation Results"))
	fmt.Println()

	row := func(label, value string) {
		fmt.Printf("%s %s\n", labelStyle.Render(fmt.Sprintf("%-18s", label)), valueStyle.Render(value))
	}

	row("Hands", fmt.Sprintf("%d", agg.Hands))
	row("Base seed", fmt.Sprintf("%d", baseSeed))
	row("Elapsed", elapsed.Round(time.Millisecond).String())
	if elapsed > 0 {
		row("Hands/sec", fmt.Sprintf("%.0f", float64(agg.Hands)/elapsed.Seconds()))
	}
	fmt.Println()

	row("Fold wins", percent(agg.FoldWins, agg.Hands))
	row("Showdowns", percent(agg.Showdown, agg.Hands))
	for _, street := range []engine.Street{engine.Preflop, engine.Flop, engine.Turn, engine.River, engine.Showdown} {
		if count, ok := agg.Streets[street]; ok {
			row("Reached "+street.String(), percent(count, agg.Hands))
		}
	}
	fmt.Println()

	row("Largest pot", fmt.Sprintf("%d", agg.MaxPot))
	if agg.Hands > 0 {
		row("Average pot", fmt.Sprintf("%.1f", float64(agg.SumPot)/float64(agg.Hands)))
		row("Average actions", fmt.Sprintf("%.1f", float64(agg.Steps)/float64(agg.Hands)))
	}
}

func percent(n, total int) string {
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%d (%.1f%%)", n, 100*float64(n)/float64(total))
}
