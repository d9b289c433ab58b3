package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/osse101/reelfaucet/internal/betting"
	"github.com/osse101/reelfaucet/internal/domain"
	"github.com/osse101/reelfaucet/internal/slots"
)

type tally struct {
	spins    int64
	wagered  int64
	won      int64
	wins     int64
	bigWins  int64
	bigPaid  int64
	patterns map[string]int64
}

func main() {
	spins := flag.Int64("spins", 1_000_000, "Number of spins to simulate")
	level := flag.Int("level", 1, "Player level")
	bet := flag.Int64("bet", 0, "Bet per spin (0 uses the level maximum)")
	profile := flag.String("profile", slots.ProfileTable, "Built-in payout profile (table|consolation)")
	catalogPath := flag.String("catalog", "", "Catalog file, overrides -profile")
	seed := flag.Uint64("seed", 0, "RNG seed (0 picks a random seed)")
	noPool := flag.Bool("no-pool", false, "Disable the Big Win Pool")
	flag.Parse()

	catalog, err := loadCatalog(*catalogPath, *profile)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	bets, err := betting.NewController(nil)
	if err != nil {
		log.Fatalf("Failed to build level ladder: %v", err)
	}
	if _, err := bets.Level(*level); err != nil {
		log.Fatalf("Invalid level: %v", err)
	}
	if *bet <= 0 {
		*bet = bets.MaxBet(*level)
	}
	if *bet > bets.MaxBet(*level) {
		log.Fatalf("Bet %d exceeds level %d maximum of %d", *bet, *level, bets.MaxBet(*level))
	}

	if *seed == 0 {
		*seed = rand.Uint64() //nolint:gosec // Simulation seed
	}
	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)) //nolint:gosec // Simulation randomness

	gen := slots.NewGenerator(catalog, rng.IntN)
	resolver := slots.NewResolver(catalog)
	pool := slots.NewPool(slots.DefaultPoolConfig(), decimal.Zero, rng.Float64)

	t := run(*spins, *bet, bets.Multiplier(*level), gen, resolver, pool, *noPool)
	report(os.Stdout, t, *seed, *level, *bet)
}

func loadCatalog(path, profile string) (*slots.Catalog, error) {
	if path != "" {
		return slots.LoadCatalog(path)
	}
	return slots.NewProfileCatalog(profile)
}

func run(n, bet int64, multiplier float64, gen *slots.Generator, resolver *slots.Resolver, pool *slots.Pool, noPool bool) tally {
	t := tally{patterns: make(map[string]int64)}
	for t.spins < n {
		t.spins++
		t.wagered += bet
		pool.Contribute(bet)

		var result domain.SpinResult
		if !noPool && pool.ShouldTrigger(t.spins) {
			result = pool.BigWin()
			t.bigWins++
			t.bigPaid += result.WinAmount
		} else {
			result = resolver.Draw(gen, domain.SpinRequest{Bet: bet, LevelMultiplier: multiplier})
			t.patterns[resolver.Match(result.Symbols).Pattern]++
		}

		if result.IsWin {
			t.wins++
			t.won += result.WinAmount
		}
	}
	return t
}

func report(out *os.File, t tally, seed uint64, level int, bet int64) {
	p := message.NewPrinter(language.English)

	rtp := 0.0
	hit := 0.0
	if t.wagered > 0 {
		rtp = float64(t.won) / float64(t.wagered) * 100
	}
	if t.spins > 0 {
		hit = float64(t.wins) / float64(t.spins) * 100
	}

	_, _ = p.Fprintf(out, "Seed:        %d\n", seed)
	_, _ = p.Fprintf(out, "Level / bet: %d / %d\n", level, bet)
	_, _ = p.Fprintf(out, "Spins:       %d\n", t.spins)
	_, _ = p.Fprintf(out, "Wagered:     %d\n", t.wagered)
	_, _ = p.Fprintf(out, "Won:         %d\n", t.won)
	_, _ = p.Fprintf(out, "RTP:         %.2f%%\n", rtp)
	_, _ = p.Fprintf(out, "Hit rate:    %.2f%%\n", hit)
	_, _ = p.Fprintf(out, "Big wins:    %d (paid %d)\n", t.bigWins, t.bigPaid)

	keys := make([]string, 0, len(t.patterns))
	for k := range t.patterns {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return t.patterns[keys[i]] > t.patterns[keys[j]] })

	fmt.Fprintln(out, "\nPattern frequency:")
	for _, k := range keys {
		_, _ = p.Fprintf(out, "  %-12s %12d  %6.3f%%\n", k, t.patterns[k], float64(t.patterns[k])/float64(t.spins)*100)
	}
}
