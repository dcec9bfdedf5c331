package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-cipherscore/internal/domain"
)

var (
	// simTargets is the number of distinct targets to score.
	simTargets int

	// simSubmissions is the number of submissions per target.
	simSubmissions int

	// simSeed makes a run reproducible.
	simSeed int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Drive concurrent submissions through the serialized engine",
	Long: `simulate floods the engine with concurrent encrypted submissions
across many targets and then requests a public verdict per target. All
concurrency is absorbed by the substrate-serialization middleware; the
engine itself stays single-threaded.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simTargets, "targets", 8, "number of targets")
	simulateCmd.Flags().IntVar(&simSubmissions, "submissions", 20, "submissions per target")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 1, "random seed")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if simSubmissions > domain.MaxSubmissions {
		return fmt.Errorf("submissions per target capped at %d", domain.MaxSubmissions)
	}
	s, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(simSeed))
	type job struct {
		target domain.TargetID
		score  uint64
	}
	jobs := make([]job, 0, simTargets*simSubmissions)
	for t := 0; t < simTargets; t++ {
		target := domain.TargetID(fmt.Sprintf("target-%03d", t))
		for i := 0; i < simSubmissions; i++ {
			jobs = append(jobs, job{target: target, score: uint64(rng.Intn(domain.MaxScore + 1))})
		}
	}
	rng.Shuffle(len(jobs), func(i, j int) { jobs[i], jobs[j] = jobs[j], jobs[i] })

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(16)
	for _, j := range jobs {
		g.Go(func() error {
			return s.submit(gctx, j.target, j.score)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Printf("applied %d submissions across %d targets\n", len(jobs), simTargets)

	caller := domain.Principal("simulator")
	for t := 0; t < simTargets; t++ {
		target := domain.TargetID(fmt.Sprintf("target-%03d", t))
		handle, err := s.svc.VerdictPublic(ctx, caller, target)
		if err != nil {
			return err
		}
		tier, err := s.runtime.Decrypt(handle, caller)
		if err != nil {
			return err
		}
		agg, err := s.svc.GetAggregateHandles(ctx, target)
		if err != nil {
			return err
		}
		fmt.Printf("  %s count=%-3d tier=%s\n", target, agg.Count, domain.Tier(tier))
	}
	fmt.Printf("audit log holds %d events\n", len(s.audit.Events()))
	return nil
}
