package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-cipherscore/internal/domain"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a complete end-to-end session against one target",
	Long: `demo submits a handful of encrypted scores for a single target,
requests a private and a public verdict, publishes the running sum, and
prints the audit log. Decryption happens strictly through the runtime's
authorization-gated path, exactly as an external client would see it.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}

	const target = domain.TargetID("target-alice")
	scores := []uint64{85, 70, 90, 75}
	for _, score := range scores {
		if err := s.submit(ctx, target, score); err != nil {
			return err
		}
	}
	fmt.Printf("submitted %d encrypted scores for %s\n", len(scores), target)

	caller := domain.Principal("caller-bob")
	private, err := s.svc.VerdictPrivate(ctx, caller, target)
	if err != nil {
		return err
	}
	tier, err := s.runtime.Decrypt(private, caller)
	if err != nil {
		return err
	}
	fmt.Printf("private verdict for %s: %s (decrypted by %s only)\n",
		target, domain.Tier(tier), caller)

	public, err := s.svc.VerdictPublic(ctx, caller, target)
	if err != nil {
		return err
	}
	tier, err = s.runtime.Decrypt(public, "anyone")
	if err != nil {
		return err
	}
	fmt.Printf("public verdict for %s: %s\n", target, domain.Tier(tier))

	sumHandle, err := s.svc.PublishSum(ctx, target)
	if err != nil {
		return err
	}
	sum, err := s.runtime.Decrypt(sumHandle, "anyone")
	if err != nil {
		return err
	}
	agg, err := s.svc.GetAggregateHandles(ctx, target)
	if err != nil {
		return err
	}
	// Averages never exist inside the engine; derive off-system.
	fmt.Printf("published sum=%d count=%d average=%.2f\n",
		sum, agg.Count, float64(sum)/float64(agg.Count))

	fmt.Println("\naudit log:")
	for _, e := range s.audit.Events() {
		fmt.Printf("  %-22s %s\n", e.Kind(), e.OccurredAt().Format("15:04:05.000"))
	}
	return nil
}
