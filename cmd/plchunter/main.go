// Command plchunter mines a did:plc identifier matching a pattern by brute
// forcing signatures over a fixed genesis operation.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/plchunter/plchunter/internal/plcdir"
	"github.com/plchunter/plchunter/internal/ui"
	"github.com/plchunter/plchunter/pkg/plc"
	"github.com/plchunter/plchunter/pkg/search"
)

const updateRate = 250 * time.Millisecond

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "plchunter: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		workers   int
		curve     string
		dryRun    bool
		directory string
		alsoKnown []string
		pds       string
		methods   map[string]string
	)

	root := &cobra.Command{
		Use:   "plchunter <rotation-key-did> <pattern>",
		Short: "Mine a did:plc identifier matching a regular expression",
		Long: `plchunter repeatedly signs a genesis operation with a throwaway rotation
key whose private scalar is 1, deriving a did:plc identifier from each
candidate until one matches the pattern. The pattern is matched against the
24-character base32 suffix, without the "did:plc:" prefix.

The supplied rotation key is registered first and keeps control of the
identifier; the weak key must be revoked immediately after registration.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			services := map[string]plc.Service{}
			if pds != "" {
				services["atproto_pds"] = plc.Service{
					Type:     "AtprotoPersonalDataServer",
					Endpoint: pds,
				}
			}

			searcher, err := search.New(search.Config{
				RotationKey:         args[0],
				Pattern:             args[1],
				Curve:               curve,
				Workers:             workers,
				VerificationMethods: methods,
				AlsoKnownAs:         alsoKnown,
				Services:            services,
			})
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			difficulty := estimateDifficulty(searcher.Matcher().LiteralPrefix())
			ui.PrintSearchInfo(args[1], searcher.Curve().String(), searcher.Workers(), difficulty)

			type outcome struct {
				res *search.Result
				err error
			}
			done := make(chan outcome, 1)
			go func() {
				res, err := searcher.Run(ctx)
				done <- outcome{res, err}
			}()

			ticker := time.NewTicker(updateRate)
			defer ticker.Stop()
			frame := 0
			for {
				select {
				case out := <-done:
					ui.ClearLine()
					if out.err != nil {
						return out.err
					}
					if out.res == nil {
						ui.PrintCancelled(searcher.Stats())
						return nil
					}
					return finish(cmd.Context(), out.res, directory, dryRun)
				case <-ticker.C:
					ui.PrintProgress(searcher.Stats(), difficulty, frame)
					frame++
				}
			}
		},
	}

	root.Flags().IntVarP(&workers, "workers", "w", 0, "worker count (default: available CPUs)")
	root.Flags().StringVar(&curve, "curve", "", "weak key curve: k256 or p256 (default: rotation key's curve)")
	root.Flags().BoolVar(&dryRun, "dry-run", false, "do not submit the winning operation to the directory")
	root.Flags().StringVar(&directory, "plc-directory", plcdir.DefaultDirectory, "PLC directory base URL")
	root.Flags().StringArrayVar(&alsoKnown, "also-known-as", nil, "alsoKnownAs entry (repeatable)")
	root.Flags().StringVar(&pds, "pds", "", "personal data server endpoint to register as the atproto_pds service")
	root.Flags().StringToStringVar(&methods, "verification-method", nil, "verification method as name=did:key (repeatable)")

	return root.Execute()
}

func finish(ctx context.Context, res *search.Result, directory string, dryRun bool) error {
	ui.PrintSuccess(res)

	opJSON, err := json.MarshalIndent(res.Op, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("%s\n\n", opJSON)

	if dryRun {
		fmt.Println("  --dry-run specified, not submitting")
		return nil
	}

	if err := plcdir.New(directory).Submit(ctx, res.DID, res.Op); err != nil {
		return err
	}
	fmt.Printf("  registered: %s\n", plcdir.WebURL(res.DID))
	return nil
}

// estimateDifficulty is the expected attempt count implied by the pattern's
// literal prefix, if it has one. Advisory; drives the progress bar only.
func estimateDifficulty(literal string) uint64 {
	difficulty := uint64(1)
	for range literal {
		difficulty *= 32
	}
	return difficulty
}
