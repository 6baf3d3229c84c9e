package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/pedrokiefer/exposure/pkg/dns"
	"github.com/pedrokiefer/exposure/pkg/scan"
	"github.com/spf13/cobra"
)

type scanAccountApp struct {
	Profile string
	Yes     bool
	JSON    bool

	out io.Writer
}

func (a *scanAccountApp) Run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rm, err := newRouteManager(ctx, a.Profile)
	if err != nil {
		return err
	}
	dm, err := newDomainManager(ctx, a.Profile)
	if err != nil {
		return err
	}

	accountID, err := dm.GetAccountID(ctx)
	if err != nil {
		return fmt.Errorf("resolving account for profile %s: %w", a.Profile, err)
	}

	targets, err := dns.Discover(ctx, rm, dm)
	if err != nil {
		return err
	}
	log.Printf("Found %d domains in account %s (%s)\n", len(targets), accountID, a.Profile)
	dns.PrintTargets(a.out, targets)

	if dryRun || len(targets) == 0 {
		return nil
	}

	if !a.Yes {
		_, err := promptConfirm(fmt.Sprintf("Scan %d domains", len(targets)), true)
		if errors.Is(err, promptui.ErrAbort) {
			log.Printf("Aborted\n")
			return nil
		}
		if err != nil {
			return err
		}
	}

	scanner := newScanner(cfg)
	results := []*scan.Result{}
	for _, t := range targets {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("Scanning %s (%d zone CNAMEs)\n", t.Domain, len(t.Labels))
		res, err := scanner.ScanWithLabels(ctx, t.Domain, t.Labels)
		if err != nil {
			log.Printf("Failed to scan %s: %v\n", t.Domain, err)
			continue
		}
		results = append(results, res)
	}

	if a.JSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		scan.PrintSummary(a.out, results)
	}

	st, err := newStore(ctx, cfg)
	if err != nil {
		log.Printf("Result store unavailable: %v\n", err)
		return nil
	}
	saveResults(ctx, st, results...)
	return nil
}

func newScanAccountCmd() *cobra.Command {
	a := scanAccountApp{}

	c := &cobra.Command{
		Use:   "scan-account <profile>",
		Short: "Scan every hosted zone and registered domain of an AWS account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.Profile = args[0]
			a.out = cmd.OutOrStdout()
			return a.Run(cmd.Context())
		},
	}
	f := c.Flags()
	f.BoolVarP(&a.Yes, "yes", "y", false, "Do not ask for confirmation")
	f.BoolVar(&a.JSON, "json", false, "Print the results as JSON")
	return c
}
