package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/pedrokiefer/exposure/pkg/scan"
	"github.com/pedrokiefer/exposure/pkg/server"
	"github.com/spf13/cobra"
)

type scanApp struct {
	Domain string
	Labels []string
	JSON   bool

	out io.Writer
}

func (a *scanApp) Run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	res, err := newScanner(cfg).ScanWithLabels(ctx, a.Domain, a.Labels)
	if err != nil {
		return err
	}

	if a.JSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		scan.PrintResult(a.out, res)
	}

	if dryRun {
		return nil
	}
	st, err := newStore(ctx, cfg)
	if err != nil {
		log.Printf("Result store unavailable: %v\n", err)
		return nil
	}
	saveResults(ctx, st, res)
	return nil
}

// saveResults stores every result, logging failures. st may be nil.
func saveResults(ctx context.Context, st server.ResultStore, results ...*scan.Result) {
	if st == nil {
		return
	}
	for _, r := range results {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		key, err := st.Save(sctx, r)
		cancel()
		if err != nil {
			log.Printf("Failed to store result for %s: %v\n", r.Domain, err)
			continue
		}
		log.Printf("Stored %s\n", key)
	}
}

func newScanCmd() *cobra.Command {
	a := scanApp{}

	c := &cobra.Command{
		Use:   "scan <domain>",
		Short: "Scan a domain and print its exposure report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.Domain = args[0]
			a.out = cmd.OutOrStdout()
			return a.Run(cmd.Context())
		},
	}
	f := c.Flags()
	f.BoolVar(&a.JSON, "json", false, "Print the result as JSON")
	f.StringSliceVar(&a.Labels, "labels", nil, fmt.Sprintf("Extra subdomain labels for the dangling DNS check, e.g. %q", "shop,assets.cdn"))
	return c
}
