package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type options struct {
	gateway string
	format  string
	timeout time.Duration
	out     io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{out: out}

	root := &cobra.Command{
		Use:   "limsctl",
		Short: "Inspect and control the LIMS gateway query cache",
		Long: `limsctl works with the gateway's query keys.

Offline commands compute keys and invalidation plans locally. Online
commands talk to a running gateway's admin API.

Examples:
  # Show which keys submitting an accession invalidates
  limsctl plan accession status-change --id A1

  # Drop every cached patient query on a running gateway
  limsctl invalidate --entity patient --gateway http://localhost:8080`,
		SilenceUsage: true,
	}

	defaultGateway := os.Getenv("LIMSCTL_GATEWAY")
	if defaultGateway == "" {
		defaultGateway = "http://localhost:8080"
	}
	root.PersistentFlags().StringVarP(&opts.gateway, "gateway", "g", defaultGateway, "Gateway base URL")
	root.PersistentFlags().StringVarP(&opts.format, "output", "o", "yaml", "Output format: yaml|json")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Gateway request timeout")
	root.SetOut(out)

	root.AddCommand(
		newKeyCmd(opts),
		newPlanCmd(opts),
		newInvalidateCmd(opts),
		newCacheCmd(opts),
		newMutationsCmd(opts),
	)
	return root
}

// print renders v in the selected output format
func (o *options) print(v interface{}) error {
	switch strings.ToLower(o.format) {
	case "json":
		enc := json.NewEncoder(o.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(o.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", o.format)
	}
}
