package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
)

var catalogJSON bool

// catalogCmd groups the catalog inspection commands.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the service catalog",
	Long:  "Load the service definitions the way the server does and print what was found.",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known services",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(loadConfig(), cliLogger())
		if err != nil {
			return err
		}
		services := cat.Services()
		if catalogJSON {
			return writeIndented(cmd.OutOrStdout(), services)
		}
		return writeServiceTable(cmd.OutOrStdout(), services)
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <name> [protocol]",
	Short: "Print one service, operations included",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(loadConfig(), cliLogger())
		if err != nil {
			return err
		}
		var protocol string
		if len(args) == 2 {
			protocol = args[1]
		}
		svc, ok := cat.Get(args[0], protocol)
		if !ok {
			return fmt.Errorf("service %q not found", domain.ID(args[0], protocol))
		}
		return writeIndented(cmd.OutOrStdout(), svc)
	},
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeServiceTable(w io.Writer, services []*domain.Service) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SERVICE\tPROTOCOL\tSIGNING NAME\tTARGET PREFIX\tOPERATIONS\tSOURCES")
	for _, s := range services {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			s.ID, s.Protocol, s.SigningName, dash(s.TargetPrefix),
			len(s.OperationNames), strings.Join(s.Sources, ","))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	catalogListCmd.Flags().BoolVar(&catalogJSON, "json", false, "print JSON instead of a table")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
}
