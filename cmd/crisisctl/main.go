package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/edvin/crisisdesk/internal/crisisctl"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch os.Args[1] {
	case "seed":
		fs := flag.NewFlagSet("seed", flag.ExitOnError)
		file := fs.String("f", "", "Path to resource inventory YAML file (required)")
		timeout := fs.Duration("timeout", 2*time.Minute, "Timeout for the whole run")
		fs.Parse(os.Args[2:])

		if *file == "" {
			fmt.Fprintln(os.Stderr, "Error: -f flag is required")
			fs.Usage()
			os.Exit(1)
		}

		cfg, err := crisisctl.LoadSeedConfig(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(ctx, *timeout)
		defer cancel()
		if err := crisisctl.Seed(ctx, cfg, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "resources":
		fs := flag.NewFlagSet("resources", flag.ExitOnError)
		apiURL := fs.String("api", "http://localhost:8090", "Crisis API base URL")
		actor := fs.String("actor", os.Getenv("CRISIS_ACTOR_ID"), "Admin actor ID")
		asJSON := fs.Bool("json", false, "Print raw JSON")
		fs.Parse(os.Args[2:])

		client := crisisctl.NewClient(*apiURL, *actor)
		resources, err := client.ListResources(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if *asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			enc.Encode(resources)
			return
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tAVAILABILITY")
		for _, name := range slices.Sorted(maps.Keys(resources)) {
			r := resources[name]
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, name, r.Availability)
		}
		tw.Flush()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  crisisctl seed -f <resources.yaml> [-timeout 2m]
  crisisctl resources [-api URL] [-actor ID] [-json]`)
}
