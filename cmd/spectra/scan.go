package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/saworbit/spectra/agent"
	"github.com/saworbit/spectra/analysis"
	"github.com/saworbit/spectra/governance"
	"github.com/saworbit/spectra/queue"
	"github.com/saworbit/spectra/report"
	"github.com/saworbit/spectra/scan"
	"github.com/saworbit/spectra/snapshot"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a directory tree and report its composition",
	Long: heredoc.Doc(`
		Walk a directory tree in a single pass and report exact totals:
		file and folder counts, bytes on disk, volume per extension, and
		the largest files found.

		With --server the totals are also shipped to a spectra server as a
		point-in-time snapshot, and the server's governance policies are
		evaluated against the scanned tree (dry-run unless --enforce).
		With --amqp the snapshot is published to a broker queue instead of,
		or in addition to, the direct upload.
	`),
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("path")
		jsonOut, _ := cmd.Flags().GetBool("json")
		limit, _ := cmd.Flags().GetInt("limit")
		analyze, _ := cmd.Flags().GetBool("analyze")
		semantic, _ := cmd.Flags().GetBool("semantic")
		serverURL, _ := cmd.Flags().GetString("server")
		agentID, _ := cmd.Flags().GetString("agent-id")
		enforce, _ := cmd.Flags().GetBool("enforce")
		amqpURL, _ := cmd.Flags().GetString("amqp")

		if semantic {
			analyze = true
		}
		if limit < 0 {
			fmt.Fprintln(os.Stderr, "Error: --limit cannot be negative")
			os.Exit(1)
		}
		if enforce && serverURL == "" {
			fmt.Fprintln(os.Stderr, "Error: --enforce requires --server (policies come from the server)")
			os.Exit(1)
		}

		ctx := context.Background()

		hook, done := report.ProgressPrinter()
		stats, err := scan.ScanWithProgress(ctx, path, limit, hook)
		done()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: scan failed: %v\n", err)
			os.Exit(1)
		}

		if analyze {
			analysis.Enrich(stats, analysis.Options{Semantic: semantic})
		}

		if jsonOut {
			err = report.PrintJSON(stats, os.Stdout)
		} else {
			err = report.PrintTable(stats, os.Stdout)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if serverURL == "" && amqpURL == "" {
			return
		}

		cfg := agent.LoadConfigFromEnv()
		if serverURL != "" {
			cfg.ServerURL = serverURL
		}
		if agentID != "" {
			cfg.AgentID = agentID
		}
		if amqpURL != "" {
			cfg.BrokerURL = amqpURL
		}
		cfg.AgentID = cfg.ResolveAgentID()

		hostname, _ := os.Hostname()
		snap := snapshot.FromScan(cfg.AgentID, hostname, time.Now(), stats)
		client := agent.NewClient(cfg)

		if amqpURL != "" {
			if err := client.Publish(&snap); err != nil {
				fmt.Fprintf(os.Stderr, "Error: publish failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "Snapshot published to %s\n", queue.SnapshotQueue)
		}

		if serverURL == "" {
			return
		}

		if err := client.Upload(ctx, &snap); err != nil {
			fmt.Fprintf(os.Stderr, "Error: upload failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Snapshot uploaded to %s as %s\n", cfg.ServerURL, cfg.AgentID)

		policies, err := client.FetchPolicies(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: fetching policies failed: %v\n", err)
			os.Exit(1)
		}
		if len(policies) == 0 {
			return
		}

		engine := governance.NewEngine(!enforce)
		result, err := engine.Sweep(ctx, path, policies)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: policy sweep failed: %v\n", err)
			os.Exit(1)
		}

		mode := "dry-run"
		if enforce {
			mode = "enforced"
		}
		fmt.Printf("\nPolicy sweep (%s, %d policies): %d evaluated, %d matched (%d reported, %d deleted, %d archived, %d failures)\n",
			mode, len(policies), result.Evaluated, result.Matched,
			result.Reported, result.Deleted, result.Archived, result.Failures)
	},
}

func init() {
	scanCmd.Flags().StringP("path", "p", ".", "Directory tree to scan")
	scanCmd.Flags().BoolP("json", "j", false, "Emit JSON instead of the table report")
	scanCmd.Flags().IntP("limit", "l", 10, "Number of largest files to retain")
	scanCmd.Flags().Bool("analyze", false, "Enrich top files with entropy and risk heuristics")
	scanCmd.Flags().Bool("semantic", false, "Assign semantic content tags (implies --analyze)")
	scanCmd.Flags().String("server", "", "Upload the snapshot to this spectra server after scanning")
	scanCmd.Flags().String("agent-id", "", "Agent identity for uploads (default: hostname)")
	scanCmd.Flags().Bool("enforce", false, "Apply fetched policies instead of dry-run reporting")
	scanCmd.Flags().String("amqp", "", "Publish the snapshot to this AMQP broker")
	rootCmd.AddCommand(scanCmd)
}
