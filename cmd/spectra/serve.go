package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/saworbit/spectra/postgres"
	"github.com/saworbit/spectra/queue"
	"github.com/saworbit/spectra/server"
	"github.com/saworbit/spectra/snapshot"
	"github.com/saworbit/spectra/sqlite"
	"github.com/saworbit/spectra/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the spectra snapshot server",
	Long: heredoc.Doc(`
		Serve the snapshot ingest, history, and velocity API over HTTP.

		Snapshots persist in the backend selected by --store: an in-process
		memory store, a local SQLite file, PostgreSQL (DSN from
		SPECTRA_POSTGRES_DSN), or Valkey (SPECTRA_VALKEY_ADDR). Whenever
		SPECTRA_VALKEY_ADDR is set the server also keeps an agent registry
		and serves operator-defined policies from Valkey, regardless of the
		snapshot backend.

		When SPECTRA_AMQP_URL is set the server additionally consumes
		snapshots from the spectra.snapshots queue, with the same
		validation as HTTP ingest.
	`),
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")
		storeKind, _ := cmd.Flags().GetString("store")
		dbPath, _ := cmd.Flags().GetString("db")

		// The KV side attaches whenever Valkey is configured; it backs the
		// agent registry and operator-defined policies.
		var kv store.KVStore
		valkeyAddr := os.Getenv("SPECTRA_VALKEY_ADDR")
		if valkeyAddr != "" || storeKind == "valkey" {
			var err error
			kv, err = store.NewValkeyStore(valkeyAddr)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: connecting to valkey: %v\n", err)
				os.Exit(1)
			}
			defer kv.Close()
		}

		var snapshots snapshot.Store
		switch storeKind {
		case "memory":
			snapshots = snapshot.NewMemory()
		case "sqlite":
			db, err := sqlite.Open(dbPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: opening sqlite store: %v\n", err)
				os.Exit(1)
			}
			defer db.Close()
			snapshots = db
		case "postgres":
			dsn := os.Getenv("SPECTRA_POSTGRES_DSN")
			if dsn == "" {
				fmt.Fprintln(os.Stderr, "Error: --store postgres requires SPECTRA_POSTGRES_DSN")
				os.Exit(1)
			}
			db, err := postgres.Connect(dsn)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: connecting to postgres: %v\n", err)
				os.Exit(1)
			}
			snapshots = postgres.NewStore(db)
		case "valkey":
			snapshots = store.NewSnapshotStore(kv)
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown store %q (want memory, sqlite, postgres, or valkey)\n", storeKind)
			os.Exit(1)
		}

		h := &server.Handlers{Snapshots: snapshots, KV: kv}
		srv := server.New(addr, h)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		brokerURL := os.Getenv("SPECTRA_AMQP_URL")
		if brokerURL != "" {
			go queue.ListenWithRetry(ctx, brokerURL, queue.SnapshotQueue, h.SnapshotConsumer(ctx))
		}

		fmt.Printf("spectra server listening on %s (store: %s", addr, storeKind)
		if brokerURL != "" {
			fmt.Printf(", queue: %s", queue.SnapshotQueue)
		}
		fmt.Println(")")

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(os.Stderr, "Error: server failed: %v\n", err)
				os.Exit(1)
			}
		case <-sigCh:
			fmt.Println("\nShutting down...")
			cancel()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer shutdownCancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: shutdown error: %v\n", err)
			}
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", ":3000", "Listen address")
	serveCmd.Flags().String("store", "memory", "Snapshot backend: memory, sqlite, postgres, or valkey")
	serveCmd.Flags().String("db", "spectra.db", "SQLite database path (with --store sqlite)")
	rootCmd.AddCommand(serveCmd)
}
