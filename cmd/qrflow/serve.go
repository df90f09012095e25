package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ltanh/qrflow/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the record API over HTTP",
		Long: `Expose the local record store over HTTP. This is the same API shape the
hosted backend speaks, useful for local development and as a sync target
for other devices on the network.`,
		RunE: runServe,
	}

	// Flags
	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	port := viper.GetInt("server.port")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	srv := server.NewServer(port, store)
	return srv.Start(ctx)
}
