package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/saad2134/greenprompt/internal/auth"
	"github.com/saad2134/greenprompt/internal/config"
	"github.com/saad2134/greenprompt/internal/db"
)

func newAPIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
	}

	var owner, name string
	var rateLimit int
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return fmt.Errorf("--owner is required")
			}
			cfg := config.Load()
			database, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			if !cmd.Flags().Changed("rate-limit") {
				rateLimit = cfg.RateLimit
			}
			key, err := auth.CreateKey(context.Background(), database, owner, name, cfg.APIKeySalt, rateLimit)
			if err != nil {
				return err
			}
			fmt.Println("API key created. Store it now — it cannot be recovered later:")
			fmt.Println()
			fmt.Printf("  %s\n", key)
			return nil
		},
	}
	createCmd.Flags().StringVar(&owner, "owner", "", "owner identifier for the key")
	createCmd.Flags().StringVar(&name, "name", "", "human-readable key name")
	createCmd.Flags().IntVar(&rateLimit, "rate-limit", 60, "requests per minute (0 disables, default from config)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			database, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			keys, err := auth.ListKeys(context.Background(), database)
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Println("No API keys yet. Create one with 'greenprompt apikey create --owner <owner>'.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tOWNER\tNAME\tACTIVE\tRATE/MIN\tCREATED\tLAST USED")
			for _, k := range keys {
				lastUsed := "never"
				if k.LastUsedAt.Valid {
					lastUsed = humanize.Time(k.LastUsedAt.Time)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%d\t%s\t%s\n",
					k.ID, k.Owner, k.Name, k.IsActive, k.RateLimit,
					humanize.Time(k.CreatedAt), lastUsed)
			}
			return w.Flush()
		},
	}

	revokeCmd := &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid key id %q", args[0])
			}
			cfg := config.Load()
			database, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := auth.RevokeKey(context.Background(), database, id); err != nil {
				return err
			}
			fmt.Printf("API key %d revoked.\n", id)
			return nil
		},
	}

	cmd.AddCommand(createCmd, listCmd, revokeCmd)
	return cmd
}

func openDB(cfg *config.Config) (*db.DB, error) {
	database, err := db.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}
