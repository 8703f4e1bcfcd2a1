package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wolfman30/doctors-portal/internal/app/bootstrap"
	"github.com/wolfman30/doctors-portal/internal/appointments"
	"github.com/wolfman30/doctors-portal/internal/auth"
	appconfig "github.com/wolfman30/doctors-portal/internal/config"
	"github.com/wolfman30/doctors-portal/internal/store"
	"github.com/wolfman30/doctors-portal/internal/users"
	"github.com/wolfman30/doctors-portal/pkg/logging"
)

// openStore is swapped in tests.
var openStore = func(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (store.Store, error) {
	return bootstrap.BuildStore(ctx, cfg, logger)
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(appconfig.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *appconfig.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "portalctl",
		Short:        "Doctors portal administration",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(seedCmd(cfg))
	rootCmd.AddCommand(grantAdminCmd(cfg))
	rootCmd.AddCommand(tokenCmd(cfg))
	return rootCmd
}

func seedCmd(cfg *appconfig.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert appointment types from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			if path == "" {
				return fmt.Errorf("--file is required")
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			types, err := readAppointmentTypes(f)
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), cfg, func(ctx context.Context, s store.Store) error {
				repo := appointments.NewStoreRepository(s.Collection(cfg.AppointmentCollection), s.Collection(cfg.BookingCollection))
				for _, t := range types {
					res, err := repo.InsertType(ctx, t)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "inserted %s (%v)\n", t.Name, res.InsertedID)
				}
				return nil
			})
		},
	}
	cmd.Flags().String("file", "", "JSON array of {name, slots}")
	return cmd
}

func grantAdminCmd(cfg *appconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "grant-admin <email>",
		Short: "Create the user if needed and give it the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			return withStore(cmd.Context(), cfg, func(ctx context.Context, s store.Store) error {
				repo := users.NewStoreRepository(s.Collection(cfg.UserCollection))
				if _, err := repo.Upsert(ctx, email, nil); err != nil {
					return err
				}
				res, err := repo.GrantAdmin(ctx, email)
				if err != nil {
					return err
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
			})
		},
	}
}

func tokenCmd(cfg *appconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "token <email>",
		Short: "Print a bearer token for email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.AccessTokenSecret == "" {
				return auth.ErrMissingSecret
			}
			svc, err := auth.NewTokenService(cfg.AccessTokenSecret, cfg.AccessTokenTTL)
			if err != nil {
				return err
			}
			token, err := svc.Issue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func readAppointmentTypes(r io.Reader) ([]appointments.AppointmentType, error) {
	var types []appointments.AppointmentType
	if err := json.NewDecoder(r).Decode(&types); err != nil {
		return nil, fmt.Errorf("decode appointment types: %w", err)
	}
	for i, t := range types {
		if t.Name == "" {
			return nil, fmt.Errorf("appointment type %d: %w", i, appointments.ErrMissingName)
		}
	}
	return types, nil
}

func withStore(ctx context.Context, cfg *appconfig.Config, fn func(context.Context, store.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.New(cfg.LogLevel)
	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close(context.Background()) }()
	return fn(ctx, s)
}
