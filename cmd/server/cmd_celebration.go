package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/birthdaywall/internal/app"
	"github.com/vovakirdan/birthdaywall/internal/auth"
	"github.com/vovakirdan/birthdaywall/internal/core"
	"github.com/vovakirdan/birthdaywall/internal/store"
)

var (
	celebrationName     string
	celebrationBirthday string
)

// celebrationCmd manages the celebration record offline.
var celebrationCmd = &cobra.Command{
	Use:   "celebration",
	Short: "Show, set or reset the celebration record",
}

var celebrationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored celebration record",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCelebration(cmd, func(svc *core.CelebrationService) error {
			c := svc.Load(cmd.Context())
			if !c.IsConfigured() {
				fmt.Fprintln(cmd.OutOrStdout(), "not configured")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "name: %s\nbirthday: %s\n", c.Name, c.Birthday)
			return nil
		})
	},
}

var celebrationSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the celebration name and birthday",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCelebration(cmd, func(svc *core.CelebrationService) error {
			_, err := svc.Save(cmd.Context(), celebrationName, celebrationBirthday)
			if err != nil && !store.IsWarning(err) {
				return err
			}
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "celebration saved")
			return nil
		})
	},
}

var celebrationResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the celebration record",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCelebration(cmd, func(svc *core.CelebrationService) error {
			err := svc.Reset(cmd.Context())
			if err != nil && !store.IsWarning(err) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "celebration reset")
			return nil
		})
	},
}

// hashPasswordCmd prints a bcrypt hash for admin.password_hash.
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print a bcrypt hash for admin.password_hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	celebrationSetCmd.Flags().StringVar(&celebrationName, "name", "", "name of the person celebrated")
	celebrationSetCmd.Flags().StringVar(&celebrationBirthday, "birthday", "", "birthday as YYYY-MM-DD")
	_ = celebrationSetCmd.MarkFlagRequired("name")
	_ = celebrationSetCmd.MarkFlagRequired("birthday")

	celebrationCmd.AddCommand(celebrationShowCmd, celebrationSetCmd, celebrationResetCmd)
}

func withCelebration(cmd *cobra.Command, fn func(*core.CelebrationService) error) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	storage, err := app.OpenStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	return fn(core.NewCelebrationService(storage.Celebration, logger))
}
