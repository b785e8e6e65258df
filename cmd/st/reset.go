package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bekzodr/studytrack/internal/config"
	"github.com/bekzodr/studytrack/internal/db"
	"github.com/bekzodr/studytrack/internal/store"
)

func newResetCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe all counters and restart from day 1",
		Long:  "Deletes every day total and compliment, then re-seeds the anchor to today. The running daemon picks the new anchor up on its next pass.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd, configPath, yes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "studytrack.yaml", "path to Studytrack config file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func runReset(cmd *cobra.Command, configPath string, skipConfirm bool) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	if !skipConfirm && !confirmReset(cmd) {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	gormDB, err := db.Open(cfg.Store)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	st := store.New(gormDB, loc)

	now := time.Now().In(loc)
	if err := st.ResetAll(cfg.GroupKey(), now); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	fmt.Fprintf(out, "Counters reset. Anchor set to %s.\n", st.DayKey(now))
	return nil
}

func confirmReset(cmd *cobra.Command) bool {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "WARNING: This permanently deletes all study totals and compliments.")
	fmt.Fprintln(out, "This action cannot be undone.")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Type \"yes\" to confirm: ")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()) == "yes"
	}
	return false
}
