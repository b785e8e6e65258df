package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bekzodr/studytrack/internal/alias"
	"github.com/bekzodr/studytrack/internal/board"
	"github.com/bekzodr/studytrack/internal/compliment"
	"github.com/bekzodr/studytrack/internal/config"
	"github.com/bekzodr/studytrack/internal/db"
	"github.com/bekzodr/studytrack/internal/store"
)

func newBoardCmd() *cobra.Command {
	var (
		configPath string
		date       string
	)

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print the leaderboard",
		Long:  "Builds the leaderboard from stored totals and prints it. With --date, replays the boards as they stood on that day; without it, shows today. Live session time is only visible to the running daemon.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, configPath, date)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "studytrack.yaml", "path to Studytrack config file")
	cmd.Flags().StringVar(&date, "date", "", "historical date to replay (YYYY-MM-DD)")
	return cmd
}

func runBoard(cmd *cobra.Command, configPath, date string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	gormDB, err := db.Open(cfg.Store)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	st := store.New(gormDB, loc)

	ids, err := st.UsernameIDs()
	if err != nil {
		return fmt.Errorf("load user cache: %w", err)
	}

	var picker *compliment.Picker
	if cfg.Compliments {
		pool, err := compliment.LoadPool(cfg.ComplimentsFile)
		if err != nil {
			return err
		}
		picker = compliment.NewPicker(st, pool, nil)
	}
	quotes, err := board.LoadQuotes(cfg.QuotesFile)
	if err != nil {
		return err
	}

	boards, err := board.New(board.Opts{
		Store:     st,
		Resolver:  alias.NewResolver(cfg.Aliases, ids),
		Picker:    picker,
		Quotes:    quotes,
		Threshold: cfg.Threshold(),
		Limit:     cfg.DisplayLimit,
	})
	if err != nil {
		return err
	}

	ref := time.Now().In(loc)
	if date != "" {
		ref, err = time.ParseInLocation(store.DateFormat, date, loc)
		if err != nil {
			return fmt.Errorf("parse --date %q: date must be YYYY-MM-DD", date)
		}
	}

	snap, err := boards.BuildFor(ref)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), board.Render(snap))
	return nil
}
