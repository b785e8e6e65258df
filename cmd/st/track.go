package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bekzodr/studytrack/internal/alias"
	"github.com/bekzodr/studytrack/internal/board"
	"github.com/bekzodr/studytrack/internal/compliment"
	"github.com/bekzodr/studytrack/internal/config"
	"github.com/bekzodr/studytrack/internal/daemon"
	"github.com/bekzodr/studytrack/internal/dashboard"
	"github.com/bekzodr/studytrack/internal/db"
	"github.com/bekzodr/studytrack/internal/publish"
	rosterdiscord "github.com/bekzodr/studytrack/internal/roster/discord"
	"github.com/bekzodr/studytrack/internal/store"
	"github.com/bekzodr/studytrack/internal/tracker"
)

func newTrackCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Run the session tracker daemon",
		Long:  "Watches the configured voice channel, credits sessions of five minutes or more, and posts the leaderboard on schedule. Runs until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "studytrack.yaml", "path to Studytrack config file")
	return cmd
}

func runTrack(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	token, err := cfg.BotToken()
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
	resolver := alias.NewResolver(cfg.Aliases, ids)
	trk := tracker.New(st, cfg.Threshold(), out)

	source, err := rosterdiscord.New(rosterdiscord.SourceOpts{
		BotToken:       token,
		GuildID:        cfg.Discord.GuildID,
		VoiceChannelID: cfg.Discord.VoiceChannelID,
	})
	if err != nil {
		return err
	}

	pub, err := buildPublishers(cfg, token)
	if err != nil {
		return err
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
		Resolver:  resolver,
		Live:      trk,
		Picker:    picker,
		Quotes:    quotes,
		Threshold: cfg.Threshold(),
		Limit:     cfg.DisplayLimit,
	})
	if err != nil {
		return err
	}

	d, err := daemon.New(daemon.Opts{
		Config:    cfg,
		Store:     st,
		Tracker:   trk,
		Source:    source,
		Resolver:  resolver,
		Boards:    boards,
		Publisher: pub,
		Out:       out,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if cfg.Dashboard.Enabled {
		go func() {
			err := dashboard.Start(ctx, dashboard.StartOpts{
				Store:  st,
				Boards: boards,
				Port:   cfg.Dashboard.Port,
				Out:    out,
			})
			if err != nil {
				log.Printf("dashboard: %v", err)
			}
		}()
	}

	return d.Run(ctx)
}

// buildPublishers wires the Discord post channel and, when configured, the
// Slack mirror.
func buildPublishers(cfg *config.Config, token string) (publish.Publisher, error) {
	pubs := []publish.Publisher{}

	if cfg.Discord.PostChannelID != "" {
		dp, err := publish.NewDiscord(publish.DiscordOpts{
			BotToken:  token,
			ChannelID: cfg.Discord.PostChannelID,
		})
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, dp)
	}
	if cfg.Slack.Token != "" && cfg.Slack.ChannelID != "" {
		sp, err := publish.NewSlack(publish.SlackOpts{
			BotToken:  cfg.Slack.Token,
			ChannelID: cfg.Slack.ChannelID,
		})
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, sp)
	}
	if len(pubs) == 0 {
		return nil, fmt.Errorf("no post channel configured: set discord.post_channel_id or slack")
	}
	return publish.Multi(pubs...), nil
}
