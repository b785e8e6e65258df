// Package daemon runs the tracking loop: it polls the roster source,
// feeds the session tracker, checkpoints long-running sessions, and posts
// the daily leaderboard on schedule.
package daemon

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bekzodr/studytrack/internal/alias"
	"github.com/bekzodr/studytrack/internal/board"
	"github.com/bekzodr/studytrack/internal/config"
	"github.com/bekzodr/studytrack/internal/models"
	"github.com/bekzodr/studytrack/internal/publish"
	"github.com/bekzodr/studytrack/internal/roster"
	"github.com/bekzodr/studytrack/internal/store"
	"github.com/bekzodr/studytrack/internal/tracker"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Daemon owns the serial tracking loop. All phases run on one goroutine;
// the roster change channel only decides when the next pass starts.
type Daemon struct {
	cfg      *config.Config
	store    *store.Store
	tracker  *tracker.Tracker
	source   roster.Source
	resolver *alias.Resolver
	boards   *board.Aggregator
	pub      publish.Publisher
	out      io.Writer
	now      func() time.Time

	schedule  cron.Schedule
	lastFlush time.Time
}

// Opts holds the daemon's collaborators. Publisher may be nil; posting is
// then skipped. Now may be set for tests and defaults to time.Now.
type Opts struct {
	Config    *config.Config
	Store     *store.Store
	Tracker   *tracker.Tracker
	Source    roster.Source
	Resolver  *alias.Resolver
	Boards    *board.Aggregator
	Publisher publish.Publisher
	Out       io.Writer
	Now       func() time.Time
}

// New creates a Daemon and validates its schedule.
func New(opts Opts) (*Daemon, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("daemon: config is required")
	}
	if opts.Store == nil || opts.Tracker == nil || opts.Source == nil {
		return nil, fmt.Errorf("daemon: store, tracker and source are required")
	}
	if opts.Resolver == nil || opts.Boards == nil {
		return nil, fmt.Errorf("daemon: resolver and boards are required")
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sched, err := cronParser.Parse(opts.Config.PostCron)
	if err != nil {
		return nil, fmt.Errorf("daemon: parse post_cron %q: %w", opts.Config.PostCron, err)
	}

	return &Daemon{
		cfg:      opts.Config,
		store:    opts.Store,
		tracker:  opts.Tracker,
		source:   opts.Source,
		resolver: opts.Resolver,
		boards:   opts.Boards,
		pub:      opts.Publisher,
		out:      opts.Out,
		now:      opts.Now,
		schedule: sched,
	}, nil
}

// Run drives the loop until ctx is cancelled. On shutdown the tracker is
// finalized so qualified in-flight time is not lost.
func (d *Daemon) Run(ctx context.Context) error {
	now := d.now()

	// Group change wipes all counters before anything is tracked.
	reset, err := d.store.EnsureGroup(d.cfg.GroupKey(), now)
	if err != nil {
		return fmt.Errorf("daemon: ensure group: %w", err)
	}
	if reset {
		fmt.Fprintf(d.out, "New group detected, counters reset. Anchor set to %s.\n", d.store.DayKey(now))
	}

	if err := d.source.Connect(ctx); err != nil {
		return fmt.Errorf("daemon: connect: %w", err)
	}
	defer func() {
		if err := d.tracker.Finalize(d.now()); err != nil {
			log.Printf("daemon: finalize: %v", err)
		}
		if err := d.source.Close(); err != nil {
			log.Printf("daemon: close source: %v", err)
		}
		fmt.Fprintf(d.out, "Tracker stopped.\n")
	}()

	d.lastFlush = now
	fmt.Fprintf(d.out, "Tracker running (poll every %s, post at %q %s).\n",
		d.cfg.PollInterval(), d.cfg.PostCron, d.cfg.Timezone)

	poll := time.NewTicker(d.cfg.PollInterval())
	defer poll.Stop()

	for {
		d.tick(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-poll.C:
		case <-d.source.Changes():
			// A roster change starts the next pass immediately. Further
			// ticks arriving during this pass coalesce in the channel.
		}
	}
}

// tick runs one serial pass: manual post, scheduled post, roster
// reconciliation, checkpoint. Phase errors are logged, never fatal.
func (d *Daemon) tick(ctx context.Context) {
	now := d.now()

	// Phase 1: Manual post-now request (does not mark the day as posted).
	if requested, err := d.store.ClearPostNow(); err != nil {
		log.Printf("daemon: post-now flag: %v", err)
	} else if requested {
		if err := d.post(ctx, now, false); err != nil {
			log.Printf("daemon: manual post: %v", err)
		}
	}

	// Phase 2: Scheduled daily post, with catch-up if the fire time was
	// missed while the process was down.
	if err := d.maybeScheduledPost(ctx, now); err != nil {
		log.Printf("daemon: scheduled post: %v", err)
	}

	// Phase 3: Reconcile the call roster into the tracker.
	if err := d.reconcile(ctx, now); err != nil {
		log.Printf("daemon: reconcile: %v", err)
	}

	// Phase 4: Checkpoint long-running sessions so a crash loses little.
	if now.Sub(d.lastFlush) >= d.cfg.FlushInterval() {
		if err := d.tracker.Checkpoint(now); err != nil {
			log.Printf("daemon: checkpoint: %v", err)
		}
		d.lastFlush = now
	}
}

// maybeScheduledPost posts once per day after the scheduled time. Posting
// any time at or past the fire time covers both normal operation and the
// startup catch-up case.
func (d *Daemon) maybeScheduledPost(ctx context.Context, now time.Time) error {
	today := d.store.DayKey(now)
	last, _, err := d.store.GetMeta(models.MetaLastPostDate)
	if err != nil {
		return err
	}
	if last == today {
		return nil
	}

	loc := d.store.Location()
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	fireAt := d.schedule.Next(midnight.Add(-time.Second))
	if fireAt.After(now) || d.store.DayKey(fireAt) != today {
		return nil // not scheduled yet today
	}
	return d.post(ctx, now, true)
}

// post builds, renders and publishes the current leaderboard. markDaily
// records the day as posted so the scheduled post fires once per day;
// manual posts leave the mark alone.
func (d *Daemon) post(ctx context.Context, now time.Time, markDaily bool) error {
	if d.pub == nil {
		return nil
	}
	snap, err := d.boards.Build(now)
	if err != nil {
		return fmt.Errorf("build board: %w", err)
	}
	if err := d.pub.Publish(ctx, board.Render(snap)); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if markDaily {
		if err := d.store.SetMeta(models.MetaLastPostDate, d.store.DayKey(now)); err != nil {
			return fmt.Errorf("mark posted: %w", err)
		}
	}
	fmt.Fprintf(d.out, "Posted leaderboard for %s (daily=%v).\n", d.store.DayKey(now), markDaily)
	return nil
}

// reconcile fetches the roster, refreshes the user cache and alias map, and
// applies the membership to the tracker.
func (d *Daemon) reconcile(ctx context.Context, now time.Time) error {
	snap, err := d.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("roster snapshot: %w", err)
	}

	if len(snap.Participants) > 0 {
		for _, p := range snap.Participants {
			if err := d.store.CacheUser(p.UserID, p.DisplayName, p.Username); err != nil {
				log.Printf("daemon: cache user %s: %v", p.UserID, err)
			}
		}
		// Late-observed aliases start folding as soon as they are cached.
		if ids, err := d.store.UsernameIDs(); err != nil {
			log.Printf("daemon: username ids: %v", err)
		} else {
			d.resolver.Refresh(ids)
		}
	}

	if err := d.tracker.Reconcile(snap.CallID, snap.Present(), now); err != nil {
		return fmt.Errorf("tracker: %w", err)
	}

	d.logRoster(snap, now)
	return nil
}

// logRoster prints the current call membership with canonical labels.
func (d *Daemon) logRoster(snap roster.Snapshot, now time.Time) {
	if snap.CallID == "" {
		return
	}
	names := make([]string, 0, len(snap.Participants))
	for _, p := range snap.Participants {
		cid := d.resolver.CanonicalID(p.UserID)
		if label, ok := d.resolver.Label(cid); ok {
			names = append(names, label)
			continue
		}
		if p.DisplayName != "" {
			names = append(names, p.DisplayName)
		} else {
			names = append(names, p.UserID)
		}
	}
	fmt.Fprintf(d.out, "[%s] In call (%d): %s\n",
		now.In(d.store.Location()).Format("15:04:05"), len(names), strings.Join(names, ", "))
}
