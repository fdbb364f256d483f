package back

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
	"time"
	"touchline/internal/back/schedule"
	"touchline/internal/config"
	"touchline/internal/task"
	"touchline/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// notificationsBufferSize bounds how many notifications can wait for the bot
// before new ones get dropped.
const notificationsBufferSize = 64

type Back struct {
	db      *sqlx.DB
	clock   clockwork.Clock
	config  *config.Config
	kickoff schedule.Scheduler

	rngMu sync.Mutex
	rng   *rand.Rand

	notifications chan Notification
}

func New(cfg *config.Config, clock clockwork.Clock) (*Back, error) {
	// Why even bother converting names? A single greppable string across all
	// your source code is better than any odd conversion scheme you could ever
	// come up with.
	// HACK: This is global but putting this in init() makes test ugly.
	// As only the Back relies on the DB, this seems like an okay-ish place.
	sqlx.NameMapper = func(v string) string { return v }

	kickoff, err := schedule.New(schedule.Config{
		Period: cfg.KickoffPeriod,
		Offset: cfg.KickoffOffset,
		Times:  cfg.KickoffTimes,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid kickoff schedule: %w", err)
	}

	rng, err := newRand()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect("sqlite3", cfg.DSN())
	if err != nil {
		return nil, err
	}

	return &Back{
		db:            db,
		clock:         clock,
		config:        cfg,
		kickoff:       kickoff,
		rng:           rng,
		notifications: make(chan Notification, notificationsBufferSize),
	}, nil
}

func newRand() (*rand.Rand, error) {
	var seed int64
	if err := binary.Read(crand.Reader, binary.LittleEndian, &seed); err != nil {
		return nil, fmt.Errorf("unable to seed the match engine: %w", err)
	}

	return rand.New(rand.NewSource(seed)), nil // nolint:gosec
}

func (b *Back) Close() error {
	return b.db.Close()
}

// Now is the current time as seen by the Back.
func (b *Back) Now() time.Time {
	return b.clock.Now()
}

// GetNotificationsChan returns the channel the bot reads from to send
// messages produced by the Back.
func (b *Back) GetNotificationsChan() <-chan Notification {
	return b.notifications
}

// Run plays due matches every SweepInterval until ctx is done.
func (b *Back) Run(ctx context.Context) error {
	log.Info().Dur("interval", b.config.SweepInterval).Msg("starting Back dæmon")

	queue := task.New(b.clock, 1)
	queue.Every("sweep", b.config.SweepInterval, b.sweepTask)

	return queue.Run(ctx)
}

func (b *Back) sweepTask(ctx context.Context) error {
	report, err := b.RunDueSweep(ctx, b.clock.Now())
	if err != nil {
		return err
	}

	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%d match(es) could not be played: %w", n, report.Err())
	}

	return nil
}

func (b *Back) transaction(ctx context.Context, cb util.TransactionCallback) error {
	return util.Transaction(ctx, b.db, cb)
}
