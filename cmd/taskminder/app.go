package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukerupert/taskminder/internal/clock"
	"github.com/dukerupert/taskminder/internal/config"
	"github.com/dukerupert/taskminder/internal/database"
	"github.com/dukerupert/taskminder/internal/email"
	"github.com/dukerupert/taskminder/internal/logging"
	"github.com/dukerupert/taskminder/internal/notify"
	"github.com/dukerupert/taskminder/internal/overdue"
	"github.com/dukerupert/taskminder/internal/push"
	"github.com/dukerupert/taskminder/internal/recipient"
	"github.com/dukerupert/taskminder/internal/reminder"
	"github.com/dukerupert/taskminder/internal/routine"
	"github.com/dukerupert/taskminder/internal/store"
)

// app holds the wiring shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	clock  clock.Clock

	tasks     *store.TaskStore
	routines  *store.RoutineStore
	reminders *store.ReminderStore
	users     *store.UserStore
	pushes    *store.PushStore

	recipients *recipient.Resolver
	mailer     email.Mailer

	// pushService is nil when VAPID keys are not configured.
	pushService *push.Service
	// publisher delivers events without a running daemon: web push when
	// configured, otherwise nothing.
	publisher notify.Publisher
}

// newApp loads configuration, opens the database and builds the mailer.
// Any error here is a setup failure.
func newApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	mailer, err := newMailer(cfg, logger)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	users := store.NewUserStore(db)
	pushes := store.NewPushStore(db)

	var pushSvc *push.Service
	var publisher notify.Publisher = notify.Nop{}
	if svc := push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey, cfg.Push.Subscriber); svc.Configured() {
		pushSvc = svc
		publisher = push.NewPublisher(svc, pushes, logger.With("component", "push"))
	} else {
		logger.Debug("web push disabled, VAPID keys not configured")
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		db:         db,
		clock:      clock.New(cfg.Location),
		tasks:      store.NewTaskStore(db),
		routines:   store.NewRoutineStore(db),
		reminders:  store.NewReminderStore(db),
		users:      users,
		pushes:     pushes,
		recipients: recipient.NewResolver(users, cfg.Recipient.CacheSize, cfg.Recipient.CacheTTL),
		mailer:     mailer,

		pushService: pushSvc,
		publisher:   publisher,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// newMailer picks the delivery driver and wraps it in the rate limiter.
func newMailer(cfg *config.Config, logger *slog.Logger) (email.Mailer, error) {
	var base email.Mailer
	switch cfg.Mail.Driver {
	case "postmark":
		c := email.NewPostmarkClient(cfg.Mail.PostmarkToken, cfg.Mail.From)
		if !c.Configured() {
			return nil, fmt.Errorf("postmark driver: %w", email.ErrNotConfigured)
		}
		base = c
	case "smtp":
		s := cfg.Mail.SMTP
		c := email.NewSMTPClient(s.Host, s.Port, s.Username, s.Password, cfg.Mail.From)
		if !c.Configured() {
			return nil, fmt.Errorf("smtp driver: %w", email.ErrNotConfigured)
		}
		base = c
	default:
		base = email.LogMailer{Logger: logger.With("component", "mailer")}
	}
	return email.NewThrottled(base, cfg.Mail.RatePerSecond, cfg.Mail.Burst), nil
}

func (a *app) notifier(pub notify.Publisher, catchUp bool) *overdue.Notifier {
	policy := overdue.Policy{
		Delay:     a.cfg.Overdue.Delay,
		Tolerance: a.cfg.Overdue.Tolerance,
		CatchUp:   a.cfg.Overdue.CatchUp || catchUp,
	}
	return overdue.NewNotifier(a.tasks, a.recipients, a.mailer, pub, overdue.Config{
		Policy:      policy,
		BaseURL:     a.cfg.BaseURL,
		SendTimeout: a.cfg.Mail.SendTimeout,
	}, a.logger)
}

func (a *app) dispatcher(pub notify.Publisher) *reminder.Dispatcher {
	return reminder.NewDispatcher(a.reminders, a.tasks, a.recipients, a.mailer, pub, reminder.Config{
		Window:      a.cfg.Reminder.Window,
		Location:    a.cfg.Location,
		BaseURL:     a.cfg.BaseURL,
		SendTimeout: a.cfg.Mail.SendTimeout,
	}, a.logger)
}

func (a *app) generator(pub notify.Publisher) *routine.Generator {
	return routine.NewGenerator(a.routines, a.tasks, a.reminders, pub, routine.Config{
		Location:     a.cfg.Location,
		ReminderLead: a.cfg.Reminder.Lead,
	}, a.logger)
}
