package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/folio-motion/audio"
	"github.com/lixenwraith/folio-motion/config"
	"github.com/lixenwraith/folio-motion/engine"
	"github.com/lixenwraith/folio-motion/host"
	"github.com/lixenwraith/folio-motion/prefs"
	"github.com/lixenwraith/folio-motion/registry"
	"github.com/lixenwraith/folio-motion/scene"
	"github.com/lixenwraith/folio-motion/scheduler"
	"github.com/lixenwraith/folio-motion/service"
	"github.com/lixenwraith/folio-motion/status"
)

// Service names, also the hub start order tie-breakers
const (
	svcStore      = "store"
	svcPrefs      = "prefs"
	svcScheduler  = "scheduler"
	svcController = "controller"
	svcAudio      = "audio"
	svcHost       = "host"
)

// app is the composition root: one store, one controller, one scheduler per process
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	hub       *service.Hub
	status    *status.Registry
	catalog   *registry.Catalog
	newScreen func() (tcell.Screen, error)

	store   *prefs.SQLStore
	reduced *prefs.Flag
	hidden  *prefs.Flag
	watcher *prefs.FileWatcher
	sched   *scheduler.Scheduler
	ctrl    *engine.Controller
	scenes  *scene.Manager
	player  *audio.Player
	screen  tcell.Screen
	host    *host.Host
	ran     bool
}

func newApp(cfg *config.Config, logger *zap.Logger, cat *registry.Catalog, newScreen func() (tcell.Screen, error)) (*app, error) {
	a := &app{
		cfg:       cfg,
		logger:    logger,
		hub:       service.NewHub(logger),
		status:    status.NewRegistry(),
		catalog:   cat,
		newScreen: newScreen,
		reduced:   prefs.NewFlag(false),
		hidden:    prefs.NewFlag(false),
	}

	services := []service.Service{
		&service.Func{
			ServiceName: svcStore,
			OnInit: func(context.Context) error {
				s, err := prefs.OpenSQLStore(cfg.StorePath)
				if err != nil {
					return err
				}
				a.store = s
				return nil
			},
			OnStop: func() error { return a.store.Close() },
		},
		&service.Func{
			ServiceName: svcPrefs,
			OnInit: func(context.Context) error {
				w, err := prefs.NewFileWatcher(cfg.PrefsFile, a.reduced, a.hidden, logger.Named("prefs"))
				if err != nil {
					return err
				}
				a.watcher = w
				// Flags hold the file's values before the scheduler subscribes and the host mounts
				if err := w.Reload(); err != nil {
					logger.Warn("initial prefs load failed", zap.String("path", cfg.PrefsFile), zap.Error(err))
				}
				return nil
			},
			OnStart: func(ctx context.Context) error { return a.watcher.Start(ctx) },
			OnStop: func() error {
				a.watcher.Stop()
				return nil
			},
		},
		&service.Func{
			ServiceName: svcScheduler,
			Deps:        []string{svcStore, svcPrefs},
			OnInit: func(context.Context) error {
				a.sched = scheduler.New(scheduler.Options{
					Store:         a.store,
					ReducedMotion: a.reduced,
					Hidden:        a.hidden,
					Logger:        logger.Named("scheduler"),
					Status:        a.status,
				})
				return nil
			},
			OnStop: func() error {
				a.sched.Close()
				return nil
			},
		},
		&service.Func{
			ServiceName: svcController,
			OnInit: func(context.Context) error {
				a.ctrl = engine.NewController(engine.WithLogger(logger.Named("controller")), engine.WithStatus(a.status))
				a.scenes = scene.NewManager(logger.Named("scene"), a.status)
				return nil
			},
			OnStop: func() error {
				a.ctrl.ResetAll()
				a.scenes.DisposeAll()
				return nil
			},
		},
		&service.Func{
			ServiceName: svcAudio,
			OnInit: func(context.Context) error {
				a.player = audio.NewPlayer(audio.Config{
					Enabled:    cfg.Audio.Enabled,
					SampleRate: cfg.Audio.SampleRate,
				}, logger.Named("audio"))
				return nil
			},
			OnStart: func(context.Context) error { return a.player.Start() },
			OnStop:  func() error { return a.player.Stop() },
		},
		&service.Func{
			ServiceName: svcHost,
			Deps:        []string{svcScheduler, svcController, svcAudio},
			OnInit:      a.initHost,
			OnStop: func() error {
				// Run finalizes the screen itself
				if !a.ran && a.screen != nil {
					a.screen.Fini()
				}
				return nil
			},
		},
	}
	for _, svc := range services {
		if err := a.hub.Register(svc); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *app) initHost(context.Context) error {
	screen, err := a.newScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	a.screen = screen

	h, err := host.New(host.Options{
		Screen:        screen,
		Catalog:       a.catalog,
		Controller:    a.ctrl,
		Scheduler:     a.sched,
		Scenes:        a.scenes,
		Audio:         a.player,
		Hidden:        a.hidden,
		Attribute:     a.cfg.Attribute,
		ValidateIDs:   a.cfg.ValidateIDs,
		LoadPriority:  a.cfg.LoadPriority,
		FrameInterval: a.cfg.FrameDuration(),
		Seed:          a.cfg.Catalog.Seed,
		Logger:        a.logger.Named("host"),
		Status:        a.status,
	})
	if err != nil {
		screen.Fini()
		a.screen = nil
		return err
	}
	a.host = h
	return nil
}

// start brings every service up in dependency order
func (a *app) start(ctx context.Context) error {
	if err := a.hub.InitAll(ctx); err != nil {
		return err
	}
	if err := a.hub.StartAll(ctx); err != nil {
		return err
	}
	a.logger.Info("services started", zap.Strings("order", a.hub.Order()))
	return nil
}

// run blocks in the host until ctx ends or the user quits
func (a *app) run(ctx context.Context) error {
	a.ran = true
	return a.host.Run(ctx)
}

func (a *app) stop() {
	a.hub.StopAll()
	a.logger.Info("services stopped", zap.Any("status", a.status.Snapshot()))
}

func runShell(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger, loadCatalog(), tcell.NewScreen)
	if err != nil {
		return err
	}
	if err := a.start(ctx); err != nil {
		return err
	}
	defer a.stop()
	return a.run(ctx)
}
