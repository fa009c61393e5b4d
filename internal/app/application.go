package app

import (
	"fmt"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/rs/zerolog"

	"github.com/divnaoki/campus-app/internal/canvas"
	"github.com/divnaoki/campus-app/internal/catalog"
	"github.com/divnaoki/campus-app/internal/config"
	"github.com/divnaoki/campus-app/internal/gui"
	"github.com/divnaoki/campus-app/internal/logger"
	"github.com/divnaoki/campus-app/internal/media"
	"github.com/divnaoki/campus-app/internal/shutdown"
)

const (
	AppName    = "Campus Media Manager"
	AppID      = "com.divnaoki.campusapp"
	AppVersion = "1.0.0"

	windowWidth  = 1280
	windowHeight = 800
)

// Application wires the catalog, the canvas controller and the GUI shell
// together and owns the process lifecycle.
type Application struct {
	fyneApp     fyne.App
	window      fyne.Window
	cfg         config.Config
	log         logger.Logger
	store       *catalog.Store
	controller  *canvas.Controller
	guiManager  *gui.Manager
	shutdownMgr *shutdown.Manager
}

func New(cfg config.Config) (*Application, error) {
	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	log := logger.NewConsoleLogger(level)

	if err := cfg.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("prepare data directory: %w", err)
	}

	store, err := catalog.NewStore(cfg.DatabasePath(), log)
	if err != nil {
		return nil, err
	}

	opener := media.NewGocvOpener()
	controller := canvas.NewController(opener, canvas.Policy{
		MaxSurfaces: cfg.MaxCanvases,
		PauseOnBlur: cfg.PauseOnBlur,
	}, log)
	importer := catalog.NewImporter(store, opener, media.GenerateThumbnail,
		cfg.VideoDir(), cfg.ThumbnailDir(), log)

	shutdownMgr := shutdown.NewManager(log)

	fyneApp := fyneapp.NewWithID(AppID)
	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(windowWidth, windowHeight))
	window.CenterOnScreen()
	window.SetMaster()

	guiManager := gui.NewManager(shutdownMgr.Context(), window, controller, store, importer, cfg, log)
	window.SetContent(guiManager.Content())

	shutdownMgr.Register("catalog", store)
	shutdownMgr.Register("canvas controller", controller)
	shutdownMgr.Register("gui manager", guiManager)
	shutdownMgr.Listen()

	window.SetCloseIntercept(func() {
		shutdownMgr.Shutdown()
		window.Close()
	})

	log.Info("Application", "initialization complete", map[string]interface{}{
		"version":       AppVersion,
		"data_dir":      cfg.DataDir,
		"max_canvases":  cfg.MaxCanvases,
		"pause_on_blur": cfg.PauseOnBlur,
		"frame_budget":  cfg.FrameBudget.String(),
	})

	return &Application{
		fyneApp:     fyneApp,
		window:      window,
		cfg:         cfg,
		log:         log,
		store:       store,
		controller:  controller,
		guiManager:  guiManager,
		shutdownMgr: shutdownMgr,
	}, nil
}

// Run shows the main window and blocks until the application exits.
func (a *Application) Run() error {
	a.guiManager.Start()
	a.window.Show()
	a.fyneApp.Run()
	a.shutdownMgr.Shutdown()
	return nil
}
