package gui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/divnaoki/campus-app/internal/canvas"
	"github.com/divnaoki/campus-app/internal/catalog"
	"github.com/divnaoki/campus-app/internal/config"
	"github.com/divnaoki/campus-app/internal/logger"
	"github.com/divnaoki/campus-app/internal/media"
)

var (
	imageFileFilter = storage.NewExtensionFileFilter([]string{
		".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp",
	})
	videoFileFilter = storage.NewExtensionFileFilter([]string{
		".mp4", ".avi", ".mov", ".mkv", ".wmv", ".flv", ".webm", ".m4v",
	})
)

// Manager composes the two-pane shell: the sidebar listing saved canvases
// and the tabbed content area hosting one display per open canvas surface.
// It translates sidebar and toolbar events into controller calls and runs
// the compose loop that pulls frames at a fixed cadence.
type Manager struct {
	window     fyne.Window
	log        logger.Logger
	controller *canvas.Controller
	store      *catalog.Store
	importer   *catalog.Importer
	cfg        config.Config
	ctx        context.Context

	mu       sync.Mutex
	canvases []catalog.Canvas
	displays map[string]*SurfaceDisplay
	tabItems map[string]*container.TabItem
	tabSlots map[*container.TabItem]string
	// selectedSlot mirrors the DocTabs selection so the compose goroutine
	// never reads widget state off the UI thread.
	selectedSlot string

	sidebar *widget.List
	tabs    *container.DocTabs
	stop    chan struct{}
	once    sync.Once
}

func NewManager(ctx context.Context, window fyne.Window, controller *canvas.Controller, store *catalog.Store, importer *catalog.Importer, cfg config.Config, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop{}
	}

	m := &Manager{
		window:     window,
		log:        log,
		controller: controller,
		store:      store,
		importer:   importer,
		cfg:        cfg,
		ctx:        ctx,
		displays:   make(map[string]*SurfaceDisplay),
		tabItems:   make(map[string]*container.TabItem),
		tabSlots:   make(map[*container.TabItem]string),
		stop:       make(chan struct{}),
	}

	m.sidebar = widget.NewList(
		func() int {
			m.mu.Lock()
			defer m.mu.Unlock()
			return len(m.canvases)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.ListItemID, object fyne.CanvasObject) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if id < 0 || id >= len(m.canvases) {
				return
			}
			c := m.canvases[id]
			object.(*widget.Label).SetText(fmt.Sprintf("%s (%s)", c.Name, c.Kind))
		},
	)
	m.sidebar.OnSelected = func(id widget.ListItemID) {
		m.mu.Lock()
		var selected catalog.Canvas
		if id >= 0 && id < len(m.canvases) {
			selected = m.canvases[id]
		}
		m.mu.Unlock()
		if selected.ID != "" {
			m.openCanvas(selected)
		}
	}

	m.tabs = container.NewDocTabs()
	m.tabs.OnSelected = func(item *container.TabItem) {
		m.mu.Lock()
		slotID := m.tabSlots[item]
		m.selectedSlot = slotID
		m.mu.Unlock()
		if slotID != "" {
			if err := m.controller.SelectSurface(slotID); err != nil {
				m.log.Warning("GUIManager", "tab selection failed", map[string]interface{}{
					"slot":  slotID,
					"error": err.Error(),
				})
			}
		}
	}
	m.tabs.CloseIntercept = func(item *container.TabItem) {
		m.mu.Lock()
		slotID := m.tabSlots[item]
		m.mu.Unlock()
		if slotID != "" {
			m.closeSlot(slotID)
		}
	}

	return m
}

// Content builds the window content: sidebar on the left, toolbar plus
// tabs in the main area.
func (m *Manager) Content() fyne.CanvasObject {
	newCanvasButton := widget.NewButton("New Canvas", m.showNewCanvasDialog)
	left := container.NewBorder(newCanvasButton, nil, nil, nil, m.sidebar)

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), m.showOpenFileDialog),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.MediaPlayIcon(), func() { m.withFocusedResource((*media.Resource).Play) }),
		widget.NewToolbarAction(theme.MediaPauseIcon(), func() { m.withFocusedResource((*media.Resource).Pause) }),
		widget.NewToolbarAction(theme.MediaStopIcon(), func() { m.withFocusedResource((*media.Resource).Stop) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomInIcon(), func() { m.withFocusedSurface((*canvas.Surface).ZoomIn) }),
		widget.NewToolbarAction(theme.ZoomOutIcon(), func() { m.withFocusedSurface((*canvas.Surface).ZoomOut) }),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), func() { m.withFocusedSurface((*canvas.Surface).ResetView) }),
	)

	main := container.NewBorder(toolbar, nil, nil, nil, m.tabs)
	split := container.NewHSplit(left, main)
	split.SetOffset(0.22)
	return split
}

// Start refreshes the sidebar and launches the compose loop.
func (m *Manager) Start() {
	m.RefreshCanvases()
	go m.composeLoop()
}

// Shutdown stops the compose loop. Registered with the shutdown manager.
func (m *Manager) Shutdown() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Manager) composeLoop() {
	ticker := time.NewTicker(m.cfg.FrameBudget)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.composeSelected()
		}
	}
}

// composeSelected renders only the visible tab; background surfaces keep
// their state but burn no decode time.
func (m *Manager) composeSelected() {
	m.mu.Lock()
	slotID := m.selectedSlot
	display := m.displays[slotID]
	m.mu.Unlock()

	if display == nil {
		return
	}
	if err := display.Compose(m.cfg.FrameBudget); err != nil {
		m.log.Error("GUIManager", err, map[string]interface{}{
			"slot": slotID,
		})
	}
}

// RefreshCanvases reloads the sidebar from the catalog.
func (m *Manager) RefreshCanvases() {
	canvases, err := m.store.ListCanvases(m.ctx)
	if err != nil {
		m.log.Error("GUIManager", err, nil)
		return
	}

	m.mu.Lock()
	m.canvases = canvases
	m.mu.Unlock()

	fyne.Do(func() { m.sidebar.Refresh() })
}

// openCanvas resolves a sidebar selection to a media source and dispatches
// the load. Video canvases load their newest imported file; image canvases
// load their first stored slot.
func (m *Manager) openCanvas(c catalog.Canvas) {
	m.mu.Lock()
	_, open := m.tabItems[c.ID]
	m.mu.Unlock()
	if open {
		m.selectTab(c.ID)
		if err := m.controller.SelectSurface(c.ID); err == nil {
			return
		}
	}

	sourcePath, err := m.resolveSource(c)
	if err != nil {
		dialog.ShowError(err, m.window)
		return
	}
	if sourcePath == "" {
		// Nothing stored yet; let the user pick a file for this canvas.
		m.showLoadDialogFor(c)
		return
	}

	m.loadIntoSlot(c.ID, c.Name, sourcePath)
}

func (m *Manager) resolveSource(c catalog.Canvas) (string, error) {
	switch c.Kind {
	case "video":
		assets, err := m.store.ListVideoAssets(m.ctx, c.ID)
		if err != nil {
			return "", err
		}
		if len(assets) == 0 {
			return "", nil
		}
		return assets[0].FilePath, nil

	default:
		assets, err := m.store.ListImageAssets(m.ctx, c.ID)
		if err != nil {
			return "", err
		}
		if len(assets) == 0 {
			return "", nil
		}
		return m.materializeImage(assets[0])
	}
}

// materializeImage writes a stored image BLOB into the cache directory so
// it can be loaded through the path-based opener.
func (m *Manager) materializeImage(asset catalog.ImageAsset) (string, error) {
	cacheDir := filepath.Join(m.cfg.DataDir, "cache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(cacheDir, asset.ID+filepath.Ext(asset.Name))
	if err := os.WriteFile(path, asset.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (m *Manager) loadIntoSlot(slotID, title, sourcePath string) {
	if err := m.controller.DispatchLoad(m.ctx, slotID, sourcePath); err != nil {
		dialog.ShowError(err, m.window)
		return
	}

	m.ensureTab(slotID, title)
	if err := m.controller.SelectSurface(slotID); err != nil {
		m.log.Warning("GUIManager", "focus after load failed", map[string]interface{}{
			"slot":  slotID,
			"error": err.Error(),
		})
	}
}

func (m *Manager) ensureTab(slotID, title string) {
	m.mu.Lock()
	if _, exists := m.tabItems[slotID]; exists {
		m.mu.Unlock()
		m.selectTab(slotID)
		return
	}

	surface := m.controller.Surface(slotID)
	if surface == nil {
		m.mu.Unlock()
		return
	}
	display := NewSurfaceDisplay(surface)
	item := container.NewTabItem(title, display.Content())
	m.displays[slotID] = display
	m.tabItems[slotID] = item
	m.tabSlots[item] = slotID
	m.mu.Unlock()

	fyne.Do(func() {
		m.tabs.Append(item)
		m.tabs.Select(item)
	})
}

func (m *Manager) selectTab(slotID string) {
	m.mu.Lock()
	item := m.tabItems[slotID]
	m.mu.Unlock()
	if item != nil {
		fyne.Do(func() { m.tabs.Select(item) })
	}
}

func (m *Manager) closeSlot(slotID string) {
	if err := m.controller.CloseSurface(slotID); err != nil {
		m.log.Warning("GUIManager", "close failed", map[string]interface{}{
			"slot":  slotID,
			"error": err.Error(),
		})
	}

	m.mu.Lock()
	item := m.tabItems[slotID]
	delete(m.displays, slotID)
	delete(m.tabItems, slotID)
	if item != nil {
		delete(m.tabSlots, item)
	}
	if m.selectedSlot == slotID {
		// Removing the tab makes DocTabs select a neighbor, which refills
		// this through OnSelected.
		m.selectedSlot = ""
	}
	m.mu.Unlock()

	if item != nil {
		fyne.Do(func() { m.tabs.Remove(item) })
	}
}

func (m *Manager) withFocusedResource(op func(*media.Resource) error) {
	surface := m.controller.FocusedSurface()
	if surface == nil {
		return
	}
	resource := surface.Resource()
	if resource == nil {
		return
	}
	if err := op(resource); err != nil {
		m.log.Warning("GUIManager", "playback control rejected", map[string]interface{}{
			"slot":  surface.ID(),
			"error": err.Error(),
		})
	}
}

func (m *Manager) withFocusedSurface(op func(*canvas.Surface)) {
	surface := m.controller.FocusedSurface()
	if surface == nil {
		return
	}
	op(surface)
}

func (m *Manager) showNewCanvasDialog() {
	name := widget.NewEntry()
	kind := widget.NewSelect([]string{"image", "video"}, nil)
	kind.SetSelected("image")

	form := dialog.NewForm("New Canvas", "Create", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Name", name),
			widget.NewFormItem("Type", kind),
		},
		func(confirmed bool) {
			if !confirmed || name.Text == "" {
				return
			}
			if _, err := m.store.CreateCanvas(m.ctx, name.Text, kind.Selected); err != nil {
				dialog.ShowError(err, m.window)
				return
			}
			m.RefreshCanvases()
		},
		m.window)
	form.Show()
}

// showOpenFileDialog loads a picked file into the focused surface.
func (m *Manager) showOpenFileDialog() {
	slotID := m.controller.FocusedSlot()
	if slotID == "" {
		dialog.ShowInformation("No canvas selected",
			"Select a canvas in the sidebar first.", m.window)
		return
	}

	picker := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		m.loadIntoSlot(slotID, filepath.Base(path), path)
	}, m.window)
	picker.Show()
}

// showLoadDialogFor picks a file for a canvas that has no stored assets
// yet. Video files are imported into the managed directory first; image
// files are stored as a BLOB in the next free slot.
func (m *Manager) showLoadDialogFor(c catalog.Canvas) {
	picker := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		if c.Kind == "video" {
			asset, importErr := m.importer.ImportVideo(m.ctx, c.ID, path)
			if importErr != nil {
				dialog.ShowError(importErr, m.window)
				return
			}
			m.loadIntoSlot(c.ID, c.Name, asset.FilePath)
			return
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			dialog.ShowError(readErr, m.window)
			return
		}
		if _, addErr := m.store.AddImageAsset(m.ctx, c.ID, filepath.Base(path), data); addErr != nil {
			dialog.ShowError(addErr, m.window)
			return
		}
		m.loadIntoSlot(c.ID, c.Name, path)
	}, m.window)

	if c.Kind == "video" {
		picker.SetFilter(videoFileFilter)
	} else {
		picker.SetFilter(imageFileFilter)
	}
	picker.Show()
}
