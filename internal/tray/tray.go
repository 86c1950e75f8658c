package tray

import (
	"log"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
)

// Actions are the callbacks behind the tray menu.
type Actions struct {
	// StoreSettings persists the current calibration.
	StoreSettings func() error
	// Shutdown is called once when "Exit" is clicked.
	Shutdown func()
}

// Tray manages the system tray icon and menu
type Tray struct {
	actions      Actions
	title        string
	statusURL    string
	once         sync.Once
	shuttingDown atomic.Bool
	menuStatus   *systray.MenuItem
	menuStore    *systray.MenuItem
	menuExit     *systray.MenuItem
}

// New creates a tray. title is shown as the tooltip, typically the joystick
// name. An empty statusURL hides the "Show status" item.
func New(title, statusURL string, actions Actions) *Tray {
	return &Tray{
		actions:   actions,
		title:     title,
		statusURL: statusURL,
	}
}

// Run initializes and runs the system tray (blocks until Quit())
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	if t.shuttingDown.CompareAndSwap(false, true) {
		systray.Quit()
	}
}

func (t *Tray) onReady() {
	systray.SetTitle("joyinput")
	systray.SetTooltip("joyinput - " + t.title)

	if t.statusURL != "" {
		t.menuStatus = systray.AddMenuItem("Show status", "Open the status page")
	}
	t.menuStore = systray.AddMenuItem("Store calibration", "Save calibration and axis mapping")
	systray.AddSeparator()
	t.menuExit = systray.AddMenuItem("Exit", "Quit application")

	go t.handleMenuClicks()

	log.Println("System tray initialized")
}

func (t *Tray) handleMenuClicks() {
	// nil when the status item is hidden; never selected
	var statusCh chan struct{}
	if t.menuStatus != nil {
		statusCh = t.menuStatus.ClickedCh
	}

	for {
		select {
		case <-statusCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.menuStore.ClickedCh:
			if t.actions.StoreSettings == nil {
				continue
			}
			if err := t.actions.StoreSettings(); err != nil {
				log.Printf("Failed to store calibration: %v", err)
			} else {
				log.Println("Calibration stored")
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				if t.actions.Shutdown != nil {
					t.once.Do(t.actions.Shutdown)
				}
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	log.Println("System tray exiting")
}

func (t *Tray) openBrowser() {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", t.statusURL)
	case "darwin":
		cmd = exec.Command("open", t.statusURL)
	default:
		cmd = exec.Command("xdg-open", t.statusURL)
	}

	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
