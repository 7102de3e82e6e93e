package screenshot

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sona-ai/sona/pkg/config"
)

// Manager captures the screen through an external capture tool and
// keeps the resulting files in a managed directory.
type Manager struct {
	dir      string
	format   string
	maxFiles int
	command  string

	mu       sync.Mutex
	captured []string
	seq      atomic.Int64
}

// New creates a Manager and ensures the capture directory exists.
func New(cfg config.ScreenshotConfig) (*Manager, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create screenshot dir: %w", err)
	}
	return &Manager{
		dir:      cfg.Dir,
		format:   strings.ToLower(cfg.Format),
		maxFiles: cfg.MaxFiles,
		command:  cfg.Command,
	}, nil
}

// Capture takes a screenshot and returns the captured file paths.
// Capture failure is not fatal to the caller's query; it simply
// proceeds without screen context.
func (m *Manager) Capture(ctx context.Context) ([]string, error) {
	path := filepath.Join(m.dir, m.filename())

	name, args := m.captureCommand(path)
	cmd := exec.CommandContext(ctx, name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("capture command %s: %w (%s)", name, err, strings.TrimSpace(string(out)))
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("capture produced no file: %w", err)
	}

	m.mu.Lock()
	m.captured = append(m.captured, path)
	m.pruneLocked()
	m.mu.Unlock()
	return []string{path}, nil
}

// Cleanup removes every file captured by this Manager.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, path := range m.captured {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("removing screenshot %s: %v", path, err)
		}
	}
	m.captured = nil
}

// filename produces a timestamped, collision-resistant name. The
// sequence suffix keeps concurrent captures from colliding within the
// same instant.
func (m *Manager) filename() string {
	return fmt.Sprintf("screenshot_%s_%04d.%s", time.Now().Format("20060102_150405"), m.seq.Add(1), m.format)
}

// captureCommand picks the platform capture tool, honoring an explicit
// override from configuration.
func (m *Manager) captureCommand(path string) (string, []string) {
	if m.command != "" {
		return m.command, []string{path}
	}
	switch runtime.GOOS {
	case "darwin":
		return "screencapture", []string{"-x", path}
	case "windows":
		// PowerShell ships on every supported Windows.
		script := fmt.Sprintf(
			"Add-Type -AssemblyName System.Windows.Forms; "+
				"$b = New-Object Drawing.Bitmap([Windows.Forms.Screen]::PrimaryScreen.Bounds.Width, [Windows.Forms.Screen]::PrimaryScreen.Bounds.Height); "+
				"[Drawing.Graphics]::FromImage($b).CopyFromScreen(0, 0, 0, 0, $b.Size); "+
				"$b.Save('%s')", path)
		return "powershell", []string{"-NoProfile", "-Command", script}
	default:
		return "scrot", []string{path}
	}
}

// pruneLocked deletes the oldest captures beyond the retention cap.
// Caller must hold m.mu.
func (m *Manager) pruneLocked() {
	if m.maxFiles <= 0 || len(m.captured) <= m.maxFiles {
		return
	}
	sort.Strings(m.captured) // timestamped names sort chronologically
	excess := m.captured[:len(m.captured)-m.maxFiles]
	for _, path := range excess {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("pruning screenshot %s: %v", path, err)
		}
	}
	m.captured = m.captured[len(excess):]
}
