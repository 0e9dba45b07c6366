package snapshot

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"noshow-dashboard/config"
	"noshow-dashboard/models"
	"noshow-dashboard/utils"
)

// Preset is a named filter state to capture.
type Preset struct {
	Name   string
	Filter models.FilterState
}

// DefaultPresets covers the unfiltered dashboard and each gender.
var DefaultPresets = []Preset{
	{Name: "all"},
	{Name: "female", Filter: models.FilterState{Gender: models.GenderFemale}},
	{Name: "male", Filter: models.FilterState{Gender: models.GenderMale}},
}

// Snapshotter renders a running dashboard in headless Chrome and saves
// full-page PNG screenshots.
type Snapshotter struct {
	cfg    *config.Config
	logger *utils.Logger
	pool   *utils.WorkerPool
	retry  *utils.RetryConfig
}

// New creates a Snapshotter.
func New(cfg *config.Config, logger *utils.Logger) *Snapshotter {
	return &Snapshotter{
		cfg:    cfg,
		logger: logger,
		pool:   utils.NewWorkerPool(2, 250),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Capture screenshots every preset concurrently. Files are written next to
// SnapshotPath with the preset name appended. It returns the written paths.
func (s *Snapshotter) Capture(ctx context.Context, presets []Preset) ([]string, error) {
	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	s.logger.Info("[snapshot] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(s.cfg.SnapshotWidth, s.cfg.SnapshotHeight),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("snapshot: start browser: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.cfg.SnapshotPath), 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: create dir: %w", err)
	}

	paths := make([]string, len(presets))
	for i, p := range presets {
		i, p := i, p
		paths[i] = OutputPath(s.cfg.SnapshotPath, p.Name, len(presets))
		s.pool.Submit(func() error {
			target, err := PageURL(s.cfg.SnapshotURL, p.Filter)
			if err != nil {
				return err
			}
			return s.retry.Do(ctx, "snapshot "+p.Name, func() error {
				return s.captureOne(browserCtx, target, paths[i])
			})
		})
	}
	if err := s.pool.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func (s *Snapshotter) captureOne(browserCtx context.Context, target, path string) error {
	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, 45*time.Second)
	defer cancelTimeout()

	var buf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(target),
		chromedp.WaitVisible(`#charts img`, chromedp.ByQuery),
		// give the remaining chart images time to load
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.FullScreenshot(&buf, 90),
	)
	if err != nil {
		return fmt.Errorf("capture %s: %w", target, err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Info("[snapshot] Saved %s (%d bytes)", path, len(buf))
	return nil
}

// PageURL encodes f into the dashboard page query string.
func PageURL(base string, f models.FilterState) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("snapshot: bad url %q: %w", base, err)
	}
	q := u.Query()
	if f.Gender != "" {
		q.Set("gender", f.Gender)
	}
	if f.Neighborhood != "" {
		q.Set("neighborhood", f.Neighborhood)
	}
	if len(f.Age) > 0 {
		parts := make([]string, len(f.Age))
		for i, a := range f.Age {
			parts[i] = strconv.Itoa(a)
		}
		q.Set("age", strings.Join(parts, ","))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// OutputPath derives the file for one preset. A single preset keeps base.
func OutputPath(base, name string, total int) string {
	if total <= 1 {
		return base
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + name + ext
}

// findChromeBinary locates Chrome/Chromium, preferring the configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
