package report

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

var headlessCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
}

// EnsureHeadlessAvailable checks that a headless browser binary is on PATH.
// Called at startup when snapshots are enabled, so a missing browser fails
// fast instead of on the first report.
func EnsureHeadlessAvailable(ctx context.Context) error {
	for _, name := range headlessCandidates {
		if _, err := exec.LookPath(name); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no headless browser found on PATH (tried %v)", headlessCandidates)
}

// Snapshot renders the HTML report to a PNG next to it and returns the PNG
// path.
func Snapshot(ctx context.Context, htmlPath string) (string, error) {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return "", fmt.Errorf("resolve report path: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	browserCtx, cancelBrowser := chromedp.NewContext(ctx)
	defer cancelBrowser()

	var buf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+abs),
		chromedp.Sleep(2*time.Second),
		chromedp.FullScreenshot(&buf, 90),
	)
	if err != nil {
		return "", fmt.Errorf("capture snapshot: %w", err)
	}

	pngPath := abs[:len(abs)-len(filepath.Ext(abs))] + ".png"
	if err := os.WriteFile(pngPath, buf, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return pngPath, nil
}
