package browser

import (
	"context"

	"github.com/chromedp/chromedp"
)

// AttachOptions selects how the browser tab is obtained.
type AttachOptions struct {
	// RemoteURL attaches to a running browser's DevTools websocket endpoint.
	// When empty a browser process is launched instead.
	RemoteURL   string
	ExecPath    string
	Headless    bool
	UserDataDir string
}

// Attach builds a chromedp tab context from opts. The returned cancel tears
// down the tab and, for launched browsers, the allocator and process.
func Attach(parent context.Context, opts AttachOptions) (context.Context, context.CancelFunc) {
	if opts.RemoteURL != "" {
		allocCtx, allocCancel := chromedp.NewRemoteAllocator(parent, opts.RemoteURL)
		ctx, cancel := chromedp.NewContext(allocCtx)
		return ctx, func() {
			cancel()
			allocCancel()
		}
	}
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if opts.ExecPath != "" {
		execOpts = append(execOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserDataDir != "" {
		execOpts = append(execOpts, chromedp.UserDataDir(opts.UserDataDir))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, execOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx)
	return ctx, func() {
		cancel()
		allocCancel()
	}
}
