/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: render.go
Description: Static rendering of HTML reports through headless Chrome. Loads
the report markup into a blank page and captures it as a PNG screenshot or a
PDF document.
*/

package reporting

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Renderer converts HTML reports to images and documents with headless Chrome
type Renderer struct {
	Timeout  time.Duration
	Quality  int    // PNG screenshot quality
	ExecPath string // Chrome binary, looked up on PATH when empty
}

// NewRenderer creates a renderer with default settings
func NewRenderer() *Renderer {
	return &Renderer{Timeout: 30 * time.Second, Quality: 90}
}

// RenderPNG renders the report as a full-page PNG screenshot
func (r *Renderer) RenderPNG(ctx context.Context, report *Report) ([]byte, error) {
	var buf []byte
	err := r.run(ctx, report, chromedp.FullScreenshot(&buf, r.Quality))
	if err != nil {
		return nil, fmt.Errorf("failed to render png: %w", err)
	}
	return buf, nil
}

// RenderPDF renders the report as a PDF with backgrounds
func (r *Renderer) RenderPDF(ctx context.Context, report *Report) ([]byte, error) {
	var buf []byte
	err := r.run(ctx, report, chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
		if err != nil {
			return err
		}
		buf = data
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf, nil
}

// run loads the report into a fresh browser and performs capture
func (r *Renderer) run(ctx context.Context, report *Report, capture chromedp.Action) error {
	var html bytes.Buffer
	if err := RenderHTML(&html, report); err != nil {
		return err
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	if r.ExecPath != "" {
		opts = append(append([]chromedp.ExecAllocatorOption(nil), opts...), chromedp.ExecPath(r.ExecPath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	return chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html.String()).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		capture,
	)
}
