// Package browser implements the crawler's rendering capability on headless
// Chrome through chromedp.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/trogers1052/gold-quote-crawler/internal/config"
	"github.com/trogers1052/gold-quote-crawler/internal/crawler"
	"go.uber.org/zap"
)

// Session is one headless Chrome tab
type Session struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	cancelTime  context.CancelFunc
}

// Factory returns a crawler.DriverFactory that launches Chrome with cfg
func Factory(cfg config.CrawlerConfig, logger *zap.Logger) crawler.DriverFactory {
	return func(ctx context.Context) (crawler.Driver, error) {
		return Open(ctx, cfg, logger)
	}
}

// Open launches Chrome and starts a tab. The session lives at most
// cfg.SessionTimeout.
func Open(ctx context.Context, cfg config.CrawlerConfig, logger *zap.Logger) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	var timeCtx context.Context
	var cancelTime context.CancelFunc
	if cfg.SessionTimeout > 0 {
		timeCtx, cancelTime = context.WithTimeout(ctx, cfg.SessionTimeout)
	} else {
		timeCtx, cancelTime = context.WithCancel(ctx)
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(timeCtx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Sugar().Debugf),
		chromedp.WithErrorf(logger.Sugar().Warnf),
	)

	s := &Session{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		cancelTime:  cancelTime,
	}

	// starts the browser process
	if err := chromedp.Run(tabCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}
	return s, nil
}

func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(s.ctx, actions...)
}

// Navigate loads url
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

// WaitFor blocks until selector is present in the DOM or timeout elapses
func (s *Session) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

// FindElements returns every node matching selector in the document
func (s *Session) FindElements(ctx context.Context, selector string) ([]crawler.Element, error) {
	return s.query(ctx, selector)
}

// Click dispatches a script click on el
func (s *Session) Click(ctx context.Context, el crawler.Element) error {
	n, ok := el.(*node)
	if !ok {
		return fmt.Errorf("element %T does not belong to this session", el)
	}
	return s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(n.node.NodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve node: %w", err)
		}
		_, exception, err := runtime.CallFunctionOn("function() { this.click(); }").
			WithObjectID(obj.ObjectID).
			Do(ctx)
		if err != nil {
			return err
		}
		if exception != nil {
			return exception
		}
		return nil
	}))
}

// Close shuts the tab and the browser process
func (s *Session) Close() error {
	var err error
	if s.cancelTab != nil {
		if cerr := chromedp.Cancel(s.ctx); cerr != nil && !errors.Is(cerr, context.Canceled) {
			err = cerr
		}
		s.cancelTab()
	}
	if s.cancelAlloc != nil {
		s.cancelAlloc()
	}
	if s.cancelTime != nil {
		s.cancelTime()
	}
	return err
}

func (s *Session) query(ctx context.Context, selector string, opts ...chromedp.QueryOption) ([]crawler.Element, error) {
	var nodes []*cdp.Node
	opts = append([]chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}, opts...)
	if err := s.run(ctx, chromedp.Nodes(selector, &nodes, opts...)); err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	out := make([]crawler.Element, len(nodes))
	for i, n := range nodes {
		out[i] = &node{session: s, node: n}
	}
	return out, nil
}

// node is a rendered element in a Session
type node struct {
	session *Session
	node    *cdp.Node
}

func (n *node) Text(ctx context.Context) (string, error) {
	var text string
	// hidden cells must not block on visibility
	err := n.session.run(ctx, chromedp.Text([]cdp.NodeID{n.node.NodeID}, &text, chromedp.ByNodeID, chromedp.NodeReady))
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return text, nil
}

func (n *node) Attribute(ctx context.Context, name string) (string, bool, error) {
	var value string
	var ok bool
	err := n.session.run(ctx, chromedp.AttributeValue([]cdp.NodeID{n.node.NodeID}, name, &value, &ok, chromedp.ByNodeID))
	if err != nil {
		return "", false, fmt.Errorf("failed to read attribute %s: %w", name, err)
	}
	return value, ok, nil
}

func (n *node) FindElements(ctx context.Context, selector string) ([]crawler.Element, error) {
	return n.session.query(ctx, selector, chromedp.FromNode(n.node))
}
