package crawler

import (
	"context"
	"time"
)

// Driver is the rendering capability the walker needs from a browser session
type Driver interface {
	// Navigate loads url in the session
	Navigate(ctx context.Context, url string) error
	// WaitFor blocks until selector matches an element or timeout elapses
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	// FindElements returns every element matching selector; no match is not an error
	FindElements(ctx context.Context, selector string) ([]Element, error)
	// Click activates el through a script click
	Click(ctx context.Context, el Element) error
	// Close releases the session
	Close() error
}

// Element is a handle to one rendered node
type Element interface {
	Text(ctx context.Context) (string, error)
	// Attribute returns the attribute value and whether it is present
	Attribute(ctx context.Context, name string) (string, bool, error)
	FindElements(ctx context.Context, selector string) ([]Element, error)
}

// DriverFactory acquires a new session
type DriverFactory func(ctx context.Context) (Driver, error)
