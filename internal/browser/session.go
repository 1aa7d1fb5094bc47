// Package browser drives a real Chrome instance for retailers that have no
// usable cart API.
package browser

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a locator matches nothing on the current page.
var ErrNotFound = errors.New("element not found")

const (
	ByCSS   = "css"
	ByXPath = "xpath"
)

// Locator identifies an element on a page. Attr, when set, names the
// attribute Read returns instead of the element's text.
type Locator struct {
	Name  string `yaml:"name"`
	Query string `yaml:"query"`
	By    string `yaml:"by,omitempty"`
	Attr  string `yaml:"attr,omitempty"`
}

func (l Locator) Validate() error {
	if l.Query == "" {
		return fmt.Errorf("locator %q has an empty query", l.Name)
	}
	switch l.By {
	case "", ByCSS, ByXPath:
		return nil
	default:
		return fmt.Errorf("locator %q: unsupported strategy %q", l.Name, l.By)
	}
}

func (l Locator) String() string {
	if l.Name != "" {
		return l.Name
	}
	return l.Query
}

// Session is one isolated browser tab owned by a single job.
//
//go:generate mockgen -destination=../../mocks/mock_session.go -package=mocks . Session,Factory
type Session interface {
	Navigate(ctx context.Context, url string) error
	// WaitFor blocks until loc is visible or the navigation timeout expires.
	WaitFor(ctx context.Context, loc Locator) error
	Exists(ctx context.Context, loc Locator) (bool, error)
	Click(ctx context.Context, loc Locator) error
	// SendKeys replaces the content of an input, optionally pressing Enter.
	SendKeys(ctx context.Context, loc Locator, text string, submit bool) error
	SetValue(ctx context.Context, loc Locator, value string) error
	Read(ctx context.Context, loc Locator) (string, error)
	HTML(ctx context.Context) (string, error)
	Location(ctx context.Context) (string, error)
	Close() error
}

// Factory opens sessions. Each call launches a fresh browser profile.
type Factory interface {
	NewSession(ctx context.Context) (Session, error)
}
