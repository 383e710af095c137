// Package browser is the boundary to the browser-automation collaborator.
// Platform code talks to Driver and Element only; RodDriver backs them with
// a real Chrome session and browsertest.Driver with an in-memory page.
package browser

import (
	"context"
	"fmt"
)

// By selects how a Locator's value is interpreted
type By string

const (
	ByCSS   By = "css"
	ByXPath By = "xpath"
	ByID    By = "id"
)

// Locator finds an element on the page
type Locator struct {
	By    By
	Value string
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.By, l.Value)
}

// CSS builds a CSS selector locator
func CSS(selector string) Locator { return Locator{By: ByCSS, Value: selector} }

// XPath builds an XPath locator
func XPath(expr string) Locator { return Locator{By: ByXPath, Value: expr} }

// ID builds an element-id locator
func ID(id string) Locator { return Locator{By: ByID, Value: id} }

// Driver is one browser session. Find calls never wait: an absent element
// yields utils.ErrElementNotFound immediately and callers poll when needed.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	FindElement(ctx context.Context, loc Locator) (Element, error)
	FindElements(ctx context.Context, loc Locator) ([]Element, error)
	// ExecuteScript evaluates a JS function expression such as
	// "() => document.body.scrollHeight" and returns its JSON value.
	ExecuteScript(ctx context.Context, script string, args ...interface{}) (interface{}, error)
	CurrentURL(ctx context.Context) (string, error)
	Quit() error
}

// Element is a handle to a located DOM node
type Element interface {
	Click() error
	SendKeys(text string) error
	// PressEnter sends the Enter key to the element
	PressEnter() error
	Clear() error
	Text() (string, error)
	// Attribute returns the attribute value and whether it is present
	Attribute(name string) (string, bool, error)
	// IsSelected reports the checked state of radios and checkboxes
	IsSelected() (bool, error)
	ScrollIntoView() error
	FindElement(loc Locator) (Element, error)
	FindElements(loc Locator) ([]Element, error)
}
