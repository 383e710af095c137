// Package browsertest provides an in-memory browser.Driver whose page is
// scripted by tests: elements are registered per locator and click or
// navigation hooks mutate the page the way a real site would.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"autojobfinder/internal/browser"
	"autojobfinder/pkg/utils"
)

// Driver is a scriptable fake browser session
type Driver struct {
	mu       sync.Mutex
	elements map[browser.Locator][]*Element
	url      string

	// OnNavigate runs after every navigation, before the page is queried
	OnNavigate func(d *Driver, url string)
	// ScriptResult answers ExecuteScript; nil returns nil
	ScriptResult func(script string) interface{}

	Visited []string
	Scripts []string
	Quits   int
}

// NewDriver returns an empty page
func NewDriver() *Driver {
	return &Driver{elements: make(map[browser.Locator][]*Element)}
}

// Set replaces the elements found by loc
func (d *Driver) Set(loc browser.Locator, els ...*Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elements[loc] = els
}

// Add appends elements to those found by loc
func (d *Driver) Add(loc browser.Locator, els ...*Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elements[loc] = append(d.elements[loc], els...)
}

// Remove makes loc match nothing
func (d *Driver) Remove(loc browser.Locator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.elements, loc)
}

// Reset clears every registered element
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elements = make(map[browser.Locator][]*Element)
}

// SetURL changes the current URL without a navigation
func (d *Driver) SetURL(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
}

// Navigations counts visits whose URL contains substr
func (d *Driver) Navigations(substr string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, u := range d.Visited {
		if strings.Contains(u, substr) {
			n++
		}
	}
	return n
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	d.url = url
	d.Visited = append(d.Visited, url)
	hook := d.OnNavigate
	d.mu.Unlock()

	if hook != nil {
		hook(d, url)
	}
	return nil
}

func (d *Driver) FindElement(ctx context.Context, loc browser.Locator) (browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, el := range d.elements[loc] {
		if !el.Hidden {
			return el, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", utils.ErrElementNotFound, loc)
}

func (d *Driver) FindElements(ctx context.Context, loc browser.Locator) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return visible(d.elements[loc]), nil
}

func (d *Driver) ExecuteScript(ctx context.Context, script string, args ...interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.Scripts = append(d.Scripts, script)
	answer := d.ScriptResult
	d.mu.Unlock()

	if answer == nil {
		return nil, nil
	}
	return answer(script), nil
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url, nil
}

func (d *Driver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Quits++
	return nil
}

// Element is a fake DOM node
type Element struct {
	TextValue string
	Attrs     map[string]string
	Children  map[browser.Locator][]*Element
	Hidden    bool

	// Checkable elements toggle Selected on click
	Checkable bool
	Selected  bool

	// ClickErrs are returned by successive clicks before clicks succeed
	ClickErrs []error
	OnClick   func()
	OnEnter   func()

	Typed   string
	Clicks  int
	Entered int
}

// NewElement builds an element with the given text
func NewElement(text string) *Element {
	return &Element{TextValue: text}
}

// WithAttr sets an attribute and returns the element
func (e *Element) WithAttr(name, value string) *Element {
	if e.Attrs == nil {
		e.Attrs = make(map[string]string)
	}
	e.Attrs[name] = value
	return e
}

// WithChild registers a child element under loc and returns the parent
func (e *Element) WithChild(loc browser.Locator, child *Element) *Element {
	if e.Children == nil {
		e.Children = make(map[browser.Locator][]*Element)
	}
	e.Children[loc] = append(e.Children[loc], child)
	return e
}

func (e *Element) Click() error {
	e.Clicks++
	if len(e.ClickErrs) > 0 {
		err := e.ClickErrs[0]
		e.ClickErrs = e.ClickErrs[1:]
		return err
	}
	if e.Checkable {
		e.Selected = !e.Selected
	}
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

func (e *Element) SendKeys(text string) error {
	e.Typed += text
	return nil
}

func (e *Element) PressEnter() error {
	e.Entered++
	if e.OnEnter != nil {
		e.OnEnter()
	}
	return nil
}

func (e *Element) Clear() error {
	e.Typed = ""
	return nil
}

func (e *Element) Text() (string, error) {
	return e.TextValue, nil
}

func (e *Element) Attribute(name string) (string, bool, error) {
	v, ok := e.Attrs[name]
	return v, ok, nil
}

func (e *Element) IsSelected() (bool, error) {
	return e.Selected, nil
}

func (e *Element) ScrollIntoView() error {
	return nil
}

func (e *Element) FindElement(loc browser.Locator) (browser.Element, error) {
	for _, child := range e.Children[loc] {
		if !child.Hidden {
			return child, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", utils.ErrElementNotFound, loc)
}

func (e *Element) FindElements(loc browser.Locator) ([]browser.Element, error) {
	return visible(e.Children[loc]), nil
}

func visible(els []*Element) []browser.Element {
	out := make([]browser.Element, 0, len(els))
	for _, el := range els {
		if !el.Hidden {
			out = append(out, el)
		}
	}
	return out
}
