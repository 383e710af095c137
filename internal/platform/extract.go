package platform

import (
	"context"

	"autojobfinder/internal/browser"
	"autojobfinder/pkg/utils"
)

// Placeholders for optional listing fields the page did not provide
const (
	UnknownCompany  = "Unknown Company"
	UnknownLocation = "Unknown Location"
	NoDescription   = "Description not available"
)

// ChildText returns the cleaned text of the first locator matching under
// parent, or fallback when none matches or the text is empty
func ChildText(parent browser.Element, fallback string, locs ...browser.Locator) string {
	for _, loc := range locs {
		el, err := parent.FindElement(loc)
		if err != nil {
			continue
		}
		if text, err := el.Text(); err == nil {
			if text = utils.CleanText(text); text != "" {
				return text
			}
		}
	}
	return fallback
}

// PageText is ChildText over the whole page
func (a *Actions) PageText(ctx context.Context, fallback string, locs ...browser.Locator) string {
	for _, loc := range locs {
		el, err := a.Driver.FindElement(ctx, loc)
		if err != nil {
			continue
		}
		if text, err := el.Text(); err == nil {
			if text = utils.CleanText(text); text != "" {
				return text
			}
		}
	}
	return fallback
}

// ChildAttr returns the first non-empty attribute value found under parent
func ChildAttr(parent browser.Element, name string, locs ...browser.Locator) string {
	for _, loc := range locs {
		el, err := parent.FindElement(loc)
		if err != nil {
			continue
		}
		if v, ok, err := el.Attribute(name); err == nil && ok && v != "" {
			return v
		}
	}
	return ""
}
