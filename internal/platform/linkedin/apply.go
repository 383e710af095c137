package linkedin

import (
	"context"
	"fmt"
	"strings"

	"autojobfinder/internal/browser"
	"autojobfinder/pkg/models"
)

// applyState is a step of the Easy Apply dialog
type applyState int

const (
	stateFormStep applyState = iota
	stateAwaitingNext
	stateAwaitingSubmit
	stateSubmitted
	stateStuck
)

func (s applyState) String() string {
	switch s {
	case stateFormStep:
		return "form_step"
	case stateAwaitingNext:
		return "awaiting_next"
	case stateAwaitingSubmit:
		return "awaiting_submit"
	case stateSubmitted:
		return "submitted"
	default:
		return "stuck"
	}
}

// applyTo opens the listing and runs Easy Apply when the posting offers it.
// Postings that redirect to an external site end in stateStuck untouched.
func (l *LinkedIn) applyTo(ctx context.Context, listing *models.JobListing) (applyState, error) {
	l.logger.Info("Opening application", map[string]interface{}{
		"title":   listing.Title,
		"company": listing.Company,
	})

	if err := l.actions.Driver.Navigate(ctx, listing.URL); err != nil {
		return stateStuck, err
	}
	if err := l.actions.Pause(ctx); err != nil {
		return stateStuck, err
	}

	button, _, err := l.actions.WaitForAny(ctx, easyApplyButtons, l.stepTimeout)
	if err != nil {
		l.logger.Info("No Easy Apply button found", map[string]interface{}{"url": listing.URL})
		return stateStuck, nil
	}
	if text, _ := button.Text(); !strings.Contains(text, "Easy Apply") {
		l.logger.Info("Posting applies on an external site", map[string]interface{}{"url": listing.URL})
		return stateStuck, nil
	}

	if err := l.actions.SafeClick(ctx, button); err != nil {
		return stateStuck, err
	}
	if err := l.actions.Pause(ctx); err != nil {
		return stateStuck, err
	}

	state := l.runEasyApply(ctx)
	if state == stateStuck && ctx.Err() == nil {
		l.discardApplication(ctx)
	}
	return state, nil
}

// runEasyApply walks the dialog one step at a time. It ends in stateSubmitted
// once the submit control is clicked, or stateStuck when no control shows up
// within the step timeout or the step budget is exhausted.
func (l *LinkedIn) runEasyApply(ctx context.Context) applyState {
	state := stateFormStep
	steps := 0
	var control browser.Element

	for {
		switch state {
		case stateFormStep:
			steps++
			if steps > l.settings.MaxApplySteps {
				l.logger.Warn("Easy Apply exceeded step limit", map[string]interface{}{"steps": l.settings.MaxApplySteps})
				state = stateStuck
				continue
			}

			l.answerQuestions(ctx)

			el, loc, err := l.actions.WaitForAny(ctx, []browser.Locator{submitAppButton, nextButton, reviewButton}, l.stepTimeout)
			if err != nil {
				l.logger.Warn("Could not find next or submit button", map[string]interface{}{"step": steps})
				state = stateStuck
				continue
			}
			control = el
			if loc == submitAppButton {
				state = stateAwaitingSubmit
			} else {
				state = stateAwaitingNext
			}

		case stateAwaitingNext:
			if err := l.actions.SafeClick(ctx, control); err != nil {
				state = stateStuck
				continue
			}
			if err := l.actions.Pause(ctx); err != nil {
				state = stateStuck
				continue
			}
			state = stateFormStep

		case stateAwaitingSubmit:
			if err := l.actions.SafeClick(ctx, control); err != nil {
				state = stateStuck
				continue
			}
			state = stateSubmitted

		case stateSubmitted:
			// the confirmation modal is closed on a best-effort basis
			if dismiss, err := l.actions.WaitForElement(ctx, dismissButton, l.stepTimeout); err == nil {
				if err := l.actions.SafeClick(ctx, dismiss); err != nil {
					l.logger.Debug("Could not close confirmation", map[string]interface{}{"error": err.Error()})
				}
			}
			return state

		default:
			return stateStuck
		}
	}
}

// answerQuestions fills the visible form: empty text fields get the default
// answer, radio groups without a choice get their first option, unchecked
// checkboxes are checked
func (l *LinkedIn) answerQuestions(ctx context.Context) {
	if fields, err := l.actions.Driver.FindElements(ctx, textQuestions); err == nil {
		for _, field := range fields {
			if value, _, _ := field.Attribute("value"); strings.TrimSpace(value) != "" {
				continue
			}
			if err := field.SendKeys(l.settings.DefaultAnswer); err != nil {
				l.logger.Warn("Error handling application question", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	if groups, err := l.actions.Driver.FindElements(ctx, radioGroups); err == nil {
		for _, group := range groups {
			if err := l.chooseFirstOption(ctx, group); err != nil {
				l.logger.Warn("Error handling application question", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	if boxes, err := l.actions.Driver.FindElements(ctx, checkboxes); err == nil {
		for _, box := range boxes {
			if selected, err := box.IsSelected(); err != nil || selected {
				continue
			}
			if err := l.actions.SafeClick(ctx, box); err != nil {
				l.logger.Warn("Error handling application question", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

func (l *LinkedIn) chooseFirstOption(ctx context.Context, group browser.Element) error {
	options, err := group.FindElements(radioOptions)
	if err != nil || len(options) == 0 {
		return err
	}
	for _, option := range options {
		if selected, err := option.IsSelected(); err == nil && selected {
			return nil
		}
	}

	if err := l.actions.SafeClick(ctx, options[0]); err == nil {
		return nil
	}
	// LinkedIn hides the native input behind its label
	labels, err := group.FindElements(radioLabels)
	if err != nil || len(labels) == 0 {
		return fmt.Errorf("radio option could not be selected")
	}
	return l.actions.SafeClick(ctx, labels[0])
}

// discardApplication closes an abandoned dialog so the next listing starts clean
func (l *LinkedIn) discardApplication(ctx context.Context) {
	dismiss, err := l.actions.Driver.FindElement(ctx, dismissButton)
	if err != nil {
		return
	}
	if err := l.actions.SafeClick(ctx, dismiss); err != nil {
		l.logger.Debug("Could not dismiss application", map[string]interface{}{"error": err.Error()})
		return
	}
	if discard, err := l.actions.WaitForElement(ctx, discardButton, l.stepTimeout); err == nil {
		if err := l.actions.SafeClick(ctx, discard); err != nil {
			l.logger.Debug("Could not discard application", map[string]interface{}{"error": err.Error()})
		}
	}
}
