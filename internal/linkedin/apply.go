package linkedin

import (
	"context"
	"fmt"

	"github.com/hazyhaar/easyapply/internal/browser"
	"github.com/hazyhaar/easyapply/internal/jobs"
)

// WizardState is the state of the Easy Apply wizard.
type WizardState int

const (
	WizardForm WizardState = iota
	WizardSubmitted
	WizardAbandoned
)

func (s WizardState) String() string {
	switch s {
	case WizardForm:
		return "form"
	case WizardSubmitted:
		return "submitted"
	case WizardAbandoned:
		return "abandoned"
	}
	return fmt.Sprintf("WizardState(%d)", int(s))
}

// advanceSelectors move the wizard forward, tried in order.
var advanceSelectors = []string{SelNext, SelContinue, SelReview}

// Apply opens the posting and walks the Easy Apply wizard, uploading
// resumePath when the form asks for a file. It returns nil only when the
// application was submitted.
func (s *Site) Apply(ctx context.Context, page browser.Page, p jobs.Posting, resumePath string) error {
	log := s.log.With("job_id", p.JobID, "link", p.Link)

	if err := page.Navigate(ctx, p.Link); err != nil {
		return fmt.Errorf("linkedin: apply: %w", err)
	}

	applied, err := page.HasXPath(ctx, XPathAlreadyApplied)
	if err != nil {
		return fmt.Errorf("linkedin: apply: %w", err)
	}
	if applied {
		return ErrAlreadyApplied
	}

	ok, err := page.HasXPath(ctx, XPathEasyApply)
	if err != nil {
		return fmt.Errorf("linkedin: apply: %w", err)
	}
	if !ok {
		return ErrNoEasyApply
	}
	if err := page.ClickXPath(ctx, XPathEasyApply); err != nil {
		return fmt.Errorf("linkedin: click easy apply: %w", err)
	}
	if err := s.pause(ctx); err != nil {
		return err
	}

	if resumePath != "" {
		hasInput, err := page.Has(ctx, SelFileInput)
		if err != nil {
			return fmt.Errorf("linkedin: apply: %w", err)
		}
		if hasInput {
			if err := page.Upload(ctx, SelFileInput, resumePath); err != nil {
				return fmt.Errorf("linkedin: upload resume: %w", err)
			}
			log.DebugContext(ctx, "linkedin: resume uploaded", "path", resumePath)
		}
	}

	state, steps, err := s.runWizard(ctx, page)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "linkedin: wizard finished", "state", state.String(), "steps", steps)
	if state != WizardSubmitted {
		return ErrAbandoned
	}
	return nil
}

// runWizard clicks Next until Submit appears, at most MaxSteps times.
func (s *Site) runWizard(ctx context.Context, page browser.Page) (WizardState, int, error) {
	state := WizardForm
	steps := 0
	for state == WizardForm {
		submit, err := page.Has(ctx, SelSubmitApp)
		if err != nil {
			return state, steps, fmt.Errorf("linkedin: wizard: %w", err)
		}
		if submit {
			if err := page.Click(ctx, SelSubmitApp); err != nil {
				return state, steps, fmt.Errorf("linkedin: submit application: %w", err)
			}
			state = WizardSubmitted
			break
		}

		if steps >= s.cfg.MaxSteps {
			state = WizardAbandoned
			break
		}

		next, err := s.findAdvance(ctx, page)
		if err != nil {
			return state, steps, err
		}
		if next == "" {
			state = WizardAbandoned
			break
		}
		if err := page.Click(ctx, next); err != nil {
			return state, steps, fmt.Errorf("linkedin: wizard next: %w", err)
		}
		steps++
		if err := s.pause(ctx); err != nil {
			return state, steps, err
		}
	}
	return state, steps, nil
}

func (s *Site) findAdvance(ctx context.Context, page browser.Page) (string, error) {
	for _, sel := range advanceSelectors {
		ok, err := has(ctx, page, sel)
		if err != nil {
			return "", fmt.Errorf("linkedin: wizard: %w", err)
		}
		if ok {
			return sel, nil
		}
	}
	return "", nil
}
