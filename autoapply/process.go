package autoapply

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazyhaar/easyapply/internal/browser"
	"github.com/hazyhaar/easyapply/internal/jobs"
	"github.com/hazyhaar/easyapply/internal/linkedin"
	"github.com/hazyhaar/easyapply/internal/resume"
)

// processJob handles one posting. Per-job failures are logged and counted;
// the returned error (ledger or context) aborts the run.
func (r *Runner) processJob(ctx context.Context, page browser.Page, p jobs.Posting) error {
	log := r.log.With("job_link", p.Link, "title", p.Title, "company", p.Company)

	if r.seen[p.Link] {
		r.summary.Skipped++
		log.DebugContext(ctx, "autoapply: already seen this run")
		return nil
	}
	r.seen[p.Link] = true

	applied, err := r.deps.Ledger.Contains(ctx, p.Link)
	if err != nil {
		return fmt.Errorf("autoapply: ledger lookup: %w", err)
	}
	if applied {
		r.summary.Skipped++
		log.InfoContext(ctx, "autoapply: already applied")
		return nil
	}

	text := p.Title
	if r.cfg.Resume.UseDescription {
		desc, err := r.deps.Site.Describe(ctx, page, p)
		if err != nil {
			log.WarnContext(ctx, "autoapply: description unavailable, using title", "error", err)
		} else if plain := resume.PlainText(desc); plain != "" {
			p.Description = desc
			text = plain
		}
	}

	resumePath, skills, err := r.deps.Annotator.Prepare(text)
	if err != nil {
		r.summary.Failed++
		log.ErrorContext(ctx, "autoapply: resume annotation failed", "error", err)
		return nil
	}
	log.DebugContext(ctx, "autoapply: resume annotated", "path", resumePath, "skills", skills)

	if r.deps.DryRun {
		log.InfoContext(ctx, "autoapply: dry run, not applying")
		return nil
	}

	record := false
	if r.cfg.Apply.Enabled {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		err := r.deps.Site.Apply(ctx, page, p, resumePath)
		switch {
		case err == nil:
			r.summary.Applied++
			record = true
			log.InfoContext(ctx, "autoapply: applied")
		case errors.Is(err, linkedin.ErrAlreadyApplied):
			r.summary.Skipped++
			record = true
			log.InfoContext(ctx, "autoapply: site reports already applied")
		default:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.summary.Failed++
			record = r.cfg.Apply.RecordFailures
			log.WarnContext(ctx, "autoapply: apply failed", "error", err, "recorded", record)
		}
	} else {
		record = r.cfg.Apply.ShouldAssumeApplied()
		if record {
			log.InfoContext(ctx, "autoapply: apply disabled, assuming applied")
		}
	}
	if !record {
		return nil
	}

	if err := r.deps.Ledger.Append(ctx, jobs.NewRecord(p, r.deps.Clock.Now())); err != nil {
		return fmt.Errorf("autoapply: ledger append: %w", err)
	}
	r.summary.Recorded++
	return nil
}
