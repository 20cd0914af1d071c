package signature

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Summary tallies one pass.
type Summary struct {
	Total        int
	Updated      int
	Skipped      int
	NonCharacter int
	Failed       int
}

func (s *Summary) add(o Outcome) {
	switch o {
	case Updated:
		s.Updated++
	case Skipped:
		s.Skipped++
	case NonCharacter:
		s.NonCharacter++
	case Failed:
		s.Failed++
	}
}

// Fprint writes the end-of-run report.
func (s Summary) Fprint(w io.Writer) {
	fmt.Fprintf(w, "\nDone!\n")
	fmt.Fprintf(w, "  Updated: %d\n", s.Updated)
	fmt.Fprintf(w, "  Skipped (already has sig): %d\n", s.Skipped)
	fmt.Fprintf(w, "  Non-character comments: %d\n", s.NonCharacter)
	if s.Failed > 0 {
		fmt.Fprintf(w, "  Failed: %d\n", s.Failed)
	}
}

// Run fetches every comment of the repository and processes them one by one
// in fetch order, then prints the summary. Individual update failures do not
// stop the pass; only a failed fetch or a canceled context returns an error.
func (a *Appender) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	fmt.Fprintln(a.out, "Fetching comments...")
	comments, err := a.store.ListComments(ctx, a.repo)
	if err != nil {
		return summary, fmt.Errorf("failed to fetch comments: %w", err)
	}
	summary.Total = len(comments)
	fmt.Fprintf(a.out, "Found %d comments\n", len(comments))

	for _, comment := range comments {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		outcome, character, err := a.Process(ctx, comment)
		if err != nil {
			slog.Warn("comment not signed", "comment", comment.ID, "character", character, "err", err)
		}
		summary.add(outcome)
	}

	summary.Fprint(a.out)
	return summary, nil
}
