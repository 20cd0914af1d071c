package signature

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/tmnn7/endsig/internal/github"
)

// Outcome is what happened to one comment.
type Outcome int

const (
	// NonCharacter: no character marker in the body, left untouched.
	NonCharacter Outcome = iota
	// Skipped: the body already ends in a signature block.
	Skipped
	// Updated: the signature block was appended (or would be, in dry run).
	Updated
	// Failed: the update call failed; the comment is unchanged.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case NonCharacter:
		return "non-character"
	case Skipped:
		return "skipped"
	case Updated:
		return "updated"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Appender signs character comments of one repository.
type Appender struct {
	store    github.CommentStore
	repo     string
	registry *Registry
	out      io.Writer
	dryRun   bool
}

// NewAppender creates an appender for repo using the default cast and
// discarding progress output.
func NewAppender(store github.CommentStore, repo string) *Appender {
	return &Appender{
		store:    store,
		repo:     repo,
		registry: Characters,
		out:      io.Discard,
	}
}

// WithOutput sets where progress lines are written.
func (a *Appender) WithOutput(w io.Writer) *Appender {
	if w == nil {
		w = io.Discard
	}
	a.out = w
	return a
}

// WithRegistry replaces the character registry.
func (a *Appender) WithRegistry(r *Registry) *Appender {
	a.registry = r
	return a
}

// WithDryRun makes the appender report updates without performing them.
func (a *Appender) WithDryRun(dryRun bool) *Appender {
	a.dryRun = dryRun
	return a
}

// Registry returns the registry in use.
func (a *Appender) Registry() *Registry {
	return a.registry
}

// Append adds character's signature block to comment unless it already has
// one. Skipping never contacts the store. A failed update is reported with
// the underlying error and is not retried.
func (a *Appender) Append(ctx context.Context, comment github.Comment, character string) (Outcome, error) {
	if HasEndSignature(comment.Body) {
		fmt.Fprintf(a.out, "  Skipping %d - already has end signature\n", comment.ID)
		return Skipped, nil
	}

	tmpl, err := a.registry.Template(character)
	if err != nil {
		return Failed, err
	}
	body := Sign(comment.Body, tmpl)

	if a.dryRun {
		fmt.Fprintf(a.out, "  ~ Would update %d (%s)\n", comment.ID, character)
		return Updated, nil
	}

	if err := a.store.UpdateComment(ctx, a.repo, comment.ID, body); err != nil {
		fmt.Fprintf(a.out, "  ✗ Failed %d: %v\n", comment.ID, err)
		slog.Debug("update failed", "comment", comment.ID, "character", character, "err", err)
		return Failed, err
	}

	fmt.Fprintf(a.out, "  ✓ Updated %d (%s)\n", comment.ID, character)
	return Updated, nil
}

// Process classifies one comment and signs it when it belongs to a
// character and is not yet signed. Already signed comments are skipped
// silently. The detected character ("" if none) is returned alongside.
func (a *Appender) Process(ctx context.Context, comment github.Comment) (Outcome, string, error) {
	character := a.registry.Detect(comment.Body)
	if character == "" {
		return NonCharacter, "", nil
	}
	if HasEndSignature(comment.Body) {
		return Skipped, character, nil
	}
	outcome, err := a.Append(ctx, comment, character)
	return outcome, character, err
}
