// Package feedback reports what the user did with a suggestion.
package feedback

import (
	"context"

	"github.com/kitagry/copilotls/langserver/internal/session"
)

// Recorder sends fire-and-forget notifications. Nothing is deduplicated or retried.
type Recorder struct {
	session *session.Session
}

func NewRecorder(sess *session.Session) *Recorder {
	return &Recorder{session: sess}
}

// RecordAcceptance tells the service the user accepted text.
func (r *Recorder) RecordAcceptance(ctx context.Context, text string) {
	if err := r.session.Remote.RecordCompletion(ctx, text); err != nil {
		r.session.Logger.Debugf("failed to record completion: %v", err)
	}
}

// RecordRating tells the service how the user rated text.
func (r *Recorder) RecordRating(ctx context.Context, text string, rating int) {
	if err := r.session.Remote.ProvideFeedback(ctx, text, rating); err != nil {
		r.session.Logger.Debugf("failed to provide feedback: %v", err)
	}
}
