// Package ticket is the narrow boundary to the external issue tracker. The
// engine only ever needs to label a ticket with the revealed estimate; the
// real integration lives outside this codebase and is injected at startup.
package ticket

import "context"

type Labeler interface {
	// LabelTicket attaches an estimate label to the external ticket the
	// story points at.
	LabelTicket(ctx context.Context, storyID, label string) error
}

// Noop is the default Labeler for deployments without a tracker integration.
type Noop struct{}

func (Noop) LabelTicket(ctx context.Context, storyID, label string) error {
	return nil
}
