package domain

import "context"

// RecorderPort accepts events from the negotiation and proxy flows.
// Recording is best effort: implementations log failures and never return
// them, so auditing cannot fail the flow that emitted the event.
type RecorderPort interface {
	Record(ctx context.Context, e Event)
}

// ServicePort is the full audit surface: recording plus the ops listing
type ServicePort interface {
	RecorderPort
	List(ctx context.Context, q Query) ([]Event, error)
}
