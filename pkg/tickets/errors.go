package tickets

import "errors"

var (
	// ErrCategoryNotFound is returned when a ticket is opened in a category with no ticket configuration.
	ErrCategoryNotFound = errors.New("ticket category does not exist")

	// ErrCategoryFull is returned when the category has reached the Discord child channel limit.
	ErrCategoryFull = errors.New("ticket category has reached the child channel limit")

	// ErrTicketNotFound is returned when a ticket reference does not match any ticket.
	ErrTicketNotFound = errors.New("ticket could not be resolved")

	// ErrChannelNotFound is returned by a Gateway when a channel does not exist.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrCollectorTimeout is returned when no qualifying message arrived before the collector expired.
	ErrCollectorTimeout = errors.New("collector timed out")

	// ErrStopped is returned when a ticket is opened or closed after the manager has been stopped.
	ErrStopped = errors.New("ticket manager has been stopped")

	// errCollectorResolved is returned when a collector is run after it has already resolved.
	errCollectorResolved = errors.New("collector already resolved")
)
