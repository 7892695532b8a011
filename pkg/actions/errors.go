package actions

import "errors"

var (
	// ErrEntityCreationFailed wraps a host rejection of a create call
	// (duplicate name, invalid category, and so on). Reported per action,
	// never fatal to the step.
	ErrEntityCreationFailed = errors.New("entity creation failed")

	// ErrGroupNotResolved indicates an add_to_group target interpolated to
	// nothing usable.
	ErrGroupNotResolved = errors.New("group reference did not resolve")

	// ErrNoRecipients indicates a send_message action whose targets all
	// interpolated to empty strings.
	ErrNoRecipients = errors.New("no message recipients resolved")
)
