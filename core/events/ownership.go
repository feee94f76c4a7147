package events

const (
	// TypeOwnershipTransferStarted is emitted when a pending owner is nominated.
	TypeOwnershipTransferStarted = "ownership.transfer_started"
	// TypeOwnershipTransferred is emitted when the pending owner accepts.
	TypeOwnershipTransferred = "ownership.transferred"
)

// OwnershipTransferStarted records the nomination of a new owner.
type OwnershipTransferStarted struct {
	Owner        string
	PendingOwner string
}

func (OwnershipTransferStarted) EventType() string { return TypeOwnershipTransferStarted }

func (e OwnershipTransferStarted) Attributes() map[string]string {
	return map[string]string{
		"owner":        e.Owner,
		"pendingOwner": e.PendingOwner,
	}
}

// OwnershipTransferred records a completed two-phase handover.
type OwnershipTransferred struct {
	PreviousOwner string
	Owner         string
}

func (OwnershipTransferred) EventType() string { return TypeOwnershipTransferred }

func (e OwnershipTransferred) Attributes() map[string]string {
	return map[string]string{
		"previousOwner": e.PreviousOwner,
		"owner":         e.Owner,
	}
}
