package ownable

import (
	"errors"
	"strings"

	"synthpool/core/events"
)

var (
	// ErrUnauthorized is returned when the caller is not allowed to act.
	ErrUnauthorized = errors.New("ownable: unauthorized")
	// ErrNotInitialised is returned when ownership state was never seeded.
	ErrNotInitialised = errors.New("ownable: state not initialised")

	errNilState   = errors.New("ownable: storage not configured")
	errEmptyOwner = errors.New("ownable: owner address required")
)

var ownershipKey = []byte("pool/ownable")

// Storage abstracts the subset of state functionality the registry needs.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// State holds the current owner and, during a two-phase handover, the
// nominated successor.
type State struct {
	Owner        string
	PendingOwner string
}

type storedState struct {
	Owner        string
	PendingOwner string
}

// Registry is the single access-control capability injected into every
// admin-gated call path.
type Registry struct {
	state   Storage
	emitter events.Emitter
}

// NewRegistry constructs an ownership registry over the provided storage.
func NewRegistry(state Storage) *Registry {
	return &Registry{state: state}
}

// SetEmitter wires an optional event sink. A nil emitter is tolerated.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if r == nil {
		return
	}
	r.emitter = emitter
}

// Initialize seeds the owner. Called once during pool construction.
func (r *Registry) Initialize(owner string) error {
	if r == nil || r.state == nil {
		return errNilState
	}
	trimmed := strings.TrimSpace(owner)
	if trimmed == "" {
		return errEmptyOwner
	}
	return r.state.KVPut(ownershipKey, storedState{Owner: trimmed})
}

// Owner returns the current owner address.
func (r *Registry) Owner() (string, error) {
	state, err := r.load()
	if err != nil {
		return "", err
	}
	return state.Owner, nil
}

// IsOwner reports whether the caller is the current owner.
func (r *Registry) IsOwner(caller string) (bool, error) {
	state, err := r.load()
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(caller) == state.Owner, nil
}

// AssertOwner fails with ErrUnauthorized unless the caller owns the pool.
func (r *Registry) AssertOwner(caller string) error {
	ok, err := r.IsOwner(caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// TransferOwnership nominates a successor. The handover only completes once
// the successor accepts, so a typoed address cannot brick the pool.
func (r *Registry) TransferOwnership(caller, to string) error {
	state, err := r.load()
	if err != nil {
		return err
	}
	if strings.TrimSpace(caller) != state.Owner {
		return ErrUnauthorized
	}
	successor := strings.TrimSpace(to)
	if successor == "" {
		return errEmptyOwner
	}
	state.PendingOwner = successor
	if err := r.save(state); err != nil {
		return err
	}
	r.emit(events.OwnershipTransferStarted{Owner: state.Owner, PendingOwner: successor})
	return nil
}

// AcceptOwnership promotes the pending owner. Only the nominee may call it.
func (r *Registry) AcceptOwnership(caller string) error {
	state, err := r.load()
	if err != nil {
		return err
	}
	trimmed := strings.TrimSpace(caller)
	if state.PendingOwner == "" || trimmed != state.PendingOwner {
		return ErrUnauthorized
	}
	previous := state.Owner
	state.Owner = trimmed
	state.PendingOwner = ""
	if err := r.save(state); err != nil {
		return err
	}
	r.emit(events.OwnershipTransferred{PreviousOwner: previous, Owner: trimmed})
	return nil
}

func (r *Registry) load() (State, error) {
	if r == nil || r.state == nil {
		return State{}, errNilState
	}
	var stored storedState
	ok, err := r.state.KVGet(ownershipKey, &stored)
	if err != nil {
		return State{}, err
	}
	if !ok {
		return State{}, ErrNotInitialised
	}
	return State{Owner: stored.Owner, PendingOwner: stored.PendingOwner}, nil
}

func (r *Registry) save(state State) error {
	return r.state.KVPut(ownershipKey, storedState{
		Owner:        state.Owner,
		PendingOwner: state.PendingOwner,
	})
}

func (r *Registry) emit(event events.Event) {
	if r == nil || r.emitter == nil {
		return
	}
	r.emitter.Emit(event)
}
