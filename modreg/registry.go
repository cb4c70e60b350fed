// Package modreg tracks the mods loaded into a host session. Each mod
// registers once with a manifest, receives a stable handle, and moves
// through a validated lifecycle; state hooks on the manifest's hook receiver
// are invoked reflectively so mods declare them as plain methods.
package modreg

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/modforge/modkit/accessor"
)

// State is a mod's lifecycle position.
type State int

const (
	StateRegistered State = iota
	StateLoaded
	StateEnabled
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateLoaded:
		return "loaded"
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	}
	return "unknown"
}

// hook method names looked up on the manifest's hook receiver.
var hookNames = map[State]string{
	StateLoaded:   "OnLoad",
	StateEnabled:  "OnEnable",
	StateDisabled: "OnDisable",
}

// ErrDuplicate reports a second registration under an already-taken name.
var ErrDuplicate = errors.New("modreg: mod already registered")

// ErrUnknownMod reports a lookup for a name that was never registered.
var ErrUnknownMod = errors.New("modreg: unknown mod")

// ErrBadTransition reports a lifecycle move the state machine forbids.
var ErrBadTransition = errors.New("modreg: invalid state transition")

// Manifest describes a mod at registration time.
type Manifest struct {
	Name    string
	Version string
	Author  string
	// Hooks optionally receives lifecycle callbacks: any of OnLoad,
	// OnEnable, OnDisable declared as methods on it are invoked on the
	// matching transition.
	Hooks any
}

// Handle identifies one registered mod for the rest of the session.
type Handle struct {
	ID    uuid.UUID
	Token ulid.ULID
	Name  string
}

type mod struct {
	handle   Handle
	manifest Manifest
	state    State
}

// Registry is the session-wide mod table. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]*mod
	entropy *ulid.MonotonicEntropy
	logger  *log.Logger
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byName:  make(map[string]*mod),
		entropy: ulid.Monotonic(rand.Reader, 0),
		logger:  log.NewWithOptions(os.Stderr, log.Options{Prefix: "modreg"}),
	}
}

// SetLogger replaces the registry logger.
func (r *Registry) SetLogger(l *log.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

// Register adds a mod under its manifest name and returns its handle.
// Names are unique per session.
func (r *Registry) Register(m Manifest) (Handle, error) {
	if m.Name == "" {
		return Handle{}, fmt.Errorf("modreg: manifest needs a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[m.Name]; exists {
		return Handle{}, fmt.Errorf("%w: %s", ErrDuplicate, m.Name)
	}

	token, err := ulid.New(ulid.Timestamp(time.Now()), r.entropy)
	if err != nil {
		return Handle{}, fmt.Errorf("modreg: generating token: %w", err)
	}
	handle := Handle{ID: uuid.New(), Token: token, Name: m.Name}
	r.byName[m.Name] = &mod{handle: handle, manifest: m, state: StateRegistered}

	r.logger.Info("mod registered", "name", m.Name, "version", m.Version, "id", handle.ID)
	return handle, nil
}

// Unregister removes a mod. Enabled mods must be disabled first.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMod, name)
	}
	if m.state == StateEnabled {
		return fmt.Errorf("%w: %s is enabled", ErrBadTransition, name)
	}
	delete(r.byName, name)
	r.logger.Info("mod unregistered", "name", name)
	return nil
}

// State returns the mod's current lifecycle state.
func (r *Registry) State(name string) (State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMod, name)
	}
	return m.state, nil
}

// Lookup returns the handle for a registered mod.
func (r *Registry) Lookup(name string) (Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byName[name]
	if !ok {
		return Handle{}, fmt.Errorf("%w: %s", ErrUnknownMod, name)
	}
	return m.handle, nil
}

// All returns the handles of every registered mod.
func (r *Registry) All() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handles := make([]Handle, 0, len(r.byName))
	for _, m := range r.byName {
		handles = append(handles, m.handle)
	}
	return handles
}

// Load moves a registered mod to loaded and fires its OnLoad hook.
func (r *Registry) Load(name string) error {
	return r.transition(name, StateLoaded, StateRegistered)
}

// Enable moves a loaded or disabled mod to enabled and fires OnEnable.
func (r *Registry) Enable(name string) error {
	return r.transition(name, StateEnabled, StateLoaded, StateDisabled)
}

// Disable moves an enabled mod to disabled and fires OnDisable.
func (r *Registry) Disable(name string) error {
	return r.transition(name, StateDisabled, StateEnabled)
}

func (r *Registry) transition(name string, to State, from ...State) error {
	r.mu.Lock()
	m, ok := r.byName[name]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownMod, name)
	}
	allowed := false
	for _, s := range from {
		if m.state == s {
			allowed = true
			break
		}
	}
	if !allowed {
		current := m.state
		r.mu.Unlock()
		return fmt.Errorf("%w: %s is %s, cannot move to %s", ErrBadTransition, name, current, to)
	}
	m.state = to
	hooks := m.manifest.Hooks
	logger := r.logger
	// No lock is held while the hook runs: hooks may re-enter the registry.
	r.mu.Unlock()

	logger.Info("mod state changed", "name", name, "state", to.String())
	return fireHook(hooks, hookNames[to])
}

// fireHook invokes the named lifecycle method on the hook receiver through
// the accessor engine. Missing hooks are fine; a declared hook that fails
// propagates its error.
func fireHook(hooks any, method string) error {
	if hooks == nil || method == "" {
		return nil
	}
	m, err := accessor.GetMethod(reflect.TypeOf(hooks), method)
	if err != nil {
		if errors.Is(err, accessor.ErrNotFound) {
			return nil
		}
		return err
	}
	_, err = m.Invoke0(hooks)
	return err
}
