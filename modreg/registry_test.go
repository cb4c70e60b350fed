package modreg

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test fixtures
// ============================================================================

type recordingHooks struct {
	loads    int
	enables  int
	disables int
	failLoad bool
}

func (h *recordingHooks) OnLoad() error {
	h.loads++
	if h.failLoad {
		return errors.New("load refused")
	}
	return nil
}

func (h *recordingHooks) OnEnable()  { h.enables++ }
func (h *recordingHooks) OnDisable() { h.disables++ }

// partialHooks declares only one of the lifecycle methods.
type partialHooks struct {
	enables int
}

func (h *partialHooks) OnEnable() { h.enables++ }

// ============================================================================
// Registration
// ============================================================================

func TestRegister(t *testing.T) {
	r := New()

	h, err := r.Register(Manifest{Name: "better-maps", Version: "1.2.0"})
	require.NoError(t, err)
	assert.Equal(t, "better-maps", h.Name)
	assert.NotEqual(t, [16]byte{}, [16]byte(h.ID))
	assert.NotZero(t, h.Token)

	state, err := r.State("better-maps")
	require.NoError(t, err)
	assert.Equal(t, StateRegistered, state)
}

func TestRegisterDuplicate(t *testing.T) {
	r := New()

	_, err := r.Register(Manifest{Name: "better-maps"})
	require.NoError(t, err)

	_, err = r.Register(Manifest{Name: "better-maps"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestRegisterRequiresName(t *testing.T) {
	r := New()
	_, err := r.Register(Manifest{})
	assert.Error(t, err)
}

func TestLookupAndAll(t *testing.T) {
	r := New()

	first, err := r.Register(Manifest{Name: "first"})
	require.NoError(t, err)
	_, err = r.Register(Manifest{Name: "second"})
	require.NoError(t, err)

	got, err := r.Lookup("first")
	require.NoError(t, err)
	assert.Equal(t, first, got)

	_, err = r.Lookup("missing")
	assert.ErrorIs(t, err, ErrUnknownMod)

	assert.Len(t, r.All(), 2)
}

func TestUnregister(t *testing.T) {
	r := New()

	_, err := r.Register(Manifest{Name: "mod"})
	require.NoError(t, err)
	require.NoError(t, r.Unregister("mod"))

	_, err = r.Lookup("mod")
	assert.ErrorIs(t, err, ErrUnknownMod)

	assert.ErrorIs(t, r.Unregister("mod"), ErrUnknownMod)
}

func TestUnregisterEnabledRejected(t *testing.T) {
	r := New()

	_, err := r.Register(Manifest{Name: "mod"})
	require.NoError(t, err)
	require.NoError(t, r.Load("mod"))
	require.NoError(t, r.Enable("mod"))

	assert.ErrorIs(t, r.Unregister("mod"), ErrBadTransition)

	require.NoError(t, r.Disable("mod"))
	assert.NoError(t, r.Unregister("mod"))
}

// ============================================================================
// Lifecycle
// ============================================================================

func TestLifecycle(t *testing.T) {
	r := New()
	hooks := &recordingHooks{}

	_, err := r.Register(Manifest{Name: "mod", Hooks: hooks})
	require.NoError(t, err)

	require.NoError(t, r.Load("mod"))
	require.NoError(t, r.Enable("mod"))
	require.NoError(t, r.Disable("mod"))
	require.NoError(t, r.Enable("mod"))

	assert.Equal(t, 1, hooks.loads)
	assert.Equal(t, 2, hooks.enables)
	assert.Equal(t, 1, hooks.disables)

	state, err := r.State("mod")
	require.NoError(t, err)
	assert.Equal(t, StateEnabled, state)
}

func TestInvalidTransitions(t *testing.T) {
	r := New()

	_, err := r.Register(Manifest{Name: "mod"})
	require.NoError(t, err)

	// Cannot enable or disable before loading.
	assert.ErrorIs(t, r.Enable("mod"), ErrBadTransition)
	assert.ErrorIs(t, r.Disable("mod"), ErrBadTransition)

	require.NoError(t, r.Load("mod"))
	// Cannot load twice or disable without enabling.
	assert.ErrorIs(t, r.Load("mod"), ErrBadTransition)
	assert.ErrorIs(t, r.Disable("mod"), ErrBadTransition)

	// Unknown mods never transition.
	assert.ErrorIs(t, r.Load("missing"), ErrUnknownMod)
}

func TestHookError(t *testing.T) {
	r := New()
	hooks := &recordingHooks{failLoad: true}

	_, err := r.Register(Manifest{Name: "mod", Hooks: hooks})
	require.NoError(t, err)

	err = r.Load("mod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load refused")
}

func TestMissingHooksAreOptional(t *testing.T) {
	r := New()
	hooks := &partialHooks{}

	_, err := r.Register(Manifest{Name: "mod", Hooks: hooks})
	require.NoError(t, err)

	// OnLoad and OnDisable are not declared; transitions still succeed.
	require.NoError(t, r.Load("mod"))
	require.NoError(t, r.Enable("mod"))
	require.NoError(t, r.Disable("mod"))

	assert.Equal(t, 1, hooks.enables)
}

func TestNilHooks(t *testing.T) {
	r := New()

	_, err := r.Register(Manifest{Name: "mod"})
	require.NoError(t, err)
	assert.NoError(t, r.Load("mod"))
}

// ============================================================================
// Concurrency
// ============================================================================

func TestConcurrentRegistration(t *testing.T) {
	r := New()

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := r.Register(Manifest{Name: fmt.Sprintf("mod-%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.All(), n)

	// Handles are distinct per registration.
	seen := make(map[string]bool)
	for _, h := range r.All() {
		seen[h.ID.String()] = true
	}
	assert.Len(t, seen, n)
}
