package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgellow/nexusquery/internal/idp"
	"github.com/dgellow/nexusquery/internal/testutil"
)

func TestState_Initialize(t *testing.T) {
	s := New()
	assert.False(t, s.Ready())
	assert.Nil(t, s.Provider())

	_, _, ready := s.Backend()
	assert.False(t, ready)

	provider := &testutil.MockProvider{}
	require.NoError(t, s.Initialize("http://localhost:8000", provider))
	assert.True(t, s.Ready())
	assert.Equal(t, "http://localhost:8000", s.APIURL())
	assert.Same(t, provider, s.Provider())

	err := s.Initialize("http://other", provider)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.Equal(t, "http://localhost:8000", s.APIURL())
}

func TestState_InitializeRequiresProvider(t *testing.T) {
	s := New()
	require.Error(t, s.Initialize("http://localhost:8000", nil))
	assert.False(t, s.Ready())
}

func TestState_Session(t *testing.T) {
	s := New()
	assert.Nil(t, s.Session())

	session := idp.NewSession("uid-1", "ada@example.com", "password", nil)
	s.SetSession(session)
	assert.Same(t, session, s.Session())

	_, current, _ := s.Backend()
	assert.Same(t, session, current)

	s.SetSession(nil)
	assert.Nil(t, s.Session())
}

func TestState_ConcurrentAccess(t *testing.T) {
	s := New()
	require.NoError(t, s.Initialize("http://localhost:8000", &testutil.MockProvider{}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetSession(idp.NewSession("uid", "a@example.com", "password", nil))
		}()
		go func() {
			defer wg.Done()
			_, _, ready := s.Backend()
			assert.True(t, ready)
		}()
	}
	wg.Wait()
	assert.NotNil(t, s.Session())
}
