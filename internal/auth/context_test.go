package auth

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redesperanza/web/internal/models"
)

type fakeHandle struct {
	mu      sync.Mutex
	user    *models.User
	token   string
	loads   int
	cleared int
}

func (f *fakeHandle) Load(context.Context) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.user == nil {
		return nil
	}
	u := *f.user
	return &u
}

func (f *fakeHandle) Token(context.Context) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeHandle) Clear(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	f.user = nil
	f.token = ""
}

func TestNewStartsLoading(t *testing.T) {
	a := New(&fakeHandle{}, zerolog.Nop())

	assert.True(t, a.Loading())
	assert.False(t, a.IsAuthenticated())
	assert.False(t, a.IsAdmin())
	assert.Nil(t, a.CurrentUser())
}

func TestRestoreWithStoredUser(t *testing.T) {
	handle := &fakeHandle{user: &models.User{ID: "u-1", Name: "Ana"}, token: "tok"}
	a := New(handle, zerolog.Nop())

	a.Restore(context.Background())

	assert.False(t, a.Loading())
	require.NotNil(t, a.CurrentUser())
	assert.Equal(t, "u-1", a.CurrentUser().ID)
	assert.Equal(t, "tok", a.Token(context.Background()))
}

func TestRestoreWithoutStoredUser(t *testing.T) {
	a := New(&fakeHandle{}, zerolog.Nop())

	a.Restore(context.Background())

	assert.False(t, a.Loading())
	assert.False(t, a.IsAuthenticated())
}

func TestRestoreRunsOnce(t *testing.T) {
	handle := &fakeHandle{user: &models.User{ID: "u-1"}}
	a := New(handle, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Restore(context.Background())
		}()
	}
	wg.Wait()
	a.Restore(context.Background())

	assert.Equal(t, 1, handle.loads)
}

func TestLoginThenLogout(t *testing.T) {
	handle := &fakeHandle{}
	a := New(handle, zerolog.Nop())
	a.Restore(context.Background())

	a.Login(models.User{ID: "u-2", IsAdmin: true})
	assert.True(t, a.IsAuthenticated())
	assert.True(t, a.IsAdmin())

	a.Logout(context.Background())
	assert.False(t, a.IsAuthenticated())
	assert.False(t, a.IsAdmin())
	assert.Equal(t, 1, handle.cleared)
}

func TestLogoutWhenAnonymousClearsStore(t *testing.T) {
	handle := &fakeHandle{token: "orphan"}
	a := New(handle, zerolog.Nop())
	a.Restore(context.Background())

	a.Logout(context.Background())

	assert.Equal(t, 1, handle.cleared)
	assert.Empty(t, a.Token(context.Background()))
}

func TestUpdateUserIsLocalOnly(t *testing.T) {
	handle := &fakeHandle{user: &models.User{ID: "u-1", Name: "Ana", Phone: "300"}}
	a := New(handle, zerolog.Nop())
	a.Restore(context.Background())

	name := "Ana María"
	a.UpdateUser(models.UserPatch{Name: &name})

	require.NotNil(t, a.CurrentUser())
	assert.Equal(t, "Ana María", a.CurrentUser().Name)
	assert.Equal(t, "300", a.CurrentUser().Phone)
	assert.Equal(t, "Ana", handle.user.Name)
}

func TestUpdateUserWhenAnonymousIsNoop(t *testing.T) {
	a := New(&fakeHandle{}, zerolog.Nop())
	a.Restore(context.Background())

	admin := true
	a.UpdateUser(models.UserPatch{IsAdmin: &admin})

	assert.False(t, a.IsAuthenticated())
	assert.False(t, a.IsAdmin())
}

func TestCurrentUserReturnsCopy(t *testing.T) {
	a := New(&fakeHandle{}, zerolog.Nop())
	a.Login(models.User{ID: "u-1"})

	u := a.CurrentUser()
	u.IsAdmin = true

	assert.False(t, a.IsAdmin())
}

func TestFromGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)

	fallback := FromGin(c)
	assert.False(t, fallback.Loading())
	assert.False(t, fallback.IsAuthenticated())

	a := New(&fakeHandle{}, zerolog.Nop())
	Attach(c, a)
	assert.Same(t, a, FromGin(c))
}
