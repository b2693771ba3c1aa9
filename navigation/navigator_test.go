package navigation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct{}

func (stubAuth) Login(context.Context, models.Credentials) (*models.Session, error) {
	return &models.Session{User: models.User{ID: 1, Email: "a@x.com"}, Token: "tok"}, nil
}

func signedIn(t *testing.T) (*Navigator, *store.SessionStore) {
	t.Helper()
	sessions := store.NewSessionStore(stubAuth{})
	nav := New(sessions, nil)
	t.Cleanup(nav.Close)
	_, err := sessions.Login(context.Background(), models.Credentials{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	return nav, sessions
}

func TestResolve(t *testing.T) {
	assert.Equal(t, AuthNavigator, Resolve(false))
	assert.Equal(t, TabsNavigator, Resolve(true))
}

func TestNavigator_FollowsSession(t *testing.T) {
	sessions := store.NewSessionStore(stubAuth{})
	nav := New(sessions, nil)
	defer nav.Close()

	assert.Equal(t, State{Navigator: AuthNavigator, Screen: Login, Screens: []Screen{Login, Register}}, nav.State())

	_, err := sessions.Login(context.Background(), models.Credentials{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	state := nav.State()
	assert.Equal(t, TabsNavigator, state.Navigator)
	assert.Equal(t, Home, state.Screen)
	assert.Equal(t, TabProducts, state.Tab)
	assert.True(t, state.TabBarVisible)

	sessions.Logout()
	kind, screen := nav.Current()
	assert.Equal(t, AuthNavigator, kind)
	assert.Equal(t, Login, screen)
}

func TestNavigator_GatesScreens(t *testing.T) {
	sessions := store.NewSessionStore(stubAuth{})
	nav := New(sessions, nil)
	defer nav.Close()

	assert.True(t, errors.Is(nav.Navigate(Cart), ErrScreenUnavailable))
	assert.NoError(t, nav.Navigate(Register))

	_, err := sessions.Login(context.Background(), models.Credentials{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, errors.Is(nav.Navigate(Login), ErrScreenUnavailable))
	assert.NoError(t, nav.Navigate(Cart))
}

func TestNavigator_TabBarVisibility(t *testing.T) {
	nav, _ := signedIn(t)

	cases := map[Screen]bool{
		Home:              true,
		Orders:            true,
		Cart:              false,
		OrderConfirmation: false,
		ProductDetail:     false,
		ProductForm:       false,
		OrderDetail:       false,
	}
	for screen, visible := range cases {
		require.NoError(t, nav.Navigate(screen))
		assert.Equal(t, visible, nav.State().TabBarVisible, string(screen))
	}

	require.NoError(t, nav.Navigate(OrderDetail))
	assert.Equal(t, TabOrders, nav.State().Tab)
}

func TestNavigator_NavigateAwayCancelsFocusedContext(t *testing.T) {
	nav, _ := signedIn(t)

	ctx, cancel, err := nav.Focus(context.Background(), Orders)
	require.NoError(t, err)
	defer cancel()
	assert.NoError(t, ctx.Err())

	require.NoError(t, nav.Navigate(Home))

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("orders context was not canceled on navigate-away")
	}
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestNavigator_RefocusKeepsContext(t *testing.T) {
	nav, _ := signedIn(t)

	first, cancelFirst, err := nav.Focus(context.Background(), Orders)
	require.NoError(t, err)
	defer cancelFirst()
	_, cancelSecond, err := nav.Focus(context.Background(), Orders)
	require.NoError(t, err)
	cancelSecond()

	assert.NoError(t, first.Err())
}

func TestNavigator_RequestEndCancelsFocus(t *testing.T) {
	nav, _ := signedIn(t)
	reqCtx, endRequest := context.WithCancel(context.Background())

	ctx, cancel, err := nav.Focus(reqCtx, Orders)
	require.NoError(t, err)
	defer cancel()

	endRequest()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	kind, screen := nav.Current()
	assert.Equal(t, TabsNavigator, kind)
	assert.Equal(t, Orders, screen)
}

func TestNavigator_LogoutCancelsFocusedContext(t *testing.T) {
	nav, sessions := signedIn(t)
	ctx, cancel, err := nav.Focus(context.Background(), Orders)
	require.NoError(t, err)
	defer cancel()

	sessions.Logout()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context survived logout")
	}
}

func TestNavigator_LogoutDuringLoginDeliveryEndsOnAuth(t *testing.T) {
	for i := 0; i < 20; i++ {
		sessions := store.NewSessionStore(stubAuth{})
		nav := New(sessions, nil)

		entered := make(chan struct{})
		release := make(chan struct{})
		unsubscribe := sessions.Subscribe(func(st store.SessionState, _ *models.Session) {
			if st == store.LoggedIn {
				close(entered)
				<-release
			}
		})

		loginDone := make(chan struct{})
		go func() {
			defer close(loginDone)
			_, err := sessions.Login(context.Background(), models.Credentials{Email: "a@x.com", Password: "pw"})
			assert.NoError(t, err)
		}()
		<-entered

		logoutDone := make(chan struct{})
		go func() {
			defer close(logoutDone)
			sessions.Logout()
		}()
		time.Sleep(5 * time.Millisecond)
		close(release)
		<-loginDone
		<-logoutDone

		kind, screen := nav.Current()
		assert.Equal(t, AuthNavigator, kind)
		assert.Equal(t, Login, screen)
		assert.Equal(t, store.LoggedOut, sessions.State())

		unsubscribe()
		nav.Close()
	}
}
