package navigation

import (
	"context"
	"sync"

	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/store"

	"go.uber.org/zap"
)

type Screen string

const (
	Login             Screen = "Login"
	Register          Screen = "Register"
	Home              Screen = "Home"
	ProductDetail     Screen = "ProductDetail"
	Cart              Screen = "Cart"
	OrderConfirmation Screen = "OrderConfirmation"
	ProductForm       Screen = "ProductForm"
	Orders            Screen = "Orders"
	OrderDetail       Screen = "OrderDetail"
)

// Kind names one of the two root navigators.
type Kind string

const (
	AuthNavigator Kind = "auth"
	TabsNavigator Kind = "tabs"
)

type Tab string

const (
	TabProducts Tab = "Products"
	TabOrders   Tab = "Orders"
)

var ErrScreenUnavailable = apperrors.Conflict("Screen is not available in the current navigator")

var authScreens = []Screen{Login, Register}

var tabScreens = map[Screen]Tab{
	Home:              TabProducts,
	ProductDetail:     TabProducts,
	Cart:              TabProducts,
	OrderConfirmation: TabProducts,
	ProductForm:       TabProducts,
	Orders:            TabOrders,
	OrderDetail:       TabOrders,
}

var tabBarHidden = map[Screen]bool{
	Cart:              true,
	OrderConfirmation: true,
	ProductDetail:     true,
	ProductForm:       true,
	OrderDetail:       true,
}

// Resolve picks the root navigator for the session state.
func Resolve(loggedIn bool) Kind {
	if loggedIn {
		return TabsNavigator
	}
	return AuthNavigator
}

func initialScreen(kind Kind) Screen {
	if kind == TabsNavigator {
		return Home
	}
	return Login
}

// Screens lists the screens reachable in navigator kind.
func Screens(kind Kind) []Screen {
	if kind == AuthNavigator {
		return append([]Screen(nil), authScreens...)
	}
	return []Screen{Home, ProductDetail, Cart, OrderConfirmation, ProductForm, Orders, OrderDetail}
}

// Has reports whether screen belongs to navigator kind.
func Has(kind Kind, screen Screen) bool {
	if kind == AuthNavigator {
		return screen == Login || screen == Register
	}
	_, ok := tabScreens[screen]
	return ok
}

type State struct {
	Navigator     Kind     `json:"navigator"`
	Screen        Screen   `json:"screen"`
	Tab           Tab      `json:"tab,omitempty"`
	TabBarVisible bool     `json:"tabBarVisible"`
	Screens       []Screen `json:"screens"`
}

// Navigator tracks the focused screen. Each focused screen owns a context
// that is canceled when another screen takes focus or the navigator switches.
type Navigator struct {
	mu          sync.Mutex
	kind        Kind
	screen      Screen
	screenCtx   context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	logger      *zap.Logger
}

// New builds a navigator that follows the login state of sessions.
func New(sessions *store.SessionStore, logger *zap.Logger) *Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Navigator{logger: logger}
	n.reset(Resolve(sessions.State() == store.LoggedIn))
	n.unsubscribe = sessions.Subscribe(func(state store.SessionState, _ *models.Session) {
		n.switchTo(Resolve(state == store.LoggedIn))
	})
	return n
}

// reset focuses the initial screen of kind; callers hold mu or own n.
func (n *Navigator) reset(kind Kind) {
	if n.cancel != nil {
		n.cancel()
	}
	n.kind = kind
	n.screen = initialScreen(kind)
	n.screenCtx, n.cancel = context.WithCancel(context.Background())
}

func (n *Navigator) switchTo(kind Kind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.kind == kind {
		return
	}
	n.reset(kind)
	n.logger.Debug("Navigator switched", zap.String("navigator", string(kind)), zap.String("screen", string(n.screen)))
}

// Navigate focuses screen. Leaving a screen cancels its context; navigating
// to the focused screen keeps it.
func (n *Navigator) Navigate(screen Screen) error {
	_, err := n.navigate(screen)
	return err
}

func (n *Navigator) navigate(screen Screen) (context.Context, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !Has(n.kind, screen) {
		return nil, ErrScreenUnavailable
	}
	if n.screen == screen {
		return n.screenCtx, nil
	}

	n.cancel()
	n.screen = screen
	n.screenCtx, n.cancel = context.WithCancel(context.Background())
	return n.screenCtx, nil
}

// Focus navigates to screen and returns a context that ends with reqCtx or
// when the screen loses focus, whichever comes first.
func (n *Navigator) Focus(reqCtx context.Context, screen Screen) (context.Context, context.CancelFunc, error) {
	screenCtx, err := n.navigate(screen)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(reqCtx)
	stop := context.AfterFunc(screenCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}, nil
}

func (n *Navigator) Current() (Kind, Screen) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.kind, n.screen
}

func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()

	state := State{Navigator: n.kind, Screen: n.screen, Screens: Screens(n.kind)}
	if n.kind == TabsNavigator {
		state.Tab = tabScreens[n.screen]
		state.TabBarVisible = !tabBarHidden[n.screen]
	}
	return state
}

// Close stops following the session store and cancels the focused screen.
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.unsubscribe != nil {
		n.unsubscribe()
		n.unsubscribe = nil
	}
	n.cancel()
}
