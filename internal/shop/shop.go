package shop

import (
	"log/slog"
	"time"

	"github.com/dukerupert/pizzeria/internal/credential"
	"github.com/dukerupert/pizzeria/internal/session"
	"github.com/dukerupert/pizzeria/internal/store"
	"github.com/dukerupert/pizzeria/internal/token"
)

// Notifier receives change events after a mutation has been persisted.
type Notifier interface {
	Publish(entity, action, id string, extra map[string]any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, string, string, map[string]any) {}

// Deps are the collaborators of a Service. Notifier and Clock are optional.
type Deps struct {
	Menu     *store.MenuStore
	Users    *store.UserStore
	Orders   *store.OrderStore
	Tokens   *token.Authority
	Hasher   *credential.Hasher
	Sessions *session.Store
	Notifier Notifier
	Clock    func() time.Time
	Logger   *slog.Logger
}

// Service implements the pizzeria operations on top of the stores. Each
// mutation runs inside the owning store's Update, so concurrent requests on
// the same resource are serialised.
type Service struct {
	menu     *store.MenuStore
	users    *store.UserStore
	orders   *store.OrderStore
	tokens   *token.Authority
	hasher   *credential.Hasher
	sessions *session.Store
	notifier Notifier
	now      func() time.Time
	logger   *slog.Logger
}

func New(d Deps) *Service {
	s := &Service{
		menu:     d.Menu,
		users:    d.Users,
		orders:   d.Orders,
		tokens:   d.Tokens,
		hasher:   d.Hasher,
		sessions: d.Sessions,
		notifier: d.Notifier,
		now:      d.Clock,
		logger:   d.Logger,
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Sessions exposes the session store for cleanup.
func (s *Service) Sessions() *session.Store {
	return s.sessions
}
