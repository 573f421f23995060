package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukerupert/pizzeria/internal/model"
)

const (
	MenuDocument   = "menu"
	UsersDocument  = "users"
	OrdersDocument = "orders"
)

// ErrNoChange may be returned by an Update callback to skip the save.
// Update then returns nil.
var ErrNoChange = errors.New("no change")

// Document is a keyed JSON mapping persisted under one name. The mutex is
// held across Update so read-modify-write sequences on the same document
// never interleave.
type Document[M ~map[string]V, V any] struct {
	mu       sync.Mutex
	backend  Backend
	name     string
	defaults func() M
	logger   *slog.Logger
}

func newDocument[M ~map[string]V, V any](b Backend, name string, defaults func() M, logger *slog.Logger) *Document[M, V] {
	return &Document[M, V]{
		backend:  b,
		name:     name,
		defaults: defaults,
		logger:   logger.With("document", name),
	}
}

type (
	MenuStore  = Document[model.Menu, model.MenuItem]
	UserStore  = Document[model.Users, model.User]
	OrderStore = Document[model.Orders, model.Order]
)

func NewMenuStore(b Backend, logger *slog.Logger) *MenuStore {
	return newDocument(b, MenuDocument, DefaultMenu, logger)
}

func NewUserStore(b Backend, logger *slog.Logger) *UserStore {
	return newDocument(b, UsersDocument, func() model.Users { return model.Users{} }, logger)
}

func NewOrderStore(b Backend, logger *slog.Logger) *OrderStore {
	return newDocument(b, OrdersDocument, func() model.Orders { return model.Orders{} }, logger)
}

// DefaultMenu is the menu served before any admin edits.
func DefaultMenu() model.Menu {
	return model.Menu{
		"1": {Name: "Margherita", Price: 8.99},
		"2": {Name: "Pepperoni", Price: 9.99},
		"3": {Name: "Veggie", Price: 10.99},
	}
}

// Load returns the current mapping. A missing or malformed document yields
// the defaults; only backend I/O failures are returned as errors.
func (d *Document[M, V]) Load() (M, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load()
}

// Save replaces the stored mapping.
func (d *Document[M, V]) Save(m M) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save(m)
}

// Update loads the mapping, applies fn and saves the result. If fn returns
// an error nothing is written and the error is returned unchanged.
func (d *Document[M, V]) Update(fn func(M) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, err := d.load()
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}
	return d.save(m)
}

func (d *Document[M, V]) load() (M, error) {
	data, err := d.backend.Read(d.name)
	if errors.Is(err, ErrNotExist) {
		return d.defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", d.name, err)
	}
	if len(data) == 0 {
		return d.defaults(), nil
	}

	var raw map[string]V
	if err := json.Unmarshal(data, &raw); err != nil {
		d.logger.Warn("document is corrupted, using defaults", "error", err)
		return d.defaults(), nil
	}
	if raw == nil {
		d.logger.Warn("document is null, using defaults")
		return d.defaults(), nil
	}
	return M(raw), nil
}

func (d *Document[M, V]) save(m M) error {
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", d.name, err)
	}
	if err := d.backend.Write(d.name, data); err != nil {
		return fmt.Errorf("save %s: %w", d.name, err)
	}
	return nil
}
