package shop

import (
	"errors"
	"math"
	"strings"

	"github.com/dukerupert/pizzeria/internal/apperr"
	"github.com/dukerupert/pizzeria/internal/model"
	"github.com/dukerupert/pizzeria/internal/order"
)

func (s *Service) ListMenu() (model.Menu, error) {
	menu, err := s.menu.Load()
	if err != nil {
		return nil, apperr.Storage("load menu", err)
	}
	return menu, nil
}

// AddMenuItem adds a pizza and returns its assigned id. price is nil when
// the caller did not send one.
func (s *Service) AddMenuItem(adminToken, name string, price *float64) (string, error) {
	if err := s.RequireAdmin(adminToken); err != nil {
		return "", err
	}

	name = strings.TrimSpace(name)
	if name == "" || price == nil || *price < 0 || math.IsNaN(*price) || math.IsInf(*price, 0) {
		return "", apperr.Validation("Invalid pizza name or price.")
	}

	var id string
	err := s.menu.Update(func(menu model.Menu) error {
		id = order.NextMenuID(menu)
		menu[id] = model.MenuItem{Name: name, Price: *price}
		return nil
	})
	if err != nil {
		return "", apperr.Storage("add menu item", err)
	}

	s.logger.Info("menu item added", "pizza_id", id, "name", name)
	s.notifier.Publish("menu_item", "created", id, map[string]any{"name": name, "price": *price})
	return id, nil
}

var errPizzaNotFound = apperr.NotFound("Pizza not found.")

func (s *Service) DeleteMenuItem(adminToken, id string) error {
	if err := s.RequireAdmin(adminToken); err != nil {
		return err
	}

	err := s.menu.Update(func(menu model.Menu) error {
		if _, ok := menu[id]; !ok {
			return errPizzaNotFound
		}
		delete(menu, id)
		return nil
	})
	if errors.Is(err, errPizzaNotFound) {
		return err
	}
	if err != nil {
		return apperr.Storage("delete menu item", err)
	}

	s.logger.Info("menu item deleted", "pizza_id", id)
	s.notifier.Publish("menu_item", "deleted", id, nil)
	return nil
}
