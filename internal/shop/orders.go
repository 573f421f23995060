package shop

import (
	"errors"
	"strings"

	"github.com/dukerupert/pizzeria/internal/apperr"
	"github.com/dukerupert/pizzeria/internal/model"
	"github.com/dukerupert/pizzeria/internal/order"
	"github.com/dukerupert/pizzeria/internal/store"
)

var (
	errOrderNotFound      = apperr.NotFound("Order not found.")
	errCancelUnknownOrder = apperr.NotFound("Order not found")
)

// PlaceOrder validates items against the current menu and stores a new
// order. With a session the delivery address is the user's street and
// address is ignored; without one address is required.
func (s *Service) PlaceOrder(sess *model.Session, items []model.OrderItem, address string) (model.Order, error) {
	user := order.GuestUser
	if sess != nil {
		user = sess.Name
		address = sess.Street
	} else {
		address = strings.TrimSpace(address)
		if address == "" {
			return model.Order{}, apperr.Validation("Address is required for non-logged in users.")
		}
	}

	menu, err := s.menu.Load()
	if err != nil {
		return model.Order{}, apperr.Storage("load menu", err)
	}
	if err := order.ValidateItems(items, menu); err != nil {
		return model.Order{}, err
	}

	o := order.New(items, user, address, s.now())
	err = s.orders.Update(func(orders model.Orders) error {
		orders[o.ID] = o
		return nil
	})
	if err != nil {
		return model.Order{}, apperr.Storage("save order", err)
	}

	s.logger.Info("order placed", "order_id", o.ID, "user", user, "items", len(o.Items))
	s.notifier.Publish("order", "placed", o.ID, map[string]any{"user": user})
	return o, nil
}

// OrderStatus returns the order with its status recomputed for now. The
// recomputed status is written back when it differs from the stored one.
func (s *Service) OrderStatus(id string) (model.Order, error) {
	var (
		o       model.Order
		changed bool
	)
	err := s.orders.Update(func(orders model.Orders) error {
		cur, ok := orders[id]
		if !ok {
			return errOrderNotFound
		}
		changed = order.Refresh(&cur, s.now())
		o = cur
		if !changed {
			return store.ErrNoChange
		}
		orders[id] = cur
		return nil
	})
	if errors.Is(err, errOrderNotFound) {
		return model.Order{}, err
	}
	if err != nil {
		return model.Order{}, apperr.Storage("update order status", err)
	}

	if changed {
		s.notifier.Publish("order", "status_changed", o.ID, map[string]any{"status": string(o.Status)})
	}
	return o, nil
}

// CancelOrder deletes an order still inside the cancellation window. The
// caller may cancel their own order or any guest order; a valid adminToken
// allows cancelling any order.
func (s *Service) CancelOrder(sess *model.Session, id, adminToken string) error {
	var requester order.Requester
	if sess != nil {
		requester.Name = sess.Name
	}

	err := s.orders.Update(func(orders model.Orders) error {
		o, ok := orders[id]
		if !ok {
			return errCancelUnknownOrder
		}
		now := s.now()
		if err := order.CheckWindow(o, now); err != nil {
			return err
		}

		if adminToken != "" {
			res, err := s.ValidateAdminToken(adminToken)
			if err != nil {
				return err
			}
			requester.IsAdmin = res.OK
		}

		if err := order.CanCancel(o, requester, now); err != nil {
			return err
		}
		delete(orders, id)
		return nil
	})
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if err != nil {
		return apperr.Storage("cancel order", err)
	}

	s.logger.Info("order cancelled", "order_id", id, "by", requester.Name, "admin", requester.IsAdmin)
	s.notifier.Publish("order", "cancelled", id, nil)
	return nil
}

// ListOrders returns every order, oldest first, with refreshed statuses.
func (s *Service) ListOrders(adminToken string) ([]model.Order, error) {
	if err := s.RequireAdmin(adminToken); err != nil {
		return nil, err
	}
	return s.refreshedOrders(func(model.Order) bool { return true })
}

// UserOrders returns the orders placed by the session user.
func (s *Service) UserOrders(sess *model.Session) ([]model.Order, error) {
	if sess == nil {
		return nil, apperr.Auth("You need to be logged in first.")
	}
	return s.refreshedOrders(func(o model.Order) bool { return o.User == sess.Name })
}

func (s *Service) refreshedOrders(keep func(model.Order) bool) ([]model.Order, error) {
	var list []model.Order
	err := s.orders.Update(func(orders model.Orders) error {
		now := s.now()
		changed := false
		for id, o := range orders {
			if order.Refresh(&o, now) {
				orders[id] = o
				changed = true
			}
			if keep(o) {
				list = append(list, o)
			}
		}
		if !changed {
			return store.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Storage("list orders", err)
	}

	if list == nil {
		list = []model.Order{}
	}
	order.SortByTime(list)
	return list, nil
}
