package order

import (
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/dukerupert/pizzeria/internal/apperr"
	"github.com/dukerupert/pizzeria/internal/model"
	"github.com/google/uuid"
)

const (
	PreparingAfter   = 2 * time.Minute
	InDeliveryAfter  = 5 * time.Minute
	DeliveryDuration = 30 * time.Minute
	CancelWindow     = 60 * time.Second

	// GuestUser marks orders placed without a session.
	GuestUser = "Guest"
)

// ErrWindowElapsed is wrapped by the policy error returned once an order
// is older than CancelWindow.
var ErrWindowElapsed = errors.New("cancellation window elapsed")

// DeriveStatus computes the status of o at now from its timestamps alone.
// It never goes backwards as now increases.
func DeriveStatus(o model.Order, now time.Time) model.OrderStatus {
	switch {
	case !now.Before(o.DeliveryTime):
		return model.OrderDelivered
	case !now.Before(o.OrderTime.Add(InDeliveryAfter)):
		return model.OrderInDelivery
	case !now.Before(o.OrderTime.Add(PreparingAfter)):
		return model.OrderPreparing
	default:
		return model.OrderPending
	}
}

// Refresh overwrites the cached status of o. It reports whether the cached
// value changed.
func Refresh(o *model.Order, now time.Time) bool {
	status := DeriveStatus(*o, now)
	if status == o.Status {
		return false
	}
	o.Status = status
	return true
}

// ValidateItems checks every item against menu. The first bad item rejects
// the whole list.
func ValidateItems(items []model.OrderItem, menu model.Menu) error {
	if len(items) == 0 {
		return apperr.Validation("Items are required.")
	}
	for _, item := range items {
		if item.RawPizzaID != "" {
			return apperr.Validation("Pizza ID %s does not exist.", item.RawPizzaID)
		}
		if _, ok := menu[item.PizzaID]; !ok {
			return apperr.Validation("Pizza ID %s does not exist.", item.PizzaID)
		}
		if item.RawQuantity != "" {
			return apperr.Validation("Invalid quantity %s for pizza ID %s.", item.RawQuantity, item.PizzaID)
		}
		if item.Quantity <= 0 {
			return apperr.Validation("Invalid quantity %d for pizza ID %s.", item.Quantity, item.PizzaID)
		}
	}
	return nil
}

// New builds a pending order placed at now. user is GuestUser for orders
// without a session.
func New(items []model.OrderItem, user, address string, now time.Time) model.Order {
	copied := make([]model.OrderItem, len(items))
	copy(copied, items)
	return model.Order{
		ID:           uuid.NewString(),
		User:         user,
		Items:        copied,
		Status:       model.OrderPending,
		Address:      address,
		OrderTime:    now,
		DeliveryTime: now.Add(DeliveryDuration),
	}
}

// Requester identifies who is asking to change an order. Name is empty for
// callers without a session.
type Requester struct {
	Name    string
	IsAdmin bool
}

// CanCancel applies the cancellation policy. The window is checked first and
// applies to every requester, admins included.
func CanCancel(o model.Order, who Requester, now time.Time) error {
	if err := CheckWindow(o, now); err != nil {
		return err
	}
	if who.IsAdmin || o.User == GuestUser {
		return nil
	}
	if who.Name != "" && o.User == who.Name {
		return nil
	}
	return apperr.Policy("Unauthorized to cancel this order")
}

// CheckWindow rejects cancellation of orders placed more than CancelWindow
// before now.
func CheckWindow(o model.Order, now time.Time) error {
	if now.Sub(o.OrderTime) > CancelWindow {
		return &apperr.Error{Kind: apperr.KindPolicy, Msg: "Order cannot be cancelled after 1 minute", Err: ErrWindowElapsed}
	}
	return nil
}

// NextMenuID returns one past the highest numeric id in menu, so a new item
// never replaces a live one.
func NextMenuID(menu model.Menu) string {
	next := len(menu) + 1
	for id := range menu {
		if n, err := strconv.Atoi(id); err == nil && n >= next {
			next = n + 1
		}
	}
	return strconv.Itoa(next)
}

// SortByTime orders orders oldest first, breaking ties by id.
func SortByTime(orders []model.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].OrderTime.Equal(orders[j].OrderTime) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].OrderTime.Before(orders[j].OrderTime)
	})
}
