package order

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/pizzeria/internal/apperr"
	"github.com/dukerupert/pizzeria/internal/model"
)

var placedAt = time.Date(2026, 2, 5, 18, 0, 0, 0, time.UTC)

func testOrder(user string) model.Order {
	return New([]model.OrderItem{{PizzaID: "1", Quantity: 1}}, user, "12 Oak Ave", placedAt)
}

func TestDeriveStatusExamples(t *testing.T) {
	o := testOrder("alice")

	tests := []struct {
		after time.Duration
		want  model.OrderStatus
	}{
		{0, model.OrderPending},
		{1 * time.Minute, model.OrderPending},
		{2*time.Minute - time.Nanosecond, model.OrderPending},
		{2 * time.Minute, model.OrderPreparing},
		{3 * time.Minute, model.OrderPreparing},
		{5 * time.Minute, model.OrderInDelivery},
		{6 * time.Minute, model.OrderInDelivery},
		{30 * time.Minute, model.OrderDelivered},
		{31 * time.Minute, model.OrderDelivered},
	}
	for _, tt := range tests {
		if got := DeriveStatus(o, placedAt.Add(tt.after)); got != tt.want {
			t.Errorf("status at T+%v = %q, want %q", tt.after, got, tt.want)
		}
	}
}

func TestDeriveStatusMonotonic(t *testing.T) {
	rank := map[model.OrderStatus]int{
		model.OrderPending:    0,
		model.OrderPreparing:  1,
		model.OrderInDelivery: 2,
		model.OrderDelivered:  3,
	}
	o := testOrder("alice")

	prev := -1
	for d := -time.Minute; d <= 40*time.Minute; d += 7 * time.Second {
		r := rank[DeriveStatus(o, placedAt.Add(d))]
		if r < prev {
			t.Fatalf("status went backwards at T+%v", d)
		}
		prev = r
	}
}

func TestRefresh(t *testing.T) {
	o := testOrder("alice")

	if Refresh(&o, placedAt.Add(time.Minute)) {
		t.Error("expected no change while pending")
	}
	if !Refresh(&o, placedAt.Add(3*time.Minute)) {
		t.Error("expected change to preparing")
	}
	if o.Status != model.OrderPreparing {
		t.Errorf("status = %q, want %q", o.Status, model.OrderPreparing)
	}
}

func TestNew(t *testing.T) {
	items := []model.OrderItem{{PizzaID: "2", Quantity: 3}}
	a := New(items, GuestUser, "1 Main St", placedAt)
	b := New(items, GuestUser, "1 Main St", placedAt)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected unique non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if a.Status != model.OrderPending {
		t.Errorf("status = %q, want pending", a.Status)
	}
	if !a.DeliveryTime.Equal(placedAt.Add(30 * time.Minute)) {
		t.Errorf("delivery_time = %v, want T+30m", a.DeliveryTime)
	}

	items[0].Quantity = 99
	if a.Items[0].Quantity != 3 {
		t.Error("order items must not alias the caller's slice")
	}
}

func TestValidateItems(t *testing.T) {
	menu := model.Menu{"1": {Name: "Margherita", Price: 8.99}}

	tests := []struct {
		name    string
		items   []model.OrderItem
		wantErr string
	}{
		{"empty", nil, "Items are required."},
		{"unknown pizza", []model.OrderItem{{PizzaID: "1", Quantity: 1}, {PizzaID: "7", Quantity: 1}}, "Pizza ID 7 does not exist."},
		{"zero quantity", []model.OrderItem{{PizzaID: "1", Quantity: 0}}, "Invalid quantity 0 for pizza ID 1."},
		{"negative quantity", []model.OrderItem{{PizzaID: "1", Quantity: -2}}, "Invalid quantity -2 for pizza ID 1."},
		{"non-string pizza id", []model.OrderItem{{RawPizzaID: "1", Quantity: 1}}, "Pizza ID 1 does not exist."},
		{"fractional quantity", []model.OrderItem{{PizzaID: "1", RawQuantity: "2.5"}}, "Invalid quantity 2.5 for pizza ID 1."},
		{"ok", []model.OrderItem{{PizzaID: "1", Quantity: 2}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItems(tt.items, menu)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %q", tt.wantErr)
			}
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Errorf("kind = %v, want validation", apperr.KindOf(err))
			}
			if got := apperr.Message(err); got != tt.wantErr {
				t.Errorf("message = %q, want %q", got, tt.wantErr)
			}
		})
	}
}

func TestCanCancelWindow(t *testing.T) {
	requesters := []Requester{
		{Name: "alice"},
		{Name: "bob"},
		{},
		{IsAdmin: true},
	}
	guest := testOrder(GuestUser)
	owned := testOrder("alice")

	for _, who := range requesters {
		for _, o := range []model.Order{guest, owned} {
			err := CanCancel(o, who, placedAt.Add(61*time.Second))
			if !errors.Is(err, ErrWindowElapsed) {
				t.Errorf("requester %+v, order user %q: err = %v, want window elapsed", who, o.User, err)
			}
			if apperr.KindOf(err) != apperr.KindPolicy {
				t.Errorf("kind = %v, want policy", apperr.KindOf(err))
			}
		}
	}
}

func TestCanCancelAtBoundary(t *testing.T) {
	o := testOrder(GuestUser)
	if err := CanCancel(o, Requester{}, placedAt.Add(59*time.Second)); err != nil {
		t.Errorf("T+59s: unexpected error %v", err)
	}
	if err := CanCancel(o, Requester{}, placedAt.Add(60*time.Second)); err != nil {
		t.Errorf("T+60s: unexpected error %v", err)
	}
}

func TestCanCancelAuthorization(t *testing.T) {
	now := placedAt.Add(30 * time.Second)
	owned := testOrder("alice")

	tests := []struct {
		name  string
		order model.Order
		who   Requester
		allow bool
	}{
		{"owner", owned, Requester{Name: "alice"}, true},
		{"other user", owned, Requester{Name: "bob"}, false},
		{"anonymous", owned, Requester{}, false},
		{"admin", owned, Requester{IsAdmin: true}, true},
		{"guest order anonymous", testOrder(GuestUser), Requester{}, true},
		{"guest order other user", testOrder(GuestUser), Requester{Name: "bob"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanCancel(tt.order, tt.who, now)
			if tt.allow && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.allow {
				if err == nil {
					t.Fatal("expected unauthorized error")
				}
				if errors.Is(err, ErrWindowElapsed) {
					t.Error("unauthorized error must not report window elapsed")
				}
			}
		})
	}
}

func TestNextMenuID(t *testing.T) {
	tests := []struct {
		name string
		menu model.Menu
		want string
	}{
		{"empty", model.Menu{}, "1"},
		{"sequential", model.Menu{"1": {}, "2": {}, "3": {}}, "4"},
		{"gap after delete", model.Menu{"1": {}, "3": {}}, "4"},
		{"tail deleted", model.Menu{"1": {}, "2": {}}, "3"},
		{"non numeric", model.Menu{"special": {}}, "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextMenuID(tt.menu); got != tt.want {
				t.Errorf("NextMenuID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSortByTime(t *testing.T) {
	orders := []model.Order{
		{ID: "b", OrderTime: placedAt.Add(time.Minute)},
		{ID: "c", OrderTime: placedAt},
		{ID: "a", OrderTime: placedAt},
	}
	SortByTime(orders)
	got := orders[0].ID + orders[1].ID + orders[2].ID
	if got != "acb" {
		t.Errorf("order = %q, want %q", got, "acb")
	}
}
