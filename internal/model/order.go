package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderPreparing  OrderStatus = "preparing"
	OrderInDelivery OrderStatus = "in_delivery"
	OrderDelivered  OrderStatus = "delivered"
)

type OrderItem struct {
	PizzaID  string `json:"pizza_id"`
	Quantity int    `json:"quantity"`

	// Set when decoding met a pizza_id that is not a string or a quantity
	// that is not an integer. They hold the raw JSON text.
	RawPizzaID  string `json:"-"`
	RawQuantity string `json:"-"`
}

// UnmarshalJSON accepts any JSON value for pizza_id and quantity so that
// validation can report the offending item instead of a decode error.
func (it *OrderItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		PizzaID  json.RawMessage `json:"pizza_id"`
		Quantity json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*it = OrderItem{}

	if id := bytes.TrimSpace(raw.PizzaID); len(id) > 0 && !bytes.Equal(id, []byte("null")) {
		if err := json.Unmarshal(id, &it.PizzaID); err != nil {
			it.RawPizzaID = string(id)
		}
	}
	if q := bytes.TrimSpace(raw.Quantity); len(q) > 0 && !bytes.Equal(q, []byte("null")) {
		n, err := strconv.Atoi(string(q))
		if err != nil {
			it.RawQuantity = string(q)
		} else {
			it.Quantity = n
		}
	}
	return nil
}

// Order is keyed by ID in the orders document. Status is a cache of the
// value derived from OrderTime and DeliveryTime.
type Order struct {
	ID           string      `json:"id"`
	User         string      `json:"user"`
	Items        []OrderItem `json:"items"`
	Status       OrderStatus `json:"status"`
	Address      string      `json:"address"`
	OrderTime    time.Time   `json:"order_time"`
	DeliveryTime time.Time   `json:"delivery_time"`
}

type Orders map[string]Order
