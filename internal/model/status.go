package model

import (
	"database/sql/driver"
	"fmt"
)

// OrderStatus is the closed set of order lifecycle states
type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderInProgress OrderStatus = "In Progress"
	OrderCompleted  OrderStatus = "Completed"
	OrderCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists every valid order status in lifecycle order
var OrderStatuses = []OrderStatus{OrderPending, OrderInProgress, OrderCompleted, OrderCancelled}

// ParseOrderStatus rejects anything outside the closed set
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// IsTerminal reports whether the order no longer counts as active work
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// TerminalOrderStatuses returns the terminal set as strings for SQL filters
func TerminalOrderStatuses() []string {
	return []string{string(OrderCompleted), string(OrderCancelled)}
}

// Scan implements sql.Scanner; unknown values stored in the database are an error
func (s *OrderStatus) Scan(value interface{}) error {
	raw, err := scanString("order status", value)
	if err != nil {
		return err
	}
	parsed, err := ParseOrderStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements driver.Valuer
func (s OrderStatus) Value() (driver.Value, error) {
	if _, err := ParseOrderStatus(string(s)); err != nil {
		return nil, err
	}
	return string(s), nil
}

// AppointmentStatus is the closed set of appointment states
type AppointmentStatus string

const (
	AppointmentRequested AppointmentStatus = "Requested"
	AppointmentConfirmed AppointmentStatus = "Confirmed"
	AppointmentCancelled AppointmentStatus = "Cancelled"
	AppointmentCompleted AppointmentStatus = "Completed"
)

var appointmentStatuses = []AppointmentStatus{
	AppointmentRequested, AppointmentConfirmed, AppointmentCancelled, AppointmentCompleted,
}

// ParseAppointmentStatus rejects anything outside the closed set
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	for _, st := range appointmentStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

// Scan implements sql.Scanner
func (s *AppointmentStatus) Scan(value interface{}) error {
	raw, err := scanString("appointment status", value)
	if err != nil {
		return err
	}
	parsed, err := ParseAppointmentStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements driver.Valuer
func (s AppointmentStatus) Value() (driver.Value, error) {
	if _, err := ParseAppointmentStatus(string(s)); err != nil {
		return nil, err
	}
	return string(s), nil
}

func scanString(what string, value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("%s: unsupported column type %T", what, value)
	}
}
