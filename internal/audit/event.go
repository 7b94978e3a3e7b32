// Package audit carries a record of every state change made through the
// API to a durable RabbitMQ queue, and reads it back for operators.
package audit

import "time"

// QueueName is the durable queue events are published to.
const QueueName = "finance.audit"

// Actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionLogin  = "login"
	ActionLogout = "logout"
)

// Entities.
const (
	EntityUser        = "user"
	EntityProfile     = "profile"
	EntityCategory    = "category"
	EntityTransaction = "transaction"
)

// Event describes one mutation.  UserID is the acting user, zero for
// anonymous actions such as registration.
type Event struct {
	Action   string    `json:"action"`
	Entity   string    `json:"entity"`
	EntityID uint64    `json:"entity_id"`
	UserID   uint64    `json:"user_id"`
	At       time.Time `json:"at"`
}

// NewEvent stamps an event with the current time.
func NewEvent(action, entity string, entityID, userID uint64) Event {
	return Event{Action: action, Entity: entity, EntityID: entityID, UserID: userID, At: time.Now().UTC()}
}
