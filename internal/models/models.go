package models

import "time"

// GroupKind distinguishes a two-person chat from a multi-party group.
type GroupKind string

const (
	KindPersonal GroupKind = "personal"
	KindMulti    GroupKind = "multi"
)

type User struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

type Group struct {
	Name     string    `json:"name"`
	Kind     GroupKind `json:"kind"`
	Capacity int       `json:"capacity"` // member count at creation time
	Admin    string    `json:"admin,omitempty"`
}

type Message struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender,omitempty"` // mobile, empty until sent
	Group     string    `json:"group,omitempty"`  // empty until sent
}
