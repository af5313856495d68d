// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package models contains the persisted data types.
package models

import "time"

// Subscriber is one waitlist entry, keyed by its lowercased email address.
// The confirmed and unsubscribed flags only ever transition false to true;
// records are never deleted.
type Subscriber struct {
	Email        string    `db:"email" json:"email"`
	Source       string    `db:"source" json:"source"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	Confirmed    bool      `db:"confirmed" json:"confirmed"`
	Unsubscribed bool      `db:"unsubscribed" json:"unsubscribed"`
}

// Stats mirrors the waitlist_stats view.
type Stats struct {
	Total        int64 `db:"total" json:"total"`
	Confirmed    int64 `db:"confirmed" json:"confirmed"`
	Unsubscribed int64 `db:"unsubscribed" json:"unsubscribed"`
}
