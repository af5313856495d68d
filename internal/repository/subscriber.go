// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/waitlist/internal/models"
)

// CreateSubscriber inserts a new subscriber unless the email is already on
// the list. It reports whether a record was actually inserted; a duplicate
// signup is a no-op, not an error.
func (r *Repository) CreateSubscriber(ctx context.Context, email, source string, confirmed bool) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO waitlist (email, source, created_at, confirmed, unsubscribed)
		 VALUES (?, ?, ?, ?, 0)
		 ON CONFLICT(email) DO NOTHING`,
		email, source, time.Now().UTC(), confirmed)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetSubscriber retrieves a subscriber by email.
func (r *Repository) GetSubscriber(ctx context.Context, email string) (*models.Subscriber, error) {
	var sub models.Subscriber
	err := r.db.GetContext(ctx, &sub, `SELECT * FROM waitlist WHERE email = ?`, email)
	if err != nil {
		return nil, wrapError(err)
	}
	return &sub, nil
}

// MarkConfirmed flips the confirmed flag for the given email. The update is
// idempotent; confirming an unknown or already-confirmed email is not an
// error.
func (r *Repository) MarkConfirmed(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE waitlist SET confirmed = 1 WHERE email = ?`, email)
	return err
}

// MarkUnsubscribed flips the unsubscribed flag for the given email,
// idempotently. The confirmed flag is left untouched.
func (r *Repository) MarkUnsubscribed(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE waitlist SET unsubscribed = 1 WHERE email = ?`, email)
	return err
}

// CountSubscribers returns the total number of waitlist entries.
func (r *Repository) CountSubscribers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM waitlist`); err != nil {
		return 0, err
	}
	return count, nil
}

// ListRecipients returns the email addresses eligible for a broadcast,
// newest signups first. Unsubscribed entries are always excluded;
// confirmedOnly additionally restricts to confirmed ones. A limit of 0
// means no limit.
func (r *Repository) ListRecipients(ctx context.Context, confirmedOnly bool, limit int) ([]string, error) {
	query := `SELECT email FROM waitlist WHERE unsubscribed = 0`
	if confirmedOnly {
		query += ` AND confirmed = 1`
	}
	query += ` ORDER BY created_at DESC`

	var emails []string
	var err error
	if limit > 0 {
		err = r.db.SelectContext(ctx, &emails, query+` LIMIT ?`, limit)
	} else {
		err = r.db.SelectContext(ctx, &emails, query)
	}
	if err != nil {
		return nil, err
	}
	return emails, nil
}

// ListSubscribers returns subscribers ordered by creation date (newest
// first). A limit of 0 means no limit.
func (r *Repository) ListSubscribers(ctx context.Context, limit int) ([]models.Subscriber, error) {
	query := `SELECT * FROM waitlist ORDER BY created_at DESC`

	var subs []models.Subscriber
	var err error
	if limit > 0 {
		err = r.db.SelectContext(ctx, &subs, query+` LIMIT ?`, limit)
	} else {
		err = r.db.SelectContext(ctx, &subs, query)
	}
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// Stats reads the waitlist_stats view.
func (r *Repository) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	if err := r.db.GetContext(ctx, &stats, `SELECT * FROM waitlist_stats`); err != nil {
		return nil, err
	}
	return &stats, nil
}
