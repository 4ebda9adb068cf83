package model

import "time"

type PushSubscription struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Endpoint  string    `db:"endpoint" json:"endpoint"`
	P256dhKey string    `db:"p256dh_key" json:"p256dh_key"`
	AuthKey   string    `db:"auth_key" json:"auth_key"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
