package database

import "time"

// TableRow is a registered table. Tables are created lazily the first time
// an order or session references them.
type TableRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// OrderRow is one submitted order on a table.
type OrderRow struct {
	ID        int64     `db:"id"`
	TableID   int64     `db:"table_id"`
	OrderedAt time.Time `db:"ordered_at"`
	CreatedBy int64     `db:"created_by"`
}

// OrderItemRow is a single unit of an ordered item.
type OrderItemRow struct {
	ID       int64  `db:"id"`
	OrderID  int64  `db:"order_id"`
	ItemName string `db:"item_name"`
}

// SessionRow is one started game session on a table.
type SessionRow struct {
	ID        int64     `db:"id"`
	TableID   int64     `db:"table_id"`
	StartedAt time.Time `db:"started_at"`
	CreatedBy int64     `db:"created_by"`
}

// SessionPlayerRow is one seat occupied at session start.
type SessionPlayerRow struct {
	ID           int64     `db:"id"`
	SessionID    int64     `db:"session_id"`
	PlayerNumber int       `db:"player_number"`
	JoinedAt     time.Time `db:"joined_at"`
}
