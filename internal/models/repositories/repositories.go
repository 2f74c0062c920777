package repositories

import (
	"database/sql"
	"time"
)

type BaseModel struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}

type Tournament struct {
	BaseModel
	Key      string         `db:"identity_key"`
	Name     string         `db:"name"`
	Dates    string         `db:"dates"`
	ImageURL sql.NullString `db:"image_url"`
	URL      sql.NullString `db:"url"`
	Source   string         `db:"source"`
	Location string         `db:"location"`
	Status   string         `db:"status"`
}
