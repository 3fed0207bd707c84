package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Ebook is a catalog entry. The file itself lives in object storage under
// FileKey; clients download through short-lived presigned URLs.
type Ebook struct {
	bun.BaseModel `bun:"table:ebooks,alias:eb"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Author      string    `bun:"author,notnull" json:"author"`
	Subject     string    `bun:"subject" json:"subject"`
	FileKey     string    `bun:"file_key,notnull" json:"-"`
	CoverKey    string    `bun:"cover_key" json:"-"`
	Premium     bool      `bun:"premium,notnull,default:false" json:"premium"`
	PublishedAt time.Time `bun:"published_at" json:"published_at"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"-"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" json:"-"`
}
