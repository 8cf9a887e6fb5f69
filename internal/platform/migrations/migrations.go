package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the schema for the orders bounded context.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&orderSequenceRecord{},
	)
}

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID        int64      `gorm:"primaryKey;autoIncrement:false;column:id"`
	ProductID int64      `gorm:"column:product_id;index"`
	Quantity  int64      `gorm:"column:quantity"`
	Date      *time.Time `gorm:"column:order_date"`
	Status    string     `gorm:"column:status;type:varchar(32);index"`
	Complete  bool       `gorm:"column:complete"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// orderSequenceRecord holds the id high-water mark so deleted ids are never reissued.
type orderSequenceRecord struct {
	Name   string `gorm:"primaryKey;column:name;size:64"`
	LastID int64  `gorm:"column:last_id"`
}

func (orderSequenceRecord) TableName() string { return "order_id_sequences" }
