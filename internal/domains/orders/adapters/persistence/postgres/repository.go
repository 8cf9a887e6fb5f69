package postgres

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// orderSequence names the row in order_id_sequences holding the id high-water mark.
const orderSequence = "orders"

// Repository persists orders in PostgreSQL using GORM. Schema is owned by platform/migrations.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

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

type sequenceRecord struct {
	Name   string `gorm:"primaryKey;column:name;size:64"`
	LastID int64  `gorm:"column:last_id"`
}

func (sequenceRecord) TableName() string { return "order_id_sequences" }

func (r *Repository) List(ctx context.Context) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	saved, err := r.SaveAll(ctx, []*domain.Order{order})
	if err != nil {
		return nil, err
	}
	return saved[0], nil
}

func (r *Repository) SaveAll(ctx context.Context, orders []*domain.Order) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	records := make([]orderRecord, 0, len(orders))
	for _, order := range orders {
		if err := validate(order); err != nil {
			return nil, err
		}
		records = append(records, toRecord(order))
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range records {
			if err := upsert(tx, &records[i]); err != nil {
				return err
			}
			if err := raiseSequence(tx, records[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	saved := make([]*domain.Order, 0, len(records))
	for i := range records {
		saved = append(saved, records[i].toDomain())
	}
	return saved, nil
}

// Delete removes an order; a missing id is not an error.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&orderRecord{}, id).Error
}

func (r *Repository) NextID(ctx context.Context) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var seq sequenceRecord
	err := r.db.WithContext(ctx).First(&seq, "name = ?", orderSequence).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return successor(seq.LastID)
}

// Create locks the sequence row so concurrent creators are serialized on id assignment.
func (r *Repository) Create(ctx context.Context, build func(id int64) (*domain.Order, error)) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if build == nil {
		return nil, errors.New("order builder is nil")
	}
	var created orderRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		last, err := lockSequence(tx)
		if err != nil {
			return err
		}
		id, err := successor(last)
		if err != nil {
			return err
		}
		order, err := build(id)
		if err != nil {
			return err
		}
		if err := validate(order); err != nil {
			return err
		}
		created = toRecord(order)
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		return raiseSequence(tx, created.ID)
	})
	if err != nil {
		return nil, err
	}
	return created.toDomain(), nil
}

// Update reads the row FOR UPDATE, applies mutate and writes it back in the same transaction.
func (r *Repository) Update(ctx context.Context, id int64, mutate func(order *domain.Order) error) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if mutate == nil {
		return nil, errors.New("order mutation is nil")
	}
	var updated orderRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record orderRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		order := record.toDomain()
		if err := mutate(order); err != nil {
			return err
		}
		order.ID = id
		if err := validate(order); err != nil {
			return err
		}
		updated = toRecord(order)
		updated.CreatedAt = record.CreatedAt
		return tx.Save(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return updated.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func upsert(tx *gorm.DB, record *orderRecord) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"product_id": record.ProductID,
			"quantity":   record.Quantity,
			"order_date": record.Date,
			"status":     record.Status,
			"complete":   record.Complete,
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(record).Error
}

func lockSequence(tx *gorm.DB) (int64, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&sequenceRecord{Name: orderSequence}).Error; err != nil {
		return 0, err
	}
	var seq sequenceRecord
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&seq, "name = ?", orderSequence).Error; err != nil {
		return 0, err
	}
	return seq.LastID, nil
}

func successor(last int64) (int64, error) {
	if last == math.MaxInt64 {
		return 0, ports.ErrIDsExhausted
	}
	return last + 1, nil
}

// raiseSequence moves the high-water mark up to id; it never lowers it.
func raiseSequence(tx *gorm.DB, id int64) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_id": gorm.Expr("GREATEST(order_id_sequences.last_id, EXCLUDED.last_id)"),
		}),
	}).Create(&sequenceRecord{Name: orderSequence, LastID: id}).Error
}

func validate(order *domain.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	if err := order.UpdateStatus(order.Status); err != nil {
		return err
	}
	return order.Validate()
}

func toRecord(order *domain.Order) orderRecord {
	clone := order.Clone()
	return orderRecord{
		ID:        clone.ID,
		ProductID: clone.ProductID,
		Quantity:  clone.Quantity,
		Date:      clone.Date,
		Status:    string(clone.Status),
		Complete:  clone.Complete,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:        r.ID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		Status:    domain.Status(r.Status),
		Complete:  r.Complete,
	}
	if r.Date != nil {
		date := r.Date.UTC()
		order.Date = &date
	}
	return order
}
