package ordersource

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// OrderRecord is the stored shape of an order in the reference order
// service.
type OrderRecord struct {
	gorm.Model
	PublicID        string `gorm:"unique_index"`
	OrderNumber     string
	TableNumber     string
	CustomerName    string
	Type            string
	Status          string
	PlacedAt        time.Time
	StatusUpdatedAt *time.Time
	Items           []LineRecord `gorm:"foreignkey:OrderRecordID"`
}

// LineRecord is one stored dish line.
type LineRecord struct {
	gorm.Model
	OrderRecordID uint
	Name          string
	Quantity      int
	Price         float64
	Note          string
}

// Store is the sqlite-backed order store of the reference order service.
type Store struct {
	db *gorm.DB
}

// OpenStore opens (and migrates) the order database at path.
func OpenStore(path string) (*Store, error) {
	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open order database: %w", err)
	}
	if err := db.AutoMigrate(&OrderRecord{}, &LineRecord{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate order schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns every stored order in wire form.
func (s *Store) List() ([]Order, error) {
	var records []OrderRecord
	if err := s.db.Preload("Items").Find(&records).Error; err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(records))
	for _, rec := range records {
		orders = append(orders, rec.toWire())
	}
	return orders, nil
}

// Get returns one order by its public id.
func (s *Store) Get(publicID string) (Order, error) {
	var rec OrderRecord
	if err := s.db.Preload("Items").Where("public_id = ?", publicID).First(&rec).Error; err != nil {
		return Order{}, err
	}
	return rec.toWire(), nil
}

// Create stores a newly placed order.
func (s *Store) Create(o Order) error {
	rec := OrderRecord{
		PublicID:     o.ID,
		OrderNumber:  o.OrderNumber,
		TableNumber:  o.TableNumber,
		CustomerName: o.CustomerName,
		Type:         o.Type,
		Status:       string(o.Status),
		PlacedAt:     o.CreatedAt,
	}
	for _, line := range o.Items {
		rec.Items = append(rec.Items, LineRecord{
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.Price,
			Note:     line.Note,
		})
	}
	return s.db.Create(&rec).Error
}

// SetStatus updates the whole-order status for a public id.
func (s *Store) SetStatus(publicID string, status Status) error {
	var rec OrderRecord
	if err := s.db.Where("public_id = ?", publicID).First(&rec).Error; err != nil {
		return err
	}
	now := time.Now()
	rec.Status = string(status)
	rec.StatusUpdatedAt = &now
	return s.db.Save(&rec).Error
}

func (rec OrderRecord) toWire() Order {
	o := Order{
		ID:              rec.PublicID,
		OrderNumber:     rec.OrderNumber,
		TableNumber:     rec.TableNumber,
		CustomerName:    rec.CustomerName,
		Type:            rec.Type,
		Status:          Status(rec.Status),
		CreatedAt:       rec.PlacedAt,
		StatusUpdatedAt: rec.StatusUpdatedAt,
	}
	for _, line := range rec.Items {
		o.Items = append(o.Items, Line{
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.Price,
			Note:     line.Note,
		})
	}
	return o
}
