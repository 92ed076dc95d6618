package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/artin59/3311-Project-sub001/internal/booking"
	"github.com/artin59/3311-Project-sub001/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	booking.Repository
	booking.AccountDirectory
	SubscriptionStore

	SeedRooms(ctx context.Context, rooms []model.Room) error
	SeedAccounts(ctx context.Context, accounts []model.Account) error
	DB() *gorm.DB
}

// SubscriptionStore persists browser push subscriptions.
type SubscriptionStore interface {
	SaveSubscription(ctx context.Context, sub *model.PushSubscription) error
	FindSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	FindSubscriptionsByUser(ctx context.Context, userID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) (bool, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// firstOrNil maps gorm's not-found error to a nil record.
func firstOrNil[T any](q *gorm.DB, conds ...any) (*T, error) {
	var v T
	err := q.First(&v, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// --- bookings ---

func (s *gormStore) SaveBooking(ctx context.Context, b *model.Booking) error {
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("failed to save booking %s: %w", b.ID, err)
	}
	return nil
}

func (s *gormStore) UpdateBooking(ctx context.Context, b *model.Booking) error {
	if err := s.db.WithContext(ctx).Save(b).Error; err != nil {
		return fmt.Errorf("failed to update booking %s: %w", b.ID, err)
	}
	return nil
}

func (s *gormStore) DeleteBooking(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&model.Booking{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete booking %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) FindBookingByID(ctx context.Context, id string) (*model.Booking, error) {
	return firstOrNil[model.Booking](s.db.WithContext(ctx), "id = ?", id)
}

func (s *gormStore) findBookings(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := s.db.WithContext(ctx).Where(query, args...).Order("date, start_time").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *gormStore) FindBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return s.findBookings(ctx, "user_id = ?", userID)
}

func (s *gormStore) FindBookingsByRoom(ctx context.Context, roomNumber string) ([]model.Booking, error) {
	return s.findBookings(ctx, "room_number = ?", roomNumber)
}

func (s *gormStore) FindBookingsByRoomDate(ctx context.Context, roomNumber, date string) ([]model.Booking, error) {
	return s.findBookings(ctx, "room_number = ? AND date = ?", roomNumber, date)
}

func (s *gormStore) FindBookingsByStatus(ctx context.Context, status model.BookingStatus) ([]model.Booking, error) {
	return s.findBookings(ctx, "status = ?", status)
}

// --- rooms ---

func (s *gormStore) SaveRoom(ctx context.Context, r *model.Room) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to save room %s: %w", r.Number, err)
	}
	return nil
}

func (s *gormStore) UpdateRoom(ctx context.Context, r *model.Room) error {
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return fmt.Errorf("failed to update room %s: %w", r.Number, err)
	}
	return nil
}

func (s *gormStore) FindRoomByID(ctx context.Context, id string) (*model.Room, error) {
	return firstOrNil[model.Room](s.db.WithContext(ctx), "id = ?", id)
}

func (s *gormStore) FindRoomByNumber(ctx context.Context, number string) (*model.Room, error) {
	return firstOrNil[model.Room](s.db.WithContext(ctx), "number = ?", number)
}

func (s *gormStore) FindAllRooms(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	if err := s.db.WithContext(ctx).Order("number").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// Apply commits every write of one engine operation in a single transaction.
func (s *gormStore) Apply(ctx context.Context, ch booking.Change) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(ch.Delete) > 0 {
			if err := tx.Where("id IN ?", ch.Delete).Delete(&model.Booking{}).Error; err != nil {
				return fmt.Errorf("failed to delete bookings %v: %w", ch.Delete, err)
			}
		}
		for _, b := range ch.Save {
			if err := tx.Create(b).Error; err != nil {
				return fmt.Errorf("failed to create booking %s: %w", b.ID, err)
			}
		}
		for _, b := range ch.Update {
			if err := tx.Save(b).Error; err != nil {
				return fmt.Errorf("failed to update booking %s: %w", b.ID, err)
			}
		}
		for _, r := range ch.Rooms {
			if err := tx.Save(r).Error; err != nil {
				return fmt.Errorf("failed to update room %s: %w", r.Number, err)
			}
		}
		return nil
	})
}

// --- accounts ---

func (s *gormStore) FindAccount(ctx context.Context, userID string) (*model.Account, error) {
	return firstOrNil[model.Account](s.db.WithContext(ctx), "id = ?", userID)
}

// SeedRooms inserts rooms that do not exist yet and refreshes the
// descriptive fields of those that do. Lifecycle state is never touched.
func (s *gormStore) SeedRooms(ctx context.Context, rooms []model.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	log.Printf("Batch upserting %d rooms...", len(rooms))
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "number"}},
		DoUpdates: clause.AssignmentColumns([]string{"building", "capacity"}),
	}).Create(&rooms).Error; err != nil {
		return fmt.Errorf("batch upsert rooms failed: %w", err)
	}
	return nil
}

func (s *gormStore) SeedAccounts(ctx context.Context, accounts []model.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	log.Printf("Batch upserting %d accounts...", len(accounts))
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "category", "hourly_rate"}),
	}).Create(&accounts).Error; err != nil {
		return fmt.Errorf("batch upsert accounts failed: %w", err)
	}
	return nil
}

// --- push subscriptions ---

func (s *gormStore) SaveSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(sub).Error
}

func (s *gormStore) FindSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	return firstOrNil[model.PushSubscription](s.db.WithContext(ctx), "endpoint = ?", endpoint)
}

func (s *gormStore) FindSubscriptionsByUser(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&model.PushSubscription{}, "endpoint = ?", endpoint)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
