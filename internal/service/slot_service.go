package service

import (
	"context"
	"errors"
	"time"

	"medibook-backend/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrSlotTaken is returned when a doctor slot is already claimed
var ErrSlotTaken = errors.New("slot is already booked")

const (
	// Timeout for individual Redis operations
	redisSlotTimeout = 5 * time.Second

	// Batch size for startup sync
	syncBatchSize = 500
)

// SlotService guards doctor appointment slots through Redis. A booking claims
// its slot with SETNX before the appointment row is inserted, so two patients
// racing for the same doctor/date/time can never both get it. Claims expire a
// day after the slot date just in case a release was missed.
type SlotService struct {
	db          *gorm.DB
	log         *logrus.Logger
	redisClient *redis.Client
}

func NewSlotService(db *gorm.DB, log *logrus.Logger, redisClient *redis.Client) *SlotService {
	return &SlotService{
		db:          db,
		log:         log,
		redisClient: redisClient,
	}
}

// Claim atomically reserves the slot. Returns ErrSlotTaken when another
// booking holds it.
func (s *SlotService) Claim(ctx context.Context, doctorID uuid.UUID, slotDate time.Time, slotTime string) error {
	key := entity.SlotKey(doctorID, slotDate, slotTime)
	ttl := time.Until(slotDate.Add(48 * time.Hour))
	if ttl <= 0 {
		ttl = redisSlotTimeout
	}

	ok, err := s.redisClient.SetNX(ctx, key, "booked", ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrSlotTaken
	}
	return nil
}

// Release frees a slot after a cancellation or a failed booking insert.
// Failures are non-fatal: the startup sync rebuilds claims from the store.
func (s *SlotService) Release(ctx context.Context, doctorID uuid.UUID, slotDate time.Time, slotTime string) error {
	key := entity.SlotKey(doctorID, slotDate, slotTime)
	if err := s.redisClient.Del(ctx, key).Err(); err != nil {
		s.log.Warnf("Failed to release slot %s: %+v", key, err)
		return err
	}
	return nil
}

// SyncFromDB rebuilds slot claims from active appointments with future slots.
// Run at startup so Redis and the store agree after a restart. Pipelines are
// executed per batch to bound memory on large tables.
func (s *SlotService) SyncFromDB(ctx context.Context) error {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	offset := 0

	for {
		var appointments []entity.Appointment
		err := s.db.WithContext(ctx).
			Where("status = ? AND slot_date >= ?", entity.AppointmentStatusActive, today).
			Order("created_at").
			Limit(syncBatchSize).
			Offset(offset).
			Find(&appointments).Error
		if err != nil {
			return err
		}
		if len(appointments) == 0 {
			break
		}

		pipe := s.redisClient.Pipeline()
		for i := range appointments {
			a := &appointments[i]
			ttl := time.Until(a.SlotDate.Add(48 * time.Hour))
			if ttl <= 0 {
				continue
			}
			pipe.SetNX(ctx, a.SlotKeyFor(), "booked", ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}

		s.log.Infof("Slot sync: restored %d claims (offset %d)", len(appointments), offset)
		offset += len(appointments)
	}

	return nil
}
