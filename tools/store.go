package tools

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ticket is a persisted support ticket.
type Ticket struct {
	ID          uint   `gorm:"primaryKey"`
	TicketID    string `gorm:"uniqueIndex;size:32"`
	Description string
	Priority    string `gorm:"size:16"`
	Category    string `gorm:"size:32"`
	CreatedAt   time.Time
}

// Appointment is a persisted scheduled support call.
type Appointment struct {
	ID            uint   `gorm:"primaryKey"`
	AppointmentID string `gorm:"uniqueIndex;size:32"`
	Date          string `gorm:"size:10"`
	Time          string `gorm:"size:5"`
	IssueSummary  string
	CallType      string `gorm:"size:32"`
	Status        string `gorm:"size:16"`
	CreatedAt     time.Time
}

// Store persists tickets and appointments created by the support actions.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a store over an open GORM connection and migrates the
// schema.
func NewStore(db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.AutoMigrate(&Ticket{}, &Appointment{}); err != nil {
		return nil, fmt.Errorf("migrate action store: %w", err)
	}
	return &Store{
		db:     db,
		logger: logger.With(zap.String("component", "action_store")),
	}, nil
}

// SaveTicket inserts a ticket record.
func (s *Store) SaveTicket(t *Ticket) error {
	if err := s.db.Create(t).Error; err != nil {
		return fmt.Errorf("save ticket: %w", err)
	}
	s.logger.Info("ticket created",
		zap.String("ticket_id", t.TicketID),
		zap.String("priority", t.Priority),
		zap.String("category", t.Category),
	)
	return nil
}

// SaveAppointment inserts an appointment record.
func (s *Store) SaveAppointment(a *Appointment) error {
	if err := s.db.Create(a).Error; err != nil {
		return fmt.Errorf("save appointment: %w", err)
	}
	s.logger.Info("appointment scheduled",
		zap.String("appointment_id", a.AppointmentID),
		zap.String("date", a.Date),
		zap.String("time", a.Time),
	)
	return nil
}

// TicketByID looks up a ticket by its public identifier.
func (s *Store) TicketByID(ticketID string) (*Ticket, error) {
	var t Ticket
	if err := s.db.Where("ticket_id = ?", ticketID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// AppointmentByID looks up an appointment by its public identifier.
func (s *Store) AppointmentByID(appointmentID string) (*Appointment, error) {
	var a Appointment
	if err := s.db.Where("appointment_id = ?", appointmentID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
