package repository

import (
	"errors"
	"log"
	"time"

	"moments-backend/internal/moment/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationInsertStrategy names one way of writing a notification row.
// Deployments differ in which writes their row-level policies allow, so the
// insert walks an ordered chain of strategies instead of branching inline.
type NotificationInsertStrategy string

const (
	// StrategyRPC calls a stored procedure that inserts with elevated rights
	StrategyRPC NotificationInsertStrategy = "rpc"
	// StrategyInsert is the plain authorized table insert
	StrategyInsert NotificationInsertStrategy = "insert"
	// StrategyRaw issues the insert as raw SQL, bypassing the ORM layer
	StrategyRaw NotificationInsertStrategy = "raw"
)

// ParseStrategies filters a configured list down to known strategies
func ParseStrategies(names []string) []NotificationInsertStrategy {
	var strategies []NotificationInsertStrategy
	for _, name := range names {
		switch s := NotificationInsertStrategy(name); s {
		case StrategyRPC, StrategyInsert, StrategyRaw:
			strategies = append(strategies, s)
		default:
			log.Printf("[NotificationRepo] Ignoring unknown insert strategy %q", name)
		}
	}
	return strategies
}

// notificationRepository implements NotificationRepository using GORM
type notificationRepository struct {
	db         *gorm.DB
	strategies []NotificationInsertStrategy
}

// NewNotificationRepository creates a NotificationRepository that inserts
// through the given strategy chain, in order.
func NewNotificationRepository(db *gorm.DB, strategies []NotificationInsertStrategy) NotificationRepository {
	if len(strategies) == 0 {
		strategies = []NotificationInsertStrategy{StrategyInsert}
	}
	return &notificationRepository{db: db, strategies: strategies}
}

func (r *notificationRepository) FindByRecipient(email string) ([]domain.Notification, error) {
	var rows []notificationRow
	err := r.db.Where("recipient = ?", domain.NormalizeEmail(email)).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	notifications := make([]domain.Notification, 0, len(rows))
	for i := range rows {
		notifications = append(notifications, notificationFromRow(&rows[i]))
	}
	return notifications, nil
}

func (r *notificationRepository) Insert(n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.Recipient = domain.NormalizeEmail(n.Recipient)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	var lastErr error
	for _, s := range r.strategies {
		var err error
		switch s {
		case StrategyRPC:
			err = r.insertViaRPC(n)
		case StrategyInsert:
			err = r.insertDirect(n)
		case StrategyRaw:
			err = r.insertRaw(n)
		}
		if err == nil {
			return nil
		}
		log.Printf("[NotificationRepo] %s insert failed for %s: %v", s, n.Recipient, err)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("no notification insert strategy configured")
	}
	return lastErr
}

func (r *notificationRepository) MarkRead(id string) error {
	return r.db.Model(&notificationRow{}).Where("id = ?", id).
		Update("read", true).Error
}

func (r *notificationRepository) insertViaRPC(n *domain.Notification) error {
	return r.db.Exec("SELECT create_notification(?, ?, ?, ?)",
		n.Recipient, n.Sender, n.Message, n.Link).Error
}

func (r *notificationRepository) insertDirect(n *domain.Notification) error {
	row := notificationRow{
		ID:        n.ID,
		Recipient: n.Recipient,
		Sender:    n.Sender,
		Message:   n.Message,
		Link:      n.Link,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	return r.db.Create(&row).Error
}

func (r *notificationRepository) insertRaw(n *domain.Notification) error {
	return r.db.Exec(
		`INSERT INTO notifications (id, recipient, sender, message, link, "read", created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Recipient, n.Sender, n.Message, n.Link, n.Read, n.CreatedAt,
	).Error
}
