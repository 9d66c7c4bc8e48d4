package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/models"
)

// Audit results.
const (
	AuditResultSuccess = "success"
	AuditResultFailure = "failure"
)

// AuditEntry is one change to fleet or access-control data. Resource holds the id of the
// record the action touched.
type AuditEntry struct {
	UserID    *string
	Username  string
	Action    string
	Resource  string
	Result    string
	IPAddress string
	UserAgent string
	Metadata  map[string]any
}

// AuditFilters narrows audit queries. Zero values match everything.
type AuditFilters struct {
	UserID   string
	Action   string
	Result   string
	Resource string
	Since    *time.Time
	Until    *time.Time
}

// AuditListOptions combines paging and search with AuditFilters.
type AuditListOptions struct {
	ListOptions
	Filters AuditFilters
}

// AuditService records who changed what and serves the trail back to administrators.
type AuditService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAuditService constructs an AuditService.
func NewAuditService(db *gorm.DB) (*AuditService, error) {
	if db == nil {
		return nil, errors.New("audit service: db is required")
	}
	return &AuditService{db: db, now: time.Now}, nil
}

// Log appends entry to the trail.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	row := models.AuditLog{
		Action:    strings.TrimSpace(entry.Action),
		Resource:  strings.TrimSpace(entry.Resource),
		Result:    strings.TrimSpace(entry.Result),
		Username:  strings.TrimSpace(entry.Username),
		IPAddress: strings.TrimSpace(entry.IPAddress),
		UserAgent: strings.TrimSpace(entry.UserAgent),
	}
	if row.Action == "" || row.Result == "" {
		return errors.New("audit service: action and result are required")
	}
	if entry.UserID != nil {
		if id := strings.TrimSpace(*entry.UserID); id != "" {
			row.UserID = &id
		}
	}
	if len(entry.Metadata) > 0 {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("audit service: encode metadata: %w", err)
		}
		row.Metadata = string(encoded)
	}

	if err := s.db.WithContext(ensureContext(ctx)).Create(&row).Error; err != nil {
		return fmt.Errorf("audit service: write entry: %w", err)
	}
	return nil
}

// List returns a page of matching entries, newest first. The free-text query matches action,
// username and resource.
func (s *AuditService) List(ctx context.Context, opts AuditListOptions) (*ListResult[models.AuditLog], error) {
	query := s.filtered(ensureContext(ctx), opts.Filters)
	if q := strings.TrimSpace(opts.Query); q != "" {
		pattern := likePattern(q)
		query = query.Where("LOWER(action) LIKE ? OR LOWER(username) LIKE ? OR LOWER(resource) LIKE ?", pattern, pattern, pattern)
	}

	result, err := paginate[models.AuditLog](query, opts.ListOptions, "created_at DESC, id DESC", "User")
	if err != nil {
		return nil, fmt.Errorf("audit service: list: %w", err)
	}
	return result, nil
}

// Export returns every matching entry, newest first.
func (s *AuditService) Export(ctx context.Context, filters AuditFilters) ([]models.AuditLog, error) {
	var rows []models.AuditLog
	err := s.filtered(ensureContext(ctx), filters).
		Preload("User").
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("audit service: export: %w", err)
	}
	return rows, nil
}

// CleanupOlderThan deletes entries older than retentionDays and returns how many went.
func (s *AuditService) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("audit service: retention must be positive, got %d days", retentionDays)
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	result := s.db.WithContext(ensureContext(ctx)).
		Where("created_at < ?", cutoff).
		Delete(&models.AuditLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("audit service: cleanup: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *AuditService) filtered(ctx context.Context, f AuditFilters) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.AuditLog{})

	exact := []struct {
		column string
		value  string
	}{
		{"user_id", f.UserID},
		{"action", f.Action},
		{"result", f.Result},
		{"resource", f.Resource},
	}
	for _, cond := range exact {
		if v := strings.TrimSpace(cond.value); v != "" {
			query = query.Where(cond.column+" = ?", v)
		}
	}

	if f.Since != nil {
		query = query.Where("created_at >= ?", *f.Since)
	}
	if f.Until != nil {
		query = query.Where("created_at <= ?", *f.Until)
	}
	return query
}
