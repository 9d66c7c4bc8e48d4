package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/database"
	"github.com/charlesng35/fleetcn/internal/models"
	"github.com/charlesng35/fleetcn/internal/permissions"
	"github.com/charlesng35/fleetcn/internal/realtime"
	"github.com/charlesng35/fleetcn/internal/services"
	"github.com/charlesng35/fleetcn/pkg/logger"
	"github.com/charlesng35/fleetcn/pkg/metrics"
)

const (
	defaultWarnDays = 30
	urgentDays      = 7

	kindCertificate = "certificate"
	kindLicense     = "license"
)

// ExpiryDependencies are the services the expiry scanner reads from and notifies through.
// Hub is optional.
type ExpiryDependencies struct {
	DB            *gorm.DB
	Certificates  *services.CertificateService
	Licenses      *services.LicenseService
	Users         *services.UserService
	Checker       *permissions.Checker
	Notifications *services.NotificationService
	Hub           *realtime.Hub
}

// ExpiryScanner notifies users about certificates and licences that are about to expire.
// A user is notified about a document only when their snapshot allows viewing the
// document's menu, and only once per document.
type ExpiryScanner struct {
	deps     ExpiryDependencies
	warnDays int
	now      func() time.Time
	log      *zap.Logger
}

// ExpiryReport summarises a single scan.
type ExpiryReport struct {
	Documents int
	Notices   int
	Skipped   int
}

// ExpiringDocument is the payload pushed on the expiry stream.
type ExpiringDocument struct {
	Kind         string    `json:"kind"`
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	ExpiresAt    time.Time `json:"expires_at"`
	DaysLeft     int       `json:"days_left"`
}

// NewExpiryDependencies builds every service the scanner needs on top of db. hub may be nil.
func NewExpiryDependencies(db *gorm.DB, hub *realtime.Hub) (ExpiryDependencies, error) {
	deps := ExpiryDependencies{DB: db, Hub: hub}

	audit, err := services.NewAuditService(db)
	if err != nil {
		return deps, err
	}
	if deps.Certificates, err = services.NewCertificateService(db, audit); err != nil {
		return deps, err
	}
	if deps.Licenses, err = services.NewLicenseService(db, audit); err != nil {
		return deps, err
	}
	if deps.Users, err = services.NewUserService(db, audit); err != nil {
		return deps, err
	}
	if deps.Checker, err = permissions.NewChecker(db); err != nil {
		return deps, err
	}
	if deps.Notifications, err = services.NewNotificationService(db, hub); err != nil {
		return deps, err
	}
	return deps, nil
}

// NewExpiryScanner validates the dependencies and builds a scanner. warnDays of zero or
// less falls back to 30.
func NewExpiryScanner(deps ExpiryDependencies, warnDays int, now func() time.Time) (*ExpiryScanner, error) {
	if deps.DB == nil || deps.Certificates == nil || deps.Licenses == nil || deps.Users == nil || deps.Checker == nil || deps.Notifications == nil {
		return nil, errors.New("expiry scanner: missing dependency")
	}
	if warnDays <= 0 {
		warnDays = defaultWarnDays
	}
	if now == nil {
		now = time.Now
	}
	return &ExpiryScanner{
		deps:     deps,
		warnDays: warnDays,
		now:      now,
		log:      logger.WithModule("maintenance.expiry"),
	}, nil
}

// Scan finds documents expiring within the warning window and notifies every eligible
// user. Failures for individual documents or users are collected and returned together;
// the rest of the scan still runs.
func (s *ExpiryScanner) Scan(ctx context.Context) (ExpiryReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	now := s.now().UTC()
	until := now.AddDate(0, 0, s.warnDays)

	var errs error
	var report ExpiryReport

	documents, err := s.collect(ctx, now, until)
	errs = multierr.Append(errs, err)
	report.Documents = len(documents)

	snapshots, err := s.snapshots(ctx)
	errs = multierr.Append(errs, err)

	for _, doc := range documents {
		resource := permissions.ResourceCertificates
		if doc.Kind == kindLicense {
			resource = permissions.ResourceLicenses
		}

		recipients := make([]string, 0)
		for userID, snapshot := range snapshots {
			if !permissions.HasPermission(snapshot, resource, permissions.ActionView) {
				continue
			}

			sent, err := s.notify(ctx, userID, doc)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			if !sent {
				report.Skipped++
				continue
			}
			report.Notices++
			recipients = append(recipients, userID)
			metrics.ExpiryNotices.WithLabelValues(doc.Kind).Inc()
		}

		if s.deps.Hub != nil && len(recipients) > 0 {
			s.deps.Hub.BroadcastToUsers(realtime.StreamExpiry, recipients, realtime.Message{
				Event: doc.Kind + ".expiring",
				Data:  doc,
			})
		}
	}

	if err := database.UpsertSystemSetting(ctx, s.deps.DB, database.SettingLastExpiryScan, now.Format(time.RFC3339)); err != nil {
		errs = multierr.Append(errs, err)
	}

	s.log.Info("expiry scan finished",
		zap.Int("documents", report.Documents),
		zap.Int("notices", report.Notices),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", len(multierr.Errors(errs))),
	)
	return report, errs
}

func (s *ExpiryScanner) collect(ctx context.Context, from, to time.Time) ([]ExpiringDocument, error) {
	var errs error
	out := make([]ExpiringDocument, 0)

	certificates, err := s.deps.Certificates.ExpiringBetween(ctx, from, to)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	for _, cert := range certificates {
		out = append(out, expiringDocument(kindCertificate, cert.ID, cert.Name, cert.EmployeeID, cert.Employee, cert.ExpiresAt, from))
	}

	licenses, err := s.deps.Licenses.ExpiringBetween(ctx, from, to)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	for _, lic := range licenses {
		title := fmt.Sprintf("Class %s license %s", lic.Class, lic.Number)
		out = append(out, expiringDocument(kindLicense, lic.ID, title, lic.EmployeeID, lic.Employee, lic.ExpiresAt, from))
	}

	return out, errs
}

func (s *ExpiryScanner) snapshots(ctx context.Context) (map[string][]permissions.Record, error) {
	userIDs, err := s.deps.Users.ActiveUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	var errs error
	out := make(map[string][]permissions.Record, len(userIDs))
	for _, id := range userIDs {
		snapshot, err := s.deps.Checker.Snapshot(ctx, id)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out[id] = snapshot
	}
	return out, errs
}

func (s *ExpiryScanner) notify(ctx context.Context, userID string, doc ExpiringDocument) (bool, error) {
	notificationType := doc.Kind + ".expiring"
	actionURL := "/" + doc.Kind + "s/" + doc.ID

	exists, err := s.deps.Notifications.Exists(ctx, userID, notificationType, doc.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	severity := models.SeverityWarning
	if doc.DaysLeft <= urgentDays {
		severity = models.SeverityError
	}

	_, err = s.deps.Notifications.Create(ctx, services.CreateNotificationInput{
		UserID:       userID,
		Type:         notificationType,
		ResourceType: doc.Kind,
		ResourceID:   doc.ID,
		Title:        fmt.Sprintf("%s expires in %s", doc.Title, pluralDays(doc.DaysLeft)),
		Message:      fmt.Sprintf("%s held by %s expires on %s.", doc.Title, doc.EmployeeName, doc.ExpiresAt.Format("2006-01-02")),
		Severity:     severity,
		ActionURL:    actionURL,
		Metadata: map[string]any{
			"employee_id": doc.EmployeeID,
			"expires_at":  doc.ExpiresAt.Format(time.RFC3339),
			"days_left":   doc.DaysLeft,
		},
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func expiringDocument(kind, id, title, employeeID string, employee *models.Employee, expiresAt *time.Time, now time.Time) ExpiringDocument {
	doc := ExpiringDocument{
		Kind:       kind,
		ID:         id,
		Title:      strings.TrimSpace(title),
		EmployeeID: employeeID,
	}
	if employee != nil {
		doc.EmployeeName = strings.TrimSpace(employee.FirstName + " " + employee.LastName)
	}
	if expiresAt != nil {
		doc.ExpiresAt = expiresAt.UTC()
		doc.DaysLeft = int(doc.ExpiresAt.Sub(now).Hours() / 24)
	}
	return doc
}

func pluralDays(n int) string {
	switch n {
	case 0:
		return "less than a day"
	case 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", n)
	}
}
