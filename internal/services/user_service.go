package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/models"
	"github.com/charlesng35/fleetcn/pkg/crypto"
	apperrors "github.com/charlesng35/fleetcn/pkg/errors"
	"github.com/charlesng35/fleetcn/pkg/validator"
)

var (
	ErrUserNotFound      = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	ErrRootUserImmutable = apperrors.New("USER_ROOT_IMMUTABLE", "The root account cannot be deactivated or deleted", http.StatusBadRequest)
)

const duplicateAccountMessage = "username or email already exists"

// CreateUserInput carries a new account. IsActive defaults to true and root accounts
// without an explicit role are bound to the administrator role.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	RoleID    string
	IsRoot    bool
	IsActive  *bool
}

// account validates the input and returns the row to insert, password already hashed.
func (in CreateUserInput) account() (*models.User, error) {
	user := &models.User{
		Username:  strings.TrimSpace(in.Username),
		Email:     canonicalEmail(in.Email),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		IsRoot:    in.IsRoot,
		IsActive:  in.IsActive == nil || *in.IsActive,
	}
	switch {
	case user.Username == "":
		return nil, apperrors.NewBadRequest("username is required")
	case user.Email == "":
		return nil, apperrors.NewBadRequest("email is required")
	}

	hash, err := hashStrongPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hash

	roleID := strings.TrimSpace(in.RoleID)
	if roleID == "" && in.IsRoot {
		roleID = models.RoleAdministratorID
	}
	if roleID != "" {
		user.RoleID = &roleID
	}
	return user, nil
}

// UpdateUserInput holds optional profile changes. Blank usernames and e-mail addresses
// are ignored; blank names clear the stored value.
type UpdateUserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

// changes returns the columns that differ from the stored account.
func (in UpdateUserInput) changes(current *models.User) map[string]any {
	cols := make(map[string]any, 4)
	if in.Username != nil {
		if v := strings.TrimSpace(*in.Username); v != "" && v != current.Username {
			cols["username"] = v
		}
	}
	if in.Email != nil {
		if v := canonicalEmail(*in.Email); v != "" && v != current.Email {
			cols["email"] = v
		}
	}
	if in.FirstName != nil {
		cols["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		cols["last_name"] = strings.TrimSpace(*in.LastName)
	}
	return cols
}

// UserFilters narrows a user listing.
type UserFilters struct {
	IsActive *bool
	RoleID   string
}

// ListUsersOptions combines paging with user filters.
type ListUsersOptions struct {
	ListOptions
	Filters UserFilters
}

// UserService owns administrator accounts: profile data, role binding, activation and
// password rotation. The root account can never be deactivated or removed.
type UserService struct {
	db           *gorm.DB
	auditService *AuditService
}

func NewUserService(db *gorm.DB, auditService *AuditService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db, auditService: auditService}, nil
}

// Create stores a new account after checking password strength and role existence.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := input.account()
	if err != nil {
		return nil, err
	}
	active := user.IsActive

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if user.RoleID != nil {
			if err := ensureRoleExists(tx, *user.RoleID); err != nil {
				return err
			}
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		// The column default is true, so gorm omits a false value on insert.
		if active {
			return nil
		}
		user.IsActive = false
		return tx.Model(user).Update("is_active", false).Error
	})
	switch {
	case err == nil:
	case errors.As(err, new(*apperrors.AppError)):
		return nil, err
	default:
		return nil, writeFailure("user service: create user", err, duplicateAccountMessage)
	}

	s.audit(ctx, "user.create", user.ID, map[string]any{
		"username": user.Username,
		"email":    user.Email,
		"is_root":  user.IsRoot,
		"role_id":  user.RoleID,
	})
	return user, nil
}

// GetByID loads a user and their role.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.first(ensureContext(ctx), "id = ?", strings.TrimSpace(id))
}

// FindByLogin resolves a user by id, username or e-mail address.
func (s *UserService) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, apperrors.NewBadRequest("user is required")
	}
	return s.first(ensureContext(ctx), "id = ? OR username = ? OR email = ?", login, login, canonicalEmail(login))
}

func (s *UserService) first(ctx context.Context, cond string, args ...any) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Role").Where(cond, args...).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrUserNotFound
	case err != nil:
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// List pages through users, newest first. Query matches login and name columns.
func (s *UserService) List(ctx context.Context, opts ListUsersOptions) (*ListResult[models.User], error) {
	query := s.db.WithContext(ensureContext(ctx)).Model(&models.User{})
	if active := opts.Filters.IsActive; active != nil {
		query = query.Where("is_active = ?", *active)
	}
	if roleID := strings.TrimSpace(opts.Filters.RoleID); roleID != "" {
		query = query.Where("role_id = ?", roleID)
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		p := likePattern(q)
		query = query.Where(
			"LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			p, p, p, p,
		)
	}

	page, err := paginate[models.User](query, opts.ListOptions, "created_at DESC", "Role")
	if err != nil {
		return nil, fmt.Errorf("user service: list users: %w", err)
	}
	return page, nil
}

// Update applies profile changes. Unchanged input is a no-op and writes no audit entry.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cols := input.changes(user)
	if len(cols) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(cols).Error; err != nil {
		return nil, writeFailure("user service: update user", err, duplicateAccountMessage)
	}
	s.audit(ctx, "user.update", user.ID, cols)
	return s.GetByID(ctx, user.ID)
}

// AssignRole binds the user to a role. An empty role id removes the binding.
func (s *UserService) AssignRole(ctx context.Context, id, roleID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var role any
	if roleID = strings.TrimSpace(roleID); roleID != "" {
		if err := ensureRoleExists(s.db.WithContext(ctx), roleID); err != nil {
			return nil, err
		}
		role = roleID
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("role_id", role).Error; err != nil {
		return nil, fmt.Errorf("user service: assign role: %w", err)
	}
	s.audit(ctx, "user.assign_role", user.ID, map[string]any{"role_id": roleID})
	return s.GetByID(ctx, user.ID)
}

// Delete soft-deletes a non-root account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	user, err := s.mutable(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", user.ID).Error; err != nil {
		return fmt.Errorf("user service: delete user: %w", err)
	}
	s.audit(ctx, "user.delete", user.ID, map[string]any{"username": user.Username})
	return nil
}

// SetActive enables or disables sign-in for an account. Reactivating root is allowed.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) error {
	ctx = ensureContext(ctx)

	var (
		user *models.User
		err  error
	)
	if active {
		user, err = s.GetByID(ctx, id)
	} else {
		user, err = s.mutable(ctx, id)
	}
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", active).Error; err != nil {
		return fmt.Errorf("user service: set active: %w", err)
	}

	action := "user.deactivate"
	if active {
		action = "user.activate"
	}
	s.audit(ctx, action, user.ID, nil)
	return nil
}

// ChangePassword replaces the stored hash after a strength check.
func (s *UserService) ChangePassword(ctx context.Context, id, newPassword string) error {
	ctx = ensureContext(ctx)

	hash, err := hashStrongPassword(newPassword)
	if err != nil {
		return err
	}

	id = strings.TrimSpace(id)
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return fmt.Errorf("user service: change password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	s.audit(ctx, "user.password_change", id, nil)
	return nil
}

// ActiveUserIDs lists every account allowed to sign in. The expiry scanner fans notices
// out over this set.
func (s *UserService) ActiveUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ensureContext(ctx)).Model(&models.User{}).Where("is_active = ?", true).Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("user service: list active users: %w", err)
	}
	return ids, nil
}

// mutable loads an account that may be deactivated or deleted.
func (s *UserService) mutable(ctx context.Context, id string) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsRoot {
		return nil, ErrRootUserImmutable
	}
	return user, nil
}

func (s *UserService) audit(ctx context.Context, action, userID string, metadata map[string]any) {
	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   action,
		Resource: userID,
		Result:   AuditResultSuccess,
		Metadata: metadata,
	})
}

func hashStrongPassword(password string) (string, error) {
	if err := validator.CheckPasswordStrength(password); err != nil {
		return "", apperrors.NewBadRequest(err.Error())
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("user service: hash password: %w", err)
	}
	return hash, nil
}

func canonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ensureRoleExists(db *gorm.DB, roleID string) error {
	var n int64
	if err := db.Model(&models.Role{}).Where("id = ?", roleID).Count(&n).Error; err != nil {
		return fmt.Errorf("user service: check role: %w", err)
	}
	if n == 0 {
		return ErrRoleNotFound
	}
	return nil
}
