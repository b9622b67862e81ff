package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/segmentio/ksuid"
)

const usersTable = "users"

var (
	customerColumns   = []string{"user_id", "company_name", "contact_name", "email", "phone", "address", "created_at"}
	staffColumns      = []string{"user_id", "contact_name", "email", "phone", "department", "position", "created_at"}
	membershipColumns = []string{"user_id", "contact_name", "company_name", "email", "phone", "status", "created_at"}
)

// Page is a server-side window over a listing query.
type Page struct {
	Number int
	Size   int
}

func (p Page) limitOffset() (uint64, uint64, bool) {
	if p.Size <= 0 {
		return 0, 0, false
	}
	n := p.Number
	if n < 1 {
		n = 1
	}
	return uint64(p.Size), uint64((n - 1) * p.Size), true
}

// MembershipFilter selects membership requests.
type MembershipFilter struct {
	Search string
	Status *int
	Page   Page
}

// UserRepo stores customers, staff and membership requests in the single
// users table. A membership request is a customer row in pending or rejected
// status; approving it makes it an active customer.
type UserRepo struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return ksuid.New().String() },
	}
}

func (r *UserRepo) selectUsers(ctx context.Context, dst any, sb squirrel.SelectBuilder) error {
	query, args, err := sb.ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: build users query: %w", err)
	}
	if err := sqlscan.Select(ctx, r.db, dst, query, args...); err != nil {
		return fmt.Errorf("sqlite: select users: %w", err)
	}
	return nil
}

func (r *UserRepo) getUser(ctx context.Context, dst any, sb squirrel.SelectBuilder) error {
	query, args, err := sb.ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: build user query: %w", err)
	}
	if err := sqlscan.Get(ctx, r.db, dst, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return crm.ErrNotFound
		}
		return fmt.Errorf("sqlite: get user: %w", err)
	}
	return nil
}

func (r *UserRepo) count(ctx context.Context, where squirrel.Sqlizer) (int, error) {
	query, args, err := squirrel.Select("COUNT(*)").From(usersTable).Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("sqlite: build count query: %w", err)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count users: %w", err)
	}
	return n, nil
}

func activeCustomer() squirrel.Eq {
	return squirrel.Eq{"role_id": int(crm.RoleCustomer), "status": int(crm.MembershipApproved)}
}

// --- Customers ---

// ListCustomers returns every active customer, newest first.
func (r *UserRepo) ListCustomers(ctx context.Context) ([]crm.Customer, error) {
	out := []crm.Customer{}
	sb := squirrel.Select(customerColumns...).From(usersTable).
		Where(activeCustomer()).
		OrderBy("created_at DESC", "user_id")
	if err := r.selectUsers(ctx, &out, sb); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserRepo) GetCustomer(ctx context.Context, userID string) (crm.Customer, error) {
	var c crm.Customer
	sb := squirrel.Select(customerColumns...).From(usersTable).
		Where(activeCustomer()).
		Where(squirrel.Eq{"user_id": userID})
	if err := r.getUser(ctx, &c, sb); err != nil {
		return c, err
	}
	return c, nil
}

func (r *UserRepo) CreateCustomer(ctx context.Context, in crm.CustomerInput) (crm.Customer, error) {
	if err := in.Validate(); err != nil {
		return crm.Customer{}, err
	}
	c := crm.Customer{
		UserID:      r.newID(),
		CompanyName: in.CompanyName,
		ContactName: in.ContactName,
		Email:       in.Email,
		Phone:       in.Phone,
		Address:     in.Address,
		CreatedAt:   r.now(),
	}
	err := r.insert(ctx, map[string]any{
		"user_id":      c.UserID,
		"role_id":      int(crm.RoleCustomer),
		"status":       int(crm.MembershipApproved),
		"company_name": c.CompanyName,
		"contact_name": c.ContactName,
		"email":        c.Email,
		"phone":        c.Phone,
		"address":      c.Address,
	}, c.CreatedAt)
	if err != nil {
		return crm.Customer{}, err
	}
	return c, nil
}

func (r *UserRepo) UpdateCustomer(ctx context.Context, userID string, in crm.CustomerInput) (crm.Customer, error) {
	if err := in.Validate(); err != nil {
		return crm.Customer{}, err
	}
	err := r.update(ctx, userID, activeCustomer(), map[string]any{
		"company_name": in.CompanyName,
		"contact_name": in.ContactName,
		"email":        in.Email,
		"phone":        in.Phone,
		"address":      in.Address,
	})
	if err != nil {
		return crm.Customer{}, err
	}
	return r.GetCustomer(ctx, userID)
}

func (r *UserRepo) DeleteCustomer(ctx context.Context, userID string) error {
	return r.delete(ctx, userID, squirrel.Eq{"role_id": int(crm.RoleCustomer)})
}

// --- Staff ---

func (r *UserRepo) ListStaff(ctx context.Context) ([]crm.Staff, error) {
	out := []crm.Staff{}
	sb := squirrel.Select(staffColumns...).From(usersTable).
		Where(squirrel.Eq{"role_id": int(crm.RoleStaff)}).
		OrderBy("contact_name", "user_id")
	if err := r.selectUsers(ctx, &out, sb); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserRepo) GetStaff(ctx context.Context, userID string) (crm.Staff, error) {
	var s crm.Staff
	sb := squirrel.Select(staffColumns...).From(usersTable).
		Where(squirrel.Eq{"role_id": int(crm.RoleStaff), "user_id": userID})
	if err := r.getUser(ctx, &s, sb); err != nil {
		return s, err
	}
	return s, nil
}

func (r *UserRepo) CreateStaff(ctx context.Context, in crm.StaffInput) (crm.Staff, error) {
	if err := in.Validate(); err != nil {
		return crm.Staff{}, err
	}
	s := crm.Staff{
		UserID:     r.newID(),
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Department: in.Department,
		Position:   in.Position,
		CreatedAt:  r.now(),
	}
	err := r.insert(ctx, map[string]any{
		"user_id":      s.UserID,
		"role_id":      int(crm.RoleStaff),
		"status":       int(crm.MembershipApproved),
		"contact_name": s.Name,
		"email":        s.Email,
		"phone":        s.Phone,
		"department":   s.Department,
		"position":     s.Position,
	}, s.CreatedAt)
	if err != nil {
		return crm.Staff{}, err
	}
	return s, nil
}

func (r *UserRepo) UpdateStaff(ctx context.Context, userID string, in crm.StaffInput) (crm.Staff, error) {
	if err := in.Validate(); err != nil {
		return crm.Staff{}, err
	}
	err := r.update(ctx, userID, squirrel.Eq{"role_id": int(crm.RoleStaff)}, map[string]any{
		"contact_name": in.Name,
		"email":        in.Email,
		"phone":        in.Phone,
		"department":   in.Department,
		"position":     in.Position,
	})
	if err != nil {
		return crm.Staff{}, err
	}
	return r.GetStaff(ctx, userID)
}

func (r *UserRepo) DeleteStaff(ctx context.Context, userID string) error {
	return r.delete(ctx, userID, squirrel.Eq{"role_id": int(crm.RoleStaff)})
}

// --- Membership requests ---

// ListMemberships returns one page of membership requests and the total
// number of matches. Search covers name and company.
func (r *UserRepo) ListMemberships(ctx context.Context, f MembershipFilter) ([]crm.MembershipRequest, int, error) {
	where := squirrel.And{squirrel.Eq{"role_id": int(crm.RoleCustomer)}}
	if f.Status != nil {
		where = append(where, squirrel.Eq{"status": *f.Status})
	}
	if strings.TrimSpace(f.Search) != "" {
		where = append(where, searchClause(f.Search, "contact_name", "company_name"))
	}
	total, err := r.count(ctx, where)
	if err != nil {
		return nil, 0, err
	}
	sb := squirrel.Select(membershipColumns...).From(usersTable).
		Where(where).
		OrderBy("created_at DESC", "user_id")
	if limit, offset, ok := f.Page.limitOffset(); ok {
		sb = sb.Limit(limit).Offset(offset)
	}
	out := []crm.MembershipRequest{}
	if err := r.selectUsers(ctx, &out, sb); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *UserRepo) GetMembership(ctx context.Context, userID string) (crm.MembershipRequest, error) {
	var m crm.MembershipRequest
	sb := squirrel.Select(membershipColumns...).From(usersTable).
		Where(squirrel.Eq{"role_id": int(crm.RoleCustomer), "user_id": userID})
	if err := r.getUser(ctx, &m, sb); err != nil {
		return m, err
	}
	return m, nil
}

// CreateMembership records a pending sign-up.
func (r *UserRepo) CreateMembership(ctx context.Context, in crm.MembershipInput) (crm.MembershipRequest, error) {
	if err := in.Validate(); err != nil {
		return crm.MembershipRequest{}, err
	}
	m := crm.MembershipRequest{
		UserID:      r.newID(),
		Name:        in.Name,
		Company:     in.Company,
		Email:       in.Email,
		Phone:       in.Phone,
		Status:      crm.MembershipPending,
		RequestedAt: r.now(),
	}
	err := r.insert(ctx, map[string]any{
		"user_id":      m.UserID,
		"role_id":      int(crm.RoleCustomer),
		"status":       int(crm.MembershipPending),
		"company_name": m.Company,
		"contact_name": m.Name,
		"email":        m.Email,
		"phone":        m.Phone,
	}, m.RequestedAt)
	if err != nil {
		return crm.MembershipRequest{}, err
	}
	return m, nil
}

// ReviewMembership moves a pending request to approved or rejected.
func (r *UserRepo) ReviewMembership(
	ctx context.Context,
	userID string,
	to crm.MembershipStatus,
) (crm.MembershipRequest, error) {
	if to != crm.MembershipApproved && to != crm.MembershipRejected {
		return crm.MembershipRequest{}, crm.NewValidationError("status", "must be approved or rejected")
	}
	current, err := r.GetMembership(ctx, userID)
	if err != nil {
		return crm.MembershipRequest{}, err
	}
	if current.Status != crm.MembershipPending {
		return crm.MembershipRequest{}, fmt.Errorf("%w: request %s is already %s", crm.ErrConflict, userID, current.Status)
	}
	err = r.update(ctx, userID, squirrel.Eq{"role_id": int(crm.RoleCustomer), "status": int(crm.MembershipPending)},
		map[string]any{"status": int(to)})
	if err != nil {
		return crm.MembershipRequest{}, err
	}
	current.Status = to
	return current, nil
}

// RoleOf returns the role of any user.
func (r *UserRepo) RoleOf(ctx context.Context, userID string) (crm.RoleID, error) {
	query, args, err := squirrel.Select("role_id").From(usersTable).Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("sqlite: build role query: %w", err)
	}
	var role int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, crm.ErrNotFound
		}
		return 0, fmt.Errorf("sqlite: get role: %w", err)
	}
	return crm.RoleID(role), nil
}

// CreateAdmin inserts an administrator account; used by seeding.
func (r *UserRepo) CreateAdmin(ctx context.Context, name, email string) (string, error) {
	id := r.newID()
	err := r.insert(ctx, map[string]any{
		"user_id":      id,
		"role_id":      int(crm.RoleAdmin),
		"status":       int(crm.MembershipApproved),
		"contact_name": name,
		"email":        email,
	}, r.now())
	return id, err
}

// --- shared writes ---

func (r *UserRepo) insert(ctx context.Context, values map[string]any, createdAt time.Time) error {
	values["created_at"] = createdAt
	values["updated_at"] = createdAt
	query, args, err := squirrel.Insert(usersTable).SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: build insert user: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email %v is already registered", crm.ErrConflict, values["email"])
		}
		return fmt.Errorf("sqlite: insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) update(ctx context.Context, userID string, scope squirrel.Sqlizer, values map[string]any) error {
	values["updated_at"] = r.now()
	query, args, err := squirrel.Update(usersTable).SetMap(values).
		Where(squirrel.Eq{"user_id": userID}).
		Where(scope).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: build update user: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email %v is already registered", crm.ErrConflict, values["email"])
		}
		return fmt.Errorf("sqlite: update user: %w", err)
	}
	return requireAffected(res, "update user")
}

func (r *UserRepo) delete(ctx context.Context, userID string, scope squirrel.Sqlizer) error {
	query, args, err := squirrel.Delete(usersTable).
		Where(squirrel.Eq{"user_id": userID}).
		Where(scope).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: build delete user: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: delete user: %w", err)
	}
	return requireAffected(res, "delete user")
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected (%s): %w", op, err)
	}
	if n == 0 {
		return crm.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
