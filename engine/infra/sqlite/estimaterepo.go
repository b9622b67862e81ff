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
	"github.com/salesdesk/salesdesk/pkg/logger"
	"github.com/segmentio/ksuid"
	"github.com/shopspring/decimal"
)

const (
	estimatesTable     = "estimates"
	estimateItemsTable = "estimate_items"
)

var estimateColumns = []string{
	"temp_estimate_no", "estimate_no", "customer_id", "company_name", "title",
	"status", "amount", "note", "created_at", "quoted_at",
}

// EstimateFilter selects estimates. CustomerID restricts to one customer's requests.
type EstimateFilter struct {
	Search     string
	Status     *int
	CustomerID string
	Descending bool
	Page       Page
}

type EstimateRepo struct {
	db    *sql.DB
	now   func() time.Time
	newNo func() string
}

func NewEstimateRepo(db *sql.DB) *EstimateRepo {
	return &EstimateRepo{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		newNo: func() string { return "T-" + ksuid.New().String() },
	}
}

func (r *EstimateRepo) withTransaction(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.FromContext(ctx).Warn("sqlite: rollback failed after panic", "error", rbErr)
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.FromContext(ctx).Warn("sqlite: rollback failed", "error", rbErr)
			}
		} else {
			err = tx.Commit()
		}
	}()
	err = fn(tx)
	return err
}

func (f EstimateFilter) where() squirrel.And {
	where := squirrel.And{}
	if f.Status != nil {
		where = append(where, squirrel.Eq{"status": *f.Status})
	}
	if f.CustomerID != "" {
		where = append(where, squirrel.Eq{"customer_id": f.CustomerID})
	}
	if strings.TrimSpace(f.Search) != "" {
		where = append(where, searchClause(f.Search, "company_name", "title", "estimate_no", "temp_estimate_no"))
	}
	return where
}

// List returns one page of estimates, ordered by creation time, and the total
// number of matches. Line items are not loaded.
func (r *EstimateRepo) List(ctx context.Context, f EstimateFilter) ([]crm.Estimate, int, error) {
	where := f.where()
	countQ, countArgs, err := squirrel.Select("COUNT(*)").From(estimatesTable).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: build count estimates: %w", err)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: count estimates: %w", err)
	}
	order := "created_at ASC"
	if f.Descending {
		order = "created_at DESC"
	}
	sb := squirrel.Select(estimateColumns...).From(estimatesTable).Where(where).OrderBy(order, "temp_estimate_no")
	if limit, offset, ok := f.Page.limitOffset(); ok {
		sb = sb.Limit(limit).Offset(offset)
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: build list estimates: %w", err)
	}
	out := []crm.Estimate{}
	if err := sqlscan.Select(ctx, r.db, &out, query, args...); err != nil {
		return nil, 0, fmt.Errorf("sqlite: list estimates: %w", err)
	}
	return out, total, nil
}

// Get loads one estimate with its line items.
func (r *EstimateRepo) Get(ctx context.Context, tempNo string) (crm.Estimate, error) {
	return r.get(ctx, r.db, tempNo)
}

func (r *EstimateRepo) get(ctx context.Context, q sqlscan.Querier, tempNo string) (crm.Estimate, error) {
	query, args, err := squirrel.Select(estimateColumns...).From(estimatesTable).
		Where(squirrel.Eq{"temp_estimate_no": tempNo}).ToSql()
	if err != nil {
		return crm.Estimate{}, fmt.Errorf("sqlite: build get estimate: %w", err)
	}
	var e crm.Estimate
	if err := sqlscan.Get(ctx, q, &e, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return crm.Estimate{}, crm.ErrNotFound
		}
		return crm.Estimate{}, fmt.Errorf("sqlite: get estimate: %w", err)
	}
	itemsQ, itemsArgs, err := squirrel.Select("product", "quantity", "unit_price").From(estimateItemsTable).
		Where(squirrel.Eq{"temp_estimate_no": tempNo}).
		OrderBy("line_no").ToSql()
	if err != nil {
		return crm.Estimate{}, fmt.Errorf("sqlite: build estimate items: %w", err)
	}
	e.Items = []crm.EstimateItem{}
	if err := sqlscan.Select(ctx, q, &e.Items, itemsQ, itemsArgs...); err != nil {
		return crm.Estimate{}, fmt.Errorf("sqlite: list estimate items: %w", err)
	}
	return e, nil
}

// Create stores a requested estimate for an active customer.
func (r *EstimateRepo) Create(ctx context.Context, in crm.EstimateRequestInput) (crm.Estimate, error) {
	if err := in.Validate(); err != nil {
		return crm.Estimate{}, err
	}
	e := crm.Estimate{
		TempEstimateNo: r.newNo(),
		CustomerID:     in.CustomerID,
		Title:          in.Title,
		Status:         crm.EstimateRequested,
		Amount:         decimal.Zero,
		Items:          in.Items,
		CreatedAt:      r.now(),
	}
	err := r.withTransaction(ctx, func(tx *sql.Tx) error {
		company, err := customerCompany(ctx, tx, in.CustomerID)
		if err != nil {
			return err
		}
		e.CompanyName = company
		query, args, err := squirrel.Insert(estimatesTable).SetMap(map[string]any{
			"temp_estimate_no": e.TempEstimateNo,
			"customer_id":      e.CustomerID,
			"company_name":     e.CompanyName,
			"title":            e.Title,
			"status":           int(e.Status),
			"amount":           e.Amount,
			"created_at":       e.CreatedAt,
		}).ToSql()
		if err != nil {
			return fmt.Errorf("sqlite: build insert estimate: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("sqlite: insert estimate: %w", err)
		}
		ins := squirrel.Insert(estimateItemsTable).
			Columns("temp_estimate_no", "line_no", "product", "quantity", "unit_price")
		for i, item := range e.Items {
			ins = ins.Values(e.TempEstimateNo, i+1, item.Product, item.Quantity, item.UnitPrice)
		}
		query, args, err = ins.ToSql()
		if err != nil {
			return fmt.Errorf("sqlite: build insert estimate items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("sqlite: insert estimate items: %w", err)
		}
		return nil
	})
	if err != nil {
		return crm.Estimate{}, err
	}
	return e, nil
}

func customerCompany(ctx context.Context, tx *sql.Tx, customerID string) (string, error) {
	query, args, err := squirrel.Select("company_name").From(usersTable).
		Where(activeCustomer()).
		Where(squirrel.Eq{"user_id": customerID}).ToSql()
	if err != nil {
		return "", fmt.Errorf("sqlite: build customer lookup: %w", err)
	}
	var company string
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&company); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: customer %s", crm.ErrNotFound, customerID)
		}
		return "", fmt.Errorf("sqlite: customer lookup: %w", err)
	}
	return company, nil
}

// Quote prices a requested estimate and assigns its permanent number.
func (r *EstimateRepo) Quote(ctx context.Context, tempNo string, in crm.QuoteInput) (crm.Estimate, error) {
	if err := in.Validate(); err != nil {
		return crm.Estimate{}, err
	}
	var out crm.Estimate
	err := r.withTransaction(ctx, func(tx *sql.Tx) error {
		current, err := r.get(ctx, tx, tempNo)
		if err != nil {
			return err
		}
		if current.Status != crm.EstimateRequested {
			return fmt.Errorf("%w: estimate %s is already %s", crm.ErrConflict, tempNo, current.Status)
		}
		number, err := nextEstimateNo(ctx, tx, r.now())
		if err != nil {
			return err
		}
		quotedAt := r.now()
		query, args, err := squirrel.Update(estimatesTable).SetMap(map[string]any{
			"status":      int(crm.EstimateQuoted),
			"estimate_no": number,
			"amount":      in.Amount,
			"note":        in.Note,
			"quoted_at":   quotedAt,
		}).Where(squirrel.Eq{"temp_estimate_no": tempNo}).ToSql()
		if err != nil {
			return fmt.Errorf("sqlite: build quote estimate: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("sqlite: quote estimate: %w", err)
		}
		current.Status = crm.EstimateQuoted
		current.EstimateNo = number
		current.Amount = in.Amount
		current.Note = in.Note
		current.QuotedAt = &quotedAt
		out = current
		return nil
	})
	if err != nil {
		return crm.Estimate{}, err
	}
	return out, nil
}

// nextEstimateNo numbers quotes per calendar year: EST-2026-0001.
func nextEstimateNo(ctx context.Context, tx *sql.Tx, now time.Time) (string, error) {
	prefix := fmt.Sprintf("EST-%d-", now.Year())
	query, args, err := squirrel.Select("COUNT(*)").From(estimatesTable).
		Where(squirrel.Like{"estimate_no": prefix + "%"}).ToSql()
	if err != nil {
		return "", fmt.Errorf("sqlite: build estimate number: %w", err)
	}
	var n int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return "", fmt.Errorf("sqlite: count estimate numbers: %w", err)
	}
	return fmt.Sprintf("%s%04d", prefix, n+1), nil
}

// Decide records the customer's answer to a quoted estimate.
func (r *EstimateRepo) Decide(ctx context.Context, tempNo string, accept bool) (crm.Estimate, error) {
	to := crm.EstimateRejected
	if accept {
		to = crm.EstimateAccepted
	}
	query, args, err := squirrel.Update(estimatesTable).
		Set("status", int(to)).
		Where(squirrel.Eq{"temp_estimate_no": tempNo, "status": int(crm.EstimateQuoted)}).ToSql()
	if err != nil {
		return crm.Estimate{}, fmt.Errorf("sqlite: build decide estimate: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return crm.Estimate{}, fmt.Errorf("sqlite: decide estimate: %w", err)
	}
	if err := requireAffected(res, "decide estimate"); err != nil {
		current, getErr := r.Get(ctx, tempNo)
		if getErr != nil {
			return crm.Estimate{}, getErr
		}
		return crm.Estimate{}, fmt.Errorf("%w: estimate %s is %s", crm.ErrConflict, tempNo, current.Status)
	}
	return r.Get(ctx, tempNo)
}

func (r *EstimateRepo) Delete(ctx context.Context, tempNo string) error {
	query, args, err := squirrel.Delete(estimatesTable).Where(squirrel.Eq{"temp_estimate_no": tempNo}).ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: build delete estimate: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: delete estimate: %w", err)
	}
	return requireAffected(res, "delete estimate")
}
