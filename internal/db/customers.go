package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// CustomerFilter narrows the customers handed to ranking. Empty fields match everything.
type CustomerFilter struct {
	Segments  []string
	ChurnRisk string
}

const customerColumns = `email, name, phone, rfm_segment, churn_risk, is_night_buyer,
	total_spent::float8, avg_order_value::float8, success_rate_pct::float8,
	primary_category, secondary_category`

// buildListCustomersQuery returns the SQL and args for a filtered customer list.
// Soft-deleted rows are always excluded; rows come back in insertion order.
func buildListCustomersQuery(filter CustomerFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(customerColumns)
	sb.WriteString(" FROM customers WHERE deleted_at IS NULL")

	var args []any
	if len(filter.Segments) > 0 {
		args = append(args, filter.Segments)
		sb.WriteString(fmt.Sprintf(" AND rfm_segment = ANY($%d)", len(args)))
	}
	if risk := strings.ToLower(strings.TrimSpace(filter.ChurnRisk)); risk != "" {
		args = append(args, risk)
		sb.WriteString(fmt.Sprintf(" AND LOWER(churn_risk) = $%d", len(args)))
	}

	sb.WriteString(" ORDER BY created_at, email")
	return sb.String(), args
}

// ListCustomers returns the active customers matching filter
func (db *DB) ListCustomers(ctx context.Context, filter CustomerFilter) ([]types.CustomerRecord, error) {
	query, args := buildListCustomersQuery(filter)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []types.CustomerRecord
	for rows.Next() {
		var c types.CustomerRecord
		var phone, segment, churn, primary, secondary *string
		if err := rows.Scan(&c.Email, &c.Name, &phone, &segment, &churn, &c.NightBuyer,
			&c.TotalSpent, &c.AvgOrderValue, &c.SuccessRatePct, &primary, &secondary); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		c.Phone = deref(phone)
		c.RFMSegment = deref(segment)
		c.ChurnRisk = types.ChurnRisk(strings.ToLower(deref(churn)))
		c.PrimaryCategory = deref(primary)
		c.SecondaryCategory = deref(secondary)
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	return customers, nil
}

const upsertCustomerSQL = `INSERT INTO customers (email, name, phone, rfm_segment, churn_risk, is_night_buyer,
	total_spent, avg_order_value, success_rate_pct, primary_category, secondary_category)
 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
 ON CONFLICT (email) DO UPDATE SET
	name = EXCLUDED.name, phone = EXCLUDED.phone, rfm_segment = EXCLUDED.rfm_segment,
	churn_risk = EXCLUDED.churn_risk, is_night_buyer = EXCLUDED.is_night_buyer,
	total_spent = EXCLUDED.total_spent, avg_order_value = EXCLUDED.avg_order_value,
	success_rate_pct = EXCLUDED.success_rate_pct, primary_category = EXCLUDED.primary_category,
	secondary_category = EXCLUDED.secondary_category, updated_at = NOW(), deleted_at = NULL`

// UpsertCustomers inserts or updates customers by email in one transaction.
// Records without an email are skipped. Returns the number written.
func (db *DB) UpsertCustomers(ctx context.Context, records []types.CustomerRecord) (int, error) {
	batch := &pgx.Batch{}
	for _, c := range records {
		if strings.TrimSpace(c.Email) == "" {
			continue
		}
		batch.Queue(upsertCustomerSQL, upsertArgs(c)...)
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("failed to upsert customer %d: %w", i, err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return 0, err
	}
	return batch.Len(), nil
}

func upsertArgs(c types.CustomerRecord) []any {
	name := c.Name
	if name == "" {
		name = "Customer"
	}
	return []any{
		strings.TrimSpace(c.Email), name, nullIfEmpty(c.Phone), nullIfEmpty(c.RFMSegment),
		nullIfEmpty(string(c.ChurnRisk)), c.NightBuyer, c.TotalSpent, c.AvgOrderValue,
		c.SuccessRatePct, nullIfEmpty(c.PrimaryCategory), nullIfEmpty(c.SecondaryCategory),
	}
}

// SoftDeleteCustomer hides a customer from ranking without removing the row
func (db *DB) SoftDeleteCustomer(ctx context.Context, email string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE customers SET deleted_at = NOW() WHERE email = $1 AND deleted_at IS NULL`, email)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer %s: %w", email, ErrNotFound)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
