package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/courseloft/api/config"
)

// ReportingStore runs the admin revenue aggregations over a raw database/sql
// connection. The queries are read-only and cross several tables, which is
// easier to keep under control as SQL than as GORM chains.
type ReportingStore struct {
	db *sql.DB
}

// StartReporting opens a raw PostgreSQL connection for reporting queries
func StartReporting() (*ReportingStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	connectStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv.DB_HOST, getEnv.DB_PORT, getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD, getEnv.DB_NAME, getEnv.DB_SSL_MODE,
	)

	db, err := sql.Open("postgres", connectStr)
	if err != nil {
		return nil, err
	}

	return &ReportingStore{db: db}, nil
}

// Close closes the reporting connection
func (s *ReportingStore) Close() error {
	return s.db.Close()
}

// RevenueByCourse is one row of the per-course revenue report
type RevenueByCourse struct {
	CourseID    uint   `json:"course_id"`
	CourseTitle string `json:"course_title"`
	Currency    string `json:"currency"`
	Sales       int64  `json:"sales"`
	Revenue     int64  `json:"revenue"` // minor currency units
}

// RevenueByMonth is one row of the monthly revenue report
type RevenueByMonth struct {
	Month    string `json:"month"` // YYYY-MM
	Currency string `json:"currency"`
	Sales    int64  `json:"sales"`
	Revenue  int64  `json:"revenue"`
}

// CourseRevenue aggregates settled payments per course and currency
func (s *ReportingStore) CourseRevenue(ctx context.Context) ([]RevenueByCourse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.course_id, c.title, p.currency, COUNT(*), COALESCE(SUM(p.amount), 0)
		FROM payment_records p
		JOIN courses c ON c.id = p.course_id
		WHERE p.status = 'success' AND p.deleted_at IS NULL
		GROUP BY p.course_id, c.title, p.currency
		ORDER BY SUM(p.amount) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var report []RevenueByCourse
	for rows.Next() {
		var r RevenueByCourse
		if err := rows.Scan(&r.CourseID, &r.CourseTitle, &r.Currency, &r.Sales, &r.Revenue); err != nil {
			return nil, err
		}
		report = append(report, r)
	}
	return report, rows.Err()
}

// MonthlyRevenue aggregates settled payments per calendar month and currency
func (s *ReportingStore) MonthlyRevenue(ctx context.Context, months int) ([]RevenueByMonth, error) {
	if months <= 0 {
		months = 12
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT to_char(date_trunc('month', p.updated_at), 'YYYY-MM') AS month,
		       p.currency, COUNT(*), COALESCE(SUM(p.amount), 0)
		FROM payment_records p
		WHERE p.status = 'success' AND p.deleted_at IS NULL
		  AND p.updated_at >= date_trunc('month', now()) - ($1 || ' months')::interval
		GROUP BY month, p.currency
		ORDER BY month DESC`, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var report []RevenueByMonth
	for rows.Next() {
		var r RevenueByMonth
		if err := rows.Scan(&r.Month, &r.Currency, &r.Sales, &r.Revenue); err != nil {
			return nil, err
		}
		report = append(report, r)
	}
	return report, rows.Err()
}
