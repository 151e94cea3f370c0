package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Store is the relational catalog store. It owns the MySQL connection pool
// and every query the export and extraction paths need.
type Store struct {
	db      *sql.DB
	cdnBase string
}

// Open connects to the catalog database and verifies the connection.
// cdnBase is the URL prefix gallery image links are built from.
func Open(dsn, cdnBase string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog store: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog store unreachable: %w", err)
	}

	return &Store{db: db, cdnBase: cdnBase}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DashboardStats summarizes the catalog for the landing page.
type DashboardStats struct {
	TotalProducts      int     `json:"total_products"`
	ProductsWithEAN    int     `json:"products_with_ean"`
	ProductsWithImages int     `json:"products_with_images"`
	TotalTables        int     `json:"total_tables"`
	EANPercentage      float64 `json:"ean_percentage"`
	ImagesPercentage   float64 `json:"images_percentage"`
}

// Stats gathers the dashboard counters.
func (s *Store) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM produits_view3 WHERE status = 'on'`).Scan(&stats.TotalProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM produits_view3
		 WHERE ean IS NOT NULL AND ean != '' AND status = 'on'`).Scan(&stats.ProductsWithEAN)
	if err != nil {
		return nil, fmt.Errorf("failed to count EAN products: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT p.idproduit_group)
		 FROM produits_view3 p
		 JOIN produits_gallery g ON p.idproduit_group = g.idproduit_group
		 WHERE p.status = 'on' AND g.status = 'on'`).Scan(&stats.ProductsWithImages)
	if err != nil {
		return nil, fmt.Errorf("failed to count products with images: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SHOW TABLES`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		stats.TotalTables++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.TotalProducts > 0 {
		stats.EANPercentage = round1(float64(stats.ProductsWithEAN) / float64(stats.TotalProducts) * 100)
		stats.ImagesPercentage = round1(float64(stats.ProductsWithImages) / float64(stats.TotalProducts) * 100)
	}
	return stats, nil
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
