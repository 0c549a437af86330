package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"teamhub/internal/models"
	"teamhub/internal/store"
	"teamhub/migrations"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB wraps a pgxpool connection pool and implements store.Store.
type DB struct {
	Pool *pgxpool.Pool
	q    querier
	inTx bool
}

var _ store.Store = (*DB)(nil)

// New creates a new database connection pool.
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool, q: pool}, nil
}

// RunMigrations runs all embedded SQL migrations.
func (d *DB) RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.Pool.Close()
}

// Ping checks the database connection.
func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// WithTx runs fn in a transaction. Nested calls join the outer transaction.
func (d *DB) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	if d.inTx {
		return fn(d)
	}

	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&DB{Pool: d.Pool, q: tx, inTx: true}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (d *DB) Robots() store.Repository[models.Robot] {
	return &table[models.Robot, *models.Robot]{
		q:       d.q,
		name:    models.TableRobots,
		columns: []string{"year", "name", "game", "description", "image_url"},
		order:   "year DESC, name",
		values:  func(r *models.Robot) []any { return []any{r.Year, r.Name, r.Game, r.Description, r.ImageURL} },
		dest:    func(r *models.Robot) []any { return []any{&r.Year, &r.Name, &r.Game, &r.Description, &r.ImageURL} },
	}
}

func (d *DB) Sponsors() store.Repository[models.Sponsor] {
	return &table[models.Sponsor, *models.Sponsor]{
		q:       d.q,
		name:    models.TableSponsors,
		columns: []string{"name", "tier", "website_url", "logo_url", "display_order"},
		order:   "display_order, name",
		values: func(s *models.Sponsor) []any {
			return []any{s.Name, s.Tier, s.WebsiteURL, s.LogoURL, s.DisplayOrder}
		},
		dest: func(s *models.Sponsor) []any {
			return []any{&s.Name, &s.Tier, &s.WebsiteURL, &s.LogoURL, &s.DisplayOrder}
		},
	}
}

func (d *DB) ResourceCategories() store.Repository[models.ResourceCategory] {
	return &table[models.ResourceCategory, *models.ResourceCategory]{
		q:       d.q,
		name:    models.TableResourceCategories,
		columns: []string{"name", "description", "display_order"},
		order:   "display_order, name",
		values:  func(c *models.ResourceCategory) []any { return []any{c.Name, c.Description, c.DisplayOrder} },
		dest:    func(c *models.ResourceCategory) []any { return []any{&c.Name, &c.Description, &c.DisplayOrder} },
	}
}

func (d *DB) Resources() store.ResourceRepository {
	return &resourceTable{table[models.Resource, *models.Resource]{
		q:       d.q,
		name:    models.TableResources,
		columns: []string{"category_id", "title", "url", "description"},
		order:   "title",
		values:  func(r *models.Resource) []any { return []any{r.CategoryID, r.Title, r.URL, r.Description} },
		dest:    func(r *models.Resource) []any { return []any{&r.CategoryID, &r.Title, &r.URL, &r.Description} },
	}}
}

func (d *DB) Subteams() store.Repository[models.Subteam] {
	return &table[models.Subteam, *models.Subteam]{
		q:       d.q,
		name:    models.TableSubteams,
		columns: []string{"name", "description", "display_order"},
		order:   "display_order, name",
		values:  func(s *models.Subteam) []any { return []any{s.Name, s.Description, s.DisplayOrder} },
		dest:    func(s *models.Subteam) []any { return []any{&s.Name, &s.Description, &s.DisplayOrder} },
	}
}

func (d *DB) Pages() store.PageRepository {
	return &pageTable{table[models.Page, *models.Page]{
		q:       d.q,
		name:    models.TablePages,
		columns: []string{"title", "slug", "content", "published"},
		order:   "title",
		values:  func(p *models.Page) []any { return []any{p.Title, p.Slug, p.Content, p.Published} },
		dest:    func(p *models.Page) []any { return []any{&p.Title, &p.Slug, &p.Content, &p.Published} },
	}}
}

func (d *DB) SlideshowImages() store.Repository[models.SlideshowImage] {
	return &table[models.SlideshowImage, *models.SlideshowImage]{
		q:       d.q,
		name:    models.TableSlideshowImages,
		columns: []string{"image_url", "caption", "display_order"},
		order:   "display_order",
		values:  func(s *models.SlideshowImage) []any { return []any{s.ImageURL, s.Caption, s.DisplayOrder} },
		dest:    func(s *models.SlideshowImage) []any { return []any{&s.ImageURL, &s.Caption, &s.DisplayOrder} },
	}
}

func (d *DB) Proposals() store.ProposalRepository { return &proposals{q: d.q} }
func (d *DB) Users() store.UserRepository         { return &users{q: d.q} }
func (d *DB) Outreach() store.OutreachRepository  { return &outreach{q: d.q} }
func (d *DB) Settings() store.SettingRepository   { return &settings{q: d.q} }
