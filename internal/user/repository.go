// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/elyterrax/marketplace-api/internal/core"
)

const userColumns = `
	id, email, password_hash, full_name, role, tier, subscription_status,
	verified, company_name, country, city, phone, tos_version,
	non_circumvention_accepted_at, ip_registered, token_version,
	created_at, updated_at, deleted_at`

const liveUser = `deleted_at IS NULL`

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateAccess(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// bindNamed binds :field placeholders from the User struct tags and rewrites
// them to postgres positional parameters.
func bindNamed(query string, arg any) (string, []any, error) {
	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return "", nil, err
	}
	return sqlx.Rebind(sqlx.DOLLAR, q), args, nil
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query, args, err := bindNamed(`
		INSERT INTO users (
			id, email, password_hash, full_name, role, tier,
			subscription_status, verified, company_name, country, city,
			phone, tos_version, non_circumvention_accepted_at, ip_registered
		) VALUES (
			:id, :email, :password_hash, :full_name, :role, :tier,
			:subscription_status, :verified, :company_name, :country, :city,
			:phone, :tos_version, :non_circumvention_accepted_at, :ip_registered
		)
		RETURNING created_at, updated_at, token_version`, user)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	err = r.db.QueryRowxContext(ctx, query, args...).
		Scan(&user.CreatedAt, &user.UpdatedAt, &user.TokenVersion)
	switch {
	case core.IsUniqueViolation(err):
		return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	case err != nil:
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, "get user", "id = $1", id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "get user by email", "email = $1", email)
}

func (r *repository) getOne(
	ctx context.Context,
	op, cond string,
	arg any,
) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` +
		cond + ` AND ` + liveUser

	var u User
	err := r.db.GetContext(ctx, &u, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	return r.updateReturning(ctx, "update user", `
		UPDATE users
		SET full_name = :full_name, company_name = :company_name,
		    country = :country, city = :city, phone = :phone,
		    updated_at = NOW()
		WHERE id = :id AND `+liveUser+`
		RETURNING updated_at`, user)
}

// UpdateAccess writes the fields that drive authorization. Existing leads
// keep the tiers they locked at creation.
func (r *repository) UpdateAccess(ctx context.Context, user *User) error {
	return r.updateReturning(ctx, "update user access", `
		UPDATE users
		SET role = :role, tier = :tier,
		    subscription_status = :subscription_status,
		    verified = :verified, updated_at = NOW()
		WHERE id = :id AND `+liveUser+`
		RETURNING updated_at`, user)
}

func (r *repository) updateReturning(
	ctx context.Context,
	op, query string,
	user *User,
) error {
	q, args, err := bindNamed(query, user)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = r.db.GetContext(ctx, &user.UpdatedAt, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	return r.execOne(ctx, "update password", `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND `+liveUser, id, passwordHash)
}

func (r *repository) IncrementTokenVersion(ctx context.Context, id string) error {
	return r.execOne(ctx, "increment token version", `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1 AND `+liveUser, id)
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	return r.execOne(ctx, "delete user", `
		UPDATE users
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND `+liveUser, id)
}

// execOne runs a statement that must touch exactly one live row.
func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}

type listedUser struct {
	User
	Total int `db:"total_count"`
}

// List pages through live users. The total rides along on every row via a
// window count so one round trip serves both.
func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	f := userFilter(params)
	limit := f.arg(params.PageSize)
	offset := f.arg(params.Offset())

	query := `SELECT ` + userColumns + `, COUNT(*) OVER() AS total_count
		FROM users
		WHERE ` + f.where() + `
		ORDER BY created_at DESC
		LIMIT ` + limit + ` OFFSET ` + offset

	var rows []listedUser
	if err := r.db.SelectContext(ctx, &rows, query, f.args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	users := make([]User, len(rows))
	for i := range rows {
		users[i] = rows[i].User
	}
	if len(rows) > 0 {
		return users, rows[0].Total, nil
	}
	if params.Page == 1 {
		return users, 0, nil
	}

	// Past the last page the window count has no row to ride on.
	var total int
	countQuery := `SELECT COUNT(*) FROM users WHERE ` + f.where()
	if err := r.db.GetContext(
		ctx, &total, countQuery, f.args[:len(f.args)-2]...,
	); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}

type filter struct {
	conds []string
	args  []any
}

// arg appends a bind value and returns its placeholder.
func (f *filter) arg(v any) string {
	f.args = append(f.args, v)
	return "$" + strconv.Itoa(len(f.args))
}

func (f *filter) where() string {
	return strings.Join(f.conds, " AND ")
}

func userFilter(p ListUsersParams) *filter {
	f := &filter{conds: []string{liveUser}}

	if p.Search != "" {
		ph := f.arg("%" + escapeLike(p.Search) + "%")
		f.conds = append(f.conds, "(email ILIKE "+ph+" OR full_name ILIKE "+ph+")")
	}
	if p.Role != "" {
		f.conds = append(f.conds, "role = "+f.arg(p.Role))
	}
	if p.Tier != "" {
		f.conds = append(f.conds, "tier = "+f.arg(p.Tier))
	}
	return f
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
