package repos

import (
	"context"
	"database/sql"
	"errors"

	"fandomia/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT id,email,password_hash FROM users WHERE LOWER(email)=LOWER(?)`), email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT id,email,password_hash FROM users WHERE id=?`), id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create stores the account and its profile in one transaction.
func (r *UserRepo) Create(ctx context.Context, u domain.User, p domain.Profile) error {
	return withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO users(id,email,password_hash) VALUES(?,?,?)`),
			u.ID, u.Email, u.Hash); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO profiles(id,email,full_name,phone,role,status)
			VALUES(?,?,?,?,?,?)
			ON CONFLICT(id) DO UPDATE SET email=excluded.email, full_name=excluded.full_name, phone=excluded.phone`),
			u.ID, u.Email, p.FullName, p.Phone, p.Role, p.Status)
		return err
	})
}

func (r *UserRepo) BindSession(ctx context.Context, sid, userID string) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`INSERT INTO sessions(id,user_id,last_seen)
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=CURRENT_TIMESTAMP`), sid, userID)
	return err
}

func (r *UserRepo) SessionUser(ctx context.Context, sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`
      SELECT u.id,u.email,u.password_hash
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`), sid)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`), sid)
	return err
}

type ProfileRepo struct{ DB *sqlx.DB }

func NewProfileRepo(db *sqlx.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

func (r *ProfileRepo) ByID(ctx context.Context, id string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.DB.GetContext(ctx, &p, r.DB.Rebind(`
		SELECT id,email,full_name,phone,role,status FROM profiles WHERE id=?`), id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type RoleRepo struct{ DB *sqlx.DB }

func NewRoleRepo(db *sqlx.DB) *RoleRepo { return &RoleRepo{DB: db} }

// RoleOf returns "" when the user has no explicit role row.
func (r *RoleRepo) RoleOf(ctx context.Context, userID string) (string, error) {
	var role string
	err := r.DB.GetContext(ctx, &role, r.DB.Rebind(`SELECT role FROM user_roles WHERE user_id=?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return role, err
}
