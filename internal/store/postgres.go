package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrSlugTaken is returned when a document insert loses to the unique
	// slug index. Callers treat it as a retryable collision.
	ErrSlugTaken = errors.New("document slug already taken")
	// ErrEmailTaken is returned when a user insert collides on email.
	ErrEmailTaken = errors.New("email already registered")
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// ---- users ----

func (s *PostgresStore) CreateUser(ctx context.Context, user User) (User, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, display_name, email, password_hash)
		VALUES ($1, $2, LOWER($3), $4)
		RETURNING id, display_name, email, password_hash, created_at, updated_at
	`, user.ID, user.DisplayName, user.Email, user.PasswordHash).Scan(
		&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return User{}, ErrEmailTaken
	}
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, created_at, updated_at
		FROM users WHERE email = LOWER($1)
	`, email).Scan(&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, created_at, updated_at
		FROM users WHERE id = $1
	`, userID).Scan(&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// ---- refresh sessions (Postgres fallback when Redis is not configured) ----

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at, revoked_at=NULL
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (User, error) {
	const query = `
		SELECT u.id, u.display_name, u.email
		FROM refresh_sessions rs
		JOIN users u ON u.id = rs.user_id
		WHERE rs.token_hash = $1
			AND rs.revoked_at IS NULL
			AND rs.expires_at > NOW()
	`
	var user User
	err := s.db.QueryRowContext(ctx, query, tokenHash).Scan(&user.ID, &user.DisplayName, &user.Email)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at=NOW() WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_access_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, exp)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM revoked_access_tokens WHERE jti=$1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

// ---- documents ----

const documentColumns = `
	id, owner_id, title, slug, kind, jurisdiction, blueprint_slug, blueprint_version,
	status, content, html, locked_at, lock_deadline, created_at, updated_at
`

func scanDocument(row interface{ Scan(...any) error }) (Document, error) {
	var item Document
	err := row.Scan(
		&item.ID, &item.OwnerID, &item.Title, &item.Slug, &item.Kind, &item.Jurisdiction,
		&item.BlueprintSlug, &item.BlueprintVersion, &item.Status, &item.Content, &item.HTML,
		&item.LockedAt, &item.LockDeadline, &item.CreatedAt, &item.UpdatedAt,
	)
	return item, err
}

// InsertDocument persists a new draft. A slug collision (the unique index is
// the backstop for concurrent creation) surfaces as ErrSlugTaken so the
// caller's probe-and-insert loop can retry with the next suffix.
func (s *PostgresStore) InsertDocument(ctx context.Context, item Document) (Document, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO documents (id, owner_id, title, slug, kind, jurisdiction, blueprint_slug, blueprint_version, status, content, html, lock_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+documentColumns+`
	`, item.ID, item.OwnerID, item.Title, item.Slug, item.Kind, item.Jurisdiction,
		item.BlueprintSlug, item.BlueprintVersion, item.Status, item.Content, item.HTML, item.LockDeadline)

	inserted, err := scanDocument(row)
	if isUniqueViolation(err) {
		return Document{}, ErrSlugTaken
	}
	if err != nil {
		return Document{}, fmt.Errorf("insert document: %w", err)
	}
	return inserted, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, documentID string) (Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id=$1`, documentID)
	return scanDocument(row)
}

func (s *PostgresStore) ListDocumentsByOwner(ctx context.Context, ownerID string, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE owner_id=$1
		ORDER BY created_at DESC
		LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	items := make([]Document, 0)
	for rows.Next() {
		item, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return items, nil
}

// UpdateDocumentDraft applies a partial content/html patch and refreshes
// updated_at. Fields outside the patch keep their stored values. The write is
// a single atomic statement; there is no optimistic concurrency token, so
// concurrent edits resolve last-write-wins.
func (s *PostgresStore) UpdateDocumentDraft(ctx context.Context, documentID string, patch DraftPatch) (Document, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE documents
		SET content    = CASE WHEN $2::boolean THEN $3::jsonb ELSE content END,
		    html       = CASE WHEN $4::boolean THEN $5 ELSE html END,
		    updated_at = NOW()
		WHERE id=$1
		RETURNING `+documentColumns+`
	`, documentID, patch.SetContent, nullableJSON(patch.Content), patch.SetHTML, patch.HTML)

	item, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, err
	}
	if err != nil {
		return Document{}, fmt.Errorf("update document: %w", err)
	}
	return item, nil
}

// LockDocument transitions a document to locked at most once. The conditional
// update guarantees concurrent calls converge on a single locked_at; when the
// transition already happened the stored timestamp is returned unchanged.
func (s *PostgresStore) LockDocument(ctx context.Context, documentID string) (time.Time, error) {
	var lockedAt time.Time
	err := s.db.QueryRowContext(ctx, `
		UPDATE documents
		SET status=$2, locked_at=NOW(), updated_at=NOW()
		WHERE id=$1 AND locked_at IS NULL
		RETURNING locked_at
	`, documentID, StatusLocked).Scan(&lockedAt)
	if err == nil {
		return lockedAt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("lock document: %w", err)
	}

	// Either the document is already locked or it does not exist.
	var existing *time.Time
	err = s.db.QueryRowContext(ctx, `SELECT locked_at FROM documents WHERE id=$1`, documentID).Scan(&existing)
	if err != nil {
		return time.Time{}, err
	}
	if existing == nil {
		return time.Time{}, fmt.Errorf("lock document %s: inconsistent lock state", documentID)
	}
	return *existing, nil
}

// SearchDocumentTitles is the Postgres side of the search facade: an
// owner-scoped title match over saved documents.
func (s *PostgresStore) SearchDocumentTitles(ctx context.Context, ownerID, query string, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE owner_id=$1 AND title ILIKE '%' || $2 || '%'
		ORDER BY updated_at DESC
		LIMIT $3
	`, ownerID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	items := make([]Document, 0)
	for rows.Next() {
		item, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return items, nil
}

func nullableJSON(raw []byte) any {
	if raw == nil {
		return nil
	}
	return []byte(raw)
}
