package users

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the user directory. Create and Update run the pre-write pipeline
// (email uniqueness against other live records, hashing of any staged
// plaintext password) inside the same transaction as the guarded write.
type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)
	Update(ctx context.Context, record *User, criteria ...repository.UpdateCriteria) (*User, error)
	UpdateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.UpdateCriteria) (*User, error)

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	CountOthersWithEmail(ctx context.Context, email string, ownID uuid.UUID) (int, error)
	CountOthersWithEmailTx(ctx context.Context, tx bun.IDB, email string, ownID uuid.UUID) (int, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
	_ UserSource                   = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	return a.CreateTx(ctx, tx, user)
}

func (a *users) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*User, error) {
	return a.GetByIdentifierTx(ctx, a.db, identifier, criteria...)
}

func (a *users) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*User, error) {
	options := resolveUserIdentifier(identifier)
	if len(options) == 0 {
		options = []identifierOption{
			{
				column: "id",
				value:  strings.TrimSpace(identifier),
			},
		}
	}

	for _, opt := range options {
		record := &User{}
		q := tx.NewSelect().Model(record)

		for _, c := range criteria {
			q.Apply(c)
		}

		err := q.
			Where(fmt.Sprintf("?TableAlias.%s = ?", opt.column), opt.value).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{
			"identifier": identifier,
		})
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}
	return record, nil
}

// CountOthersWithEmail counts live records holding the email under a
// different id. Soft-deleted rows are excluded by the model's soft delete.
func (a *users) CountOthersWithEmail(ctx context.Context, email string, ownID uuid.UUID) (int, error) {
	return a.CountOthersWithEmailTx(ctx, a.db, email, ownID)
}

func (a *users) CountOthersWithEmailTx(ctx context.Context, tx bun.IDB, email string, ownID uuid.UUID) (int, error) {
	return tx.NewSelect().Model((*User)(nil)).
		Where("?TableAlias.email = ?", email).
		Where("?TableAlias.id != ?", ownID).
		Count(ctx)
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	if err := a.runPreWriteSteps(ctx, tx, record); err != nil {
		return nil, err
	}
	record, err := a.Repository.CreateTx(ctx, tx, record, criteria...)
	if err != nil {
		return nil, mapUserWriteError(err)
	}
	return record, nil
}

func (a *users) Update(ctx context.Context, record *User, criteria ...repository.UpdateCriteria) (*User, error) {
	return a.UpdateTx(ctx, a.db, record, criteria...)
}

func (a *users) UpdateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.UpdateCriteria) (*User, error) {
	if err := a.runPreWriteSteps(ctx, tx, record); err != nil {
		return nil, err
	}
	record, err := a.Repository.UpdateTx(ctx, tx, record, criteria...)
	if err != nil {
		return nil, mapUserWriteError(err)
	}
	return record, nil
}

// mapUserWriteError maps unique-index violations to ErrEmailTaken. The
// uniqueness pre-write step cannot see a concurrent uncommitted row, so under
// concurrent writes the partial unique index on email is the real guard and
// the loser's constraint error still has to read as a duplicate email, not an
// internal failure. Email is the only unique constraint on the users table.
func mapUserWriteError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// isUniqueViolation matches the sqlite and postgres unique-constraint error
// texts. Message matching keeps the repository free of driver imports.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "(SQLSTATE=23505)")
}

// preWriteStep guards a pending write. Steps run in order, inside the same
// transaction as the write itself.
type preWriteStep func(ctx context.Context, tx bun.IDB, record *User) error

func (a *users) runPreWriteSteps(ctx context.Context, tx bun.IDB, record *User) error {
	if record == nil {
		return ErrIdentityNotFound
	}

	steps := []preWriteStep{
		a.checkEmailUniqueness,
		hashStagedPassword,
	}

	for _, step := range steps {
		if err := step(ctx, tx, record); err != nil {
			return err
		}
	}

	return nil
}

// checkEmailUniqueness rejects the write when another live record already
// holds the email. Updates that do not touch the email stage an empty value
// and skip the check.
func (a *users) checkEmailUniqueness(ctx context.Context, tx bun.IDB, record *User) error {
	if record.Email == "" {
		return nil
	}

	count, err := a.CountOthersWithEmailTx(ctx, tx, record.Email, record.ID)
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrEmailTaken
	}

	return nil
}

// hashStagedPassword replaces any staged plaintext password with its hash.
// The staged value never leaves the transaction.
func hashStagedPassword(_ context.Context, _ bun.IDB, record *User) error {
	if record.Password == "" {
		return nil
	}

	hash, err := HashPassword(record.Password)
	if err != nil {
		return err
	}

	record.PasswordHash = hash
	record.Password = ""

	return nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleUser
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

type identifierOption struct {
	column string
	value  string
}

func resolveUserIdentifier(identifier string) []identifierOption {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return nil
	}

	options := make([]identifierOption, 0, 2)

	if isUUID(trimmed) {
		options = append(options, identifierOption{
			column: "id",
			value:  trimmed,
		})
	}

	if isEmail(trimmed) {
		options = append(options, identifierOption{
			column: "email",
			value:  trimmed,
		})
	}

	return options
}

func isEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func isUUID(identifier string) bool {
	_, err := uuid.Parse(identifier)
	return err == nil
}
