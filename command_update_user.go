package users

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UpdateUserMessage carries a partial update. Zero-value fields are left
// untouched. A non empty Password stages a plaintext password; the pre-write
// pipeline hashes it inside the update transaction, which rotates the
// derived signing secret and invalidates every outstanding token.
type UpdateUserMessage struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	Password  string    `json:"password"`
}

func (e UpdateUserMessage) Type() string { return "user.update" }

type UpdateUserHandler struct {
	repo RepositoryManager
}

func NewUpdateUserHandler(repo RepositoryManager) *UpdateUserHandler {
	return &UpdateUserHandler{repo: repo}
}

func (h *UpdateUserHandler) Execute(ctx context.Context, event UpdateUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateUserHandler) execute(ctx context.Context, event UpdateUserMessage) (*User, error) {
	if event.ID == uuid.Nil {
		return nil, goerrors.New("user id is required", goerrors.CategoryBadInput)
	}

	if event.Role != "" && !ValidRole(event.Role) {
		return nil, goerrors.New("unknown user role", goerrors.CategoryValidation).
			WithMetadata(map[string]any{"role": event.Role})
	}

	phone, err := normalizePhone(event.Phone)
	if err != nil {
		return nil, err
	}

	record := &User{
		ID:        event.ID,
		FirstName: event.FirstName,
		LastName:  event.LastName,
		Email:     event.Email,
		Phone:     phone,
		Role:      event.Role,
		Password:  event.Password,
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// Existence check keeps a missing id a NotFound instead of a
		// zero-row update.
		if _, err := h.repo.Users().GetByIdentifierTx(ctx, tx, event.ID.String()); err != nil {
			return err
		}

		record, err = h.repo.Users().UpdateTx(ctx, tx, record,
			repository.UpdateByID(event.ID.String()),
			repository.UpdateSkipZeroValues(),
		)
		return err
	})

	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user update transaction failed")
	}

	return record, nil
}
