package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// constraintFields names the client-facing field behind each unique constraint.
var constraintFields = map[string]string{
	"users_email_key":           "email",
	"users_phone_number_key":    "phoneNumber",
	"stores_contact_number_key": "contactNumber",
	"stores_email_key":          "email",
	"stores_gstin_key":          "gstin",
	"stores_fssai_license_key":  "fssaiLicense",
}

// translate maps driver errors to apperror values. Anything it does not
// recognise is returned wrapped with op.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			if pqErr.Constraint == "orders_order_id_key" {
				return apperror.ErrDuplicateOrderID
			}
			field, ok := constraintFields[pqErr.Constraint]
			if !ok {
				field = "record"
			}
			return apperror.Conflict(fmt.Sprintf("%s already exists", field))
		case pqForeignKeyViolation:
			return apperror.Conflict("record is referenced by other records")
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// notFound converts sql.ErrNoRows into a NotFound for entity.
func notFound(entity, op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(entity + " not found")
	}
	return translate(op, err)
}

func requireAffected(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(entity + " not found")
	}
	return nil
}
