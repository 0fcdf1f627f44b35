package dbpostgres

import (
	"errors"

	"github.com/lib/pq"
)

const ErrDuplicateCode = "23505"

func IsDuplicateKeyErr(err error) bool {
	var pgErr *pq.Error
	if err != nil {
		if errors.As(err, &pgErr) {
			return pgErr.Code == pq.ErrorCode(ErrDuplicateCode)
		}
	}
	return false
}
