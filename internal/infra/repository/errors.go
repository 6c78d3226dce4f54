package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/BruksfildServices01/trimbook/internal/httperr"
)

var errShopNotFound = httperr.NotFoundErr("barbershop_not_found", "Barber shop not found.")

var (
	errSlugTaken    = httperr.Conflict("slug_already_exists", "This slug is already in use.")
	errOwnerHasShop = httperr.Conflict("owner_already_has_shop", "This user already owns a barber shop.")
)

// classify turns driver errors into the error taxonomy. Business errors
// pass through untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var be httperr.BusinessError
	if errors.As(err, &be) {
		return err
	}

	wrapped := fmt.Errorf("%s: %w", op, err)
	if errors.Is(err, context.Canceled) {
		return httperr.Canceled(wrapped)
	}
	if isTransient(err) {
		return httperr.Unavailable("storage_unavailable", wrapped)
	}
	return httperr.InternalErr("storage_failed", wrapped)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 08 connection exception, 53 insufficient resources,
		// 57P operator intervention, 40001/40P01 retryable aborts.
		switch {
		case strings.HasPrefix(pgErr.Code, "08"),
			strings.HasPrefix(pgErr.Code, "53"),
			strings.HasPrefix(pgErr.Code, "57P"),
			pgErr.Code == "40001",
			pgErr.Code == "40P01":
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
