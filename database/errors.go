package database

import (
	"errors"

	"github.com/anjiri1684/driving_school/scheduling"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	instructorOverlapConstraint = "lessons_instructor_no_overlap"
	vehicleOverlapConstraint    = "lessons_vehicle_no_overlap"
)

// mapPGError turns constraint violations raised at write time into the
// scheduling rejections the API already knows how to render.
//
// 23P01 = exclusion_violation
// 23503 = foreign_key_violation
func mapPGError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return scheduling.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23P01":
		switch pgErr.ConstraintName {
		case instructorOverlapConstraint:
			return scheduling.ErrResourceConflict.WithDetail("instructor already has a lesson in this time window")
		case vehicleOverlapConstraint:
			return scheduling.ErrResourceConflict.WithDetail("vehicle already booked in this time window")
		}
		return scheduling.ErrResourceConflict
	case "23503":
		return scheduling.ErrNotFound.WithDetail("referenced record does not exist")
	}
	return err
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return scheduling.ErrNotFound.WithDetail(what)
	}
	return err
}
