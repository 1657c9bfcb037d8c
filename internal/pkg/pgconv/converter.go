package pgconv

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeForeignKeyViolation = "23503"
	pgErrCodeInvalidTextRep      = "22P02"
)

var ErrInvalidNumericValue = errors.New("invalid numeric value in pgtype.Numeric")

// IsNoRows checks if the error is a "no rows" error from either sql or pgx
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

func IsUniqueViolation(err error) bool {
	return pgCode(err) == pgErrCodeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == pgErrCodeForeignKeyViolation
}

func IsInvalidTextRepresentation(err error) bool {
	return pgCode(err) == pgErrCodeInvalidTextRep
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func DecimalFromNumeric(pn pgtype.Numeric) (decimal.Decimal, error) {
	if !pn.Valid {
		return decimal.Zero, nil
	}
	if pn.NaN || pn.InfinityModifier != pgtype.Finite {
		return decimal.Zero, ErrInvalidNumericValue
	}
	return decimal.NewFromBigInt(pn.Int, pn.Exp), nil
}

func DecimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func StringPtrFromPgtype(pt pgtype.Text) *string {
	if !pt.Valid {
		return nil
	}
	return &pt.String
}

func StringPtrToPgtype(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}
