package report

import (
	"database/sql/driver"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	defaultDecimalPrecision = 18
	defaultDecimalScale     = 2
)

// Decimal is a fixed-point money value kept in its textual form end to end.
// SQLite has no exact decimal storage, so the column is TEXT there.
type Decimal string

func (Decimal) GormDataType() string {
	return "decimal"
}

func (Decimal) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "sqlite" {
		return "text"
	}
	precision, scale := field.Precision, field.Scale
	if precision == 0 {
		precision = defaultDecimalPrecision
	}
	if scale == 0 {
		scale = defaultDecimalScale
	}
	return fmt.Sprintf("decimal(%d,%d)", precision, scale)
}

func (d Decimal) Value() (driver.Value, error) {
	return string(d), nil
}

func (d *Decimal) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = ""
	case string:
		*d = Decimal(v)
	case []byte:
		*d = Decimal(v)
	case int64:
		*d = Decimal(strconv.FormatInt(v, 10))
	case float64:
		*d = Decimal(strconv.FormatFloat(v, 'f', defaultDecimalScale, 64))
	default:
		return fmt.Errorf("unsupported decimal value %T", value)
	}
	return nil
}
