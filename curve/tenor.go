package curve

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/meenmo/credlib/utils"
)

// TenorDate converts tenor strings like "1W", "3M", "10Y" to a date after asOf.
// Month and year tenors roll like EDATE.
func TenorDate(asOf time.Time, tenor string) (time.Time, error) {
	tenor = strings.TrimSpace(strings.ToUpper(tenor))
	if len(tenor) < 2 {
		return time.Time{}, fmt.Errorf("TenorDate: invalid tenor %q", tenor)
	}
	v, err := strconv.Atoi(tenor[:len(tenor)-1])
	if err != nil || v <= 0 {
		return time.Time{}, fmt.Errorf("TenorDate: invalid tenor %q", tenor)
	}
	switch tenor[len(tenor)-1] {
	case 'D':
		return asOf.AddDate(0, 0, v), nil
	case 'W':
		return asOf.AddDate(0, 0, 7*v), nil
	case 'M':
		return utils.AddMonth(asOf, v), nil
	case 'Y':
		return utils.AddMonth(asOf, 12*v), nil
	default:
		return time.Time{}, fmt.Errorf("TenorDate: invalid tenor %q", tenor)
	}
}
