package curve

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// ParseTenor converts tenor strings like "1W", "3M", "10Y" or a bare number of years
// to a year fraction on the ACT/365F basis.
func ParseTenor(tenor string) (float64, error) {
	t := strings.TrimSpace(strings.ToUpper(tenor))
	if t == "" {
		return 0, errors.New("empty tenor")
	}

	unit := t[len(t)-1]
	switch unit {
	case 'D', 'W', 'M', 'Y':
		v, err := strconv.Atoi(strings.TrimSpace(t[:len(t)-1]))
		if err != nil {
			return 0, errors.Wrapf(err, "parse tenor %q", tenor)
		}
		if v < 0 {
			return 0, errors.Errorf("negative tenor %q", tenor)
		}
		switch unit {
		case 'D':
			return float64(v) / 365.0, nil
		case 'W':
			return float64(v) * 7.0 / 365.0, nil
		case 'M':
			return float64(v) / 12.0, nil
		default:
			return float64(v), nil
		}
	}

	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse tenor %q", tenor)
	}
	if v < 0 {
		return 0, errors.Errorf("negative tenor %q", tenor)
	}
	return v, nil
}
