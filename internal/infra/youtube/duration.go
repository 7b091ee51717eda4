package youtube

import (
	"regexp"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

// ISO 8601 durations as the Data API emits them: PT4M23S, PT1H2M, P1DT2H.
var durationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseDuration parses an ISO 8601 duration string into a
// time.Duration.
func parseDuration(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, errors.Newf("invalid ISO 8601 duration: %q", s)
	}

	var total time.Duration
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, errors.Wrapf(err, "invalid ISO 8601 duration: %q", s)
		}
		total += time.Duration(n) * unit
	}
	return total, nil
}
