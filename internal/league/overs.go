package league

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const BallsPerOver = 6

// BallsFromOvers converts overs.balls notation ("19.4" = 19 overs 4 balls)
// into a raw ball count. An empty string is 0 balls.
func BallsFromOvers(overs string) (int, error) {
	s := strings.TrimSpace(overs)
	if s == "" {
		return 0, nil
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	fullOvers, err := strconv.Atoi(whole)
	if err != nil || fullOvers < 0 || strings.HasPrefix(whole, "+") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOversFormat, overs)
	}
	if fullOvers > (math.MaxInt-BallsPerOver)/BallsPerOver {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidOversFormat, overs)
	}
	if !hasFrac {
		return fullOvers * BallsPerOver, nil
	}

	balls, err := strconv.Atoi(frac)
	if err != nil || strings.ContainsAny(frac, "+-") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOversFormat, overs)
	}
	if balls >= BallsPerOver {
		return 0, fmt.Errorf("%w: %q has %d balls in an over", ErrInvalidOversFormat, overs, balls)
	}
	return fullOvers*BallsPerOver + balls, nil
}

// OversFromBalls renders a ball count in overs.balls notation. The result is
// a display format, not a decimal number.
func OversFromBalls(balls int) string {
	return fmt.Sprintf("%d.%d", balls/BallsPerOver, balls%BallsPerOver)
}
