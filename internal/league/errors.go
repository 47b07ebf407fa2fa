package league

import "errors"

var (
	// ErrInvalidOversFormat is returned for overs strings whose balls part is
	// not a legal ball count within an over.
	ErrInvalidOversFormat = errors.New("invalid overs format")

	ErrInvalidBallsRemaining = errors.New("invalid balls remaining")

	// ErrTeamNotFound is returned by rank lookups for a team that is not in
	// the table.
	ErrTeamNotFound = errors.New("team not found")

	ErrInvalidOutcome = errors.New("invalid outcome")

	// ErrUnknownTeam is returned in strict mode when an outcome names a team
	// absent from the base table.
	ErrUnknownTeam = errors.New("unknown team")

	ErrInvalidTable = errors.New("invalid table")

	ErrTooManyFixtures = errors.New("too many fixtures to enumerate")

	// ErrInvalidTemplate is returned when the scores used for enumerated wins
	// could not form a legal outcome. It is a configuration fault, not a
	// request fault.
	ErrInvalidTemplate = errors.New("invalid margin template")
)
