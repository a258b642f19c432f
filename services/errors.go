package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/padel-circuit/brackets"
	"github.com/Dosada05/padel-circuit/repositories"
	"github.com/Dosada05/padel-circuit/scoring"
	"github.com/Dosada05/padel-circuit/zones"
)

// Классы ошибок. Каждая конкретная ошибка оборачивает ровно один класс, HTTP слой маппит классы.
var (
	ErrValidation               = errors.New("validation failed")
	ErrPrecondition             = errors.New("precondition failed")
	ErrNotFound                 = errors.New("requested resource not found")
	ErrConflict                 = errors.New("integrity conflict")
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")
)

// Ошибки состояния (precondition)
var (
	ErrMatchFinalized          = fmt.Errorf("%w: match is already finalized", ErrPrecondition)
	ErrMatchSlotsOpen          = fmt.Errorf("%w: both pair slots must be filled", ErrPrecondition)
	ErrZoneFinalized           = fmt.Errorf("%w: zone is finalized", ErrPrecondition)
	ErrZoneIncomplete          = fmt.Errorf("%w: zone has unfinished matches", ErrPrecondition)
	ErrZoneHasBracket          = fmt.Errorf("%w: bracket already generated for the category", ErrPrecondition)
	ErrTiebreakInProgress      = fmt.Errorf("%w: zone is waiting for its tiebreak matches", ErrPrecondition)
	ErrNotTripleTie            = fmt.Errorf("%w: zone is not a three-way tie", ErrPrecondition)
	ErrBracketExists           = fmt.Errorf("%w: bracket already exists", ErrPrecondition)
	ErrBracketMissing          = fmt.Errorf("%w: no bracket for the category", ErrPrecondition)
	ErrZonesNotFinalized       = fmt.Errorf("%w: every zone must be finalized", ErrPrecondition)
	ErrNoZones                 = fmt.Errorf("%w: category has no zones", ErrPrecondition)
	ErrFinalNotDecided         = fmt.Errorf("%w: final match is not finalized", ErrPrecondition)
	ErrTournamentFinalized     = fmt.Errorf("%w: tournament is finalized", ErrPrecondition)
	ErrCompetitorInactive      = fmt.Errorf("%w: competitor is inactive", ErrPrecondition)
	ErrCompetitorNotInCategory = fmt.Errorf("%w: competitor is not a member of the category", ErrPrecondition)
	ErrPairInZone              = fmt.Errorf("%w: pair is already assigned to a zone", ErrPrecondition)
	ErrPairOutsideCategory     = fmt.Errorf("%w: pair belongs to another tournament category", ErrPrecondition)
	ErrTieSettled              = fmt.Errorf("%w: zone ranking was settled by a tie resolution", ErrPrecondition)
	ErrRegistrationClosed      = fmt.Errorf("%w: registration closed, bracket already generated", ErrPrecondition)
)

// Конфликты целостности
var (
	ErrCompetitorAlreadyPaired = fmt.Errorf("%w: competitor already entered in a pair for this tournament", ErrConflict)
	ErrPairInAnotherZone       = fmt.Errorf("%w: pair already belongs to another zone", ErrConflict)
	ErrNameConflict            = fmt.Errorf("%w: name already in use", ErrConflict)
	ErrSequenceConflict        = fmt.Errorf("%w: season already has a tournament with this sequence", ErrConflict)
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

var notFoundErrors = []error{
	repositories.ErrTournamentNotFound,
	repositories.ErrTournamentCategoryNotFound,
	repositories.ErrCategoryNotFound,
	repositories.ErrCompetitorNotFound,
	repositories.ErrPairNotFound,
	repositories.ErrZoneNotFound,
	repositories.ErrZoneEntryNotFound,
	repositories.ErrZoneMatchNotFound,
	repositories.ErrBracketMatchNotFound,
	repositories.ErrTieResolutionNotFound,
}

// classify folds repository and domain errors into the service error classes. Errors that
// already carry a class and unknown errors pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, class := range []error{ErrValidation, ErrPrecondition, ErrNotFound, ErrConflict, ErrUnsupportedConfiguration} {
		if errors.Is(err, class) {
			return err
		}
	}

	var scoreErr *scoring.ScoreError
	if errors.As(err, &scoreErr) {
		return &ValidationError{Field: scoreErr.Field, Message: scoreErr.Message}
	}
	for _, nf := range notFoundErrors {
		if errors.Is(err, nf) {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
	}

	switch {
	case errors.Is(err, repositories.ErrCompetitorAlreadyPaired):
		return ErrCompetitorAlreadyPaired
	case errors.Is(err, repositories.ErrPairInAnotherZone):
		return ErrPairInAnotherZone
	case errors.Is(err, repositories.ErrCategoryNameConflict):
		return ErrNameConflict
	case errors.Is(err, repositories.ErrTournamentSequenceConflict):
		return ErrSequenceConflict
	case errors.Is(err, repositories.ErrBracketExists):
		return ErrBracketExists
	case errors.Is(err, repositories.ErrPairInUse):
		return ErrPairInZone
	case errors.Is(err, repositories.ErrZoneSlotFilled), errors.Is(err, brackets.ErrSlotOccupied):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, zones.ErrTooFewPairs), errors.Is(err, zones.ErrDuplicatePair), errors.Is(err, zones.ErrUnsupportedFormat):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, zones.ErrNotTripleTie):
		return ErrNotTripleTie
	case errors.Is(err, zones.ErrTiebreakIncomplete):
		return ErrTiebreakInProgress
	case errors.Is(err, brackets.ErrUnsupportedPairCount), errors.Is(err, brackets.ErrZoneLayoutMismatch):
		return fmt.Errorf("%w: %w", ErrUnsupportedConfiguration, err)
	case errors.Is(err, brackets.ErrZoneNotRanked):
		return fmt.Errorf("%w: %w", ErrZonesNotFinalized, err)
	case errors.Is(err, brackets.ErrFinalNotDecided):
		return ErrFinalNotDecided
	}
	return err
}

// ErrorClass returns a short label of the error class, used for metrics and HTTP codes.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrPrecondition):
		return "precondition"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnsupportedConfiguration):
		return "unsupported"
	default:
		return "internal"
	}
}
