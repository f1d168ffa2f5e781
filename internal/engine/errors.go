package engine

import (
	"errors"
	"fmt"

	"github.com/actuallystonmai/bookshelf/internal/domain"
)

type SelectionReason string

const (
	ReasonEmpty       SelectionReason = "empty"
	ReasonTooMany     SelectionReason = "too_many"
	ReasonDuplicate   SelectionReason = "duplicate"
	ReasonUnknownBook SelectionReason = "unknown_book"
)

// SelectionError reports a seed set the engine refuses to score. It matches
// domain.ErrInvalidSelection, and domain.ErrUnknownBook for unknown ids.
type SelectionError struct {
	Reason SelectionReason
	BookID int64
	Msg    string
}

func (e *SelectionError) Error() string {
	return e.Msg
}

func (e *SelectionError) Is(target error) bool {
	if target == domain.ErrInvalidSelection {
		return true
	}
	return target == domain.ErrUnknownBook && e.Reason == ReasonUnknownBook
}

func IsSelectionError(err error) bool {
	var target *SelectionError
	return errors.As(err, &target)
}

func emptySelection() error {
	return &SelectionError{Reason: ReasonEmpty, Msg: "select at least one book"}
}

func tooManySeeds(n, max int) error {
	return &SelectionError{
		Reason: ReasonTooMany,
		Msg:    fmt.Sprintf("select no more than %d books, got %d", max, n),
	}
}

func duplicateSeed(id int64) error {
	return &SelectionError{
		Reason: ReasonDuplicate,
		BookID: id,
		Msg:    fmt.Sprintf("book %d selected more than once", id),
	}
}

func unknownSeed(id int64) error {
	return &SelectionError{
		Reason: ReasonUnknownBook,
		BookID: id,
		Msg:    fmt.Sprintf("book %d does not exist", id),
	}
}
