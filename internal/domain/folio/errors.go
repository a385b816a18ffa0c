package folio

import "errors"

var (
	ErrMissingID   = errors.New("folio record has no id")
	ErrUnknownKind = errors.New("unknown folio record kind")
	ErrInvalidDate = errors.New("invalid reference date")
)
