package models

import "errors"

var (
	ErrMalformedTimestamp = errors.New("malformed order timestamp")
	ErrUnknownGrouping    = errors.New("unknown time grouping")
	ErrUnknownOutput      = errors.New("unknown output format")
	ErrUnknownSortColumn  = errors.New("unknown sort column")
	ErrUnknownSource      = errors.New("unknown orders source")
	ErrUnknownState       = errors.New("unknown order state")
)
