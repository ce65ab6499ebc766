package model

import "errors"

// ErrDuplicateField is returned when a field name is mapped twice
var ErrDuplicateField = errors.New("duplicate field name")
