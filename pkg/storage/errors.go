package storage

import "errors"

var ErrUnsupported = errors.New("unsupported storage type")
