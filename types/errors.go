package types

import "errors"

// ErrSerialization is returned, wrapped, whenever a digest, scalar, point,
// path or parameter encoding cannot be decoded. Callers recover by rejecting
// the input.
var ErrSerialization = errors.New("malformed encoding")
