package editor

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// UUIDGenerator returns random (version 4) UUID strings.
func UUIDGenerator() func() string {
	return func() string { return uuid.New().String() }
}

// ULIDGenerator returns lexicographically sortable ULID strings.
func ULIDGenerator() func() string {
	return func() string { return ulid.Make().String() }
}

// IDGeneratorFor maps an id format name ("uuid" or "ulid") to a generator.
func IDGeneratorFor(format string) (func() string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "uuid":
		return UUIDGenerator(), nil
	case "ulid":
		return ULIDGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown id format %q", format)
	}
}
