package typeid

import (
	"fmt"

	"github.com/google/uuid"
	"go.jetify.com/typeid/v2"
)

const (
	PrefixUser    = "user"
	PrefixCanvas  = "canvas"
	PrefixShape   = "shape"
	PrefixOp      = "op"
	PrefixSession = "sess"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewUserID() string    { return New(PrefixUser) }
func NewCanvasID() string  { return New(PrefixCanvas) }
func NewShapeID() string   { return New(PrefixShape) }
func NewOpID() string      { return New(PrefixOp) }
func NewSessionID() string { return New(PrefixSession) }

// Derive returns a stable id with the given prefix for name. The same name
// always yields the same id.
func Derive(prefix, name string) string {
	u := uuid.NewSHA1(uuid.NameSpaceURL, []byte(name))
	id, err := typeid.FromUUID(prefix, u.String())
	if err != nil {
		panic(fmt.Sprintf("derive %s id: %v", prefix, err))
	}
	return id.String()
}

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
