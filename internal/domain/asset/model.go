package asset

import "fmt"

// Type discriminates the kinds of rosterable assets a league trades in.
type Type string

const (
	TypePlayer    Type = "player"
	TypeDraftPick Type = "draft_pick"
)

func ParseType(v string) (Type, error) {
	switch Type(v) {
	case TypePlayer, TypeDraftPick:
		return Type(v), nil
	default:
		return "", fmt.Errorf("unknown asset type %q", v)
	}
}

// Ref identifies one asset. The zero Ref means "no asset" and is used
// for claims submitted without a drop.
type Ref struct {
	Type Type
	ID   string
}

func (r Ref) IsZero() bool {
	return r.Type == "" && r.ID == ""
}

func (r Ref) Validate() error {
	if _, err := ParseType(string(r.Type)); err != nil {
		return err
	}
	if r.ID == "" {
		return fmt.Errorf("asset id is required")
	}

	return nil
}

func (r Ref) String() string {
	return string(r.Type) + "/" + r.ID
}

// Key is the identity used for conflict tracking inside a league.
// It is a comparable struct on purpose: string-concatenated keys can
// collide when ids contain the separator.
type Key struct {
	Type Type
	ID   string
}

func (r Ref) Key() Key {
	return Key{Type: r.Type, ID: r.ID}
}
