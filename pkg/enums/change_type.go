package enums

import "fmt"

// ChangeType maps to the inventory_change_type enum in Postgres.
type ChangeType string

const (
	ChangeTypeAdded   ChangeType = "Added"
	ChangeTypeRemoved ChangeType = "Removed"
	ChangeTypeSold    ChangeType = "Sold"
)

var validChangeTypes = []ChangeType{
	ChangeTypeAdded,
	ChangeTypeRemoved,
	ChangeTypeSold,
}

// IsValid reports whether the value matches the canonical change type enum.
func (t ChangeType) IsValid() bool {
	for _, candidate := range validChangeTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

func (t ChangeType) String() string {
	return string(t)
}

// ParseChangeType converts raw input into ChangeType.
func ParseChangeType(value string) (ChangeType, error) {
	for _, candidate := range validChangeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid change type %q", value)
}
