package question

import (
	"time"
)

// DeletionKind identifies which questions a DeletionPredicate selects.
type DeletionKind int

const (
	// DeleteNone matches nothing. Unknown scope tokens resolve to it.
	DeleteNone DeletionKind = iota
	DeleteAll
	DeleteCreatedSince
	DeleteCategory
	DeleteDifficulty
)

func (k DeletionKind) String() string {
	switch k {
	case DeleteAll:
		return "all"
	case DeleteCreatedSince:
		return "created_since"
	case DeleteCategory:
		return "category"
	case DeleteDifficulty:
		return "difficulty"
	default:
		return "none"
	}
}

// DeletionPredicate describes a set of questions to delete.
type DeletionPredicate struct {
	Kind DeletionKind
	// Since is set for DeleteCreatedSince.
	Since time.Time
	// Value is the exact category for DeleteCategory, or the normalized difficulty for DeleteDifficulty.
	Value string
}

// Matches reports whether q is selected by the predicate.
func (p DeletionPredicate) Matches(q Question) bool {
	switch p.Kind {
	case DeleteAll:
		return true
	case DeleteCreatedSince:
		return !q.CreatedAt.Before(p.Since)
	case DeleteCategory:
		return q.Category == p.Value
	case DeleteDifficulty:
		return NormalizeDifficulty(q.Difficulty) == p.Value
	default:
		return false
	}
}
