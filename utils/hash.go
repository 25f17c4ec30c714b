package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewPublicHash gera a referência externa opaca de uma comanda (10 chars).
func NewPublicHash() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
