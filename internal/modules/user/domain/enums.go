//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Role is the capability level of an actor
// ENUM(student,admin)
type Role string
