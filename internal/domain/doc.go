// Package domain defines the core business entities of the task tracker
// and their validation rules. Entities are plain structs with no knowledge
// of persistence or transport.
package domain
