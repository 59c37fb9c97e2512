package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

import "errors"

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
// The backing store's constraint is the sole guard against two concurrent
// upload completions registering the same document identity.
var ErrDuplicate = errors.New("duplicate record")
