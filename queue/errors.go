package queue

import "errors"

// ErrNoMemory is returned by Insert when the entry arena has hit its
// configured bound (Options.MaxPool). The queue is left unchanged.
var ErrNoMemory = errors.New("queue: no memory available for entry")

// ErrInvariant signals a breached data-structure invariant (a sibling
// entry that should exist was not found). It denotes corruption in the
// core, not caller misuse, and is never expected in correct operation.
var ErrInvariant = errors.New("queue: invariant violation")
