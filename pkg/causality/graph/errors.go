// Copyright 2025 Certen Protocol

package graph

import "errors"

// ErrRelationNotFound is returned by AddRelation when either endpoint is
// absent from every entity map and is not a known event id.
var ErrRelationNotFound = errors.New("causality graph: relation endpoint not found")
