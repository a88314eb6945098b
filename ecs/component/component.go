// Package component holds the plain data records shared by the physics layer
// and its collaborators.
package component

import "errors"

var (
	ErrInvalidBodyDef = errors.New("component: invalid body definition")
)
