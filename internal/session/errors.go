package session

import "errors"

// ErrTeacherExists is returned when a connection tries to claim the teacher
// role while another connection already holds it.
var ErrTeacherExists = errors.New("teacher already registered")
