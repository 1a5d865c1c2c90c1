package compiler

import (
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError is a document error located at Field (a dotted path such as
// table.user.fields.age, or "cue" for errors CUE itself reports).
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if !e.Pos.IsValid() {
		return e.Field + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Field, e.Message)
}

// SyntaxError reports a malformed expression string.
type SyntaxError struct {
	Input   string
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d in %q", e.Message, e.Offset, e.Input)
}

// formatCUEError turns a CUE evaluation error into a CompileError at the
// first reported position. Further errors are counted in the message.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return err
	}
	first := list[0]
	pos := cueerrors.Positions(first)
	if len(pos) == 0 {
		return err
	}

	msg := strings.TrimSpace(first.Error())
	if n := len(list) - 1; n > 0 {
		msg = fmt.Sprintf("%s (and %d more)", msg, n)
	}
	return &CompileError{Field: "cue", Message: msg, Pos: pos[0]}
}
