package cli

import (
	"errors"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
)

func TestExitCodeForErrorMapsKnownCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", errbuilder.New().WithCode(errbuilder.CodeInvalidArgument).WithMsg("bad"), 2},
		{"already exists", errbuilder.New().WithCode(errbuilder.CodeAlreadyExists).WithMsg("dup"), 2},
		{"failed precondition", errbuilder.New().WithCode(errbuilder.CodeFailedPrecondition).WithMsg("no solution"), 4},
		{"permission denied", errbuilder.New().WithCode(errbuilder.CodePermissionDenied).WithMsg("denied"), 3},
		{"not found generic", errbuilder.New().WithCode(errbuilder.CodeNotFound).WithMsg("missing"), 5},
		{"not found target", errbuilder.New().WithCode(errbuilder.CodeNotFound).WithMsg("target not found upstream: foo"), 4},
		{"internal", errbuilder.New().WithCode(errbuilder.CodeInternal).WithMsg("boom"), 5},
		{"plain error", errors.New("unrecognized"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, exitCodeForError(tc.err))
		})
	}
}

func TestErrorMessageUsesBuilderMsgWhenPresent(t *testing.T) {
	err := errbuilder.New().WithCode(errbuilder.CodeInternal).WithMsg("specific failure")
	assert.Equal(t, "specific failure", errorMessage(err))
}

func TestErrorMessageFallsBackToErrorStringForPlainErrors(t *testing.T) {
	err := errors.New("plain failure")
	assert.Equal(t, "plain failure", errorMessage(err))
}
