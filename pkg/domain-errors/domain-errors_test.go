package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// Justification: These are core error primitives used at every trust boundary.
// Unit tests ensure invariants like "wrapped domain errors preserve original code"
// and "errors.Is matches by code" are maintained.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "principal not found"}
		s.Equal("principal not found", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeCredentialMismatch}
		s.Equal("credential_mismatch", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("database connection failed")
		err := &Error{Code: CodeStoreUnavailable, Message: "store error", Err: inner}
		s.Equal(inner, err.Unwrap())
	})

	s.Run("works with errors.Unwrap", func() {
		inner := errors.New("root cause")
		err := &Error{Code: CodeInternal, Err: inner}
		s.Equal(inner, errors.Unwrap(err))
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeNotFound, Message: "staff not found"}
		err2 := &Error{Code: CodeNotFound, Message: "admin not found"}
		s.True(err1.Is(err2))
	})

	s.Run("does not match different codes", func() {
		err1 := &Error{Code: CodeGeofenceViolation}
		err2 := &Error{Code: CodeCredentialMismatch}
		s.False(err1.Is(err2))
	})

	s.Run("errors.Is traverses wrap chains", func() {
		inner := New(CodeTokenScope, "stage token used for session route")
		outer := Wrap(inner, CodeInternal, "redeem failed")
		s.True(errors.Is(outer, &Error{Code: CodeTokenScope}))
	})
}

func (s *DomainErrorsSuite) TestWrapPreservesCode() {
	inner := New(CodeGeofenceViolation, "outside permitted range")
	wrapped := Wrap(inner, CodeInternal, "session issuance failed")

	var e *Error
	s.Require().True(errors.As(wrapped, &e))
	s.Equal(CodeGeofenceViolation, e.Code)
	s.Equal("session issuance failed", e.Message)
}

func (s *DomainErrorsSuite) TestHasCode() {
	err := New(CodeStoreUnavailable, "principal store timed out")
	s.True(HasCode(err, CodeStoreUnavailable))
	s.False(HasCode(err, CodeNotFound))
	s.False(HasCode(errors.New("plain"), CodeNotFound))
}
