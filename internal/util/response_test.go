package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: course 7", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: not the owner", ErrForbidden), http.StatusForbidden},
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: progressPercentage 150", ErrValidation), http.StatusBadRequest},
		{ErrEmailRegistered, http.StatusConflict},
		{ErrAccountDisabled, http.StatusForbidden},
		{fmt.Errorf("%w: upload failed", ErrDependencyFailure), http.StatusBadGateway},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Error())
	}
}
