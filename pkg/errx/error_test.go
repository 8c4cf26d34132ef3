package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorKinds(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{name: "validation", err: Validation(cause), kind: KindValidation, status: http.StatusUnprocessableEntity},
		{name: "upstream", err: Upstream(cause), kind: KindUpstream, status: http.StatusInternalServerError},
		{name: "parse", err: Parse(cause), kind: KindParse, status: http.StatusInternalServerError},
		{name: "plain", err: cause, kind: KindInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := From(tt.err)
			assert.Equal(t, tt.kind, appErr.Kind)
			assert.Equal(t, tt.status, appErr.Status)
			assert.ErrorIs(t, appErr, cause)
		})
	}
}

func TestUpstreamKeepsExistingAppError(t *testing.T) {
	parseErr := Parse(errors.New("missing key"))
	wrapped := fmt.Errorf("product P001: %w", parseErr)

	assert.Nil(t, Upstream(nil))
	assert.Same(t, wrapped, Upstream(wrapped))
	assert.True(t, IsKind(Upstream(wrapped), KindParse))
}

func TestAppErrorMessage(t *testing.T) {
	err := Parse(errors.New("missing key: severity"))
	assert.Equal(t, "completion output could not be parsed: missing key: severity", err.Error())

	bare := New(KindInternal, nil, http.StatusInternalServerError, SystemErrorMessage)
	assert.Equal(t, SystemErrorMessage, bare.Error())
}
