package warehouse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, Classify("credit usage", nil))
}

func TestClassifyPermissionDenied(t *testing.T) {
	err := Classify("credit usage", errors.New(`pq: permission denied for view openflow_cost_analysis`))
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, "permission_denied", ErrorType(err))
}

func TestClassifyMissingRelation(t *testing.T) {
	cases := []string{
		`pq: relation "openflow_cost_analysis" does not exist`,
		"no such table: openflow_cost_analysis",
		"Error 1146 (42S02): Table 'flowsight.openflow_cost_analysis' doesn't exist",
		"SQL compilation error: Object 'OPENFLOW_COST_ANALYSIS' does not exist or not authorized.",
	}
	for _, msg := range cases {
		err := Classify("credit usage", errors.New(msg))
		assert.ErrorIs(t, err, ErrDataUnavailable, msg)
		assert.Equal(t, "data_unavailable", ErrorType(err))
	}
}

func TestClassifyOtherIsQueryError(t *testing.T) {
	raw := errors.New("connection reset by peer")
	err := Classify("credit usage", raw)

	var qe *QueryError
	assert.ErrorAs(t, err, &qe)
	assert.Equal(t, "credit usage", qe.Op)
	assert.ErrorIs(t, err, raw)
	assert.Equal(t, "query_error", ErrorType(err))
}

func TestErrorTypeUnclassified(t *testing.T) {
	assert.Equal(t, "internal_error", ErrorType(errors.New("boom")))
	assert.Equal(t, "", ErrorType(nil))
}
