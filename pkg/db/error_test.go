package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPermissionDenied(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"pq: permission denied for view openflow_cost_analysis", true},
		{"Error 1142 (42000): SELECT command denied to user", true},
		{"Object 'OPENFLOW_COST_ANALYSIS' is not authorized", true},
		{"Insufficient privileges to operate on view", true},
		{"connection refused", false},
		{"", false},
	}
	for _, tt := range cases {
		if tt.msg == "" {
			assert.False(t, IsPermissionDenied(nil))
			continue
		}
		assert.Equal(t, tt.want, IsPermissionDenied(errors.New(tt.msg)), tt.msg)
	}
}

func TestIsUndefinedRelation(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{`pq: relation "openflow_cost_analysis" does not exist`, true},
		{"Error 1146 (42S02): Table 'flowsight.t' doesn't exist", true},
		{"no such table: openflow_cost_analysis", true},
		{"no such view: openflow_cost_analysis", true},
		{"Object 'X' does not exist or not authorized.", true},
		{"syntax error at or near SELECT", false},
	}
	for _, tt := range cases {
		assert.Equal(t, tt.want, IsUndefinedRelation(errors.New(tt.msg)), tt.msg)
	}
	assert.False(t, IsUndefinedRelation(nil))
}
