package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stagehand/internal/core/domain"
)

func TestInternedString(t *testing.T) {
	a := domain.NewInternedString("QuickFeedback")
	b := domain.NewInternedString("QuickFeedback")

	assert.Equal(t, a, b)
	assert.Equal(t, "QuickFeedback", a.String())
	assert.False(t, a.IsZero())
}

func TestInternedString_Zero(t *testing.T) {
	var zero domain.InternedString

	assert.True(t, zero.IsZero())
	assert.Empty(t, zero.String())
	assert.NotEqual(t, zero, domain.NewInternedString(""))
}

func TestInternedStringJSON(t *testing.T) {
	type wrapper struct {
		Stage domain.InternedString `json:"stage"`
	}

	data, err := json.Marshal(wrapper{Stage: domain.NewInternedString("ReadyForMerge")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"stage":"ReadyForMerge"}`, string(data))

	var out wrapper
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, domain.NewInternedString("ReadyForMerge"), out.Stage)
}
