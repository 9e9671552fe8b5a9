package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReturnOutcome_RatingDelta(t *testing.T) {
	tests := []struct {
		name     string
		outcome  ReturnOutcome
		expected int
	}{
		{
			name: "on time, same condition",
			outcome: ReturnOutcome{
				Status:            StatusReturned,
				ReturnedCondition: ConditionGood,
				RecordedCondition: ConditionGood,
			},
			expected: 1,
		},
		{
			name: "expired, same condition",
			outcome: ReturnOutcome{
				Status:            StatusExpired,
				ReturnedCondition: ConditionGood,
				RecordedCondition: ConditionGood,
			},
			expected: -10,
		},
		{
			name: "on time, worsened condition",
			outcome: ReturnOutcome{
				Status:            StatusReturned,
				ReturnedCondition: ConditionBad,
				RecordedCondition: ConditionGood,
			},
			expected: -10,
		},
		{
			name: "expired and worsened condition stack",
			outcome: ReturnOutcome{
				Status:            StatusExpired,
				ReturnedCondition: ConditionBad,
				RecordedCondition: ConditionExcellent,
			},
			expected: -20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.outcome.RatingDelta())
		})
	}
}

func TestReturnOutcome_ConditionWorsened(t *testing.T) {
	same := ReturnOutcome{ReturnedCondition: ConditionGood, RecordedCondition: ConditionGood}
	assert.False(t, same.ConditionWorsened())

	worse := ReturnOutcome{ReturnedCondition: ConditionBad, RecordedCondition: ConditionGood}
	assert.True(t, worse.ConditionWorsened())
}
