package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusScheduled, StatusConfirmed}: true,
		{StatusScheduled, StatusCancelled}: true,
		{StatusConfirmed, StatusCompleted}: true,
		{StatusConfirmed, StatusCancelled}: true,
	}
	for _, from := range Statuses {
		for _, to := range Statuses {
			assert.Equal(t, allowed[[2]Status{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.IsValid())
	}
	assert.False(t, Status("pending").IsValid())
	assert.False(t, Status("").IsValid())
}
