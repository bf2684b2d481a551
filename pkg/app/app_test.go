package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowUsesConfiguredLocation(t *testing.T) {
	loc := Location()
	assert.NotNil(t, loc)

	now := Now()
	assert.Equal(t, loc.String(), now.Location().String())
	assert.WithinDuration(t, time.Now(), now, time.Second)
}
