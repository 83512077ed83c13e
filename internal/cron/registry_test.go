package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedJob string

func (n namedJob) Name() string              { return string(n) }
func (n namedJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndIndexesByName(t *testing.T) {
	registry, err := NewRegistry(namedJob("order-expiry"), nil, namedJob("notification-cleanup"))
	require.NoError(t, err)

	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "order-expiry", jobs[0].Name())
	assert.Equal(t, "notification-cleanup", jobs[1].Name())

	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0])

	job, ok := registry.Lookup("notification-cleanup")
	require.True(t, ok)
	assert.Equal(t, "notification-cleanup", job.Name())
	_, ok = registry.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicateAndUnnamedJobs(t *testing.T) {
	_, err := NewRegistry(namedJob("order-expiry"), namedJob("order-expiry"))
	assert.ErrorContains(t, err, "registered twice")

	_, err = NewRegistry(namedJob(""))
	assert.ErrorContains(t, err, "has no name")
}
