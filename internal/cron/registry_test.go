package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedJob string

func (j namedJob) Name() string            { return string(j) }
func (namedJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndSkipsDuplicates(t *testing.T) {
	registry := NewRegistry(namedJob("pickup-release"), nil)

	assert.True(t, registry.Register(namedJob("cleanup")))
	assert.False(t, registry.Register(namedJob("pickup-release")))
	assert.False(t, registry.Register(nil))

	assert.Equal(t, []string{"pickup-release", "cleanup"}, registry.Names())

	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0])
}

func TestZeroRegistryAcceptsJobs(t *testing.T) {
	var registry Registry
	require.True(t, registry.Register(namedJob("a")))
	assert.Len(t, registry.Jobs(), 1)
}
