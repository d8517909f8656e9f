package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyfindr/studyfindr-api/internal/places"
)

type stubRunner struct {
	res places.Result
	err error
}

func (s stubRunner) Run(ctx context.Context) (places.Result, error) {
	if _, ok := ctx.Deadline(); !ok {
		return places.Result{}, errors.New("no deadline")
	}
	return s.res, s.err
}

func TestRunIngest(t *testing.T) {
	res, err := RunIngest(context.Background(), stubRunner{res: places.Result{Inserted: 2, Updated: 1}}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)

	_, err = RunIngest(context.Background(), stubRunner{err: errors.New("boom")}, time.Minute)
	assert.Error(t, err)
}

func TestStartPlacesCron(t *testing.T) {
	c, err := StartPlacesCron("@every 1h", stubRunner{}, time.Minute)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()

	_, err = StartPlacesCron("not a schedule", stubRunner{}, time.Minute)
	assert.Error(t, err)
}
