package util

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDateTpl(t *testing.T) {
	ts := time.Date(2023, 11, 10, 7, 5, 9, 0, time.UTC)

	assert.Equal(t, "2023.11.10", FormatDateTpl(ts, "YYYY.MM.DD"))
	assert.Equal(t, "10/11/23 07:05:09", FormatDateTpl(ts, "DD/MM/YY hh:mm:ss"))
	assert.Equal(t, "", FormatDateTpl(time.Time{}, "YYYY"))
}

func TestParallelRunsEveryInput(t *testing.T) {
	var seen atomic.Int32
	boom := errors.New("boom")

	err := Parallel(context.Background(), []int{1, 2, 3, 4, 5}, 2, func(_ context.Context, n int) error {
		seen.Add(1)
		if n%2 == 0 {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(5), seen.Load())
}

func TestParallelEmpty(t *testing.T) {
	assert.NoError(t, Parallel(context.Background(), nil, 4, func(context.Context, string) error {
		return errors.New("not called")
	}))
}
