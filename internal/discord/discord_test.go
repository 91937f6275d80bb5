package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/slashbridge/internal/config"
	"github.com/keshon/slashbridge/internal/dispatch"
	"github.com/keshon/slashbridge/pkg/cmd"
	"github.com/keshon/slashbridge/pkg/retrylimit"
)

func restError(code int, retryAfter string) *discordgo.RESTError {
	h := http.Header{}
	if retryAfter != "" {
		h.Set("Retry-After", retryAfter)
	}
	return &discordgo.RESTError{
		Response:     &http.Response{StatusCode: code, Status: fmt.Sprintf("%d", code), Header: h},
		ResponseBody: []byte(`{}`),
	}
}

func TestWrapREST(t *testing.T) {
	err := wrapREST(fmt.Errorf("put: %w", restError(http.StatusTooManyRequests, "1.5")))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 429, apiErr.StatusCode())
	assert.Equal(t, 1500*time.Millisecond, apiErr.RetryAfter())
	assert.True(t, apiErr.Retryable())
	assert.True(t, retrylimit.IsRateLimit(err))

	plain := errors.New("dial tcp: timeout")
	assert.Same(t, plain, wrapREST(plain))
	assert.NoError(t, wrapREST(nil))
}

func TestAPIErrorRetryable(t *testing.T) {
	assert.True(t, (&APIError{Err: restError(502, "")}).Retryable())
	assert.False(t, (&APIError{Err: restError(400, "")}).Retryable())
	assert.False(t, (&APIError{Err: restError(403, "")}).Retryable())
	assert.Zero(t, (&APIError{Err: restError(403, "")}).RetryAfter())
}

func TestApplicationOwners(t *testing.T) {
	assert.Nil(t, applicationOwners(nil))
	assert.Equal(t, []string{"1"}, applicationOwners(&discordgo.Application{Owner: &discordgo.User{ID: "1"}}))

	team := &discordgo.Application{
		Owner: &discordgo.User{ID: "team-user"},
		Team: &discordgo.Team{Members: []*discordgo.TeamMember{
			{User: &discordgo.User{ID: "3"}},
			{User: &discordgo.User{ID: "2"}},
			{User: &discordgo.User{ID: "3"}},
			nil,
		}},
	}
	assert.Equal(t, []string{"2", "3"}, applicationOwners(team))
}

func TestOwnerResolver(t *testing.T) {
	t.Run("configured wins", func(t *testing.T) {
		r := newOwnerResolver(func(context.Context) (*discordgo.Application, error) {
			t.Fatal("application should not be fetched")
			return nil, nil
		}, []string{"9", "8", "9"})

		ids, err := r.OwnerIDs(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"8", "9"}, ids)
	})

	t.Run("application cached", func(t *testing.T) {
		calls := 0
		r := newOwnerResolver(func(context.Context) (*discordgo.Application, error) {
			calls++
			return &discordgo.Application{Owner: &discordgo.User{ID: "7"}}, nil
		}, nil)

		for i := 0; i < 3; i++ {
			ids, err := r.OwnerIDs(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []string{"7"}, ids)
		}
		assert.Equal(t, 1, calls)
	})

	t.Run("failures not cached", func(t *testing.T) {
		calls := 0
		r := newOwnerResolver(func(context.Context) (*discordgo.Application, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("503")
			}
			return &discordgo.Application{}, nil
		}, nil)

		_, err := r.OwnerIDs(context.Background())
		assert.Error(t, err)
		_, err = r.OwnerIDs(context.Background())
		assert.ErrorIs(t, err, dispatch.ErrNoOwners)
		assert.Equal(t, 2, calls)
	})
}

func TestCompileForDevGuildReportsDiagnostics(t *testing.T) {
	noop := func(context.Context, *cmd.Invocation) error { return nil }
	reg := cmd.NewRegistry()
	reg.Register(
		cmd.New("visible", noop, cmd.WithDescription("shown")),
		cmd.New("secret", noop, cmd.WithDescription("dev only"), cmd.AsHidden()),
		cmd.New("Bad Name", noop, cmd.WithDescription("broken"), cmd.AsHidden()),
	)
	b, err := New(&config.Config{DiscordToken: "token", CommandPrefix: "!", OwnerID: "1"}, nil, reg)
	require.NoError(t, err)

	descs, diags := b.compileForDevGuild(context.Background())
	names := make([]string, 0, len(descs))
	for _, d := range descs {
		names = append(names, d.Name)
	}
	assert.ElementsMatch(t, []string{"visible", "secret"}, names)
	require.Len(t, diags.Errors(), 1)
	assert.Equal(t, "Bad Name", diags.Errors()[0].Command)
}
