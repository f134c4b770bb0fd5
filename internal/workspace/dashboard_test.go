package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowPanel blocks non-forced fetches until release is closed.
func slowPanel(started, release chan struct{}, slowErr error) *Panel {
	return &Panel{
		kind:  PanelJobMatch,
		state: PanelState{Kind: PanelJobMatch},
		fetch: func(ctx context.Context, force bool) (json.RawMessage, bool, error) {
			if force {
				return json.RawMessage(`{"v":"new"}`), false, nil
			}
			close(started)
			<-release
			if slowErr != nil {
				return nil, false, slowErr
			}
			return json.RawMessage(`{"v":"old"}`), true, nil
		},
	}
}

func TestPanel_LateLoadDoesNotOverwriteRefresh(t *testing.T) {
	tests := []struct {
		name    string
		slowErr error
	}{
		{"late success", nil},
		{"late failure", errors.New("gateway timeout")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			started, release := make(chan struct{}), make(chan struct{})
			p := slowPanel(started, release, tt.slowErr)

			loadDone := make(chan error, 1)
			go func() { loadDone <- p.Load(context.Background()) }()
			<-started

			require.NoError(t, p.Refresh(context.Background()))
			close(release)
			<-loadDone

			st := p.State()
			assert.JSONEq(t, `{"v":"new"}`, string(st.Data))
			assert.False(t, st.Cached)
			assert.False(t, st.Loading)
			assert.True(t, st.Loaded)
			assert.NoError(t, st.Err)
		})
	}
}

func TestPanel_LoadWhileLoadingIsNoop(t *testing.T) {
	started, release := make(chan struct{}), make(chan struct{})
	p := slowPanel(started, release, nil)

	loadDone := make(chan error, 1)
	go func() { loadDone <- p.Load(context.Background()) }()
	<-started

	assert.NoError(t, p.Load(context.Background()))
	assert.True(t, p.State().Loading)

	close(release)
	require.NoError(t, <-loadDone)
	assert.JSONEq(t, `{"v":"old"}`, string(p.State().Data))
	assert.True(t, p.State().Cached)
}
