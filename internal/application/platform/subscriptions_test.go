package platform

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/socialsync/backend/internal/domain/platform"
	"github.com/socialsync/backend/internal/infrastructure/metaapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func connectedPage(t *testing.T, externalID string) platform.Resource {
	t.Helper()
	r, err := platform.NewResource(externalID, externalID, "tok-"+externalID, platform.ResourceKindPage, uuid.New())
	require.NoError(t, err)
	return *r
}

func TestSubscriptionManager_IndependentOutcomes(t *testing.T) {
	client := &fakeClient{
		subscribeErrs: map[string]error{
			"page-x": errors.New("subscription rejected"),
		},
	}
	mgr := NewSubscriptionManager(client, newFakeResourceRepo(), metaapi.Classifier{}, nil, zap.NewNop())

	futures := mgr.Dispatch(context.Background(), []platform.Resource{
		connectedPage(t, "page-x"),
		connectedPage(t, "page-y"),
	})
	require.Len(t, futures, 2)

	outcomes := mgr.Collect(futures, 2*time.Second)
	require.Len(t, outcomes, 2)

	byID := make(map[string]error, len(outcomes))
	for _, o := range outcomes {
		byID[o.ExternalID] = o.Err
	}
	assert.Error(t, byID["page-x"])
	assert.NoError(t, byID["page-y"])
}

func TestSubscriptionManager_IgnoresPixels(t *testing.T) {
	client := &fakeClient{}
	mgr := NewSubscriptionManager(client, newFakeResourceRepo(), metaapi.Classifier{}, nil, zap.NewNop())

	pixel, err := platform.NewResource("pixel-1", "Pixel", "tok", platform.ResourceKindPixel, uuid.New())
	require.NoError(t, err)

	futures := mgr.Dispatch(context.Background(), []platform.Resource{*pixel})
	assert.Empty(t, futures)
}

func TestSubscriptionManager_CollectTimeout(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{subscribeGate: gate}
	mgr := NewSubscriptionManager(client, newFakeResourceRepo(), metaapi.Classifier{}, nil, zap.NewNop())

	futures := mgr.Dispatch(context.Background(), []platform.Resource{connectedPage(t, "page-slow")})
	outcomes := mgr.Collect(futures, 50*time.Millisecond)

	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, context.DeadlineExceeded)

	// The attempt keeps running after the collect budget expires
	close(gate)
	select {
	case outcome := <-futures[0].Outcome():
		assert.NoError(t, outcome.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription attempt never completed")
	}
}

func TestSubscriptionManager_SurvivesRequestCancellation(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{subscribeGate: gate}
	mgr := NewSubscriptionManager(client, newFakeResourceRepo(), metaapi.Classifier{}, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	futures := mgr.Dispatch(ctx, []platform.Resource{connectedPage(t, "page-1")})
	cancel()
	close(gate)

	select {
	case outcome := <-futures[0].Outcome():
		assert.NoError(t, outcome.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription attempt was cancelled with the request")
	}
}

func TestSubscriptionManager_RejectedTokenCleared(t *testing.T) {
	client := &fakeClient{
		subscribeErrs: map[string]error{
			"page-dead": &metaapi.GraphError{Message: "token invalidated", Code: 190, Subcode: 460},
			"page-slow": &metaapi.GraphError{Message: "please retry", Code: 4},
		},
	}
	repo := newFakeResourceRepo()
	mgr := NewSubscriptionManager(client, repo, metaapi.Classifier{}, nil, zap.NewNop())

	dead := connectedPage(t, "page-dead")
	slow := connectedPage(t, "page-slow")
	repo.put(&dead)
	repo.put(&slow)

	futures := mgr.Dispatch(context.Background(), []platform.Resource{dead, slow})
	mgr.Collect(futures, 2*time.Second)

	assert.Empty(t, repo.get("page-dead").AccessToken)
	// A transient failure leaves the token in place
	assert.Equal(t, "tok-page-slow", repo.get("page-slow").AccessToken)
}

func TestSubscriptionManager_Verify_RejectedTokenCleared(t *testing.T) {
	client := &fakeClient{checkErr: &metaapi.GraphError{Message: "token invalidated", Code: 190, Subcode: 463}}
	repo := newFakeResourceRepo()
	mgr := NewSubscriptionManager(client, repo, metaapi.Classifier{}, nil, zap.NewNop())

	page := connectedPage(t, "page-1")
	repo.put(&page)

	_, err := mgr.Verify(context.Background(), &page)
	require.Error(t, err)
	assert.Empty(t, repo.get("page-1").AccessToken)
}

func TestSubscriptionManager_Verify(t *testing.T) {
	client := &fakeClient{checkState: &platform.SubscriptionState{Subscribed: true, Fields: []string{"messages"}}}
	mgr := NewSubscriptionManager(client, newFakeResourceRepo(), metaapi.Classifier{}, nil, zap.NewNop())

	page := connectedPage(t, "page-1")
	state, err := mgr.Verify(context.Background(), &page)
	require.NoError(t, err)
	assert.True(t, state.Subscribed)
	assert.Equal(t, []string{"messages"}, state.Fields)
}
