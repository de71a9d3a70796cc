package platform

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/socialsync/backend/internal/domain/identity"
	"github.com/socialsync/backend/internal/domain/platform"
)

// ---------------------------------------------------------------------------
// In-memory test doubles for the domain ports
// ---------------------------------------------------------------------------

type fakeResourceRepo struct {
	mu        sync.Mutex
	resources map[string]*platform.Resource
	failWith  error
}

func newFakeResourceRepo() *fakeResourceRepo {
	return &fakeResourceRepo{resources: make(map[string]*platform.Resource)}
}

func (r *fakeResourceRepo) put(resource *platform.Resource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *resource
	r.resources[resource.ExternalID] = &clone
}

func (r *fakeResourceRepo) get(externalID string) *platform.Resource {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.resources[externalID]; ok {
		clone := *res
		return &clone
	}
	return nil
}

func (r *fakeResourceRepo) FindByExternalIDs(ctx context.Context, externalIDs []string) (map[string]*platform.Resource, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	found := make(map[string]*platform.Resource)
	for _, id := range externalIDs {
		if res, ok := r.resources[id]; ok {
			clone := *res
			found[id] = &clone
		}
	}
	return found, nil
}

func (r *fakeResourceRepo) FindConnectedByCompany(ctx context.Context, companyID uuid.UUID, kind platform.ResourceKind) ([]platform.Resource, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []platform.Resource
	for _, res := range r.resources {
		if res.OwnedBy(companyID) && res.Kind == kind && res.Status == platform.ResourceStatusConnected {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *fakeResourceRepo) Create(ctx context.Context, resource *platform.Resource) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.resources[resource.ExternalID]; exists {
		return platform.ErrResourceClaimed
	}
	clone := *resource
	r.resources[resource.ExternalID] = &clone
	return nil
}

func (r *fakeResourceRepo) UpdateOwned(ctx context.Context, resource *platform.Resource, ownerCompanyID uuid.UUID) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.resources[resource.ExternalID]
	if !ok {
		return platform.ErrResourceClaimed
	}
	if current.OwnerCompanyID != nil && *current.OwnerCompanyID != ownerCompanyID {
		return platform.ErrResourceClaimed
	}
	clone := *resource
	r.resources[resource.ExternalID] = &clone
	return nil
}

func (r *fakeResourceRepo) Disconnect(ctx context.Context, companyID uuid.UUID, externalIDs []string) (int64, error) {
	if r.failWith != nil {
		return 0, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range externalIDs {
		if res, ok := r.resources[id]; ok && res.OwnedBy(companyID) && res.Status == platform.ResourceStatusConnected {
			res.Disconnect()
			n++
		}
	}
	return n, nil
}

func (r *fakeResourceRepo) ClearToken(ctx context.Context, externalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.resources[externalID]
	if !ok {
		return platform.ErrResourceNotFound
	}
	res.AccessToken = ""
	return nil
}

type fakeSkippedRepo struct {
	mu      sync.Mutex
	records []platform.SkippedResource
}

func (r *fakeSkippedRepo) Create(ctx context.Context, record *platform.SkippedResource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeSkippedRepo) FindUnresolvedByAttempting(ctx context.Context, companyID uuid.UUID) ([]platform.SkippedResource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []platform.SkippedResource
	for _, rec := range r.records {
		if rec.AttemptingCompanyID == companyID && !rec.Resolved {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeSkippedRepo) Resolve(ctx context.Context, companyID uuid.UUID, externalIDs []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[string]bool, len(externalIDs))
	for _, id := range externalIDs {
		wanted[id] = true
	}
	var n int64
	for i := range r.records {
		rec := &r.records[i]
		if rec.AttemptingCompanyID != companyID || rec.Resolved {
			continue
		}
		if len(externalIDs) > 0 && !wanted[rec.ExternalID] {
			continue
		}
		rec.Resolve()
		n++
	}
	return n, nil
}

type fakeLocker struct {
	mu       sync.Mutex
	acquired []string
}

func (l *fakeLocker) Acquire(ctx context.Context, externalID string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	l.acquired = append(l.acquired, externalID)
	l.mu.Unlock()
	return func() {}, nil
}

type fakeCompanyRepo struct {
	mu        sync.Mutex
	companies map[uuid.UUID]*identity.Company
}

func newFakeCompanyRepo(companies ...*identity.Company) *fakeCompanyRepo {
	repo := &fakeCompanyRepo{companies: make(map[uuid.UUID]*identity.Company)}
	for _, c := range companies {
		repo.companies[c.ID] = c
	}
	return repo
}

func (r *fakeCompanyRepo) FindByID(ctx context.Context, id uuid.UUID) (*identity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, identity.ErrCompanyNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *fakeCompanyRepo) Save(ctx context.Context, company *identity.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *company
	r.companies[company.ID] = &clone
	return nil
}

func (r *fakeCompanyRepo) UpdateToken(ctx context.Context, id uuid.UUID, kind platform.ResourceKind, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return identity.ErrCompanyNotFound
	}
	c.SetTokenForKind(kind, token)
	return nil
}

func (r *fakeCompanyRepo) ClearToken(ctx context.Context, id uuid.UUID, kind platform.ResourceKind) error {
	return r.UpdateToken(ctx, id, kind, "")
}

func (r *fakeCompanyRepo) IncrementInstallCount(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return identity.ErrCompanyNotFound
	}
	c.InstallCount++
	return nil
}

type fakeClient struct {
	mu sync.Mutex

	exchangeToken *platform.AccessToken
	exchangeErr   error
	fetchResult   *platform.FetchResult
	fetchErr      error
	fetchCalls    int

	subscribeErrs  map[string]error
	subscribeCalls []string
	subscribeGate  chan struct{}

	checkState *platform.SubscriptionState
	checkErr   error
}

func (c *fakeClient) AuthorizationURL(kind platform.ResourceKind, redirectURI, state string) string {
	return "https://platform.example/dialog/oauth?state=" + state + "&kind=" + kind.String()
}

func (c *fakeClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*platform.AccessToken, error) {
	if c.exchangeErr != nil {
		return nil, c.exchangeErr
	}
	return c.exchangeToken, nil
}

func (c *fakeClient) FetchPages(ctx context.Context, userToken string) (*platform.FetchResult, error) {
	return c.fetch()
}

func (c *fakeClient) FetchPixels(ctx context.Context, userToken string) (*platform.FetchResult, error) {
	return c.fetch()
}

func (c *fakeClient) fetch() (*platform.FetchResult, error) {
	c.mu.Lock()
	c.fetchCalls++
	c.mu.Unlock()
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	return c.fetchResult, nil
}

func (c *fakeClient) Subscribe(ctx context.Context, externalID, resourceToken string) error {
	if c.subscribeGate != nil {
		select {
		case <-c.subscribeGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.mu.Lock()
	c.subscribeCalls = append(c.subscribeCalls, externalID)
	err := c.subscribeErrs[externalID]
	c.mu.Unlock()
	return err
}

func (c *fakeClient) CheckSubscription(ctx context.Context, externalID, resourceToken string) (*platform.SubscriptionState, error) {
	if c.checkErr != nil {
		return nil, c.checkErr
	}
	if c.checkState != nil {
		return c.checkState, nil
	}
	return &platform.SubscriptionState{Subscribed: true}, nil
}

type stubCodec struct {
	encoded   string
	encodeErr error
	decoded   *platform.AuthorizationContext
	decodeErr error
}

func (c *stubCodec) Encode(ctx platform.AuthorizationContext) (string, error) {
	if c.encodeErr != nil {
		return "", c.encodeErr
	}
	if c.encoded != "" {
		return c.encoded, nil
	}
	return "signed-state", nil
}

func (c *stubCodec) Decode(state string) (*platform.AuthorizationContext, error) {
	if c.decodeErr != nil {
		return nil, c.decodeErr
	}
	return c.decoded, nil
}
