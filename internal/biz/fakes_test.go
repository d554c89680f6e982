package biz

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/constants"
)

var errFakeStorage = errors.New("fake storage error")

// fakeTx 直接执行闭包, 不提供隔离
// 回滚语义由各 fake 仓库的唯一性约束兜底
type fakeTx struct{}

func (fakeTx) Exec(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*Order)}
}

func (r *fakeOrderRepo) CreateOrder(ctx context.Context, order *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ReferenceID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetOrder(ctx context.Context, referenceID string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[referenceID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) GetOrderByExternalRef(ctx context.Context, externalRef string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ExternalRef == externalRef {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) MarkVerified(ctx context.Context, referenceID string) (bool, error) {
	return r.cas(referenceID, constants.OrderStatusVerified)
}

func (r *fakeOrderRepo) MarkFailed(ctx context.Context, referenceID string) (bool, error) {
	return r.cas(referenceID, constants.OrderStatusFailed)
}

func (r *fakeOrderRepo) cas(referenceID, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[referenceID]
	if !ok || o.Status != constants.OrderStatusPending {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (r *fakeOrderRepo) ExpirePending(ctx context.Context, kind string, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, o := range r.orders {
		if o.Kind == kind && o.Status == constants.OrderStatusPending && o.CreatedAt.Before(cutoff) {
			o.Status = constants.OrderStatusFailed
			n++
		}
	}
	return n, nil
}

func (r *fakeOrderRepo) PurgeFailed(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for ref, o := range r.orders {
		if o.Status == constants.OrderStatusFailed && o.CreatedAt.Before(cutoff) {
			delete(r.orders, ref)
			n++
		}
	}
	return n, nil
}

func (r *fakeOrderRepo) status(referenceID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[referenceID]; ok {
		return o.Status
	}
	return ""
}

type fakePinRepo struct {
	mu   sync.Mutex
	pins map[string]*Pin // pinID -> pin
}

func newFakePinRepo() *fakePinRepo {
	return &fakePinRepo{pins: make(map[string]*Pin)}
}

// CreatePin 引用号唯一, 冲突时返回 ErrPinExists, 模仿唯一索引
func (r *fakePinRepo) CreatePin(ctx context.Context, pin *Pin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pins {
		if p.ReferenceID == pin.ReferenceID {
			return ErrPinExists
		}
	}
	cp := *pin
	r.pins[pin.PinID] = &cp
	return nil
}

func (r *fakePinRepo) GetPin(ctx context.Context, pinID string) (*Pin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pins[pinID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePinRepo) GetPinByReference(ctx context.Context, referenceID string) (*Pin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pins {
		if p.ReferenceID == referenceID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePinRepo) TouchAccess(ctx context.Context, pinID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pins[pinID]; ok {
		p.AccessCount++
		now := time.Now()
		p.LastAccessed = &now
	}
	return nil
}

func (r *fakePinRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pins)
}

type fakeCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*BulkCode
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{codes: make(map[string]*BulkCode)}
}

func (r *fakeCodeRepo) InsertCode(ctx context.Context, code *BulkCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[code.Code]; ok {
		return ErrCodeTaken
	}
	cp := *code
	r.codes[code.Code] = &cp
	return nil
}

func (r *fakeCodeRepo) GetCode(ctx context.Context, code string) (*BulkCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[code]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCodeRepo) ListCodesByReference(ctx context.Context, referenceID string) ([]*BulkCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*BulkCode
	for _, c := range r.codes {
		if c.ReferenceID == referenceID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCodeRepo) MarkUsed(ctx context.Context, code, pinID, phone string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[code]
	if !ok || c.IsUsed || !time.Now().Before(c.ExpiresAt) {
		return false, nil
	}
	now := time.Now()
	c.IsUsed = true
	c.UsedAt = &now
	c.UsedByPhone = phone
	c.RedeemedPinID = pinID
	return true, nil
}

func (r *fakeCodeRepo) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, c := range r.codes {
		if !c.IsUsed && c.ExpiresAt.Before(cutoff) {
			delete(r.codes, k)
			n++
		}
	}
	return n, nil
}

type fakeAgentRepo struct {
	mu     sync.Mutex
	agents map[string]*Agent
	sales  map[string]int
}

func newFakeAgentRepo(agents ...*Agent) *fakeAgentRepo {
	r := &fakeAgentRepo{agents: make(map[string]*Agent), sales: make(map[string]int)}
	for _, a := range agents {
		r.agents[a.AgentID] = a
	}
	return r
}

func (r *fakeAgentRepo) GetAgent(ctx context.Context, agentID string) (*Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[agentID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAgentRepo) CreditSale(ctx context.Context, agentID string, commission float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales[agentID]++
	if a, ok := r.agents[agentID]; ok {
		a.TotalPinsSold++
		a.TotalEarnings += commission
		a.PendingCommission += commission
	}
	return nil
}

func (r *fakeAgentRepo) saleCount(agentID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sales[agentID]
}

// fakeGateway 可编程网关
type fakeGateway struct {
	mu        sync.Mutex
	name      string
	createErr error
	verifyErr error
	result    *VerifyResult
	created   []*CreateRequest
	verifyCnt int
}

func newFakeGateway(name string) *fakeGateway {
	return &fakeGateway{name: name}
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) Create(ctx context.Context, req *CreateRequest) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, req)
	return &Session{
		ExternalRef: "ext-" + req.ReferenceID,
		RedirectURL: "https://pay.example.com/" + req.ReferenceID,
	}, nil
}

func (g *fakeGateway) Verify(ctx context.Context, externalRef string) (*VerifyResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCnt++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	if g.result != nil {
		return g.result, nil
	}
	return &VerifyResult{Paid: false, RawStatus: "PENDING"}, nil
}

func (g *fakeGateway) setResult(res *VerifyResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.result = res
}

func (g *fakeGateway) verifyCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verifyCnt
}
