package marketplace_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/lockload/internal/domain"
)

// --- DealStore ---

type memStore struct {
	mu     sync.Mutex
	deals  map[int64]domain.Deal
	bids   []domain.Bid
	chain  map[int64][2]bool
	nextID int64
}

func newMemStore(deals ...domain.Deal) *memStore {
	s := &memStore{deals: map[int64]domain.Deal{}, chain: map[int64][2]bool{}}
	for _, d := range deals {
		s.deals[d.ID] = d
		if d.ID > s.nextID {
			s.nextID = d.ID
		}
	}
	return s
}

func (s *memStore) ListDeals(_ context.Context) ([]domain.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Deal, 0, len(s.deals))
	for _, d := range s.deals {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) GetDeal(_ context.Context, id int64) (domain.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deals[id]
	if !ok {
		return domain.Deal{}, fmt.Errorf("deal %d: %w", id, domain.ErrDealNotFound)
	}
	return d, nil
}

func (s *memStore) CreateDeal(_ context.Context, deal domain.Deal) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	deal.ID = s.nextID
	s.deals[deal.ID] = deal
	return deal.ID, nil
}

func (s *memStore) UpdateDealStatus(_ context.Context, id int64, status domain.DealStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deals[id]
	if !ok {
		return domain.ErrDealNotFound
	}
	d.Status = status
	s.deals[id] = d
	return nil
}

func (s *memStore) UpdateDealChainState(_ context.Context, id int64, verified, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deals[id]
	if !ok {
		return domain.ErrDealNotFound
	}
	d.IsVerified = verified
	s.deals[id] = d
	s.chain[id] = [2]bool{verified, active}
	return nil
}

func (s *memStore) SaveBid(_ context.Context, bid domain.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bids = append(s.bids, bid)
	return nil
}

func (s *memStore) ListBids(_ context.Context, dealID int64) ([]domain.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Bid
	for _, b := range s.bids {
		if b.DealID == dealID {
			out = append(out, b)
		}
	}
	return out, nil
}

// --- SponsorshipContract ---

type mockContract struct {
	mu      sync.Mutex
	err     error
	bids    []domain.SubmitBidCall
	creates []domain.CreateDealCall
	accepts []domain.AcceptDealCall
	reports []domain.ReportPerformanceCall
	info    map[int64]domain.ChainDealInfo
}

func (c *mockContract) receipt(op domain.Operation, from string) (domain.TxReceipt, error) {
	if c.err != nil {
		return domain.TxReceipt{}, c.err
	}
	return domain.TxReceipt{Method: op, From: from, TxHash: "0xfeed", DryRun: true}, nil
}

func (c *mockContract) CreateSponsorshipDeal(_ context.Context, from string, call domain.CreateDealCall) (domain.TxReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creates = append(c.creates, call)
	return c.receipt(domain.OpCreateDeal, from)
}

func (c *mockContract) SubmitBid(_ context.Context, from string, call domain.SubmitBidCall) (domain.TxReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bids = append(c.bids, call)
	return c.receipt(domain.OpSubmitBid, from)
}

func (c *mockContract) AcceptDeal(_ context.Context, from string, call domain.AcceptDealCall) (domain.TxReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accepts = append(c.accepts, call)
	return c.receipt(domain.OpAcceptDeal, from)
}

func (c *mockContract) ReportPerformance(_ context.Context, from string, call domain.ReportPerformanceCall) (domain.TxReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, call)
	return c.receipt(domain.OpReportPerformance, from)
}

func (c *mockContract) GetDealInfo(_ context.Context, id int64) (domain.ChainDealInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.info[id]
	if !ok {
		return domain.ChainDealInfo{}, domain.ErrDealNotFound
	}
	return info, nil
}

// --- Encryptor ---

type mockEncryptor struct {
	err error
}

func (e mockEncryptor) Encrypt(_ context.Context, plaintext string) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []byte(plaintext), nil
}

func (e mockEncryptor) Proof(_ context.Context) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []byte("proof"), nil
}

// --- PriceFeed ---

type fixedPrice struct{ usd decimal.Decimal }

func (p fixedPrice) ETHUSD(context.Context) decimal.Decimal { return p.usd }

var errRejected = errors.New("user rejected the request")
