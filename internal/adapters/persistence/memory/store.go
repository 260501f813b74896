// Package memory keeps every repository in process memory. It backs
// STORAGE=memory and the service and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bloodbank-api/internal/adapters/persistence/repositories"
	"bloodbank-api/internal/core/domain"

	"github.com/google/uuid"
)

// db is the shared state behind all memory repositories. Slices keep
// insertion order.
type db struct {
	mu            sync.RWMutex
	now           func() time.Time
	lots          []domain.BloodLot
	transactions  []domain.Transaction
	donors        []domain.Donor
	requests      []domain.HospitalRequest
	users         []domain.User
	refreshTokens []domain.RefreshToken
}

// NewStore returns a fresh, empty store
func NewStore() *repositories.Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock returns an empty store stamping rows with now
func NewStoreWithClock(now func() time.Time) *repositories.Store {
	d := &db{now: now}
	return &repositories.Store{
		Lots:          &lotRepository{d},
		Transactions:  &transactionRepository{d},
		Donors:        &donorRepository{d},
		Requests:      &requestRepository{d},
		Users:         &userRepository{d},
		RefreshTokens: &refreshTokenRepository{d},
	}
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

// window applies offset/limit; limit <= 0 returns everything from offset
func window[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// reversed returns a copy of items, newest first
func reversed[T any](items []T) []T {
	out := make([]T, len(items))
	for i := range items {
		out[len(items)-1-i] = items[i]
	}
	return out
}

// ============================================================
// Lots
// ============================================================

type lotRepository struct{ d *db }

func (r *lotRepository) Create(ctx context.Context, lot *domain.BloodLot) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.insertLot(lot)
	return nil
}

func (d *db) insertLot(lot *domain.BloodLot) {
	ensureID(&lot.ID)
	now := d.now()
	lot.CreatedAt, lot.UpdatedAt = now, now
	d.lots = append(d.lots, *lot)
}

func (r *lotRepository) Update(ctx context.Context, lot *domain.BloodLot) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	return r.d.updateLot(lot)
}

func (d *db) lotIndex(id string) int {
	for i := range d.lots {
		if d.lots[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *db) updateLot(lot *domain.BloodLot) error {
	i := d.lotIndex(lot.ID)
	if i < 0 {
		return domain.ErrNotFound
	}
	stored := &d.lots[i]
	stored.Units = lot.Units
	stored.Status = lot.Status
	stored.Location = lot.Location
	stored.UpdatedAt = d.now()
	*lot = *stored
	return nil
}

func (r *lotRepository) GetByID(ctx context.Context, id string) (*domain.BloodLot, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	i := r.d.lotIndex(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	lot := r.d.lots[i]
	return &lot, nil
}

func (r *lotRepository) List(ctx context.Context, filter repositories.LotFilter, offset, limit int) ([]domain.BloodLot, int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	var matched []domain.BloodLot
	for _, lot := range reversed(r.d.lots) {
		if filter.BloodType != "" && lot.BloodType != filter.BloodType {
			continue
		}
		if filter.Status != "" {
			if lot.Status != filter.Status {
				continue
			}
		} else if lot.Status == domain.LotDepleted {
			continue
		}
		if filter.Location != "" && lot.Location != filter.Location {
			continue
		}
		matched = append(matched, lot)
	}
	return window(matched, offset, limit), int64(len(matched)), nil
}

func (r *lotRepository) ListAvailable(ctx context.Context) ([]domain.BloodLot, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	lots := []domain.BloodLot{}
	for _, lot := range r.d.lots {
		if lot.Status == domain.LotAvailable {
			lots = append(lots, lot)
		}
	}
	return lots, nil
}

func (r *lotRepository) ListByBloodType(ctx context.Context, bloodType domain.BloodType) ([]domain.BloodLot, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	lots := []domain.BloodLot{}
	for _, lot := range r.d.lots {
		if lot.BloodType == bloodType && lot.Status != domain.LotDepleted {
			lots = append(lots, lot)
		}
	}
	sort.SliceStable(lots, func(i, j int) bool {
		return lots[i].ExpiryDate.Before(lots[j].ExpiryDate)
	})
	return lots, nil
}

func (r *lotRepository) CommitIntake(ctx context.Context, lot *domain.BloodLot, tx *domain.Transaction) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.insertLot(lot)
	r.d.insertTransaction(tx)
	return nil
}

func (r *lotRepository) CommitAllocation(ctx context.Context, updated, depleted []domain.BloodLot, tx *domain.Transaction) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	// check every id first so a missing lot leaves nothing half-written
	for _, set := range [][]domain.BloodLot{depleted, updated} {
		for _, lot := range set {
			if r.d.lotIndex(lot.ID) < 0 {
				return domain.ErrNotFound
			}
		}
	}
	for i := range depleted {
		_ = r.d.updateLot(&depleted[i])
	}
	for i := range updated {
		_ = r.d.updateLot(&updated[i])
	}
	r.d.insertTransaction(tx)
	return nil
}

func (r *lotRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// ============================================================
// Transactions
// ============================================================

type transactionRepository struct{ d *db }

func (d *db) insertTransaction(tx *domain.Transaction) {
	ensureID(&tx.ID)
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = d.now()
	}
	d.transactions = append(d.transactions, *tx)
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.insertTransaction(tx)
	return nil
}

func (r *transactionRepository) List(ctx context.Context, filter repositories.TransactionFilter, offset, limit int) ([]domain.Transaction, int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	var matched []domain.Transaction
	for _, tx := range reversed(r.d.transactions) {
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if filter.BloodType != "" && tx.BloodType != filter.BloodType {
			continue
		}
		matched = append(matched, tx)
	}
	return window(matched, offset, limit), int64(len(matched)), nil
}

// ============================================================
// Donors
// ============================================================

type donorRepository struct{ d *db }

func cloneDonor(d domain.Donor) domain.Donor {
	if d.LastDonation != nil {
		last := *d.LastDonation
		d.LastDonation = &last
	}
	return d
}

func (r *donorRepository) index(pred func(domain.Donor) bool) int {
	for i := range r.d.donors {
		if pred(r.d.donors[i]) {
			return i
		}
	}
	return -1
}

func (r *donorRepository) Create(ctx context.Context, donor *domain.Donor) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if r.index(func(d domain.Donor) bool { return strings.EqualFold(d.Email, donor.Email) }) >= 0 {
		return domain.ErrDuplicateEntry
	}
	ensureID(&donor.ID)
	now := r.d.now()
	donor.CreatedAt, donor.UpdatedAt = now, now
	r.d.donors = append(r.d.donors, cloneDonor(*donor))
	return nil
}

func (r *donorRepository) Update(ctx context.Context, donor *domain.Donor) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	i := r.index(func(d domain.Donor) bool { return d.ID == donor.ID })
	if i < 0 {
		return domain.ErrNotFound
	}
	clash := r.index(func(d domain.Donor) bool {
		return d.ID != donor.ID && strings.EqualFold(d.Email, donor.Email)
	})
	if clash >= 0 {
		return domain.ErrDuplicateEntry
	}
	donor.CreatedAt = r.d.donors[i].CreatedAt
	donor.UpdatedAt = r.d.now()
	r.d.donors[i] = cloneDonor(*donor)
	return nil
}

func (r *donorRepository) GetByID(ctx context.Context, id string) (*domain.Donor, error) {
	return r.get(func(d domain.Donor) bool { return d.ID == id })
}

func (r *donorRepository) GetByEmail(ctx context.Context, email string) (*domain.Donor, error) {
	return r.get(func(d domain.Donor) bool { return strings.EqualFold(d.Email, email) })
}

func (r *donorRepository) get(pred func(domain.Donor) bool) (*domain.Donor, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	i := r.index(pred)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	donor := cloneDonor(r.d.donors[i])
	return &donor, nil
}

func (r *donorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return r.index(func(d domain.Donor) bool { return strings.EqualFold(d.Email, email) }) >= 0, nil
}

func (r *donorRepository) List(ctx context.Context, filter repositories.DonorFilter, offset, limit int) ([]domain.Donor, int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	var matched []domain.Donor
	for _, d := range r.d.donors {
		if filter.Search != "" && !contains(d.Name, filter.Search) && !contains(d.Email, filter.Search) {
			continue
		}
		if filter.BloodType != "" && d.BloodType != filter.BloodType {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		matched = append(matched, cloneDonor(d))
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return window(matched, offset, limit), int64(len(matched)), nil
}

func (r *donorRepository) CountByStatus(ctx context.Context) (map[domain.DonorStatus]int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	counts := map[domain.DonorStatus]int64{}
	for _, d := range r.d.donors {
		counts[d.Status]++
	}
	return counts, nil
}

// ============================================================
// Hospital Requests
// ============================================================

type requestRepository struct{ d *db }

func (r *requestRepository) index(id string) int {
	for i := range r.d.requests {
		if r.d.requests[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *requestRepository) Create(ctx context.Context, req *domain.HospitalRequest) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	ensureID(&req.ID)
	now := r.d.now()
	req.CreatedAt, req.UpdatedAt = now, now
	r.d.requests = append(r.d.requests, *req)
	return nil
}

func (r *requestRepository) Update(ctx context.Context, req *domain.HospitalRequest) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	i := r.index(req.ID)
	if i < 0 {
		return domain.ErrNotFound
	}
	req.CreatedAt = r.d.requests[i].CreatedAt
	req.UpdatedAt = r.d.now()
	r.d.requests[i] = *req
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.HospitalRequest, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	i := r.index(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	req := r.d.requests[i]
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter repositories.RequestFilter, offset, limit int) ([]domain.HospitalRequest, int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	var matched []domain.HospitalRequest
	for _, req := range reversed(r.d.requests) {
		if filter.Search != "" && !contains(req.HospitalName, filter.Search) && !contains(string(req.BloodType), filter.Search) {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		matched = append(matched, req)
	}
	return window(matched, offset, limit), int64(len(matched)), nil
}

func (r *requestRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	counts := map[domain.RequestStatus]int64{}
	for _, req := range r.d.requests {
		counts[req.Status]++
	}
	return counts, nil
}

// ============================================================
// Users & Tokens
// ============================================================

type userRepository struct{ d *db }

func (r *userRepository) index(pred func(domain.User) bool) int {
	for i := range r.d.users {
		if pred(r.d.users[i]) {
			return i
		}
	}
	return -1
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if r.index(func(u domain.User) bool { return strings.EqualFold(u.Email, user.Email) }) >= 0 {
		return domain.ErrDuplicateEntry
	}
	ensureID(&user.ID)
	now := r.d.now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.d.users = append(r.d.users, *user)
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	i := r.index(func(u domain.User) bool { return u.ID == user.ID })
	if i < 0 {
		return domain.ErrNotFound
	}
	user.CreatedAt = r.d.users[i].CreatedAt
	user.UpdatedAt = r.d.now()
	r.d.users[i] = *user
	return nil
}

func (r *userRepository) get(pred func(domain.User) bool) (*domain.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	i := r.index(pred)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	user := r.d.users[i]
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(func(u domain.User) bool { return u.ID == id })
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return r.index(func(u domain.User) bool { return strings.EqualFold(u.Email, email) }) >= 0, nil
}

func (r *userRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	var n int64
	for _, u := range r.d.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *userRepository) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	users := append([]domain.User(nil), r.d.users...)
	sort.SliceStable(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return window(users, offset, limit), int64(len(users)), nil
}

type refreshTokenRepository struct{ d *db }

func (r *refreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	ensureID(&token.ID)
	token.CreatedAt = r.d.now()
	r.d.refreshTokens = append(r.d.refreshTokens, *token)
	return nil
}

func (r *refreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	for _, t := range r.d.refreshTokens {
		if t.TokenHash == tokenHash && t.RevokedAt == nil {
			token := t
			return &token, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *refreshTokenRepository) revoke(match func(domain.RefreshToken) bool) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	now := r.d.now()
	for i := range r.d.refreshTokens {
		t := &r.d.refreshTokens[i]
		if t.RevokedAt == nil && match(*t) {
			t.RevokedAt = &now
		}
	}
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, id string) error {
	r.revoke(func(t domain.RefreshToken) bool { return t.ID == id })
	return nil
}

func (r *refreshTokenRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	r.revoke(func(t domain.RefreshToken) bool { return t.TokenHash == tokenHash })
	return nil
}

func (r *refreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID string) error {
	r.revoke(func(t domain.RefreshToken) bool { return t.UserID == userID })
	return nil
}
