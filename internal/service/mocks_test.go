package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/internal/repository"
	appErrors "github.com/noah-isme/fieldlab-api/pkg/errors"
)

func init() {
	passwordHashCost = bcrypt.MinCost
}

func requireCode(t *testing.T, err error, code string) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}

type memUserRepo struct {
	mu        sync.Mutex
	users     map[string]models.User
	createErr error
	lastLogin map[string]time.Time
}

func newMemUserRepo(users ...models.User) *memUserRepo {
	r := &memUserRepo{users: map[string]models.User{}, lastLogin: map[string]time.Time{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) get(id string) (models.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	return u, ok
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *memUserRepo) CountApprovedAdmins(_ context.Context, activeOnly bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.Role == models.RoleAdmin && u.IsApproved && (!activeOnly || u.IsActive) {
			n++
		}
	}
	return n, nil
}

func (r *memUserRepo) List(_ context.Context, filter models.UserFilter) ([]models.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.IsApproved != nil && u.IsApproved != *filter.IsApproved {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, len(out), nil
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return fmt.Errorf("insert user: %w", repository.ErrDuplicate)
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) UpdateStatus(_ context.Context, id string, update models.UserStatusUpdate, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if update.IsApproved != nil {
		u.IsApproved = *update.IsApproved
	}
	if update.IsActive != nil {
		u.IsActive = *update.IsActive
	}
	u.UpdatedAt = at
	r.users[id] = u
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLogin[id] = ts
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, passwordHash string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = updatedAt
	r.users[id] = u
	return nil
}

type memPatientRepo struct {
	patients    map[string]models.Patient
	createErr   error
	searchCalls int
	deleted     []string
}

func newMemPatientRepo(patients ...models.Patient) *memPatientRepo {
	r := &memPatientRepo{patients: map[string]models.Patient{}}
	for _, p := range patients {
		r.patients[p.ID] = p
	}
	return r
}

func (r *memPatientRepo) Create(_ context.Context, patient *models.Patient) error {
	if r.createErr != nil {
		return r.createErr
	}
	if patient.ID == "" {
		patient.ID = uuid.NewString()
	}
	r.patients[patient.ID] = *patient
	return nil
}

func (r *memPatientRepo) FindByID(_ context.Context, id string) (*models.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *memPatientRepo) List(_ context.Context) ([]models.Patient, error) {
	out := make([]models.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		out = append(out, p)
	}
	return out, nil
}

func (r *memPatientRepo) Search(_ context.Context, term string, limit int) ([]models.Patient, error) {
	r.searchCalls++
	term = strings.ToLower(term)
	out := []models.Patient{}
	for _, p := range r.patients {
		if strings.Contains(strings.ToLower(p.FirstName+" "+p.LastName), term) && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPatientRepo) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	delete(r.patients, id)
	return nil
}

type memSampleRepo struct {
	samples   map[string]models.SampleCollection
	createErr error
	listCalls int
	reviews   int
}

func newMemSampleRepo(samples ...models.SampleCollection) *memSampleRepo {
	r := &memSampleRepo{samples: map[string]models.SampleCollection{}}
	for _, s := range samples {
		r.samples[s.ID] = s
	}
	return r
}

func (r *memSampleRepo) Create(_ context.Context, sample *models.SampleCollection) error {
	if r.createErr != nil {
		return r.createErr
	}
	if sample.ID == "" {
		sample.ID = uuid.NewString()
	}
	r.samples[sample.ID] = *sample
	return nil
}

func (r *memSampleRepo) FindByID(_ context.Context, id string) (*models.SampleCollection, error) {
	s, ok := r.samples[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *memSampleRepo) List(_ context.Context, filter models.SampleFilter) ([]models.SampleCollection, int, error) {
	r.listCalls++
	out := []models.SampleCollection{}
	for _, s := range r.samples {
		if filter.LabStatus != nil && s.LabStatus != *filter.LabStatus {
			continue
		}
		if filter.PatientID != "" && s.PatientID != filter.PatientID {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CollectionDate.After(out[j].CollectionDate) })
	total := len(out)
	if filter.Offset >= len(out) {
		return []models.SampleCollection{}, total, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (r *memSampleRepo) ListByPatient(ctx context.Context, patientID string) ([]models.SampleCollection, error) {
	out, _, err := r.List(ctx, models.SampleFilter{PatientID: patientID})
	return out, err
}

func (r *memSampleRepo) Review(_ context.Context, id string, review models.SampleReview) error {
	s, ok := r.samples[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.reviews++
	s.LabStatus = review.LabStatus
	s.LabComments = review.LabComments
	s.ReviewedBy = &review.ReviewedBy
	at := review.ReviewedAt
	s.ReviewedAt = &at
	r.samples[id] = s
	return nil
}

type fakeSampleImages struct {
	stored    []string
	discarded []string
	failAt    int
}

func (f *fakeSampleImages) Store(_ context.Context, upload ImageUpload, _ string) (*models.SampleImage, error) {
	if f.failAt > 0 && len(f.stored)+1 == f.failAt {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image type not allowed")
	}
	id := fmt.Sprintf("img-%d", len(f.stored)+1)
	f.stored = append(f.stored, id)
	return &models.SampleImage{Filename: upload.Filename, ContentType: "image/png", Size: upload.Size, ImageID: id}, nil
}

func (f *fakeSampleImages) Discard(_ context.Context, imageID string) {
	f.discarded = append(f.discarded, imageID)
}

func (f *fakeSampleImages) SignImages(images models.SampleImages) models.SampleImages {
	signed := make(models.SampleImages, len(images))
	copy(signed, images)
	for i := range signed {
		signed[i].URL = "/files/" + signed[i].ImageID
	}
	return signed
}

// memCache stores JSON payloads in memory with prefix pattern deletes.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memCache) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func newTestCache(backend *memCache) *CacheService {
	return NewCacheService(backend, nil, time.Minute, nil, true)
}
