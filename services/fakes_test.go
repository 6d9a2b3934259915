package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"
	"gorm.io/datatypes"

	"tecnoloc-diag/diagnosis"
	"tecnoloc-diag/models"
	"tecnoloc-diag/providers"
	"tecnoloc-diag/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeLogStore struct {
	mu        sync.Mutex
	logs      []models.MaintenanceLog
	lastQuery LogFilter
	createErr error
	listErr   error
}

func (f *fakeLogStore) Create(_ context.Context, log *models.MaintenanceLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	log.ID = uint(len(f.logs) + 1)
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeLogStore) List(_ context.Context, q LogFilter) ([]models.MaintenanceLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.MaintenanceLog
	for _, l := range f.logs {
		modelHit := q.EquipmentModel == "" || l.EquipmentModel == q.EquipmentModel
		catHit := q.DefectCategory == "" || l.DefectCategory == q.DefectCategory
		if q.either() {
			if !(l.EquipmentModel == q.EquipmentModel || l.DefectCategory == q.DefectCategory) {
				continue
			}
		} else if !modelHit || !catHit {
			continue
		}
		if q.Status != "" && l.Status != q.Status {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeLogStore) Get(_ context.Context, id uint) (*models.MaintenanceLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.logs {
		if f.logs[i].ID == id {
			l := f.logs[i]
			return &l, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeLogStore) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.logs)), nil
}

func (f *fakeLogStore) Outdated(_ context.Context, version, limit int) ([]models.MaintenanceLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.MaintenanceLog
	for _, l := range f.logs {
		if l.SchemaVersion < version {
			out = append(out, l)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeLogStore) UpdateDiagnosis(_ context.Context, id uint, r diagnosis.Result, version int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.logs {
		if f.logs[i].ID == id {
			f.logs[i].Diagnosis = datatypes.NewJSONType(r)
			f.logs[i].SchemaVersion = version
			return nil
		}
	}
	return ErrNotFound
}

type fakeManualStore struct {
	mu        sync.Mutex
	manuals   []models.Manual
	createErr error
}

func (f *fakeManualStore) Create(_ context.Context, m *models.Manual) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	m.ID = uint(len(f.manuals) + 1)
	f.manuals = append(f.manuals, *m)
	return nil
}

func (f *fakeManualStore) List(context.Context) ([]models.Manual, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Manual(nil), f.manuals...), nil
}

func (f *fakeManualStore) Get(_ context.Context, id uint) (*models.Manual, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.manuals {
		if f.manuals[i].ID == id {
			m := f.manuals[i]
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeManualStore) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.manuals {
		if f.manuals[i].ID == id {
			f.manuals = append(f.manuals[:i], f.manuals[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeManualStore) FindByModel(_ context.Context, model string) (*models.Manual, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.manuals) - 1; i >= 0; i-- {
		if model != "" && strings.Contains(strings.ToLower(f.manuals[i].Model), strings.ToLower(model)) {
			m := f.manuals[i]
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

type fakeObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
	deleted   []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.objects[key] = data
	return "https://files.example.test/" + key, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectStore) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.ObjectInfo
	for k, v := range f.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, storage.ObjectInfo{Key: k, Size: int64(len(v))})
		}
	}
	return out, nil
}

type fakeProvider struct {
	reply  string
	err    error
	prompt providers.Prompt
	calls  int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, p providers.Prompt) (string, error) {
	f.calls++
	f.prompt = p
	if f.err != nil {
		return "", f.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return "", errors.New("expected a deadline on the context")
	}
	return f.reply, nil
}
