package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dekarrin/sentree/server/dao"
	"github.com/google/uuid"
)

func NewParsesRepository() *InMemoryParsesRepository {
	return &InMemoryParsesRepository{
		parses: make(map[uuid.UUID]dao.ParseRecord),
		order:  make(map[uuid.UUID]uint64),
	}
}

type InMemoryParsesRepository struct {
	mtx    sync.RWMutex
	parses map[uuid.UUID]dao.ParseRecord

	// order holds the insertion sequence number of each record.
	seq   uint64
	order map[uuid.UUID]uint64
}

func (impr *InMemoryParsesRepository) Close() error {
	return nil
}

func (impr *InMemoryParsesRepository) Create(ctx context.Context, rec dao.ParseRecord) (dao.ParseRecord, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.ParseRecord{}, fmt.Errorf("could not generate ID: %w", err)
	}

	impr.mtx.Lock()
	defer impr.mtx.Unlock()

	rec.ID = newUUID
	rec.Created = time.Now()

	impr.parses[rec.ID] = rec
	impr.order[rec.ID] = impr.seq
	impr.seq++

	return rec, nil
}

func (impr *InMemoryParsesRepository) GetAll(ctx context.Context) ([]dao.ParseRecord, error) {
	impr.mtx.RLock()
	defer impr.mtx.RUnlock()

	all := make([]dao.ParseRecord, 0, len(impr.parses))
	for k := range impr.parses {
		all = append(all, impr.parses[k])
	}

	sort.Slice(all, func(i, j int) bool {
		return impr.order[all[i].ID] < impr.order[all[j].ID]
	})

	return all, nil
}

func (impr *InMemoryParsesRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.ParseRecord, error) {
	impr.mtx.RLock()
	defer impr.mtx.RUnlock()

	rec, ok := impr.parses[id]
	if !ok {
		return dao.ParseRecord{}, dao.ErrNotFound
	}

	return rec, nil
}

func (impr *InMemoryParsesRepository) Delete(ctx context.Context, id uuid.UUID) (dao.ParseRecord, error) {
	impr.mtx.Lock()
	defer impr.mtx.Unlock()

	rec, ok := impr.parses[id]
	if !ok {
		return dao.ParseRecord{}, dao.ErrNotFound
	}

	delete(impr.parses, id)
	delete(impr.order, id)

	return rec, nil
}
