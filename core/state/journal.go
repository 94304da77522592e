package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"tipledger/storage"
)

// ErrJournalClosed is returned when a committed or discarded journal is used.
var ErrJournalClosed = errors.New("state: journal closed")

// Journal overlays pending writes on top of a database. Reads see the
// journal's own writes first; nothing reaches the database until Commit
// flushes every staged write as one batch.
type Journal struct {
	db     storage.Database
	writes map[string][]byte
	order  []string
	closed bool
	commit *sync.Mutex
}

func newJournal(db storage.Database, commit *sync.Mutex) *Journal {
	return &Journal{db: db, writes: make(map[string][]byte), commit: commit}
}

func (j *Journal) put(key [32]byte, value interface{}) error {
	if j.closed {
		return ErrJournalClosed
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %x: %w", key[:4], err)
	}
	k := string(key[:])
	if _, ok := j.writes[k]; !ok {
		j.order = append(j.order, k)
	}
	j.writes[k] = encoded
	return nil
}

func (j *Journal) raw(key [32]byte) ([]byte, bool, error) {
	if j.closed {
		return nil, false, ErrJournalClosed
	}
	if data, ok := j.writes[string(key[:])]; ok {
		return data, true, nil
	}
	data, err := j.db.Get(key[:])
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("state: read %x: %w", key[:4], err)
	}
	return data, len(data) > 0, nil
}

func (j *Journal) get(key [32]byte, out interface{}) (bool, error) {
	data, ok, err := j.raw(key)
	if err != nil || !ok {
		return false, err
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, fmt.Errorf("state: decode %x: %w", key[:4], err)
	}
	return true, nil
}

// Pending reports how many distinct keys the journal has staged.
func (j *Journal) Pending() int { return len(j.order) }

// Commit writes every staged value in one batch and closes the journal.
func (j *Journal) Commit() error {
	if j.closed {
		return ErrJournalClosed
	}
	j.closed = true
	if len(j.order) == 0 {
		return nil
	}
	batch := j.db.NewBatch()
	for _, k := range j.order {
		batch.Put([]byte(k), j.writes[k])
	}
	j.commit.Lock()
	defer j.commit.Unlock()
	if err := batch.Write(); err != nil {
		return fmt.Errorf("state: commit %d records: %w", batch.Len(), err)
	}
	return nil
}

// Discard drops every staged write and closes the journal.
func (j *Journal) Discard() {
	j.closed = true
	j.writes = nil
	j.order = nil
}
