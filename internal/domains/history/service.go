package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/connectbox-tools/connectbox-agent/internal/entities"
)

var (
	keyLastEventEpoch = []byte("eventlog/last_epoch")
	keyLatestSnapshot = []byte("snapshot/latest")
)

// Service persists poller state between runs: the newest event epoch
// already exported and the latest telemetry snapshot.
type Service struct {
	db *badger.DB
}

func NewService(db *badger.DB) *Service {
	return &Service{
		db: db,
	}
}

// LastEventEpoch returns the high-water epoch of exported log events.
// ok is false when nothing was exported yet.
func (s *Service) LastEventEpoch() (epoch int64, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get(keyLastEventEpoch)
		if errors.Is(getErr, badger.ErrKeyNotFound) {
			return nil
		}
		if getErr != nil {
			return getErr
		}

		return item.Value(func(val []byte) error {
			parsed, parseErr := strconv.ParseInt(string(val), 10, 64)
			if parseErr != nil {
				return parseErr
			}

			epoch = parsed
			ok = true
			return nil
		})
	})
	if err != nil {
		return 0, false, fmt.Errorf("LastEventEpoch: %w", err)
	}

	return epoch, ok, nil
}

func (s *Service) SetLastEventEpoch(epoch int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyLastEventEpoch, []byte(strconv.FormatInt(epoch, 10)))
	})
	if err != nil {
		return fmt.Errorf("SetLastEventEpoch: %w", err)
	}

	return nil
}

func (s *Service) SaveSnapshot(snapshot entities.TelemetrySnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("SaveSnapshot: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyLatestSnapshot, data)
	})
	if err != nil {
		return fmt.Errorf("SaveSnapshot: %w", err)
	}

	return nil
}

// LatestSnapshot returns the last persisted snapshot, ok is false when
// none was saved yet.
func (s *Service) LatestSnapshot() (snapshot entities.TelemetrySnapshot, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get(keyLatestSnapshot)
		if errors.Is(getErr, badger.ErrKeyNotFound) {
			return nil
		}
		if getErr != nil {
			return getErr
		}

		return item.Value(func(val []byte) error {
			if unmarshalErr := json.Unmarshal(val, &snapshot); unmarshalErr != nil {
				return unmarshalErr
			}

			ok = true
			return nil
		})
	})
	if err != nil {
		return snapshot, false, fmt.Errorf("LatestSnapshot: %w", err)
	}

	return snapshot, ok, nil
}
