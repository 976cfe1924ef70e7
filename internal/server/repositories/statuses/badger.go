package statuses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v3"
	"github.com/dmitrijs2005/nowstatus/internal/logging"
	"github.com/dmitrijs2005/nowstatus/internal/server/models"
)

// BadgerRepository stores each status as a JSON value under
// "status/<segment>" in an embedded badger database.
type BadgerRepository struct {
	db *badger.DB
}

// NewBadgerRepository opens (or creates) the database in dir. In-memory
// badger caps values at 1 MiB, too small for an image, so dir is required.
func NewBadgerRepository(dir string, logger logging.Logger) (*BadgerRepository, error) {
	if dir == "" {
		return nil, errors.New("open badger: directory is required")
	}
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{l: logger.With("module", "badger")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerRepository{db: db}, nil
}

func badgerKey(seg models.Segment) []byte {
	return []byte("status/" + string(seg))
}

func (r *BadgerRepository) Save(ctx context.Context, seg models.Segment, st models.Status) error {
	if err := checkSegment(seg); err != nil {
		return err
	}

	data, err := json.Marshal(st)
	if err != nil {
		return storageError("encode", seg, err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(seg), data)
	})
	if err != nil {
		return storageError("save", seg, withoutDump(err))
	}
	return nil
}

func (r *BadgerRepository) Load(ctx context.Context, seg models.Segment) (models.Status, error) {
	if err := checkSegment(seg); err != nil {
		return models.Status{}, err
	}

	var data []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(seg))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Status{}, nil
	}
	if err != nil {
		return models.Status{}, storageError("load", seg, err)
	}

	var st models.Status
	if err := json.Unmarshal(data, &st); err != nil {
		return models.Status{}, storageError("decode", seg, err)
	}
	return st, nil
}

// withoutDump drops the hex dump badger appends to key and value size
// errors, so status contents never reach the logs.
func withoutDump(err error) error {
	msg := err.Error()
	first, _, found := strings.Cut(msg, "\n")
	if !found {
		return err
	}
	first = strings.TrimSuffix(first, " Value:")
	first = strings.TrimSuffix(first, " Key:")
	return errors.New(strings.TrimSpace(first))
}

func (r *BadgerRepository) Close() error {
	return r.db.Close()
}

// badgerLogger routes badger's printf-style logging into the structured
// logger.
type badgerLogger struct {
	l logging.Logger
}

func (b badgerLogger) msg(format string, args ...interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error(context.Background(), b.msg(format, args...))
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn(context.Background(), b.msg(format, args...))
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.l.Debug(context.Background(), b.msg(format, args...))
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Debug(context.Background(), b.msg(format, args...))
}
