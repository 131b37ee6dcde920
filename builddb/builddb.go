// Package builddb persists a history of reviews and of build, remove, and
// update queue runs in an embedded bbolt database, alongside (not in
// place of) the plain-text PKGDB that remains the source of truth for
// catalog state. It answers "what did we decide last time" questions the
// PKGDB's flat record format has no room for: when a package was last
// reviewed and against which info CRC, and a timestamped log of queue
// runs.
package builddb

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketReviews = "reviews"
	bucketRuns    = "runs"
)

// ReviewRecord is one package's review history.
type ReviewRecord struct {
	Name       string    `json:"name"`
	ReviewedAt time.Time `json:"reviewed_at"`
	InfoCRC    uint32    `json:"info_crc"`
}

// RunKind distinguishes the three queue-generating commands for run
// history purposes.
type RunKind string

const (
	RunBuild  RunKind = "build"
	RunRemove RunKind = "remove"
	RunUpdate RunKind = "update"
)

// RunRecord is one invocation of a queue-generating command.
type RunRecord struct {
	Kind      RunKind   `json:"kind"`
	Targets   []string  `json:"targets"`
	Entries   []string  `json:"entries"`
	StartedAt time.Time `json:"started_at"`
}

// DB wraps the bbolt handle.
type DB struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the bbolt database at path and
// ensures both buckets exist.
func Open(path string) (*DB, error) {
	bdb, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open build database %s: %w", path, err)
	}
	err = bdb.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketReviews, bucketRuns} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		bdb.Close()
		return nil, fmt.Errorf("initialize build database buckets: %w", err)
	}
	return &DB{db: bdb}, nil
}

func (d *DB) Close() error { return d.db.Close() }

// RecordReview persists that name was reviewed at the given CRC.
func (d *DB) RecordReview(name string, infoCRC uint32, at time.Time) error {
	rec := ReviewRecord{Name: name, ReviewedAt: at, InfoCRC: infoCRC}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketReviews)).Put([]byte(name), data)
	})
}

// LastReview returns the most recent review record for name, if any.
func (d *DB) LastReview(name string) (ReviewRecord, bool, error) {
	var rec ReviewRecord
	var found bool
	err := d.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketReviews)).Get([]byte(name))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &rec)
	})
	return rec, found, err
}

// RecordRun appends run to the run history log, keyed by its start time
// (UTC, fixed-width nanoseconds) so iteration order is chronological.
func (d *DB) RecordRun(run RunRecord) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	key := []byte(run.StartedAt.UTC().Format("2006-01-02T15:04:05.000000000Z07:00"))
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketRuns)).Put(key, data)
	})
}

// Runs returns every recorded run, oldest first.
func (d *DB) Runs() ([]RunRecord, error) {
	var runs []RunRecord
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))
		return b.ForEach(func(_, v []byte) error {
			var r RunRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			runs = append(runs, r)
			return nil
		})
	})
	return runs, err
}
