// Package filelock provides cross-process file locking via flock(2).
//
// The ledger and estimate snapshot files are append-only JSONL shared
// between whichever rudder processes happen to run concurrently. Each
// writer takes an exclusive lock for the duration of a single append so
// records never interleave mid-line. Readers do not lock: a crashed
// writer's partial line is skipped by the tolerant loader on the next
// read.
//
// # Usage
//
//	lock := filelock.New(ledgerPath)
//	if err := lock.Lock(); err != nil {
//	    return err
//	}
//	defer lock.Unlock()
//	// append to the data file
//
// The lock is advisory: it only coordinates processes that use this
// package. That is sufficient here because every writer goes through the
// same append path.
package filelock
