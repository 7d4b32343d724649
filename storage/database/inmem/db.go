// Package inmemdb provides in-memory implementations of the store
// repositories. Used in tests and for running the API without postgres.
package inmemdb

import (
	"sync"

	"github.com/skillspear/skillspear/core/account"
	"github.com/skillspear/skillspear/core/course"
	"github.com/skillspear/skillspear/core/enrollment"
	"github.com/skillspear/skillspear/core/teacherapp"
)

// DB holds the four record collections behind a single lock; repos built
// on the same DB are safe for concurrent use and see each other's writes,
// matching the cross-collection reads the real store performs.
type DB struct {
	sync.RWMutex

	accounts     map[string]*account.Account // keyed by id
	applications []*teacherapp.Application   // insertion order == creation order
	offerings    map[string]*course.Offering // keyed by id
	payments     []*enrollment.Payment       // append-only
}

func NewDB() *DB {
	return &DB{
		accounts:  make(map[string]*account.Account),
		offerings: make(map[string]*course.Offering),
	}
}

// Reset drops all records. Test helper.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()
	db.accounts = make(map[string]*account.Account)
	db.applications = nil
	db.offerings = make(map[string]*course.Offering)
	db.payments = nil
}
