package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/telemetry"
)

var (
	ErrInvalid           = errors.New("invalid record")
	ErrNotFound          = errors.New("record not found")
	ErrUnknownSite       = errors.New("unknown site")
	ErrUnknownItemType   = errors.New("unknown item type")
	ErrUnknownPerson     = errors.New("unknown person")
	ErrInsufficientStock = errors.New("insufficient quantity")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrClosed            = errors.New("ledger closed")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Options configures a Store.
type Options struct {
	// ErrorBuffer is the capacity of the SyncErrors channel.
	ErrorBuffer int
	Logger      *slog.Logger
}

// Store is the authoritative in-memory ledger. Every mutation is applied to
// memory first and then mirrored to the RecordStore by a single background
// worker, in the order the mutations were made.
type Store struct {
	mu      sync.RWMutex
	snap    Snapshot
	closed  bool
	records RecordStore
	jobs    *queue
	errs    chan SyncError
	done    chan struct{}
	log     *slog.Logger
	newID   func() string
}

// Open loads every collection from records and starts the sync worker.
// A nil records keeps the ledger purely in memory.
func Open(ctx context.Context, records RecordStore, opts Options) (*Store, error) {
	if opts.ErrorBuffer <= 0 {
		opts.ErrorBuffer = 256
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Store{
		records: records,
		errs:    make(chan SyncError, opts.ErrorBuffer),
		log:     opts.Logger,
		newID:   uuid.NewString,
	}
	if records == nil {
		return s, nil
	}

	snap, err := load(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	s.snap = snap
	s.jobs = newQueue()
	s.done = make(chan struct{})
	go s.run(context.WithoutCancel(ctx))

	return s, nil
}

// Snapshot returns an immutable copy of every collection.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// SyncErrors reports failed writes to the backing store. Errors are dropped
// when nobody drains the channel fast enough.
func (s *Store) SyncErrors() <-chan SyncError {
	return s.errs
}

// Flush blocks until every mutation made before the call has been attempted
// against the backing store.
func (s *Store) Flush() {
	s.mu.Lock()
	if s.closed || s.jobs == nil {
		s.mu.Unlock()
		return
	}
	barrier := make(chan struct{})
	s.jobs.push(job{barrier: barrier})
	s.mu.Unlock()
	<-barrier
}

// Close stops accepting mutations and waits for the sync queue to drain.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.jobs != nil {
		s.jobs.close()
	}
	s.mu.Unlock()

	if s.done != nil {
		<-s.done
	}
}

// mutate runs fn under the write lock and enqueues the job it returns.
// Enqueueing never waits on the backing store.
func (s *Store) mutate(fn func() (job, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	j, err := fn()
	if err != nil {
		return err
	}
	telemetry.LedgerMutations.WithLabelValues(j.collection).Inc()
	if s.jobs != nil {
		s.jobs.push(j)
	}
	return nil
}

// AddSite registers a new site.
func (s *Store) AddSite(site model.Site) (model.Site, error) {
	site.Name = strings.TrimSpace(site.Name)
	if site.Name == "" {
		return model.Site{}, invalid("site name is required")
	}
	err := s.mutate(func() (job, error) {
		site.ID = s.newID()
		s.snap.Sites = append(s.snap.Sites, site)
		return insert(CollectionSites, siteFields(site)), nil
	})
	if err != nil {
		return model.Site{}, err
	}
	return site, nil
}

// AddItemType registers a new item type.
func (s *Store) AddItemType(it model.ItemType) (model.ItemType, error) {
	it.Name = strings.TrimSpace(it.Name)
	if it.Name == "" {
		return model.ItemType{}, invalid("item type name is required")
	}
	if !it.Category.Valid() {
		return model.ItemType{}, invalid("unknown category %q", it.Category)
	}
	err := s.mutate(func() (job, error) {
		it.ID = s.newID()
		s.snap.ItemTypes = append(s.snap.ItemTypes, it)
		return insert(CollectionItemTypes, itemTypeFields(it)), nil
	})
	if err != nil {
		return model.ItemType{}, err
	}
	return it, nil
}

// AddPerson registers a new member of personnel at an existing site.
func (s *Store) AddPerson(p model.Person) (model.Person, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return model.Person{}, invalid("person name is required")
	}
	p.SiteName = ""
	err := s.mutate(func() (job, error) {
		if _, ok := s.snap.Site(p.SiteID); !ok {
			return job{}, ErrUnknownSite
		}
		p.ID = s.newID()
		s.snap.Personnel = append(s.snap.Personnel, p)
		return insert(CollectionPersonnel, personFields(p)), nil
	})
	if err != nil {
		return model.Person{}, err
	}
	return p, nil
}

func validQuantityAndDate(quantity int, date string) error {
	if quantity <= 0 {
		return invalid("quantity must be positive")
	}
	if !model.ValidDate(date) {
		return invalid("date %q is not in %s format", date, model.DateLayout)
	}
	return nil
}

// checkRefs is called with the lock held.
func (s *Store) checkRefs(siteID, itemTypeID string) error {
	if _, ok := s.snap.Site(siteID); !ok {
		return ErrUnknownSite
	}
	if _, ok := s.snap.ItemType(itemTypeID); !ok {
		return ErrUnknownItemType
	}
	return nil
}

// checkStock is called with the lock held.
func (s *Store) checkStock(siteID, itemTypeID string, quantity int) error {
	available := tallyPair(s.snap, siteID, itemTypeID).available()
	if quantity > available {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientStock, max(0, available), quantity)
	}
	return nil
}

// AddAcquisition records stock entering a site.
func (s *Store) AddAcquisition(a model.Acquisition) (model.Acquisition, error) {
	if err := validQuantityAndDate(a.Quantity, a.Date); err != nil {
		return model.Acquisition{}, err
	}
	a.SiteName, a.ItemTypeName = "", ""
	err := s.mutate(func() (job, error) {
		if err := s.checkRefs(a.SiteID, a.ItemTypeID); err != nil {
			return job{}, err
		}
		a.ID = s.newID()
		s.snap.Acquisitions = append(s.snap.Acquisitions, a)
		return insert(CollectionAcquisitions, acquisitionFields(a)), nil
	})
	if err != nil {
		return model.Acquisition{}, err
	}
	return a, nil
}

// AddTransfer records a movement between two sites. An empty status means
// pending. A transfer created in transit or completed must be covered by
// the source site's stock.
func (s *Store) AddTransfer(t model.Transfer) (model.Transfer, error) {
	if err := validQuantityAndDate(t.Quantity, t.Date); err != nil {
		return model.Transfer{}, err
	}
	if t.FromSiteID == t.ToSiteID {
		return model.Transfer{}, invalid("cannot transfer to the same site")
	}
	if t.Status == "" {
		t.Status = model.TransferPending
	}
	if !t.Status.Valid() {
		return model.Transfer{}, invalid("unknown transfer status %q", t.Status)
	}
	t.FromSiteName, t.ToSiteName, t.ItemTypeName = "", "", ""
	err := s.mutate(func() (job, error) {
		if err := s.checkRefs(t.FromSiteID, t.ItemTypeID); err != nil {
			return job{}, err
		}
		if _, ok := s.snap.Site(t.ToSiteID); !ok {
			return job{}, ErrUnknownSite
		}
		if t.Status.DepletesSource() {
			if err := s.checkStock(t.FromSiteID, t.ItemTypeID, t.Quantity); err != nil {
				return job{}, err
			}
		}
		t.ID = s.newID()
		s.snap.Transfers = append(s.snap.Transfers, t)
		return insert(CollectionTransfers, transferFields(t)), nil
	})
	if err != nil {
		return model.Transfer{}, err
	}
	return t, nil
}

// UpdateTransferStatus moves a transfer along its status machine.
func (s *Store) UpdateTransferStatus(id string, next model.TransferStatus) (model.Transfer, error) {
	if !next.Valid() {
		return model.Transfer{}, invalid("unknown transfer status %q", next)
	}
	var out model.Transfer
	err := s.mutate(func() (job, error) {
		i := indexByID(s.snap.Transfers, id, func(t model.Transfer) string { return t.ID })
		if i < 0 {
			return job{}, ErrNotFound
		}
		cur := s.snap.Transfers[i]
		if !cur.Status.CanTransition(next) {
			return job{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, cur.Status, next)
		}
		if !cur.Status.DepletesSource() && next.DepletesSource() {
			if err := s.checkStock(cur.FromSiteID, cur.ItemTypeID, cur.Quantity); err != nil {
				return job{}, err
			}
		}
		cur.Status = next
		s.snap.Transfers[i] = cur
		out = cur
		return update(CollectionTransfers, id, Fields{"status": string(next)}), nil
	})
	if err != nil {
		return model.Transfer{}, err
	}
	return out, nil
}

// AddAssignment checks items out to a person. An empty status means active.
// Active assignments must be covered by the site's stock.
func (s *Store) AddAssignment(a model.Assignment) (model.Assignment, error) {
	if err := validQuantityAndDate(a.Quantity, a.DateAssigned); err != nil {
		return model.Assignment{}, err
	}
	if a.Status == "" {
		a.Status = model.AssignmentActive
	}
	if !a.Status.Valid() {
		return model.Assignment{}, invalid("unknown assignment status %q", a.Status)
	}
	if a.Status == model.AssignmentActive {
		a.DateReturned = ""
	}
	if a.DateReturned != "" && (!model.ValidDate(a.DateReturned) || a.DateReturned < a.DateAssigned) {
		return model.Assignment{}, invalid("return date %q must be a date on or after %s", a.DateReturned, a.DateAssigned)
	}
	a.SiteName, a.ItemTypeName, a.PersonName = "", "", ""
	err := s.mutate(func() (job, error) {
		if err := s.checkRefs(a.SiteID, a.ItemTypeID); err != nil {
			return job{}, err
		}
		if _, ok := s.snap.Person(a.PersonID); !ok {
			return job{}, ErrUnknownPerson
		}
		if a.Status == model.AssignmentActive {
			if err := s.checkStock(a.SiteID, a.ItemTypeID, a.Quantity); err != nil {
				return job{}, err
			}
		}
		a.ID = s.newID()
		s.snap.Assignments = append(s.snap.Assignments, a)
		return insert(CollectionAssignments, assignmentFields(a)), nil
	})
	if err != nil {
		return model.Assignment{}, err
	}
	return a, nil
}

// ReturnAssignment marks an active assignment as returned on date, or today
// when date is empty.
func (s *Store) ReturnAssignment(id, date string) (model.Assignment, error) {
	if date == "" {
		date = model.Today()
	}
	if !model.ValidDate(date) {
		return model.Assignment{}, invalid("date %q is not in %s format", date, model.DateLayout)
	}
	var out model.Assignment
	err := s.mutate(func() (job, error) {
		i := indexByID(s.snap.Assignments, id, func(a model.Assignment) string { return a.ID })
		if i < 0 {
			return job{}, ErrNotFound
		}
		cur := s.snap.Assignments[i]
		if cur.Status != model.AssignmentActive {
			return job{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, cur.Status, model.AssignmentReturned)
		}
		if date < cur.DateAssigned {
			return job{}, invalid("return date %s is before assignment date %s", date, cur.DateAssigned)
		}
		cur.Status = model.AssignmentReturned
		cur.DateReturned = date
		s.snap.Assignments[i] = cur
		out = cur
		return update(CollectionAssignments, id, Fields{
			"status":       string(cur.Status),
			"dateReturned": cur.DateReturned,
		}), nil
	})
	if err != nil {
		return model.Assignment{}, err
	}
	return out, nil
}

// AddConsumption records stock used up at a site.
func (s *Store) AddConsumption(c model.Consumption) (model.Consumption, error) {
	if err := validQuantityAndDate(c.Quantity, c.Date); err != nil {
		return model.Consumption{}, err
	}
	c.Reason = strings.TrimSpace(c.Reason)
	c.SiteName, c.ItemTypeName = "", ""
	err := s.mutate(func() (job, error) {
		if err := s.checkRefs(c.SiteID, c.ItemTypeID); err != nil {
			return job{}, err
		}
		if err := s.checkStock(c.SiteID, c.ItemTypeID, c.Quantity); err != nil {
			return job{}, err
		}
		c.ID = s.newID()
		s.snap.Consumptions = append(s.snap.Consumptions, c)
		return insert(CollectionConsumptions, consumptionFields(c)), nil
	})
	if err != nil {
		return model.Consumption{}, err
	}
	return c, nil
}

func indexByID[T any](items []T, id string, key func(T) string) int {
	for i, it := range items {
		if key(it) == id {
			return i
		}
	}
	return -1
}
