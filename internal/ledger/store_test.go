package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/erazemk/zaloga/internal/model"
)

// fakeRecords is an in-memory RecordStore that logs every write.
type fakeRecords struct {
	mu   sync.Mutex
	rows map[string][]Fields
	ops  []string
	err  error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{rows: make(map[string][]Fields)}
}

func (f *fakeRecords) SelectAll(_ context.Context, collection string) ([]Fields, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.rows[collection]), nil
}

func (f *fakeRecords) Insert(_ context.Context, collection string, record Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "insert "+collection)
	if f.err != nil {
		return f.err
	}
	f.rows[collection] = append(f.rows[collection], record)
	return nil
}

func (f *fakeRecords) Update(_ context.Context, collection, id string, record Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "update "+collection)
	if f.err != nil {
		return f.err
	}
	for _, row := range f.rows[collection] {
		if row["id"] == id {
			for k, v := range record {
				row[k] = v
			}
			return nil
		}
	}
	return fmt.Errorf("no %s with id %s", collection, id)
}

func (f *fakeRecords) log() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.ops)
}

func openTestStore(t *testing.T, records RecordStore) *Store {
	t.Helper()
	s, err := Open(context.Background(), records, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

// seedStore creates site Alpha and Bravo, a weapon item type and one person
// at Alpha, and acquires 150 at Alpha.
func seedStore(t *testing.T, s *Store) (alpha, bravo model.Site, rifle model.ItemType, person model.Person) {
	t.Helper()
	var err error
	if alpha, err = s.AddSite(model.Site{Name: "Alpha", Location: "North"}); err != nil {
		t.Fatalf("AddSite: %v", err)
	}
	if bravo, err = s.AddSite(model.Site{Name: "Bravo", Location: "South"}); err != nil {
		t.Fatalf("AddSite: %v", err)
	}
	if rifle, err = s.AddItemType(model.ItemType{Name: "Rifle", Category: model.CategoryWeapon}); err != nil {
		t.Fatalf("AddItemType: %v", err)
	}
	if person, err = s.AddPerson(model.Person{Name: "Novak", Rank: "Sgt", SiteID: alpha.ID}); err != nil {
		t.Fatalf("AddPerson: %v", err)
	}
	if _, err = s.AddAcquisition(model.Acquisition{SiteID: alpha.ID, ItemTypeID: rifle.ID, Quantity: 150, Date: "2024-01-10"}); err != nil {
		t.Fatalf("AddAcquisition: %v", err)
	}
	return alpha, bravo, rifle, person
}

func TestStoreTransferLifecycle(t *testing.T) {
	s := openTestStore(t, nil)
	alpha, bravo, rifle, _ := seedStore(t, s)

	tr, err := s.AddTransfer(model.Transfer{FromSiteID: alpha.ID, ToSiteID: bravo.ID, ItemTypeID: rifle.ID, Quantity: 25, Date: "2024-02-01"})
	if err != nil {
		t.Fatalf("AddTransfer: %v", err)
	}
	if tr.Status != model.TransferPending {
		t.Errorf("expected pending, got %s", tr.Status)
	}
	if tr.ID == "" {
		t.Error("expected an ID to be assigned")
	}

	if _, err := s.UpdateTransferStatus(tr.ID, model.TransferInTransit); err != nil {
		t.Fatalf("in-transit: %v", err)
	}
	if got := AvailableQuantity(s.Snapshot(), alpha.ID, rifle.ID); got != 125 {
		t.Errorf("expected 125 at Alpha while in transit, got %d", got)
	}
	if got := AvailableQuantity(s.Snapshot(), bravo.ID, rifle.ID); got != 0 {
		t.Errorf("expected 0 at Bravo while in transit, got %d", got)
	}

	if _, err := s.UpdateTransferStatus(tr.ID, model.TransferCompleted); err != nil {
		t.Fatalf("completed: %v", err)
	}
	if got := AvailableQuantity(s.Snapshot(), bravo.ID, rifle.ID); got != 25 {
		t.Errorf("expected 25 at Bravo, got %d", got)
	}

	_, err = s.UpdateTransferStatus(tr.ID, model.TransferCancelled)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition from completed, got %v", err)
	}
}

func TestStoreRejectsInvalidRecords(t *testing.T) {
	s := openTestStore(t, nil)
	alpha, bravo, rifle, person := seedStore(t, s)

	tests := []struct {
		name string
		fn   func() error
		want error
	}{
		{"empty site name", func() error { _, err := s.AddSite(model.Site{Name: "  "}); return err }, ErrInvalid},
		{"bad category", func() error {
			_, err := s.AddItemType(model.ItemType{Name: "Tank", Category: "armour"})
			return err
		}, ErrInvalid},
		{"person at unknown site", func() error {
			_, err := s.AddPerson(model.Person{Name: "Kos", SiteID: "nowhere"})
			return err
		}, ErrUnknownSite},
		{"zero quantity", func() error {
			_, err := s.AddAcquisition(model.Acquisition{SiteID: alpha.ID, ItemTypeID: rifle.ID, Quantity: 0, Date: "2024-01-01"})
			return err
		}, ErrInvalid},
		{"bad date", func() error {
			_, err := s.AddAcquisition(model.Acquisition{SiteID: alpha.ID, ItemTypeID: rifle.ID, Quantity: 1, Date: "01.02.2024"})
			return err
		}, ErrInvalid},
		{"unknown item type", func() error {
			_, err := s.AddAcquisition(model.Acquisition{SiteID: alpha.ID, ItemTypeID: "nothing", Quantity: 1, Date: "2024-01-01"})
			return err
		}, ErrUnknownItemType},
		{"transfer to same site", func() error {
			_, err := s.AddTransfer(model.Transfer{FromSiteID: alpha.ID, ToSiteID: alpha.ID, ItemTypeID: rifle.ID, Quantity: 1, Date: "2024-01-01"})
			return err
		}, ErrInvalid},
		{"transfer to unknown site", func() error {
			_, err := s.AddTransfer(model.Transfer{FromSiteID: alpha.ID, ToSiteID: "nowhere", ItemTypeID: rifle.ID, Quantity: 1, Date: "2024-01-01"})
			return err
		}, ErrUnknownSite},
		{"completed transfer over stock", func() error {
			_, err := s.AddTransfer(model.Transfer{FromSiteID: bravo.ID, ToSiteID: alpha.ID, ItemTypeID: rifle.ID, Quantity: 1, Date: "2024-01-01", Status: model.TransferCompleted})
			return err
		}, ErrInsufficientStock},
		{"assignment to unknown person", func() error {
			_, err := s.AddAssignment(model.Assignment{SiteID: alpha.ID, ItemTypeID: rifle.ID, PersonID: "ghost", Quantity: 1, DateAssigned: "2024-01-01"})
			return err
		}, ErrUnknownPerson},
		{"assignment over stock", func() error {
			_, err := s.AddAssignment(model.Assignment{SiteID: alpha.ID, ItemTypeID: rifle.ID, PersonID: person.ID, Quantity: 151, DateAssigned: "2024-01-01"})
			return err
		}, ErrInsufficientStock},
		{"consumption over stock", func() error {
			_, err := s.AddConsumption(model.Consumption{SiteID: bravo.ID, ItemTypeID: rifle.ID, Quantity: 1, Date: "2024-01-01"})
			return err
		}, ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	// Nothing rejected above may have reached memory.
	snap := s.Snapshot()
	if len(snap.Sites) != 2 || len(snap.Transfers) != 0 || len(snap.Assignments) != 0 || len(snap.Consumptions) != 0 {
		t.Errorf("rejected records were stored: %+v", snap)
	}
}

func TestStorePendingTransferSkipsStockCheck(t *testing.T) {
	s := openTestStore(t, nil)
	alpha, bravo, rifle, _ := seedStore(t, s)

	tr, err := s.AddTransfer(model.Transfer{FromSiteID: bravo.ID, ToSiteID: alpha.ID, ItemTypeID: rifle.ID, Quantity: 10, Date: "2024-02-01"})
	if err != nil {
		t.Fatalf("pending transfer over stock should be accepted: %v", err)
	}

	_, err = s.UpdateTransferStatus(tr.ID, model.TransferInTransit)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock when shipping, got %v", err)
	}

	if _, err := s.UpdateTransferStatus(tr.ID, model.TransferCancelled); err != nil {
		t.Errorf("cancel: %v", err)
	}
}

func TestStoreUpdateTransferStatusNotFound(t *testing.T) {
	s := openTestStore(t, nil)

	_, err := s.UpdateTransferStatus("missing", model.TransferCompleted)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreReturnAssignment(t *testing.T) {
	s := openTestStore(t, nil)
	alpha, _, rifle, person := seedStore(t, s)

	a, err := s.AddAssignment(model.Assignment{SiteID: alpha.ID, ItemTypeID: rifle.ID, PersonID: person.ID, Quantity: 2, DateAssigned: "2024-03-01"})
	if err != nil {
		t.Fatalf("AddAssignment: %v", err)
	}
	if a.Status != model.AssignmentActive {
		t.Errorf("expected active, got %s", a.Status)
	}
	if got := AvailableQuantity(s.Snapshot(), alpha.ID, rifle.ID); got != 148 {
		t.Errorf("expected 148 available, got %d", got)
	}

	if _, err := s.ReturnAssignment(a.ID, "2024-02-01"); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for return before assignment, got %v", err)
	}

	returned, err := s.ReturnAssignment(a.ID, "2024-03-05")
	if err != nil {
		t.Fatalf("ReturnAssignment: %v", err)
	}
	if returned.Status != model.AssignmentReturned || returned.DateReturned != "2024-03-05" {
		t.Errorf("unexpected returned assignment: %+v", returned)
	}
	if got := AvailableQuantity(s.Snapshot(), alpha.ID, rifle.ID); got != 150 {
		t.Errorf("expected 150 available after return, got %d", got)
	}

	if _, err := s.ReturnAssignment(a.ID, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition on second return, got %v", err)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := openTestStore(t, nil)
	alpha, _, rifle, _ := seedStore(t, s)

	snap := s.Snapshot()
	snap.Acquisitions[0].Quantity = 1

	if got := AvailableQuantity(s.Snapshot(), alpha.ID, rifle.ID); got != 150 {
		t.Errorf("mutating a snapshot changed the store: got %d", got)
	}

	if _, err := s.AddAcquisition(model.Acquisition{SiteID: alpha.ID, ItemTypeID: rifle.ID, Quantity: 5, Date: "2024-01-11"}); err != nil {
		t.Fatalf("AddAcquisition: %v", err)
	}
	if len(snap.Acquisitions) != 1 {
		t.Errorf("earlier snapshot saw a later mutation")
	}
}

func TestStoreSyncsInOrder(t *testing.T) {
	records := newFakeRecords()
	s := openTestStore(t, records)
	alpha, bravo, rifle, _ := seedStore(t, s)

	tr, err := s.AddTransfer(model.Transfer{FromSiteID: alpha.ID, ToSiteID: bravo.ID, ItemTypeID: rifle.ID, Quantity: 5, Date: "2024-02-01"})
	if err != nil {
		t.Fatalf("AddTransfer: %v", err)
	}
	if _, err := s.UpdateTransferStatus(tr.ID, model.TransferCompleted); err != nil {
		t.Fatalf("UpdateTransferStatus: %v", err)
	}
	s.Flush()

	want := []string{
		"insert sites",
		"insert sites",
		"insert itemTypes",
		"insert personnel",
		"insert acquisitions",
		"insert transfers",
		"update transfers",
	}
	if got := records.log(); !slices.Equal(got, want) {
		t.Errorf("expected ops %v, got %v", want, got)
	}
}

// gatedRecords holds every insert until release is closed.
type gatedRecords struct {
	*fakeRecords
	release chan struct{}
}

func (g *gatedRecords) Insert(ctx context.Context, collection string, record Fields) error {
	<-g.release
	return g.fakeRecords.Insert(ctx, collection, record)
}

func TestStoreMutationsDoNotWaitForSync(t *testing.T) {
	const n = 300
	records := &gatedRecords{fakeRecords: newFakeRecords(), release: make(chan struct{})}
	s, err := Open(context.Background(), records, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range n {
			if _, err := s.AddSite(model.Site{Name: fmt.Sprintf("Site %d", i)}); err != nil {
				t.Errorf("AddSite: %v", err)
				return
			}
			s.Snapshot()
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		close(records.release)
		t.Fatal("mutations blocked on a stalled backing store")
	}
	if got := len(s.Snapshot().Sites); got != n {
		t.Errorf("expected %d sites in memory, got %d", n, got)
	}

	close(records.release)
	s.Close()
	ops := records.log()
	if len(ops) != n {
		t.Fatalf("expected %d synced inserts, got %d", n, len(ops))
	}
	rows, _ := records.SelectAll(context.Background(), CollectionSites)
	for i, row := range rows {
		if want := fmt.Sprintf("Site %d", i); row["name"] != want {
			t.Fatalf("row %d: expected %q, got %v", i, want, row["name"])
		}
	}
}

func TestStoreReloadsFromRecords(t *testing.T) {
	records := newFakeRecords()
	s, err := Open(context.Background(), records, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	alpha, bravo, rifle, _ := seedStore(t, s)
	tr, _ := s.AddTransfer(model.Transfer{FromSiteID: alpha.ID, ToSiteID: bravo.ID, ItemTypeID: rifle.ID, Quantity: 25, Date: "2024-02-01"})
	if _, err := s.UpdateTransferStatus(tr.ID, model.TransferCompleted); err != nil {
		t.Fatalf("UpdateTransferStatus: %v", err)
	}
	s.Close()

	reopened := openTestStore(t, records)
	snap := reopened.Snapshot()
	if len(snap.Sites) != 2 || len(snap.ItemTypes) != 1 || len(snap.Personnel) != 1 {
		t.Fatalf("catalog not reloaded: %+v", snap)
	}
	if got := AvailableQuantity(snap, alpha.ID, rifle.ID); got != 125 {
		t.Errorf("expected 125 at Alpha after reload, got %d", got)
	}
	if got := AvailableQuantity(snap, bravo.ID, rifle.ID); got != 25 {
		t.Errorf("expected 25 at Bravo after reload, got %d", got)
	}
}

func TestStoreLoadsLooseNumericTypes(t *testing.T) {
	records := newFakeRecords()
	records.rows[CollectionSites] = []Fields{{"id": "a", "name": []byte("Alpha"), "location": "North"}}
	records.rows[CollectionItemTypes] = []Fields{{"id": "x", "name": "Rifle", "category": "weapon"}}
	records.rows[CollectionAcquisitions] = []Fields{
		{"id": "1", "siteId": "a", "itemTypeId": "x", "quantity": int64(7), "date": "2024-01-01"},
		{"id": "2", "siteId": "a", "itemTypeId": "x", "quantity": float64(3), "date": "2024-01-02"},
	}
	// Inconsistent history loads without validation.
	records.rows[CollectionConsumptions] = []Fields{
		{"id": "3", "siteId": "a", "itemTypeId": "x", "quantity": int64(50), "date": "2024-01-03"},
	}

	s := openTestStore(t, records)
	snap := s.Snapshot()
	if snap.Sites[0].Name != "Alpha" {
		t.Errorf("expected site name Alpha, got %q", snap.Sites[0].Name)
	}
	if got := RawAvailable(snap, "a", "x"); got != -40 {
		t.Errorf("expected raw -40, got %d", got)
	}
}

func TestStoreSyncFailureKeepsMemory(t *testing.T) {
	records := newFakeRecords()
	records.err = errors.New("disk full")
	s := openTestStore(t, records)

	site, err := s.AddSite(model.Site{Name: "Alpha"})
	if err != nil {
		t.Fatalf("AddSite should succeed despite sync failure: %v", err)
	}
	s.Flush()

	select {
	case e := <-s.SyncErrors():
		if e.Collection != CollectionSites || e.ID != site.ID || e.Op != "insert" {
			t.Errorf("unexpected sync error: %+v", e)
		}
		if !errors.Is(e, records.err) {
			t.Errorf("expected wrapped disk full error, got %v", e.Err)
		}
	default:
		t.Fatal("expected a sync error to be reported")
	}

	if _, ok := s.Snapshot().Site(site.ID); !ok {
		t.Error("site was rolled back after sync failure")
	}
}

func TestStoreClosed(t *testing.T) {
	s, err := Open(context.Background(), newFakeRecords(), Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Close()
	s.Close()
	s.Flush()

	if _, err := s.AddSite(model.Site{Name: "Alpha"}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
